package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomo-travel/tomo/backend/internal/domain"
	"github.com/tomo-travel/tomo/backend/internal/repo"
)

// dismissedDisplayCap is how many dismissed notifications the history view
// shows. It caps the query, not the stored history.
const dismissedDisplayCap = 10

// reminderLead is how long before a booked activity's start its reminder
// becomes visible.
const reminderLead = 30 * time.Minute

// Notifier pushes a notification to connected clients in real time.
// Implemented by the websocket hub; defined here so services do not depend
// on the transport.
type Notifier interface {
	Notify(tripID uuid.UUID, n domain.Notification)
}

// NotificationService implements the notification lifecycle: creation,
// active/dismissed views, and idempotent dismissal.
type NotificationService struct {
	notifications repo.NotificationRepo
	notifier      Notifier // may be nil

	now func() time.Time
}

// NewNotificationService constructs a NotificationService. notifier may be
// nil, in which case nothing is pushed.
func NewNotificationService(notifications repo.NotificationRepo, notifier Notifier) *NotificationService {
	return &NotificationService{notifications: notifications, notifier: notifier, now: time.Now}
}

// WithClock overrides the service clock. Test hook.
func (s *NotificationService) WithClock(now func() time.Time) *NotificationService {
	s.now = now
	return s
}

// Active returns the trip's active notifications sorted for display:
// urgent first, most recently triggered first within a severity.
// Never returns dismissed, expired, or not-yet-due entries.
func (s *NotificationService) Active(ctx context.Context, tripID uuid.UUID) ([]domain.Notification, error) {
	ns, err := s.notifications.ListActive(ctx, tripID, s.now())
	if err != nil {
		return nil, fmt.Errorf("service.NotificationService.Active: %w", err)
	}
	if ns == nil {
		ns = []domain.Notification{}
	}
	domain.SortForDisplay(ns)
	return ns, nil
}

// Dismissed returns the most recently dismissed notifications for the
// history section, capped at 10.
func (s *NotificationService) Dismissed(ctx context.Context, tripID uuid.UUID) ([]domain.Notification, error) {
	ns, err := s.notifications.ListDismissed(ctx, tripID, dismissedDisplayCap)
	if err != nil {
		return nil, fmt.Errorf("service.NotificationService.Dismissed: %w", err)
	}
	if ns == nil {
		return []domain.Notification{}, nil
	}
	return ns, nil
}

// HasUnread reports whether the trip has any active notification.
func (s *NotificationService) HasUnread(ctx context.Context, tripID uuid.UUID) (bool, error) {
	ns, err := s.notifications.ListActive(ctx, tripID, s.now())
	if err != nil {
		return false, fmt.Errorf("service.NotificationService.HasUnread: %w", err)
	}
	return len(ns) > 0, nil
}

// Dismiss marks a notification dismissed. Irreversible; a repeat dismiss is
// a no-op, not an error. Returns domain.ErrNotFound for an unknown ID.
func (s *NotificationService) Dismiss(ctx context.Context, id uuid.UUID) error {
	if err := s.notifications.Dismiss(ctx, id, s.now()); err != nil {
		return fmt.Errorf("service.NotificationService.Dismiss: %w", err)
	}
	return nil
}

// DismissAll dismisses every active notification of the trip.
func (s *NotificationService) DismissAll(ctx context.Context, tripID uuid.UUID) error {
	if err := s.notifications.DismissAll(ctx, tripID, s.now()); err != nil {
		return fmt.Errorf("service.NotificationService.DismissAll: %w", err)
	}
	return nil
}

// Create persists a notification and pushes it to connected clients.
// Used by the warning engine; reminders go through ScheduleActivityReminder.
func (s *NotificationService) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	created, err := s.notifications.Create(ctx, n)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("service.NotificationService.Create: %w", err)
	}
	if s.notifier != nil {
		s.notifier.Notify(created.TripID, created)
	}
	return created, nil
}

// ScheduleActivityReminder creates a pending reminder notification for a
// booked activity: visible from 30 minutes before the start, expired after
// the start has passed.
func (s *NotificationService) ScheduleActivityReminder(ctx context.Context, tripID uuid.UUID, a domain.Activity) error {
	if a.StartTime == nil {
		return fmt.Errorf("%w: activity has no start time", domain.ErrValidation)
	}
	scheduledFor := a.StartTime.Add(-reminderLead)
	expiresAt := *a.StartTime

	_, err := s.notifications.Create(ctx, domain.Notification{
		TripID:       tripID,
		Type:         domain.WarnReminder,
		Severity:     domain.SeverityInfo,
		Message:      fmt.Sprintf("%s starts at %s.", a.Title, a.StartTime.Format("15:04")),
		PlaceID:      a.PlaceID,
		TriggeredAt:  s.now(),
		ScheduledFor: &scheduledFor,
		ExpiresAt:    &expiresAt,
	})
	if err != nil {
		return fmt.Errorf("service.NotificationService.ScheduleActivityReminder: %w", err)
	}
	return nil
}
