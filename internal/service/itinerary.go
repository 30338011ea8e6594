package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomo-travel/tomo/backend/internal/domain"
	"github.com/tomo-travel/tomo/backend/internal/repo"
)

// ReminderScheduler schedules a reminder notification for a booked activity.
// Implemented by NotificationService; defined here, in the consumer package,
// so itinerary tests can inject a stub.
type ReminderScheduler interface {
	ScheduleActivityReminder(ctx context.Context, tripID uuid.UUID, a domain.Activity) error
}

// ItineraryService implements business logic for itineraries and their
// day/activity structure. It holds the trip repo to verify parents and an
// optional ReminderScheduler for booked activities with start times.
type ItineraryService struct {
	trips       repo.TripRepo
	itineraries repo.ItineraryRepo
	reminders   ReminderScheduler // may be nil
}

// NewItineraryService constructs an ItineraryService backed by the provided
// repos. reminders may be nil, in which case no reminders are scheduled.
func NewItineraryService(trips repo.TripRepo, itineraries repo.ItineraryRepo, reminders ReminderScheduler) *ItineraryService {
	return &ItineraryService{trips: trips, itineraries: itineraries, reminders: reminders}
}

// Create validates the itinerary, verifies the parent trip exists, then persists.
func (s *ItineraryService) Create(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error) {
	if _, err := s.trips.GetByID(ctx, it.TripID); err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Create: %w", err)
	}
	if strings.TrimSpace(it.Name) == "" {
		return domain.Itinerary{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	result, err := s.itineraries.Create(ctx, it)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single itinerary by ID, scoped to the given trip.
func (s *ItineraryService) GetByID(ctx context.Context, tripID, itineraryID uuid.UUID) (domain.Itinerary, error) {
	result, err := s.itineraries.GetByID(ctx, tripID, itineraryID)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.ItineraryService.GetByID: %w", err)
	}
	return result, nil
}

// ListByTripID returns a trip's itineraries.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ItineraryService) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Itinerary, error) {
	its, err := s.itineraries.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.ListByTripID: %w", err)
	}
	if its == nil {
		return []domain.Itinerary{}, nil
	}
	return its, nil
}

// Delete removes an itinerary and all its activities.
func (s *ItineraryService) Delete(ctx context.Context, tripID, itineraryID uuid.UUID) error {
	if err := s.itineraries.Delete(ctx, tripID, itineraryID); err != nil {
		return fmt.Errorf("service.ItineraryService.Delete: %w", err)
	}
	return nil
}

// Days returns the derived day view of an itinerary: activities grouped by
// date in position order, ready for the day-by-day screen.
func (s *ItineraryService) Days(ctx context.Context, tripID, itineraryID uuid.UUID) ([]domain.ItineraryDay, error) {
	if _, err := s.itineraries.GetByID(ctx, tripID, itineraryID); err != nil {
		return nil, fmt.Errorf("service.ItineraryService.Days: %w", err)
	}
	activities, err := s.itineraries.ListActivities(ctx, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.Days: %w", err)
	}
	days := domain.GroupByDay(activities)
	if days == nil {
		return []domain.ItineraryDay{}, nil
	}
	return days, nil
}

// AddActivity validates and appends an activity to its day. An absent ID is
// generated. Booked activities with a start time get a reminder scheduled.
func (s *ItineraryService) AddActivity(ctx context.Context, tripID, itineraryID uuid.UUID, a domain.Activity) (domain.Activity, error) {
	if _, err := s.itineraries.GetByID(ctx, tripID, itineraryID); err != nil {
		return domain.Activity{}, fmt.Errorf("service.ItineraryService.AddActivity: %w", err)
	}
	a.ItineraryID = itineraryID
	if err := validateActivity(a); err != nil {
		return domain.Activity{}, err
	}

	result, err := s.itineraries.AddActivity(ctx, a)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ItineraryService.AddActivity: %w", err)
	}

	s.maybeScheduleReminder(ctx, tripID, domain.Activity{}, result)
	return result, nil
}

// UpdateActivity merges a partial patch into an existing activity.
func (s *ItineraryService) UpdateActivity(ctx context.Context, tripID, itineraryID, activityID uuid.UUID, patch domain.ActivityPatch) (domain.Activity, error) {
	if _, err := s.itineraries.GetByID(ctx, tripID, itineraryID); err != nil {
		return domain.Activity{}, fmt.Errorf("service.ItineraryService.UpdateActivity: %w", err)
	}
	current, err := s.itineraries.GetActivity(ctx, itineraryID, activityID)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ItineraryService.UpdateActivity: %w", err)
	}

	patched := patch.Apply(current)
	if err := validateActivity(patched); err != nil {
		return domain.Activity{}, err
	}

	result, err := s.itineraries.UpdateActivity(ctx, patched)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ItineraryService.UpdateActivity: %w", err)
	}

	s.maybeScheduleReminder(ctx, tripID, current, result)
	return result, nil
}

// RemoveActivity removes an activity by ID.
func (s *ItineraryService) RemoveActivity(ctx context.Context, tripID, itineraryID, activityID uuid.UUID) error {
	if _, err := s.itineraries.GetByID(ctx, tripID, itineraryID); err != nil {
		return fmt.Errorf("service.ItineraryService.RemoveActivity: %w", err)
	}
	if err := s.itineraries.DeleteActivity(ctx, itineraryID, activityID); err != nil {
		return fmt.Errorf("service.ItineraryService.RemoveActivity: %w", err)
	}
	return nil
}

// ReorderActivities re-sequences one day's activities to match orderedIDs.
// IDs omitted from the request keep their relative order and move to the
// end. An unknown or duplicate ID is a validation error. The operation is a
// pure permutation — it never adds or drops activities.
func (s *ItineraryService) ReorderActivities(ctx context.Context, tripID, itineraryID uuid.UUID, day time.Time, orderedIDs []uuid.UUID) ([]domain.Activity, error) {
	if _, err := s.itineraries.GetByID(ctx, tripID, itineraryID); err != nil {
		return nil, fmt.Errorf("service.ItineraryService.ReorderActivities: %w", err)
	}
	current, err := s.itineraries.ListActivitiesByDay(ctx, itineraryID, day)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.ReorderActivities: %w", err)
	}

	reordered, err := domain.Reorder(current, orderedIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: reorder ids must name activities of the day exactly once", domain.ErrValidation)
	}

	ids := make([]uuid.UUID, len(reordered))
	for i, a := range reordered {
		ids[i] = a.ID
		reordered[i].Position = i
	}
	if err := s.itineraries.SetPositions(ctx, itineraryID, day, ids); err != nil {
		return nil, fmt.Errorf("service.ItineraryService.ReorderActivities: %w", err)
	}
	return reordered, nil
}

// ApplyIntent executes a chat-derived itinerary modification.
// Each variant maps onto the corresponding activity operation; the handler
// decodes the tagged union, this switch dispatches it.
func (s *ItineraryService) ApplyIntent(ctx context.Context, tripID, itineraryID uuid.UUID, intent domain.Intent) (domain.Activity, error) {
	switch v := intent.(type) {
	case domain.AddIntent:
		return s.AddActivity(ctx, tripID, itineraryID, domain.Activity{
			Day:      v.Day,
			TimeSlot: v.TimeSlot,
			Title:    v.Title,
			Category: v.Category,
			PlaceID:  v.PlaceID,
		})
	case domain.RemoveIntent:
		err := s.RemoveActivity(ctx, tripID, itineraryID, v.ActivityID)
		return domain.Activity{}, err
	case domain.MoveIntent:
		return s.UpdateActivity(ctx, tripID, itineraryID, v.ActivityID, domain.ActivityPatch{
			Day:      v.Day,
			TimeSlot: v.TimeSlot,
		})
	case domain.UpdateIntent:
		return s.UpdateActivity(ctx, tripID, itineraryID, v.ActivityID, v.Patch)
	default:
		return domain.Activity{}, fmt.Errorf("%w: unsupported intent", domain.ErrValidation)
	}
}

// maybeScheduleReminder schedules a reminder when an activity becomes a
// booked activity with a start time. Scheduling is best-effort: a failure is
// logged, never surfaced — a missed reminder must not fail the write.
func (s *ItineraryService) maybeScheduleReminder(ctx context.Context, tripID uuid.UUID, before, after domain.Activity) {
	if s.reminders == nil {
		return
	}
	if !after.Booked || after.StartTime == nil {
		return
	}
	if before.Booked && before.StartTime != nil && before.StartTime.Equal(*after.StartTime) {
		return // already scheduled for this start
	}
	if err := s.reminders.ScheduleActivityReminder(ctx, tripID, after); err != nil {
		slog.WarnContext(ctx, "failed to schedule activity reminder",
			"activity_id", after.ID, "error", err)
	}
}

// validateActivity enforces business rules common to add and update.
//   - Title must be non-empty.
//   - TimeSlot must be one of the four known slots.
//   - Day must be set.
//   - EndTime, if both are set, must not be before StartTime.
func validateActivity(a domain.Activity) error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if !a.TimeSlot.Valid() {
		return fmt.Errorf("%w: unknown time slot %q", domain.ErrValidation, a.TimeSlot)
	}
	if a.Day.IsZero() {
		return fmt.Errorf("%w: day is required", domain.ErrValidation)
	}
	if a.StartTime != nil && a.EndTime != nil && a.EndTime.Before(*a.StartTime) {
		return fmt.Errorf("%w: end_time must not be before start_time", domain.ErrValidation)
	}
	return nil
}
