package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomo-travel/tomo/backend/internal/domain"
	"github.com/tomo-travel/tomo/backend/internal/repo"
	"github.com/tomo-travel/tomo/backend/internal/service"
)

// mockNotificationRepo is a function-field test double for repo.NotificationRepo.
type mockNotificationRepo struct {
	create        func(ctx context.Context, n domain.Notification) (domain.Notification, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Notification, error)
	listActive    func(ctx context.Context, tripID uuid.UUID, now time.Time) ([]domain.Notification, error)
	listDismissed func(ctx context.Context, tripID uuid.UUID, limit int) ([]domain.Notification, error)
	dismiss       func(ctx context.Context, id uuid.UUID, at time.Time) error
	dismissAll    func(ctx context.Context, tripID uuid.UUID, at time.Time) error
	refreshExpiry func(ctx context.Context, id uuid.UUID, expiresAt *time.Time, triggeredAt time.Time) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	return m.create(ctx, n)
}
func (m *mockNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Notification, error) {
	return m.getByID(ctx, id)
}
func (m *mockNotificationRepo) ListActive(ctx context.Context, tripID uuid.UUID, now time.Time) ([]domain.Notification, error) {
	return m.listActive(ctx, tripID, now)
}
func (m *mockNotificationRepo) ListDismissed(ctx context.Context, tripID uuid.UUID, limit int) ([]domain.Notification, error) {
	return m.listDismissed(ctx, tripID, limit)
}
func (m *mockNotificationRepo) Dismiss(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.dismiss(ctx, id, at)
}
func (m *mockNotificationRepo) DismissAll(ctx context.Context, tripID uuid.UUID, at time.Time) error {
	return m.dismissAll(ctx, tripID, at)
}
func (m *mockNotificationRepo) RefreshExpiry(ctx context.Context, id uuid.UUID, expiresAt *time.Time, triggeredAt time.Time) error {
	return m.refreshExpiry(ctx, id, expiresAt, triggeredAt)
}

var _ repo.NotificationRepo = (*mockNotificationRepo)(nil)

// recordingNotifier captures everything pushed through the Notifier port.
type recordingNotifier struct {
	pushed []domain.Notification
}

func (n *recordingNotifier) Notify(_ uuid.UUID, notif domain.Notification) {
	n.pushed = append(n.pushed, notif)
}

var _ service.Notifier = (*recordingNotifier)(nil)

// ---- Active ----------------------------------------------------------------

func TestNotificationService_Active_SortedForDisplay(t *testing.T) {
	now := time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC)
	notifications := &mockNotificationRepo{
		listActive: func(_ context.Context, _ uuid.UUID, _ time.Time) ([]domain.Notification, error) {
			return []domain.Notification{
				{Message: "info", Severity: domain.SeverityInfo, TriggeredAt: now},
				{Message: "urgent", Severity: domain.SeverityUrgent, TriggeredAt: now.Add(-time.Hour)},
			}, nil
		},
	}
	svc := service.NewNotificationService(notifications, nil)

	got, err := svc.Active(context.Background(), uuid.New())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "urgent", got[0].Message, "urgent outranks info regardless of recency")
}

func TestNotificationService_Active_NeverReturnsNil(t *testing.T) {
	notifications := &mockNotificationRepo{
		listActive: func(_ context.Context, _ uuid.UUID, _ time.Time) ([]domain.Notification, error) {
			return nil, nil
		},
	}
	svc := service.NewNotificationService(notifications, nil)

	got, err := svc.Active(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.NotNil(t, got)
}

// ---- Dismissed -------------------------------------------------------------

func TestNotificationService_Dismissed_CapsAtTen(t *testing.T) {
	var gotLimit int
	notifications := &mockNotificationRepo{
		listDismissed: func(_ context.Context, _ uuid.UUID, limit int) ([]domain.Notification, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	svc := service.NewNotificationService(notifications, nil)

	_, err := svc.Dismissed(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, 10, gotLimit)
}

// ---- Dismiss ---------------------------------------------------------------

func TestNotificationService_Dismiss_IdempotentRepoNoopPassesThrough(t *testing.T) {
	calls := 0
	notifications := &mockNotificationRepo{
		dismiss: func(_ context.Context, _ uuid.UUID, _ time.Time) error {
			calls++
			return nil // repo treats re-dismissal as a no-op
		},
	}
	svc := service.NewNotificationService(notifications, nil)

	id := uuid.New()
	require.NoError(t, svc.Dismiss(context.Background(), id))
	require.NoError(t, svc.Dismiss(context.Background(), id))
	assert.Equal(t, 2, calls)
}

func TestNotificationService_Dismiss_UnknownID(t *testing.T) {
	notifications := &mockNotificationRepo{
		dismiss: func(_ context.Context, _ uuid.UUID, _ time.Time) error { return domain.ErrNotFound },
	}
	svc := service.NewNotificationService(notifications, nil)

	err := svc.Dismiss(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Create / push ---------------------------------------------------------

func TestNotificationService_Create_PushesToNotifier(t *testing.T) {
	notifications := &mockNotificationRepo{
		create: func(_ context.Context, n domain.Notification) (domain.Notification, error) {
			n.ID = uuid.New()
			return n, nil
		},
	}
	notifier := &recordingNotifier{}
	svc := service.NewNotificationService(notifications, notifier)

	created, err := svc.Create(context.Background(), domain.Notification{
		TripID:   uuid.New(),
		Type:     domain.WarnBudget,
		Severity: domain.SeverityWarning,
	})

	require.NoError(t, err)
	require.Len(t, notifier.pushed, 1)
	assert.Equal(t, created.ID, notifier.pushed[0].ID)
}

// ---- ScheduleActivityReminder ----------------------------------------------

func TestNotificationService_ScheduleActivityReminder(t *testing.T) {
	start := time.Date(2026, 4, 5, 19, 0, 0, 0, time.UTC)
	var stored domain.Notification
	notifications := &mockNotificationRepo{
		create: func(_ context.Context, n domain.Notification) (domain.Notification, error) {
			stored = n
			return n, nil
		},
	}
	svc := service.NewNotificationService(notifications, nil)

	err := svc.ScheduleActivityReminder(context.Background(), uuid.New(), domain.Activity{
		Title:     "Kaiseki dinner",
		StartTime: &start,
		Booked:    true,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.WarnReminder, stored.Type)
	require.NotNil(t, stored.ScheduledFor)
	assert.True(t, stored.ScheduledFor.Equal(start.Add(-30*time.Minute)), "visible 30 minutes before start")
	require.NotNil(t, stored.ExpiresAt)
	assert.True(t, stored.ExpiresAt.Equal(start), "moot once the activity has started")
	assert.Contains(t, stored.Message, "Kaiseki dinner")
}

func TestNotificationService_ScheduleActivityReminder_RequiresStartTime(t *testing.T) {
	svc := service.NewNotificationService(&mockNotificationRepo{}, nil)

	err := svc.ScheduleActivityReminder(context.Background(), uuid.New(), domain.Activity{Title: "Walk"})

	assert.ErrorIs(t, err, domain.ErrValidation)
}
