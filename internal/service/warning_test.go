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
	"github.com/tomo-travel/tomo/backend/internal/rules"
	"github.com/tomo-travel/tomo/backend/internal/service"
)

// mockPlaceRepo is a function-field test double for repo.PlaceRepo.
type mockPlaceRepo struct {
	create       func(ctx context.Context, place domain.Place) (domain.Place, error)
	getByID      func(ctx context.Context, tripID, placeID uuid.UUID) (domain.Place, error)
	listByTripID func(ctx context.Context, tripID uuid.UUID) ([]domain.Place, error)
	update       func(ctx context.Context, place domain.Place) (domain.Place, error)
	delete       func(ctx context.Context, tripID, placeID uuid.UUID) error
}

func (m *mockPlaceRepo) Create(ctx context.Context, p domain.Place) (domain.Place, error) {
	return m.create(ctx, p)
}
func (m *mockPlaceRepo) GetByID(ctx context.Context, tripID, placeID uuid.UUID) (domain.Place, error) {
	return m.getByID(ctx, tripID, placeID)
}
func (m *mockPlaceRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Place, error) {
	return m.listByTripID(ctx, tripID)
}
func (m *mockPlaceRepo) Update(ctx context.Context, p domain.Place) (domain.Place, error) {
	return m.update(ctx, p)
}
func (m *mockPlaceRepo) Delete(ctx context.Context, tripID, placeID uuid.UUID) error {
	return m.delete(ctx, tripID, placeID)
}

var _ repo.PlaceRepo = (*mockPlaceRepo)(nil)

// mockTripContextRepo is a function-field test double for repo.TripContextRepo.
type mockTripContextRepo struct {
	upsert            func(ctx context.Context, tc domain.TripContext) (domain.TripContext, error)
	getByTripID       func(ctx context.Context, tripID uuid.UUID) (domain.TripContext, error)
	listReportedSince func(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

func (m *mockTripContextRepo) Upsert(ctx context.Context, tc domain.TripContext) (domain.TripContext, error) {
	return m.upsert(ctx, tc)
}
func (m *mockTripContextRepo) GetByTripID(ctx context.Context, tripID uuid.UUID) (domain.TripContext, error) {
	return m.getByTripID(ctx, tripID)
}
func (m *mockTripContextRepo) ListReportedSince(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	return m.listReportedSince(ctx, since)
}

var _ repo.TripContextRepo = (*mockTripContextRepo)(nil)

// ---- fixture ---------------------------------------------------------------

// warningFixture wires a WarningService around an in-memory notification
// store so re-evaluation behaviour (dedup, refresh) can be observed.
type warningFixture struct {
	trips    *mockTripRepo
	expenses *mockExpenseRepo
	contexts *mockTripContextRepo
	places   *mockPlaceRepo
	notifier *recordingNotifier

	store []domain.Notification // the fake notification table
	now   time.Time
}

func newWarningFixture() *warningFixture {
	f := &warningFixture{
		now:      time.Date(2026, 4, 5, 12, 0, 0, 0, time.UTC),
		notifier: &recordingNotifier{},
	}
	trip := validTrip()
	trip.ID = uuid.New()
	trip.Timezone = "UTC" // keep day-bound assertions simple here

	f.trips = tripRepoReturning(trip)
	f.expenses = &mockExpenseRepo{
		sumBetween: func(_ context.Context, _ uuid.UUID, _, _ time.Time) (int64, error) { return 0, nil },
	}
	f.contexts = &mockTripContextRepo{
		getByTripID: func(_ context.Context, _ uuid.UUID) (domain.TripContext, error) {
			return domain.TripContext{}, domain.ErrNotFound
		},
	}
	f.places = &mockPlaceRepo{}
	return f
}

// notificationStore is a minimal in-memory repo.NotificationRepo over
// f.store, enough for Evaluate's Create/ListActive/RefreshExpiry calls.
func (f *warningFixture) notificationStore() repo.NotificationRepo {
	return &mockNotificationRepo{
		create: func(_ context.Context, n domain.Notification) (domain.Notification, error) {
			n.ID = uuid.New()
			f.store = append(f.store, n)
			return n, nil
		},
		listActive: func(_ context.Context, _ uuid.UUID, now time.Time) ([]domain.Notification, error) {
			var active []domain.Notification
			for _, n := range f.store {
				if n.IsActive(now) {
					active = append(active, n)
				}
			}
			return active, nil
		},
		refreshExpiry: func(_ context.Context, id uuid.UUID, expiresAt *time.Time, triggeredAt time.Time) error {
			for i := range f.store {
				if f.store[i].ID == id {
					f.store[i].ExpiresAt = expiresAt
					f.store[i].TriggeredAt = triggeredAt
					return nil
				}
			}
			return domain.ErrNotFound
		},
	}
}

func (f *warningFixture) service() *service.WarningService {
	return service.NewWarningService(
		f.trips, f.expenses, f.contexts, f.places,
		f.notificationStore(), f.notifier, rules.DefaultThresholds(),
	).WithClock(func() time.Time { return f.now })
}

// ---- Evaluate --------------------------------------------------------------

func TestWarningService_Evaluate_BudgetWarningWithoutContext(t *testing.T) {
	f := newWarningFixture()
	// 9,000 of a 10,000 daily budget spent today.
	f.expenses.sumBetween = func(_ context.Context, _ uuid.UUID, _, _ time.Time) (int64, error) {
		return 9_000, nil
	}

	got, err := f.service().Evaluate(context.Background(), uuid.New())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.WarnBudget, got[0].Type)
	assert.Equal(t, domain.SeverityWarning, got[0].Severity)
	require.NotNil(t, got[0].ExpiresAt)
	assert.True(t, got[0].ExpiresAt.Equal(time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)),
		"budget warning expires at local day end")
	assert.Len(t, f.notifier.pushed, 1, "new warning pushed to clients")
}

func TestWarningService_Evaluate_ReevaluationRefreshesInsteadOfDuplicating(t *testing.T) {
	f := newWarningFixture()
	f.expenses.sumBetween = func(_ context.Context, _ uuid.UUID, _, _ time.Time) (int64, error) {
		return 9_000, nil
	}
	svc := f.service()

	_, err := svc.Evaluate(context.Background(), uuid.New())
	require.NoError(t, err)
	_, err = svc.Evaluate(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Len(t, f.store, 1, "identical context must not create a second budget warning")
	assert.Len(t, f.notifier.pushed, 1, "refresh is silent — no second push")
}

func TestWarningService_Evaluate_LastTrainFromContext(t *testing.T) {
	f := newWarningFixture()
	departure := f.now.Add(20 * time.Minute)
	f.contexts.getByTripID = func(_ context.Context, _ uuid.UUID) (domain.TripContext, error) {
		return domain.TripContext{LastTrainAt: &departure}, nil
	}

	got, err := f.service().Evaluate(context.Background(), uuid.New())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.WarnLastTrain, got[0].Type)
	assert.Equal(t, domain.SeverityUrgent, got[0].Severity)
	assert.Equal(t, domain.ActionNavigateHome, got[0].Action)
}

func TestWarningService_Evaluate_WeatherCarriesCoordinates(t *testing.T) {
	f := newWarningFixture()
	shinjuku := domain.Coordinates{Lat: 35.6938, Lng: 139.7034}
	asakusa := domain.Coordinates{Lat: 35.7148, Lng: 139.7967}

	trip := validTrip()
	trip.HomeBase = asakusa
	f.trips = tripRepoReturning(trip)
	f.contexts.getByTripID = func(_ context.Context, _ uuid.UUID) (domain.TripContext, error) {
		return domain.TripContext{
			Location:    shinjuku,
			Weather:     &domain.WeatherSnapshot{Condition: domain.WeatherRain},
			PrevWeather: domain.WeatherClouds,
		}, nil
	}

	got, err := f.service().Evaluate(context.Background(), uuid.New())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.WarnWeather, got[0].Type)
	require.NotNil(t, got[0].Coords)
	assert.InDelta(t, shinjuku.Lat, got[0].Coords.Lat, 1e-9)
}

func TestWarningService_Evaluate_ClosingTimeForViewedPlace(t *testing.T) {
	f := newWarningFixture()
	placeID := uuid.New()
	f.contexts.getByTripID = func(_ context.Context, _ uuid.UUID) (domain.TripContext, error) {
		return domain.TripContext{ViewingPlaceID: &placeID}, nil
	}
	// Open 09:00–12:20 UTC; it is 12:00 — closes in 20 minutes.
	f.places.getByID = func(_ context.Context, _, _ uuid.UUID) (domain.Place, error) {
		return domain.Place{ID: placeID, Name: "Ghibli Museum", OpensAt: "09:00", ClosesAt: "12:20"}, nil
	}

	got, err := f.service().Evaluate(context.Background(), uuid.New())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.WarnClosingTime, got[0].Type)
	require.NotNil(t, got[0].PlaceID)
	assert.Equal(t, placeID, *got[0].PlaceID)
}

func TestWarningService_Evaluate_MissingViewedPlaceDegradesGracefully(t *testing.T) {
	f := newWarningFixture()
	placeID := uuid.New()
	f.contexts.getByTripID = func(_ context.Context, _ uuid.UUID) (domain.TripContext, error) {
		return domain.TripContext{ViewingPlaceID: &placeID}, nil
	}
	f.places.getByID = func(_ context.Context, _, _ uuid.UUID) (domain.Place, error) {
		return domain.Place{}, domain.ErrNotFound
	}

	got, err := f.service().Evaluate(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Empty(t, got, "a dangling place reference is not an error")
}

func TestWarningService_Evaluate_SortsUrgentFirst(t *testing.T) {
	f := newWarningFixture()
	departure := f.now.Add(20 * time.Minute)
	f.expenses.sumBetween = func(_ context.Context, _ uuid.UUID, _, _ time.Time) (int64, error) {
		return 9_000, nil // budget → warning severity
	}
	f.contexts.getByTripID = func(_ context.Context, _ uuid.UUID) (domain.TripContext, error) {
		return domain.TripContext{LastTrainAt: &departure}, nil // last train → urgent
	}

	got, err := f.service().Evaluate(context.Background(), uuid.New())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.WarnLastTrain, got[0].Type)
	assert.Equal(t, domain.WarnBudget, got[1].Type)
}

func TestWarningService_Evaluate_UnknownTrip(t *testing.T) {
	f := newWarningFixture()
	f.trips = &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}

	_, err := f.service().Evaluate(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
