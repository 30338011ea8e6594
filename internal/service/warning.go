package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tomo-travel/tomo/backend/internal/domain"
	"github.com/tomo-travel/tomo/backend/internal/repo"
	"github.com/tomo-travel/tomo/backend/internal/rules"
)

// WarningService runs the contextual-warning engine against stored trip
// state. It owns the read side (budget sums, context, viewed place), hands
// the pure rule evaluation to the rules package, and reconciles the result
// with the notification store.
type WarningService struct {
	trips         repo.TripRepo
	expenses      repo.ExpenseRepo
	contexts      repo.TripContextRepo
	places        repo.PlaceRepo
	notifications repo.NotificationRepo
	notifier      Notifier // may be nil

	thresholds rules.Thresholds
	now        func() time.Time
}

// NewWarningService constructs a WarningService backed by the provided repos.
// notifier may be nil, in which case new warnings are stored but not pushed.
func NewWarningService(
	trips repo.TripRepo,
	expenses repo.ExpenseRepo,
	contexts repo.TripContextRepo,
	places repo.PlaceRepo,
	notifications repo.NotificationRepo,
	notifier Notifier,
	thresholds rules.Thresholds,
) *WarningService {
	return &WarningService{
		trips:         trips,
		expenses:      expenses,
		contexts:      contexts,
		places:        places,
		notifications: notifications,
		notifier:      notifier,
		thresholds:    thresholds,
		now:           time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *WarningService) WithClock(now func() time.Time) *WarningService {
	s.now = now
	return s
}

// Evaluate runs every rule against the trip's current state and returns the
// trip's active notifications, sorted for display. Evaluation is idempotent:
// a warning type that is already active gets its expiry refreshed rather
// than a duplicate row.
//
// A trip that never reported context still gets the budget rule — spending
// needs no location.
func (s *WarningService) Evaluate(ctx context.Context, tripID uuid.UUID) ([]domain.Notification, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.WarningService.Evaluate: %w", err)
	}

	now := s.now()
	loc := trip.Location()
	dayStart, dayEnd := domain.DayBounds(now, loc)

	spentToday, err := s.expenses.SumBetween(ctx, tripID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("service.WarningService.Evaluate: %w", err)
	}

	input := rules.Input{
		Now:         now,
		DailyBudget: trip.DailyBudget(),
		SpentToday:  spentToday,
		HomeBase:    trip.HomeBase,
	}

	tctx, err := s.contexts.GetByTripID(ctx, tripID)
	switch {
	case err == nil:
		input.Location = tctx.Location
		input.Weather = tctx.Weather
		input.PrevCondition = tctx.PrevWeather
		input.LastTrainAt = tctx.LastTrainAt
		input.ViewedPlace = s.viewedPlace(ctx, trip, tctx, now, loc)
	case errors.Is(err, domain.ErrNotFound):
		// No context yet — budget rule only.
	default:
		return nil, fmt.Errorf("service.WarningService.Evaluate: %w", err)
	}

	fresh := rules.Evaluate(input, s.thresholds)
	for i := range fresh {
		// The evaluator has no timezone; a budget warning actually goes
		// stale when the trip's local day rolls over.
		if fresh[i].Type == domain.WarnBudget {
			end := dayEnd
			fresh[i].ExpiresAt = &end
		}
	}

	active, err := s.notifications.ListActive(ctx, tripID, now)
	if err != nil {
		return nil, fmt.Errorf("service.WarningService.Evaluate: %w", err)
	}

	create, refresh := rules.Merge(fresh, active)
	for _, r := range refresh {
		if err := s.notifications.RefreshExpiry(ctx, r.ID, r.ExpiresAt, now); err != nil {
			return nil, fmt.Errorf("service.WarningService.Evaluate: %w", err)
		}
	}
	for _, w := range create {
		n := domain.Notification{
			TripID:      tripID,
			Type:        w.Type,
			Severity:    w.Severity,
			Message:     w.Message,
			Action:      w.Action,
			TriggeredAt: now,
			ExpiresAt:   w.ExpiresAt,
		}
		if w.Type == domain.WarnClosingTime && tctx.ViewingPlaceID != nil {
			n.PlaceID = tctx.ViewingPlaceID
		}
		if w.Type == domain.WarnWeather {
			coords := tctx.Location
			n.Coords = &coords
		}
		created, err := s.notifications.Create(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("service.WarningService.Evaluate: %w", err)
		}
		if s.notifier != nil {
			s.notifier.Notify(tripID, created)
		}
	}

	result, err := s.notifications.ListActive(ctx, tripID, now)
	if err != nil {
		return nil, fmt.Errorf("service.WarningService.Evaluate: %w", err)
	}
	if result == nil {
		result = []domain.Notification{}
	}
	domain.SortForDisplay(result)
	return result, nil
}

// viewedPlace resolves the closing-time rule's input from the saved place
// the traveller is looking at. Missing place, missing hours, or malformed
// hours all degrade to nil — never an error.
func (s *WarningService) viewedPlace(ctx context.Context, trip domain.Trip, tctx domain.TripContext, now time.Time, loc *time.Location) *rules.ViewedPlace {
	if tctx.ViewingPlaceID == nil {
		return nil
	}
	place, err := s.places.GetByID(ctx, trip.ID, *tctx.ViewingPlaceID)
	if err != nil {
		return nil
	}
	closing, ok := place.ClosingOn(now, loc)
	if !ok {
		return nil
	}

	open := now.Before(closing)
	if place.OpensAt != "" {
		if opens, err := time.Parse("15:04", place.OpensAt); err == nil {
			local := now.In(loc)
			opening := time.Date(local.Year(), local.Month(), local.Day(),
				opens.Hour(), opens.Minute(), 0, 0, loc)
			if now.Before(opening) && closing.Day() == opening.Day() {
				open = false
			}
		}
	}

	return &rules.ViewedPlace{
		ID:        place.ID.String(),
		Name:      place.Name,
		ClosingAt: closing,
		IsOpen:    open,
	}
}

// RunSweeper re-evaluates rules for every trip with a fresh context report,
// on a fixed interval, so time-based warnings (last train, closing time)
// fire without waiting for the next device report. Blocks until ctx is done.
func (s *WarningService) RunSweeper(ctx context.Context, interval, freshWindow time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx, freshWindow)
		}
	}
}

// sweep runs one evaluation pass. Failures are logged per trip and never
// stop the loop — one broken trip must not starve the rest.
func (s *WarningService) sweep(ctx context.Context, freshWindow time.Duration) {
	ids, err := s.contexts.ListReportedSince(ctx, s.now().Add(-freshWindow))
	if err != nil {
		slog.ErrorContext(ctx, "warning sweep: list trips", "error", err)
		return
	}
	for _, id := range ids {
		if _, err := s.Evaluate(ctx, id); err != nil {
			slog.ErrorContext(ctx, "warning sweep: evaluate", "trip_id", id, "error", err)
		}
	}
}
