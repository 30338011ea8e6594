package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tomo-travel/tomo/backend/internal/domain"
	"github.com/tomo-travel/tomo/backend/internal/repo"
)

// Evaluator is the slice of the warning engine the context service needs:
// every accepted report immediately re-runs the rules for that trip.
type Evaluator interface {
	Evaluate(ctx context.Context, tripID uuid.UUID) ([]domain.Notification, error)
}

// ContextService accepts device context reports and feeds the warning engine.
type ContextService struct {
	trips     repo.TripRepo
	contexts  repo.TripContextRepo
	evaluator Evaluator // may be nil
}

// NewContextService constructs a ContextService backed by the provided repos.
// evaluator may be nil, in which case reports are stored without evaluation.
func NewContextService(trips repo.TripRepo, contexts repo.TripContextRepo, evaluator Evaluator) *ContextService {
	return &ContextService{trips: trips, contexts: contexts, evaluator: evaluator}
}

// Report validates and stores a context report, then re-evaluates the
// trip's warnings. Returns the stored context and the active notifications
// so the device gets fresh warnings in the report response.
func (s *ContextService) Report(ctx context.Context, tc domain.TripContext) (domain.TripContext, []domain.Notification, error) {
	if _, err := s.trips.GetByID(ctx, tc.TripID); err != nil {
		return domain.TripContext{}, nil, fmt.Errorf("service.ContextService.Report: %w", err)
	}
	if tc.Weather != nil && tc.Weather.Condition == "" {
		return domain.TripContext{}, nil, fmt.Errorf("%w: weather condition is required", domain.ErrValidation)
	}

	stored, err := s.contexts.Upsert(ctx, tc)
	if err != nil {
		return domain.TripContext{}, nil, fmt.Errorf("service.ContextService.Report: %w", err)
	}

	var warnings []domain.Notification
	if s.evaluator != nil {
		warnings, err = s.evaluator.Evaluate(ctx, tc.TripID)
		if err != nil {
			return domain.TripContext{}, nil, fmt.Errorf("service.ContextService.Report: %w", err)
		}
	}
	if warnings == nil {
		warnings = []domain.Notification{}
	}
	return stored, warnings, nil
}

// Get returns the latest stored context for a trip.
func (s *ContextService) Get(ctx context.Context, tripID uuid.UUID) (domain.TripContext, error) {
	tc, err := s.contexts.GetByTripID(ctx, tripID)
	if err != nil {
		return domain.TripContext{}, fmt.Errorf("service.ContextService.Get: %w", err)
	}
	return tc, nil
}
