package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomo-travel/tomo/backend/internal/domain"
	"github.com/tomo-travel/tomo/backend/internal/service"
)

// recordingEvaluator captures Evaluate calls made through the Evaluator port.
type recordingEvaluator struct {
	tripIDs []uuid.UUID
	result  []domain.Notification
}

func (e *recordingEvaluator) Evaluate(_ context.Context, tripID uuid.UUID) ([]domain.Notification, error) {
	e.tripIDs = append(e.tripIDs, tripID)
	return e.result, nil
}

var _ service.Evaluator = (*recordingEvaluator)(nil)

func TestContextService_Report_UpsertsAndEvaluates(t *testing.T) {
	tripID := uuid.New()
	var upserted domain.TripContext
	contexts := &mockTripContextRepo{
		upsert: func(_ context.Context, tc domain.TripContext) (domain.TripContext, error) {
			upserted = tc
			return tc, nil
		},
	}
	evaluator := &recordingEvaluator{
		result: []domain.Notification{{Type: domain.WarnBudget}},
	}
	svc := service.NewContextService(tripRepoReturning(validTrip()), contexts, evaluator)

	report := domain.TripContext{
		TripID:   tripID,
		Location: domain.Coordinates{Lat: 35.6938, Lng: 139.7034},
		Weather:  &domain.WeatherSnapshot{Condition: domain.WeatherClouds},
	}
	stored, warnings, err := svc.Report(context.Background(), report)

	require.NoError(t, err)
	assert.Equal(t, report.Location, upserted.Location)
	assert.Equal(t, report.Location, stored.Location)
	require.Len(t, evaluator.tripIDs, 1, "every accepted report re-runs the rules")
	assert.Equal(t, tripID, evaluator.tripIDs[0])
	require.Len(t, warnings, 1)
	assert.Equal(t, domain.WarnBudget, warnings[0].Type)
}

func TestContextService_Report_UnknownTrip(t *testing.T) {
	trips := &mockTripRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Trip, error) {
			return domain.Trip{}, domain.ErrNotFound
		},
	}
	svc := service.NewContextService(trips, &mockTripContextRepo{}, nil)

	_, _, err := svc.Report(context.Background(), domain.TripContext{TripID: uuid.New()})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContextService_Report_WeatherWithoutCondition(t *testing.T) {
	svc := service.NewContextService(tripRepoReturning(validTrip()), &mockTripContextRepo{}, nil)

	_, _, err := svc.Report(context.Background(), domain.TripContext{
		TripID:  uuid.New(),
		Weather: &domain.WeatherSnapshot{Temperature: 18},
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestContextService_Report_NilEvaluatorStillStores(t *testing.T) {
	stored := false
	contexts := &mockTripContextRepo{
		upsert: func(_ context.Context, tc domain.TripContext) (domain.TripContext, error) {
			stored = true
			return tc, nil
		},
	}
	svc := service.NewContextService(tripRepoReturning(validTrip()), contexts, nil)

	_, warnings, err := svc.Report(context.Background(), domain.TripContext{TripID: uuid.New()})

	require.NoError(t, err)
	assert.True(t, stored)
	assert.NotNil(t, warnings, "warnings is [] even when evaluation is skipped")
}
