package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomo-travel/tomo/backend/internal/domain"
	"github.com/tomo-travel/tomo/backend/internal/repo"
)

func TestTripContextRepo_Upsert_TracksPreviousCondition(t *testing.T) {
	tx := testTx(t)
	ctx := context.Background()
	trip := mustCreateTrip(t, repo.NewTripRepo(tx))
	r := repo.NewTripContextRepo(tx)

	first := domain.TripContext{
		TripID:   trip.ID,
		Location: domain.Coordinates{Lat: 35.6938, Lng: 139.7034},
		Weather:  &domain.WeatherSnapshot{Condition: domain.WeatherClouds, Temperature: 16},
	}
	_, err := r.Upsert(ctx, first)
	require.NoError(t, err)

	second := first
	second.Weather = &domain.WeatherSnapshot{Condition: domain.WeatherRain, Temperature: 14}
	stored, err := r.Upsert(ctx, second)
	require.NoError(t, err)

	// The upsert moves the stored condition into prev_condition so the
	// rule engine sees the clouds→rain transition.
	require.NotNil(t, stored.Weather)
	assert.Equal(t, domain.WeatherRain, stored.Weather.Condition)
	assert.Equal(t, domain.WeatherClouds, stored.PrevWeather)
}

func TestTripContextRepo_GetByTripID_NotFound(t *testing.T) {
	tx := testTx(t)
	trip := mustCreateTrip(t, repo.NewTripRepo(tx))
	r := repo.NewTripContextRepo(tx)

	_, err := r.GetByTripID(context.Background(), trip.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripContextRepo_ListReportedSince(t *testing.T) {
	tx := testTx(t)
	ctx := context.Background()
	trips := repo.NewTripRepo(tx)
	r := repo.NewTripContextRepo(tx)

	fresh := mustCreateTrip(t, trips)
	_, err := r.Upsert(ctx, domain.TripContext{TripID: fresh.ID})
	require.NoError(t, err)

	ids, err := r.ListReportedSince(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Contains(t, ids, fresh.ID)

	ids, err = r.ListReportedSince(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.NotContains(t, ids, fresh.ID, "future cutoff excludes the report")
}
