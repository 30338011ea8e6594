package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomo-travel/tomo/backend/internal/domain"
	"github.com/tomo-travel/tomo/backend/internal/service"
)

func TestExportService_Export_ResolvesPlaceNames(t *testing.T) {
	trip := validTrip()
	trip.ID = uuid.New()
	placeID := uuid.New()
	itineraryID := uuid.New()

	places := &mockPlaceRepo{
		listByTripID: func(_ context.Context, _ uuid.UUID) ([]domain.Place, error) {
			return []domain.Place{{ID: placeID, Name: "Ghibli Museum"}}, nil
		},
	}
	itineraries := &mockItineraryRepo{
		listByTripID: func(_ context.Context, _ uuid.UUID) ([]domain.Itinerary, error) {
			return []domain.Itinerary{{ID: itineraryID, TripID: trip.ID}}, nil
		},
		listActivities: func(_ context.Context, _ uuid.UUID) ([]domain.Activity, error) {
			return []domain.Activity{
				{
					Title:    "Museum visit",
					TimeSlot: domain.SlotAfternoon,
					Day:      time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
					PlaceID:  &placeID,
				},
				{
					Title:    "Free evening",
					TimeSlot: domain.SlotEvening,
					Day:      time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
				},
			}, nil
		},
	}
	svc := service.NewExportService(tripRepoReturning(trip), itineraries, places)

	rows, err := svc.Export(context.Background(), trip.ID)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, trip.ID.String(), rows[0].TripID)
	assert.Equal(t, "2026-04-05", rows[0].Day)
	assert.Equal(t, "Ghibli Museum", rows[0].PlaceName)
	assert.Equal(t, "", rows[1].PlaceName, "unlinked activity exports without a place")
}

func TestExportService_Export_EmptyTripYieldsBaseRow(t *testing.T) {
	trip := validTrip()
	trip.ID = uuid.New()

	places := &mockPlaceRepo{
		listByTripID: func(_ context.Context, _ uuid.UUID) ([]domain.Place, error) { return nil, nil },
	}
	itineraries := &mockItineraryRepo{
		listByTripID: func(_ context.Context, _ uuid.UUID) ([]domain.Itinerary, error) { return nil, nil },
	}
	svc := service.NewExportService(tripRepoReturning(trip), itineraries, places)

	rows, err := svc.Export(context.Background(), trip.ID)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, trip.Name, rows[0].TripName)
	assert.Empty(t, rows[0].Title)
}
