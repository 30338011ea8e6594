package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tomo-travel/tomo/backend/internal/domain"
	"github.com/tomo-travel/tomo/backend/internal/repo"
)

// ExportService builds the flat trip export: one row per planned activity
// across all of the trip's itineraries, with place names resolved.
type ExportService struct {
	trips       repo.TripRepo
	itineraries repo.ItineraryRepo
	places      repo.PlaceRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(trips repo.TripRepo, itineraries repo.ItineraryRepo, places repo.PlaceRepo) *ExportService {
	return &ExportService{trips: trips, itineraries: itineraries, places: places}
}

// Export returns the denormalized rows for a trip. A trip with no planned
// activities yields a single row carrying only the trip fields, so the
// export is never empty for an existing trip.
func (s *ExportService) Export(ctx context.Context, tripID uuid.UUID) ([]domain.ExportRow, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	placeNames := make(map[uuid.UUID]string)
	places, err := s.places.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	for _, p := range places {
		placeNames[p.ID] = p.Name
	}

	its, err := s.itineraries.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	base := domain.ExportRow{
		TripID:          trip.ID.String(),
		TripName:        trip.Name,
		TripDestination: trip.Destination,
	}

	var rows []domain.ExportRow
	for _, it := range its {
		activities, err := s.itineraries.ListActivities(ctx, it.ID)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: %w", err)
		}
		for _, a := range activities {
			row := base
			row.Day = a.Day.Format("2006-01-02")
			row.TimeSlot = string(a.TimeSlot)
			row.Title = a.Title
			row.Category = a.Category
			row.StartTime = a.StartTime
			row.EndTime = a.EndTime
			row.Booked = a.Booked
			if a.PlaceID != nil {
				row.PlaceName = placeNames[*a.PlaceID]
			}
			rows = append(rows, row)
		}
	}

	if len(rows) == 0 {
		rows = []domain.ExportRow{base}
	}
	return rows, nil
}
