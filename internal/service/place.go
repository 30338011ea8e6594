package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomo-travel/tomo/backend/internal/domain"
	"github.com/tomo-travel/tomo/backend/internal/repo"
)

// PlaceService implements business logic for the saved-places list.
type PlaceService struct {
	trips  repo.TripRepo
	places repo.PlaceRepo
}

// NewPlaceService constructs a PlaceService backed by the provided repos.
func NewPlaceService(trips repo.TripRepo, places repo.PlaceRepo) *PlaceService {
	return &PlaceService{trips: trips, places: places}
}

// Create validates the place, verifies the parent trip exists, then persists.
func (s *PlaceService) Create(ctx context.Context, place domain.Place) (domain.Place, error) {
	if _, err := s.trips.GetByID(ctx, place.TripID); err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Create: %w", err)
	}
	if err := validatePlace(place); err != nil {
		return domain.Place{}, err
	}
	result, err := s.places.Create(ctx, place)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single place by ID, scoped to the given trip.
func (s *PlaceService) GetByID(ctx context.Context, tripID, placeID uuid.UUID) (domain.Place, error) {
	result, err := s.places.GetByID(ctx, tripID, placeID)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.GetByID: %w", err)
	}
	return result, nil
}

// ListByTripID returns a trip's saved places.
// Always returns a non-nil slice so callers can safely range over it.
func (s *PlaceService) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Place, error) {
	places, err := s.places.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.PlaceService.ListByTripID: %w", err)
	}
	if places == nil {
		return []domain.Place{}, nil
	}
	return places, nil
}

// Update validates and persists changes to an existing place.
func (s *PlaceService) Update(ctx context.Context, place domain.Place) (domain.Place, error) {
	if err := validatePlace(place); err != nil {
		return domain.Place{}, err
	}
	result, err := s.places.Update(ctx, place)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlaceService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a place by ID, scoped to the given trip.
func (s *PlaceService) Delete(ctx context.Context, tripID, placeID uuid.UUID) error {
	if err := s.places.Delete(ctx, tripID, placeID); err != nil {
		return fmt.Errorf("service.PlaceService.Delete: %w", err)
	}
	return nil
}

// validatePlace enforces business rules common to both Create and Update.
//   - Name must be non-empty.
//   - Opening hours, when set, must parse as "15:04" wall-clock times.
func validatePlace(place domain.Place) error {
	if strings.TrimSpace(place.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	for _, hours := range []string{place.OpensAt, place.ClosesAt} {
		if hours == "" {
			continue
		}
		if _, err := time.Parse("15:04", hours); err != nil {
			return fmt.Errorf("%w: opening hours must be HH:MM, got %q", domain.ErrValidation, hours)
		}
	}
	return nil
}
