package handler

import (
	"net/http"

	"github.com/tomo-travel/tomo/backend/internal/domain"
)

// PlaceRequest is the body of POST and PUT on the places collection.
// Opening hours are optional "15:04" wall-clock strings.
type PlaceRequest struct {
	Name     string             `json:"name" validate:"required"`
	Category string             `json:"category"`
	Coords   domain.Coordinates `json:"coords"`
	OpensAt  string             `json:"opens_at"`
	ClosesAt string             `json:"closes_at"`
	Notes    string             `json:"notes"`
}

func (req PlaceRequest) toDomain() domain.Place {
	return domain.Place{
		Name:     req.Name,
		Category: req.Category,
		Coords:   req.Coords,
		OpensAt:  req.OpensAt,
		ClosesAt: req.ClosesAt,
		Notes:    req.Notes,
	}
}

// CreatePlace handles POST /trips/{tripID}/places.
func (s *Server) CreatePlace(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}
	var req PlaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	place := req.toDomain()
	place.TripID = tripID
	created, err := s.places.Create(r.Context(), place)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListPlaces handles GET /trips/{tripID}/places.
func (s *Server) ListPlaces(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}

	places, err := s.places.ListByTripID(r.Context(), tripID)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": places})
}

// GetPlace handles GET /trips/{tripID}/places/{placeID}.
func (s *Server) GetPlace(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}
	placeID, ok := uuidParam(w, r, "placeID", "place")
	if !ok {
		return
	}

	place, err := s.places.GetByID(r.Context(), tripID, placeID)
	if err != nil {
		respondError(w, r, err, "place")
		return
	}
	writeJSON(w, http.StatusOK, place)
}

// UpdatePlace handles PUT /trips/{tripID}/places/{placeID}.
func (s *Server) UpdatePlace(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}
	placeID, ok := uuidParam(w, r, "placeID", "place")
	if !ok {
		return
	}
	var req PlaceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	place := req.toDomain()
	place.ID = placeID
	place.TripID = tripID
	updated, err := s.places.Update(r.Context(), place)
	if err != nil {
		respondError(w, r, err, "place")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeletePlace handles DELETE /trips/{tripID}/places/{placeID}.
func (s *Server) DeletePlace(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}
	placeID, ok := uuidParam(w, r, "placeID", "place")
	if !ok {
		return
	}

	if err := s.places.Delete(r.Context(), tripID, placeID); err != nil {
		respondError(w, r, err, "place")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
