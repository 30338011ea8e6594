package handler

import (
	"net/http"
	"time"

	"github.com/tomo-travel/tomo/backend/internal/domain"
)

// TripRequest is the body of POST /trips and PUT /trips/{tripID}.
type TripRequest struct {
	Name        string             `json:"name" validate:"required"`
	Destination string             `json:"destination"`
	HomeBase    domain.Coordinates `json:"home_base"`
	StartDate   time.Time          `json:"start_date" validate:"required"`
	EndDate     time.Time          `json:"end_date" validate:"required"`
	TotalBudget int64              `json:"total_budget" validate:"min=0"`
	Currency    string             `json:"currency"`
	Timezone    string             `json:"timezone"`
}

func (req TripRequest) toDomain() domain.Trip {
	return domain.Trip{
		Name:        req.Name,
		Destination: req.Destination,
		HomeBase:    req.HomeBase,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		TotalBudget: req.TotalBudget,
		Currency:    req.Currency,
		Timezone:    req.Timezone,
	}
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req TripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := s.trips.Create(r.Context(), req.toDomain())
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListTrips handles GET /trips.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.List(r.Context())
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": trips})
}

// GetTrip handles GET /trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// UpdateTrip handles PUT /trips/{tripID}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}
	var req TripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trip := req.toDomain()
	trip.ID = id
	updated, err := s.trips.Update(r.Context(), trip)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteTrip handles DELETE /trips/{tripID}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}

	if err := s.trips.Delete(r.Context(), id); err != nil {
		respondError(w, r, err, "trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
