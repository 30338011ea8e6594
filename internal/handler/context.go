package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tomo-travel/tomo/backend/internal/domain"
)

// ContextReportRequest is the body of PUT /trips/{tripID}/context: the
// device's periodic snapshot of where the traveller is and what it knows.
// All fields except location are optional — the device sends what it has.
type ContextReportRequest struct {
	Location       domain.Coordinates      `json:"location"`
	Weather        *domain.WeatherSnapshot `json:"weather"`
	LastTrainAt    *time.Time              `json:"last_train_at"`
	ViewingPlaceID *uuid.UUID              `json:"viewing_place_id"`
}

// ContextReportResponse returns the stored context plus the warnings that
// are active after re-evaluation, so the device refreshes in one round trip.
type ContextReportResponse struct {
	Context  domain.TripContext    `json:"context"`
	Warnings []domain.Notification `json:"warnings"`
}

// ReportContext handles PUT /trips/{tripID}/context.
func (s *Server) ReportContext(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}
	var req ContextReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	stored, warnings, err := s.contexts.Report(r.Context(), domain.TripContext{
		TripID:         tripID,
		Location:       req.Location,
		Weather:        req.Weather,
		LastTrainAt:    req.LastTrainAt,
		ViewingPlaceID: req.ViewingPlaceID,
	})
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, ContextReportResponse{Context: stored, Warnings: warnings})
}

// GetContext handles GET /trips/{tripID}/context.
func (s *Server) GetContext(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}

	tc, err := s.contexts.Get(r.Context(), tripID)
	if err != nil {
		respondError(w, r, err, "context")
		return
	}
	writeJSON(w, http.StatusOK, tc)
}
