package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tomo-travel/tomo/backend/internal/domain"
)

// StreamNotifications handles GET /trips/{tripID}/ws.
// It verifies the trip exists, then hands the connection to the hub. Push
// delivery is best-effort; devices fall back to polling the REST endpoints.
func (s *Server) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}

	if _, err := s.trips.GetByID(r.Context(), tripID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("trip not found"))
			return
		}
		respondError(w, r, err, "trip")
		return
	}

	if err := s.stream.Serve(w, r, tripID); err != nil {
		// The upgrader has already written its own error response.
		slog.WarnContext(r.Context(), "websocket upgrade failed",
			"trip_id", tripID, "error", err)
	}
}
