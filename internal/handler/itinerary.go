package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tomo-travel/tomo/backend/internal/domain"
)

// ItineraryRequest is the body of POST /trips/{tripID}/itineraries.
type ItineraryRequest struct {
	Name string `json:"name" validate:"required"`
}

// ActivityRequest is the body of POST .../activities.
type ActivityRequest struct {
	Day       time.Time       `json:"day" validate:"required"`
	TimeSlot  domain.TimeSlot `json:"time_slot" validate:"required,oneof=morning afternoon evening night"`
	Title     string          `json:"title" validate:"required"`
	Category  string          `json:"category"`
	PlaceID   *uuid.UUID      `json:"place_id"`
	StartTime *time.Time      `json:"start_time"`
	EndTime   *time.Time      `json:"end_time"`
	Booked    bool            `json:"booked"`
}

// ReorderRequest is the body of POST .../reorder: the day being reordered
// and the desired activity order. Activities omitted from the list keep
// their relative order and move to the end.
type ReorderRequest struct {
	Day        time.Time   `json:"day" validate:"required"`
	OrderedIDs []uuid.UUID `json:"ordered_ids" validate:"required"`
}

// CreateItinerary handles POST /trips/{tripID}/itineraries.
func (s *Server) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}
	var req ItineraryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := s.itineraries.Create(r.Context(), domain.Itinerary{TripID: tripID, Name: req.Name})
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListItineraries handles GET /trips/{tripID}/itineraries.
func (s *Server) ListItineraries(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}

	its, err := s.itineraries.ListByTripID(r.Context(), tripID)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": its})
}

// GetItinerary handles GET /trips/{tripID}/itineraries/{itineraryID}.
func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	tripID, itineraryID, ok := itineraryParams(w, r)
	if !ok {
		return
	}

	it, err := s.itineraries.GetByID(r.Context(), tripID, itineraryID)
	if err != nil {
		respondError(w, r, err, "itinerary")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// DeleteItinerary handles DELETE /trips/{tripID}/itineraries/{itineraryID}.
func (s *Server) DeleteItinerary(w http.ResponseWriter, r *http.Request) {
	tripID, itineraryID, ok := itineraryParams(w, r)
	if !ok {
		return
	}

	if err := s.itineraries.Delete(r.Context(), tripID, itineraryID); err != nil {
		respondError(w, r, err, "itinerary")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListItineraryDays handles GET .../days: the itinerary's activities grouped
// by calendar day, each day carrying its time-slot grouping.
func (s *Server) ListItineraryDays(w http.ResponseWriter, r *http.Request) {
	tripID, itineraryID, ok := itineraryParams(w, r)
	if !ok {
		return
	}

	days, err := s.itineraries.Days(r.Context(), tripID, itineraryID)
	if err != nil {
		respondError(w, r, err, "itinerary")
		return
	}

	type dayView struct {
		Date       time.Time          `json:"date"`
		Activities []domain.Activity  `json:"activities"`
		Slots      []domain.SlotGroup `json:"slots"`
	}
	views := make([]dayView, len(days))
	for i, d := range days {
		views[i] = dayView{Date: d.Date, Activities: d.Activities, Slots: d.GroupBySlot()}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": views})
}

// AddActivity handles POST .../activities.
func (s *Server) AddActivity(w http.ResponseWriter, r *http.Request) {
	tripID, itineraryID, ok := itineraryParams(w, r)
	if !ok {
		return
	}
	var req ActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := s.itineraries.AddActivity(r.Context(), tripID, itineraryID, domain.Activity{
		Day:       req.Day,
		TimeSlot:  req.TimeSlot,
		Title:     req.Title,
		Category:  req.Category,
		PlaceID:   req.PlaceID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Booked:    req.Booked,
	})
	if err != nil {
		respondError(w, r, err, "itinerary")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateActivity handles PATCH .../activities/{activityID}.
// The body is a partial update; absent fields are left untouched.
func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	tripID, itineraryID, ok := itineraryParams(w, r)
	if !ok {
		return
	}
	activityID, ok := uuidParam(w, r, "activityID", "activity")
	if !ok {
		return
	}
	var patch domain.ActivityPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	updated, err := s.itineraries.UpdateActivity(r.Context(), tripID, itineraryID, activityID, patch)
	if err != nil {
		respondError(w, r, err, "activity")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// RemoveActivity handles DELETE .../activities/{activityID}.
func (s *Server) RemoveActivity(w http.ResponseWriter, r *http.Request) {
	tripID, itineraryID, ok := itineraryParams(w, r)
	if !ok {
		return
	}
	activityID, ok := uuidParam(w, r, "activityID", "activity")
	if !ok {
		return
	}

	if err := s.itineraries.RemoveActivity(r.Context(), tripID, itineraryID, activityID); err != nil {
		respondError(w, r, err, "activity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderActivities handles POST .../reorder.
func (s *Server) ReorderActivities(w http.ResponseWriter, r *http.Request) {
	tripID, itineraryID, ok := itineraryParams(w, r)
	if !ok {
		return
	}
	var req ReorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reordered, err := s.itineraries.ReorderActivities(r.Context(), tripID, itineraryID, req.Day, req.OrderedIDs)
	if err != nil {
		respondError(w, r, err, "itinerary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": reordered})
}

// ApplyIntent handles POST .../intents: a chat-derived modification encoded
// as a tagged union. The raw body goes through domain.DecodeIntent so the
// discriminator controls which payload shape is expected.
func (s *Server) ApplyIntent(w http.ResponseWriter, r *http.Request) {
	tripID, itineraryID, ok := itineraryParams(w, r)
	if !ok {
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, requestBody("request body too large"))
		return
	}
	intent, err := domain.DecodeIntent(body)
	if err != nil {
		respondError(w, r, err, "intent")
		return
	}

	activity, err := s.itineraries.ApplyIntent(r.Context(), tripID, itineraryID, intent)
	if err != nil {
		respondError(w, r, err, "activity")
		return
	}

	if intent.Kind() == domain.IntentRemove {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

// itineraryParams parses the trip and itinerary path IDs shared by every
// itinerary endpoint.
func itineraryParams(w http.ResponseWriter, r *http.Request) (tripID, itineraryID uuid.UUID, ok bool) {
	tripID, ok = uuidParam(w, r, "tripID", "trip")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	itineraryID, ok = uuidParam(w, r, "itineraryID", "itinerary")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return tripID, itineraryID, true
}
