package handler

import "net/http"

// ListActiveNotifications handles GET /trips/{tripID}/notifications.
// Returns only live notifications — not dismissed, not expired, not
// scheduled for the future — sorted urgent-first.
func (s *Server) ListActiveNotifications(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}

	ns, err := s.notifications.Active(r.Context(), tripID)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": ns})
}

// ListDismissedNotifications handles GET /trips/{tripID}/notifications/dismissed.
// Returns the most recently dismissed notifications, newest first.
func (s *Server) ListDismissedNotifications(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}

	ns, err := s.notifications.Dismissed(r.Context(), tripID)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": ns})
}

// HasUnreadNotifications handles GET /trips/{tripID}/notifications/unread.
// Drives the badge on the device's notification bell.
func (s *Server) HasUnreadNotifications(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}

	unread, err := s.notifications.HasUnread(r.Context(), tripID)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"unread": unread})
}

// DismissNotification handles POST /trips/{tripID}/notifications/{notificationID}/dismiss.
// Dismissing twice is a no-op, not an error.
func (s *Server) DismissNotification(w http.ResponseWriter, r *http.Request) {
	if _, ok := uuidParam(w, r, "tripID", "trip"); !ok {
		return
	}
	notificationID, ok := uuidParam(w, r, "notificationID", "notification")
	if !ok {
		return
	}

	if err := s.notifications.Dismiss(r.Context(), notificationID); err != nil {
		respondError(w, r, err, "notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DismissAllNotifications handles POST /trips/{tripID}/notifications/dismiss-all.
func (s *Server) DismissAllNotifications(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}

	if err := s.notifications.DismissAll(r.Context(), tripID); err != nil {
		respondError(w, r, err, "trip")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
