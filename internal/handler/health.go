package handler

import "net/http"

// Health handles GET /healthz. It reports process liveness only; it does not
// touch the database.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
