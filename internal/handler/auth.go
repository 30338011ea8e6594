package handler

import "net/http"

// DeviceTokenRequest is the body of POST /auth/device.
type DeviceTokenRequest struct {
	DeviceID string `json:"device_id" validate:"required"`
}

// DeviceTokenResponse carries the signed token back to the device.
type DeviceTokenResponse struct {
	Token string `json:"token"`
}

// IssueDeviceToken handles POST /auth/device. A device exchanges its
// installation ID for a bearer token; there is no password step because
// there are no accounts.
func (s *Server) IssueDeviceToken(w http.ResponseWriter, r *http.Request) {
	var req DeviceTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := s.tokens.Issue(req.DeviceID)
	if err != nil {
		respondError(w, r, err, "token")
		return
	}
	writeJSON(w, http.StatusOK, DeviceTokenResponse{Token: token})
}
