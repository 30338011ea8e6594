package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// TokenVerifier validates a bearer token and returns the device ID it was
// issued to. Implemented by auth.Tokens.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// deviceIDKey is the context key the authenticated device ID is stored under.
type deviceIDKey struct{}

// DeviceID returns the authenticated device ID from the request context,
// or "" when the request did not pass through RequireAuth.
func DeviceID(ctx context.Context) string {
	id, _ := ctx.Value(deviceIDKey{}).(string)
	return id
}

// RequireAuth returns a middleware that rejects requests without a valid
// bearer token. Websocket clients cannot set headers from the browser, so
// a ?token= query parameter is accepted as a fallback.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			if token == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			deviceID, err := verifier.Verify(token)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), deviceIDKey{}, deviceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"code": "unauthorized", "message": message},
	})
}
