// Package auth issues and verifies the signed device tokens that gate the
// API. There are no user accounts — a device exchanges its installation ID
// for a token once and refreshes it when it expires.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verify for any token that does not parse,
// fails signature verification, or has expired.
var ErrInvalidToken = errors.New("invalid token")

// deviceClaims is the JWT payload: the registered claims plus the device
// installation ID the token was issued to.
type deviceClaims struct {
	DeviceID string `json:"device_id"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies device tokens with a shared HMAC secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens constructs a Tokens signer. ttl is how long issued tokens live.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given device ID.
func (t *Tokens) Issue(deviceID string) (string, error) {
	now := time.Now()
	claims := deviceClaims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tomo",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Tokens.Issue: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the device ID it was
// issued to. Any failure maps to ErrInvalidToken — callers never need to
// distinguish why a token was rejected.
func (t *Tokens) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &deviceClaims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*deviceClaims)
	if !ok || claims.DeviceID == "" {
		return "", ErrInvalidToken
	}
	return claims.DeviceID, nil
}
