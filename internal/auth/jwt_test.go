package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomo-travel/tomo/backend/internal/auth"
)

func TestTokens_IssueAndVerify(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)

	signed, err := tokens.Issue("device-abc123")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	deviceID, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "device-abc123", deviceID)
}

func TestTokens_Verify_WrongSecret(t *testing.T) {
	issuer := auth.NewTokens("secret-one", time.Hour)
	verifier := auth.NewTokens("secret-two", time.Hour)

	signed, err := issuer.Issue("device-abc123")
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokens_Verify_Expired(t *testing.T) {
	tokens := auth.NewTokens("test-secret", -time.Minute)

	signed, err := tokens.Issue("device-abc123")
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokens_Verify_Garbage(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)

	_, err := tokens.Verify("not.a.jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokens_Verify_EmptyDeviceID(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour)

	// A token signed with the right secret but no device claim is rejected.
	signed, err := tokens.Issue("")
	require.NoError(t, err)

	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
