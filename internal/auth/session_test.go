// internal/auth/session_test.go
package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	Init()

	id, token, err := NewSessionToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := VerifySessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	Init()

	_, err := VerifySessionToken("not-a-jwt")
	require.Error(t, err)

	// A token signed under a discarded key pair no longer verifies.
	stale, err := CreateSessionToken(uuid.New())
	require.NoError(t, err)
	Init() // rotate keys
	_, err = VerifySessionToken(stale)
	require.Error(t, err)
}
