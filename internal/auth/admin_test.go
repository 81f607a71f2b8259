// ABOUTME: Tests for the admin login gate
// ABOUTME: Covers misconfiguration vs denial, case-normalized email, token issuance

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(t *testing.T) *AdminGate {
	t.Helper()

	signer, err := NewSigner("admin-signing-secret")
	require.NoError(t, err)
	return NewAdminGate("Admin@Example.com", "s3cret-admin-pass", signer)
}

func TestAdminLogin_Success(t *testing.T) {
	gate := newTestGate(t)

	token, err := gate.Login("admin@example.com", "s3cret-admin-pass")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	payload, err := gate.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", payload.Email)
	assert.Equal(t, "admin", payload.Role)
}

func TestAdminLogin_EmailCaseInsensitive(t *testing.T) {
	gate := newTestGate(t)

	// Configured email was mixed-case; submitted email in another case
	_, err := gate.Login("  ADMIN@EXAMPLE.COM ", "s3cret-admin-pass")
	assert.NoError(t, err)
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	gate := newTestGate(t)

	_, err := gate.Login("admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrAdminDenied)
}

func TestAdminLogin_WrongEmail(t *testing.T) {
	gate := newTestGate(t)

	_, err := gate.Login("other@example.com", "s3cret-admin-pass")
	assert.ErrorIs(t, err, ErrAdminDenied)
}

func TestAdminLogin_NotConfigured(t *testing.T) {
	signer, err := NewSigner("secret")
	require.NoError(t, err)

	for _, gate := range []*AdminGate{
		NewAdminGate("", "", signer),
		NewAdminGate("admin@example.com", "", signer),
		NewAdminGate("", "password", signer),
	} {
		_, err := gate.Login("admin@example.com", "password")
		assert.ErrorIs(t, err, ErrAdminNotConfigured)
	}
}

func TestAdminLogin_NoSigningSecret(t *testing.T) {
	// Credentials configured but no dedicated signing secret: this is a
	// server misconfiguration, not an authentication failure.
	gate := NewAdminGate("admin@example.com", "password", nil)

	_, err := gate.Login("admin@example.com", "password")
	assert.ErrorIs(t, err, ErrAdminNotConfigured)
}
