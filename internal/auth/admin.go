// ABOUTME: Admin login gate comparing submitted credentials against configuration
// ABOUTME: Distinguishes misconfiguration (operator problem) from bad credentials

package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

// Admin login errors. ErrAdminNotConfigured must stay distinct from
// ErrAdminDenied: operators need to tell "the server has no admin account"
// apart from "someone typed the wrong password".
var (
	ErrAdminNotConfigured = errors.New("admin not configured")
	ErrAdminDenied        = errors.New("admin access denied")
)

// AdminGate authenticates the single configured admin account and issues
// session tokens for it. It is not a stored-credential path: the reference
// values come from configuration, loaded once at startup.
type AdminGate struct {
	email    string // already lowercased
	password string
	signer   *Signer
}

// NewAdminGate creates an admin gate. Email and password are the configured
// admin credentials; signer must be non-nil for Login to succeed, but a gate
// with a nil signer is still constructable so the distinction surfaces as
// ErrAdminNotConfigured at login time rather than a nil-pointer at startup.
func NewAdminGate(email, password string, signer *Signer) *AdminGate {
	return &AdminGate{
		email:    strings.ToLower(strings.TrimSpace(email)),
		password: password,
		signer:   signer,
	}
}

// Login verifies the submitted credentials and returns a signed admin token.
// The email comparison is case-normalized (emails are not secret); the
// password comparison is constant-time.
func (g *AdminGate) Login(email, password string) (string, error) {
	if g.email == "" || g.password == "" {
		return "", ErrAdminNotConfigured
	}
	// A dedicated signing secret is required; the admin password is never
	// reused as a signing key.
	if g.signer == nil {
		return "", ErrAdminNotConfigured
	}

	email = strings.ToLower(strings.TrimSpace(email))

	emailOK := email == g.email
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) == 1
	if !emailOK || !passwordOK {
		return "", ErrAdminDenied
	}

	return g.signer.Sign(NewAdminPayload(email))
}

// VerifyToken checks an admin session token and returns its payload.
func (g *AdminGate) VerifyToken(token string) (*TokenPayload, error) {
	if g.signer == nil {
		return nil, ErrAdminNotConfigured
	}
	return g.signer.Verify(token)
}
