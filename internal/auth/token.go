// ABOUTME: Signed token envelope for admin sessions ("body.signature" scheme)
// ABOUTME: Authenticates that the payload was produced by a holder of the secret

package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
)

// TokenPayload is the claim set carried inside an admin session token.
// There is deliberately no expiry claim: the token format is a minimal
// signed envelope, and callers decide how long to honor it.
type TokenPayload struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	IssuedAt int64  `json:"ts"` // unix milliseconds
}

// Signer produces and verifies admin session tokens. A Signer is only
// constructed with a dedicated signing secret; there is no fallback to
// other configured credentials.
type Signer struct {
	secret string
}

// NewSigner creates a Signer with the given dedicated secret.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("signing secret is required")
	}
	return &Signer{secret: secret}, nil
}

// Sign serializes the payload and returns a "body.signature" token: the
// body is base64url(JSON payload), the signature is the digest of
// body|secret.
func (s *Signer) Sign(payload TokenPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding token payload: %w", err)
	}

	body := base64.RawURLEncoding.EncodeToString(data)
	sig := saltedDigest(body, s.secret)
	return body + "." + sig, nil
}

// Verify checks the signature over the body and decodes the payload.
// Returns ErrInvalidToken for any malformed or mis-signed input.
func (s *Signer) Verify(token string) (*TokenPayload, error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok || body == "" || sig == "" {
		return nil, ErrInvalidToken
	}

	expected := saltedDigest(body, s.secret)
	if !constantTimeEquals(expected, sig) {
		return nil, ErrInvalidToken
	}

	data, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var payload TokenPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, ErrInvalidToken
	}

	return &payload, nil
}

// NewAdminPayload builds the claim set for a freshly authenticated admin.
func NewAdminPayload(email string) TokenPayload {
	return TokenPayload{
		Email:    email,
		Role:     "admin",
		IssuedAt: time.Now().UnixMilli(),
	}
}
