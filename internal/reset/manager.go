// ABOUTME: Reset-code lifecycle: issuance, validation, expiry and attempt limiting
// ABOUTME: Codes are 6-digit, single-use, hashed as digest(code|email), never stored in plaintext

package reset

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/orbiplay/orbi-auth/internal/store"
)

const (
	// CodeLength is the exact length of a reset code.
	CodeLength = 6

	// CodeTTL is how long an issued code stays valid.
	CodeTTL = 10 * time.Minute

	// MaxAttempts is the number of failed validations before a code locks.
	MaxAttempts = 5
)

// Validation errors. ErrInvalidCode is deliberately uniform: a missing row,
// a wrong code, and an email that never requested a reset are all the same
// failure to the caller, so responses cannot enumerate accounts.
var (
	ErrInvalidCode     = errors.New("invalid reset code")
	ErrExpiredCode     = errors.New("reset code expired")
	ErrTooManyAttempts = errors.New("too many reset attempts")
)

// Manager issues and validates password-reset codes backed by the store.
type Manager struct {
	codes  store.ResetCodeStore
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a reset-code manager.
func NewManager(codes store.ResetCodeStore) *Manager {
	return &Manager{
		codes:  codes,
		logger: slog.Default().With("component", "reset"),
		now:    time.Now,
	}
}

// Issue generates a fresh 6-digit code for an email, replacing any prior
// code for that email, and returns the plaintext code for delivery. The
// plaintext is never persisted.
func (m *Manager) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("generating reset code: %w", err)
	}

	row := &store.ResetCode{
		Email:     email,
		CodeHash:  codeDigest(code, email),
		ExpiresAt: m.now().Add(CodeTTL),
		Attempts:  0,
	}
	if err := m.codes.UpsertResetCode(ctx, row); err != nil {
		return "", fmt.Errorf("storing reset code: %w", err)
	}

	m.logger.Debug("issued reset code", "email", email, "expires_at", row.ExpiresAt)
	return code, nil
}

// Validate checks a submitted code against the stored record for an email.
// On success the record is left in place; the caller consumes it after the
// password update lands. A mismatch persists an attempt increment even
// though the operation fails.
func (m *Manager) Validate(ctx context.Context, email, submitted string) error {
	// Pure input validation: wrong-length or non-numeric input never
	// touches the store or the attempt counter.
	if !isWellFormedCode(submitted) {
		return ErrInvalidCode
	}

	row, err := m.codes.GetResetCode(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCode
		}
		return fmt.Errorf("loading reset code: %w", err)
	}

	if m.now().After(row.ExpiresAt) {
		return ErrExpiredCode
	}

	if row.Attempts >= MaxAttempts {
		return ErrTooManyAttempts
	}

	expected := codeDigest(submitted, email)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(row.CodeHash)) != 1 {
		if _, err := m.codes.IncrementResetAttempts(ctx, email); err != nil && !errors.Is(err, store.ErrNotFound) {
			m.logger.Warn("failed to record reset attempt", "email", email, "error", err)
		}
		return ErrInvalidCode
	}

	return nil
}

// Consume deletes the record for an email after a successful reset,
// making the code single-use.
func (m *Manager) Consume(ctx context.Context, email string) error {
	return m.codes.DeleteResetCode(ctx, email)
}

// generateCode returns a uniform 6-digit decimal code from a
// cryptographically strong source.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// codeDigest computes base64(sha256(code + "|" + email)).
func codeDigest(code, email string) string {
	sum := sha256.Sum256([]byte(code + "|" + email))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func isWellFormedCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
