// ABOUTME: Store interface and data types for orbi-auth persistence
// ABOUTME: Defines User, ResetCode structs and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateUser is returned when registering an email that already exists
var ErrDuplicateUser = errors.New("user already exists")

// Hash scheme tags stored per user record. Legacy rows predate the PBKDF2
// rollout and are upgraded in place on the next successful login.
const (
	SchemePBKDF2    = "pbkdf2-sha256-120000"
	SchemeLegacySHA = "sha256-v1"
)

// User represents a registered account. Email is the unique key and is
// always stored lowercase.
type User struct {
	ID         string
	Email      string
	Name       string
	PassHash   string // base64 digest
	Salt       string // base64 salt (opaque string for legacy rows)
	HashScheme string
	CreatedAt  time.Time
}

// ResetCode represents a pending password-reset code for an email.
// At most one row exists per email; a new request replaces any prior row.
// The email need not belong to a registered user.
type ResetCode struct {
	Email     string
	CodeHash  string // base64 digest of code|email
	ExpiresAt time.Time
	Attempts  int
}

// UserStore defines user record operations.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrDuplicateUser if the email
	// is already registered.
	CreateUser(ctx context.Context, user *User) error

	// GetUserByEmail returns the user for an email, or ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// UpdateCredentials replaces a user's password hash, salt, and scheme.
	// Returns ErrNotFound if no such user exists.
	UpdateCredentials(ctx context.Context, email, passHash, salt, scheme string) error
}

// ResetCodeStore defines reset-code record operations.
type ResetCodeStore interface {
	// UpsertResetCode inserts or replaces the reset code row for an email
	// in a single statement, resetting the attempt counter.
	UpsertResetCode(ctx context.Context, code *ResetCode) error

	// GetResetCode returns the reset code row for an email, or ErrNotFound.
	GetResetCode(ctx context.Context, email string) (*ResetCode, error)

	// IncrementResetAttempts atomically increments the attempt counter and
	// returns the new count. Returns ErrNotFound if no row exists.
	IncrementResetAttempts(ctx context.Context, email string) (int, error)

	// DeleteResetCode removes the row for an email. Deleting a missing row
	// is not an error.
	DeleteResetCode(ctx context.Context, email string) error
}

// Store combines all persistence operations required by the account service.
type Store interface {
	UserStore
	ResetCodeStore

	// Close releases the underlying database resources.
	Close() error
}
