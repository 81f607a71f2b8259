// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides user/reset-code persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Bound waits on a locked database instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			pass_hash TEXT NOT NULL,
			salt TEXT NOT NULL,
			hash_scheme TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS reset_codes (
			email TEXT PRIMARY KEY,
			code_hash TEXT NOT NULL,
			expires_at DATETIME NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new user record.
// Returns ErrDuplicateUser if the email is already registered.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (id, email, name, pass_hash, salt, hash_scheme, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PassHash,
		user.Salt,
		user.HashScheme,
		user.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Debug("created user", "id", user.ID, "email", user.Email)
	return nil
}

// GetUserByEmail retrieves a user by email.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, name, pass_hash, salt, hash_scheme, created_at
		FROM users
		WHERE email = ?
	`

	var user User
	var createdAt string

	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PassHash,
		&user.Salt,
		&user.HashScheme,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	if parsed, err := time.Parse(time.RFC3339, createdAt); err != nil {
		s.logger.Warn("failed to parse user created_at", "id", user.ID, "error", err)
	} else {
		user.CreatedAt = parsed
	}

	return &user, nil
}

// UpdateCredentials replaces a user's password hash, salt, and hash scheme.
// Returns ErrNotFound if the user doesn't exist.
func (s *SQLiteStore) UpdateCredentials(ctx context.Context, email, passHash, salt, scheme string) error {
	query := `
		UPDATE users
		SET pass_hash = ?, salt = ?, hash_scheme = ?
		WHERE email = ?
	`

	result, err := s.db.ExecContext(ctx, query, passHash, salt, scheme, email)
	if err != nil {
		return fmt.Errorf("updating credentials: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated credentials", "email", email, "scheme", scheme)
	return nil
}

// UpsertResetCode inserts or replaces the reset-code row for an email.
// A single statement so a concurrent duplicate request cannot observe a
// deleted-but-not-reinserted state.
func (s *SQLiteStore) UpsertResetCode(ctx context.Context, code *ResetCode) error {
	query := `
		INSERT INTO reset_codes (email, code_hash, expires_at, attempts)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			code_hash = excluded.code_hash,
			expires_at = excluded.expires_at,
			attempts = excluded.attempts
	`

	_, err := s.db.ExecContext(ctx, query,
		code.Email,
		code.CodeHash,
		code.ExpiresAt.UTC().Format(time.RFC3339),
		code.Attempts,
	)
	if err != nil {
		return fmt.Errorf("upserting reset code: %w", err)
	}

	s.logger.Debug("stored reset code", "email", code.Email, "expires_at", code.ExpiresAt)
	return nil
}

// GetResetCode retrieves the reset-code row for an email.
// Returns ErrNotFound if no row exists.
func (s *SQLiteStore) GetResetCode(ctx context.Context, email string) (*ResetCode, error) {
	query := `
		SELECT email, code_hash, expires_at, attempts
		FROM reset_codes
		WHERE email = ?
	`

	var code ResetCode
	var expiresAt string

	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&code.Email,
		&code.CodeHash,
		&expiresAt,
		&code.Attempts,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying reset code: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("parsing reset code expiry: %w", err)
	}
	code.ExpiresAt = parsed

	return &code, nil
}

// IncrementResetAttempts atomically increments the attempt counter for an
// email and returns the new count. Returns ErrNotFound if no row exists.
func (s *SQLiteStore) IncrementResetAttempts(ctx context.Context, email string) (int, error) {
	query := `
		UPDATE reset_codes
		SET attempts = attempts + 1
		WHERE email = ?
		RETURNING attempts
	`

	var attempts int
	err := s.db.QueryRowContext(ctx, query, email).Scan(&attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("incrementing reset attempts: %w", err)
	}

	return attempts, nil
}

// DeleteResetCode removes the reset-code row for an email.
// Deleting a missing row is not an error.
func (s *SQLiteStore) DeleteResetCode(ctx context.Context, email string) error {
	query := `DELETE FROM reset_codes WHERE email = ?`

	if _, err := s.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("deleting reset code: %w", err)
	}

	return nil
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
