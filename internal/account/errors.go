// ABOUTME: Error taxonomy for account operations
// ABOUTME: Domain failures the API layer maps onto HTTP statuses

package account

import "errors"

var (
	// ErrValidation means required input was missing or malformed. The
	// store is never touched on a validation failure.
	ErrValidation = errors.New("invalid request data")

	// ErrInvalidCredentials covers both "no such user" and "wrong
	// password" so login responses cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateEmail means the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)
