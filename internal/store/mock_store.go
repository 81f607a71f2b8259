// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sync"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu         sync.RWMutex
	users      map[string]*User      // keyed by email
	resetCodes map[string]*ResetCode // keyed by email
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:      make(map[string]*User),
		resetCodes: make(map[string]*ResetCode),
	}
}

// CreateUser stores a new user.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.Email]; exists {
		return ErrDuplicateUser
	}

	// Make a copy to avoid external modification
	u := *user
	m.users[user.Email] = &u
	return nil
}

// GetUserByEmail retrieves a user by email.
func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[email]
	if !ok {
		return nil, ErrNotFound
	}

	u := *user
	return &u, nil
}

// UpdateCredentials replaces a user's password hash, salt, and scheme.
func (m *MockStore) UpdateCredentials(ctx context.Context, email, passHash, salt, scheme string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[email]
	if !ok {
		return ErrNotFound
	}

	user.PassHash = passHash
	user.Salt = salt
	user.HashScheme = scheme
	return nil
}

// UpsertResetCode inserts or replaces the reset-code row for an email.
func (m *MockStore) UpsertResetCode(ctx context.Context, code *ResetCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := *code
	m.resetCodes[code.Email] = &c
	return nil
}

// GetResetCode retrieves the reset-code row for an email.
func (m *MockStore) GetResetCode(ctx context.Context, email string) (*ResetCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	code, ok := m.resetCodes[email]
	if !ok {
		return nil, ErrNotFound
	}

	c := *code
	return &c, nil
}

// IncrementResetAttempts atomically increments the attempt counter.
func (m *MockStore) IncrementResetAttempts(ctx context.Context, email string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code, ok := m.resetCodes[email]
	if !ok {
		return 0, ErrNotFound
	}

	code.Attempts++
	return code.Attempts, nil
}

// DeleteResetCode removes the reset-code row for an email.
func (m *MockStore) DeleteResetCode(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.resetCodes, email)
	return nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

// Ensure MockStore implements Store.
var _ Store = (*MockStore)(nil)
