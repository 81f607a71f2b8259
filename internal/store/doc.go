// Package store provides persistent storage for orbi-auth using SQLite.
//
// # Architecture
//
// The store package is interface-driven:
//
//   - UserStore: user records (email, password digest, salt, hash scheme)
//   - ResetCodeStore: password-reset code rows keyed by email
//   - Store: the combined interface consumed by the account service
//
// SQLiteStore is the production implementation (modernc.org/sqlite, no cgo).
// MockStore is an in-memory implementation for tests.
//
// # Ownership
//
// User and ResetCode rows are exclusively owned by the store; callers hold
// no copies beyond a single request. Reset-code supersession is a single
// upsert keyed by email and attempt accounting is an atomic increment, so
// concurrent requests for the same email cannot leave duplicate or torn rows.
package store
