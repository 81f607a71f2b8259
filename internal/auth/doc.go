// Package auth implements the credential primitives for orbi-auth: password
// hashing and verification, the signed admin-session token envelope, and the
// configuration-backed admin login gate.
//
// All secret comparisons in this package are constant-time. Password digests
// are PBKDF2-SHA256 with 120000 iterations; legacy salted-SHA256 digests from
// the first deployment remain verifiable behind a per-user scheme tag so old
// accounts can still log in (and are upgraded on the way through).
package auth
