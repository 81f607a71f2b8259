// ABOUTME: Password hashing with PBKDF2-SHA256 and legacy salted-SHA256 verification
// ABOUTME: Constant-time verification; decode failures fold into a mismatch

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/orbiplay/orbi-auth/internal/store"
)

const (
	// pbkdf2Iterations matches the production parameter set; changing it
	// requires a new scheme tag, not an edit here.
	pbkdf2Iterations = 120000
	pbkdf2KeyLen     = 32
	saltLen          = 16
)

// NewSalt returns a fresh random 16-byte salt, base64-encoded.
func NewSalt() (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// Derive computes the PBKDF2-SHA256 digest of a password under a
// base64-encoded salt. The digest is returned base64-encoded.
func Derive(password, saltB64 string) (string, error) {
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return "", fmt.Errorf("decoding salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, pbkdf2KeyLen, sha256.New)
	return base64.StdEncoding.EncodeToString(key), nil
}

// Verify reports whether a password matches the stored digest under the
// given scheme tag. Any decode failure or unknown scheme is a mismatch,
// never an error: a caller cannot distinguish a corrupt row from a wrong
// password, and neither can a remote attacker.
func Verify(password, saltB64, expectedDigest, scheme string) bool {
	var derived string

	switch scheme {
	case store.SchemePBKDF2:
		var err error
		derived, err = Derive(password, saltB64)
		if err != nil {
			return false
		}
	case store.SchemeLegacySHA:
		derived = saltedDigest(password, saltB64)
	default:
		return false
	}

	return constantTimeEquals(derived, expectedDigest)
}

// saltedDigest computes base64(sha256(a + "|" + b)). It is both the legacy
// password scheme (salt treated as an opaque string, it was a UUID) and the
// signature primitive for the token envelope.
func saltedDigest(a, b string) string {
	sum := sha256.Sum256([]byte(a + "|" + b))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// constantTimeEquals compares two strings in time independent of where they
// first differ. Unequal lengths return immediately; generated digests have a
// fixed length, so length is not secret.
func constantTimeEquals(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
