// ABOUTME: Tests for the account service flows
// ABOUTME: Covers registration, login, reset request/confirm, and admin login

package account

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbiplay/orbi-auth/internal/auth"
	"github.com/orbiplay/orbi-auth/internal/reset"
	"github.com/orbiplay/orbi-auth/internal/store"
)

// captureNotifier records sent codes for assertions.
type captureNotifier struct {
	mu    sync.Mutex
	sent  []string // recipient addresses
	codes map[string]string
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{codes: make(map[string]string)}
}

func (c *captureNotifier) SendResetCode(ctx context.Context, to, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, to)
	c.codes[to] = code
	return nil
}

func (c *captureNotifier) sentTo(to string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	code, ok := c.codes[to]
	return code, ok
}

func legacySHA(t *testing.T, password, salt string) string {
	t.Helper()
	sum := sha256.Sum256([]byte(password + "|" + salt))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func newTestService(t *testing.T) (*Service, *store.MockStore, *captureNotifier) {
	t.Helper()

	mock := store.NewMockStore()
	notifier := newCaptureNotifier()
	signer, err := auth.NewSigner("test-signing-secret")
	require.NoError(t, err)
	gate := auth.NewAdminGate("admin@orbiplay.example", "admin-pass", signer)

	svc, err := NewService(mock, reset.NewManager(mock), notifier, gate)
	require.NoError(t, err)
	return svc, mock, notifier
}

func TestRegisterAndLogin(t *testing.T) {
	svc, mock, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "Alice@Example.com", "password123", "Alice"))

	// Stored lowercase with a PBKDF2 digest, never the plaintext
	user, err := mock.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, store.SchemePBKDF2, user.HashScheme)
	assert.NotContains(t, user.PassHash, "password123")
	assert.NotEmpty(t, user.ID)

	name, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Register(ctx, "", "password", ""), ErrValidation)
	assert.ErrorIs(t, svc.Register(ctx, "a@x.com", "", ""), ErrValidation)
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "a@x.com", "password", ""))
	assert.ErrorIs(t, svc.Register(ctx, "A@X.COM", "other", ""), ErrDuplicateEmail)
}

func TestLogin_UniformFailure(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "a@x.com", "password", ""))

	_, errWrongPass := svc.Login(ctx, "a@x.com", "not-the-password")
	_, errNoUser := svc.Login(ctx, "ghost@x.com", "password")

	assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, errNoUser, ErrInvalidCredentials)
}

func TestLogin_UpgradesLegacyHash(t *testing.T) {
	svc, mock, _ := newTestService(t)
	ctx := context.Background()

	// Seed a row under the legacy scheme, the way the first deployment
	// wrote it: base64(sha256(password + "|" + salt)), UUID salt.
	legacySalt := "2f1c5a80-7a33-4c42-ae4e-90fb67cdd42f"
	require.NoError(t, mock.CreateUser(ctx, &store.User{
		ID:         "legacy-1",
		Email:      "old@x.com",
		Name:       "Old Timer",
		PassHash:   legacySHA(t, "hunter2", legacySalt),
		Salt:       legacySalt,
		HashScheme: store.SchemeLegacySHA,
	}))

	name, err := svc.Login(ctx, "old@x.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "Old Timer", name)

	// The row is now PBKDF2 and still logs in
	user, err := mock.GetUserByEmail(ctx, "old@x.com")
	require.NoError(t, err)
	assert.Equal(t, store.SchemePBKDF2, user.HashScheme)
	assert.NotEqual(t, legacySalt, user.Salt)

	_, err = svc.Login(ctx, "old@x.com", "hunter2")
	assert.NoError(t, err)
}

func TestRequestReset_SendsCodeForExistingUser(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "a@x.com", "password", ""))
	require.NoError(t, svc.RequestReset(ctx, "a@x.com"))
	svc.Wait()

	code, ok := notifier.sentTo("a@x.com")
	require.True(t, ok, "mail should be sent for an existing account")
	assert.Len(t, code, reset.CodeLength)
}

func TestRequestReset_UnknownEmailSucceedsSilently(t *testing.T) {
	svc, mock, notifier := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestReset(ctx, "ghost@x.com"))
	svc.Wait()

	_, ok := notifier.sentTo("ghost@x.com")
	assert.False(t, ok, "no mail for unknown accounts")

	// The code row is still stored so the response shape, timing, and
	// store traffic match the existing-user path.
	_, err := mock.GetResetCode(ctx, "ghost@x.com")
	assert.NoError(t, err)
}

func TestRequestReset_MissingEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	assert.ErrorIs(t, svc.RequestReset(context.Background(), "  "), ErrValidation)
}

func TestResetPassword_FullFlow(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "a@x.com", "oldpassword", ""))
	require.NoError(t, svc.RequestReset(ctx, "a@x.com"))
	svc.Wait()

	code, ok := notifier.sentTo("a@x.com")
	require.True(t, ok)

	require.NoError(t, svc.ResetPassword(ctx, "a@x.com", code, "newpassword"))

	// Old password dead, new password live
	_, err := svc.Login(ctx, "a@x.com", "oldpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "a@x.com", "newpassword")
	assert.NoError(t, err)

	// Code is single-use
	err = svc.ResetPassword(ctx, "a@x.com", code, "anotherpassword")
	assert.ErrorIs(t, err, reset.ErrInvalidCode)
}

func TestResetPassword_ShortPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.ResetPassword(context.Background(), "a@x.com", "123456", "short")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResetPassword_WrongCode(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "a@x.com", "password", ""))
	require.NoError(t, svc.RequestReset(ctx, "a@x.com"))
	svc.Wait()

	code, _ := notifier.sentTo("a@x.com")
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	err := svc.ResetPassword(ctx, "a@x.com", wrong, "newpassword")
	assert.ErrorIs(t, err, reset.ErrInvalidCode)

	// The correct code still works afterwards
	assert.NoError(t, svc.ResetPassword(ctx, "a@x.com", code, "newpassword"))
}

func TestResetPassword_ValidCodeForUnregisteredEmail(t *testing.T) {
	svc, mock, _ := newTestService(t)
	ctx := context.Background()

	// request-reset stored a row even though no account exists
	require.NoError(t, svc.RequestReset(ctx, "ghost@x.com"))
	svc.Wait()

	_, err := mock.GetResetCode(ctx, "ghost@x.com")
	require.NoError(t, err)

	// The plaintext code is unrecoverable here, so submit a guess and
	// then check the account cannot be conjured into existence either way.
	err = svc.ResetPassword(ctx, "ghost@x.com", "123456", "newpassword")
	assert.Error(t, err)
	_, err = mock.GetUserByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAdminLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	token, err := svc.AdminLogin(ctx, "admin@orbiplay.example", "admin-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.AdminLogin(ctx, "admin@orbiplay.example", "wrong")
	assert.ErrorIs(t, err, auth.ErrAdminDenied)
}
