// ABOUTME: Tests for the Resend notifier
// ABOUTME: Uses httptest to verify request shape and failure handling

package mail

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestNotifier(endpoint string) *ResendNotifier {
	return &ResendNotifier{
		apiKey:   "test-key",
		from:     "OrbiPlay <no-reply@orbiplay.example>",
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   discardLogger(),
	}
}

func TestSendResetCode(t *testing.T) {
	var got resendRequest
	var auth, contentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	err := n.SendResetCode(context.Background(), "user@example.com", "482913")
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "OrbiPlay <no-reply@orbiplay.example>", got.From)
	assert.Equal(t, "user@example.com", got.To)
	assert.Contains(t, got.HTML, "482913")
}

func TestSendResetCode_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid from address"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	err := n.SendResetCode(context.Background(), "user@example.com", "482913")
	assert.Error(t, err)
}

func TestSendResetCode_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := newTestNotifier(srv.URL)
	err := n.SendResetCode(ctx, "user@example.com", "482913")
	assert.Error(t, err)
}

func TestNewNotifier_UnconfiguredIsNop(t *testing.T) {
	n := NewNotifier("", "")
	_, ok := n.(NopNotifier)
	assert.True(t, ok)

	assert.NoError(t, n.SendResetCode(context.Background(), "user@example.com", "123456"))
}
