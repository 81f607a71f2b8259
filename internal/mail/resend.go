// ABOUTME: Outbound email delivery for reset codes via the Resend API
// ABOUTME: Best-effort transport; failures are logged by callers, never surfaced to users

package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

// Notifier delivers a reset code to an email address. Implementations are
// best-effort: the caller treats failures as log-only.
type Notifier interface {
	SendResetCode(ctx context.Context, to, code string) error
}

// ResendNotifier sends reset-code emails through the Resend HTTP API.
type ResendNotifier struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewNotifier returns a Resend-backed notifier, or a no-op notifier when
// the API key or from address is not configured so development setups work
// without mail credentials.
func NewNotifier(apiKey, from string) Notifier {
	logger := slog.Default().With("component", "mail")

	if apiKey == "" || from == "" {
		logger.Warn("mail not configured, reset codes will not be delivered")
		return NopNotifier{}
	}

	return &ResendNotifier{
		apiKey:   apiKey,
		from:     from,
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

type resendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// SendResetCode posts a reset-code email through Resend.
func (n *ResendNotifier) SendResetCode(ctx context.Context, to, code string) error {
	html := fmt.Sprintf(`
		<div style="font-family:Arial,sans-serif">
			<h2>OrbiPlay - Código de recuperação</h2>
			<p>Seu código é:</p>
			<div style="font-size:28px;letter-spacing:6px;font-weight:700">%s</div>
			<p>Ele expira em 10 minutos.</p>
		</div>
	`, code)

	body, err := json.Marshal(resendRequest{
		From:    n.from,
		To:      to,
		Subject: "Seu código OrbiPlay",
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("encoding mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Keep the provider's explanation in the logs; the message body is
		// the only place Resend reports rejection reasons.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		n.logger.Error("mail send failed", "status", resp.StatusCode, "detail", string(detail))
		return fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}

	n.logger.Debug("sent reset code email", "to", to)
	return nil
}

// NopNotifier drops all messages. Used when mail is not configured.
type NopNotifier struct{}

// SendResetCode discards the message.
func (NopNotifier) SendResetCode(ctx context.Context, to, code string) error {
	return nil
}
