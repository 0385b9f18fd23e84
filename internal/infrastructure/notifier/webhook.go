package notifier

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type WebhookPayload struct {
	PaymentID   string `json:"payment_id"`
	ServiceName string `json:"service_name"`
	Status      string `json:"status"`
	Amount      string `json:"amount"`
	Chain       string `json:"chain,omitempty"`
	TxHash      string `json:"tx_hash,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// WebhookNotifier delivers status-change callbacks to merchant endpoints.
// Delivery is at-least-once attempted and fire-and-forget: failures are
// logged, never surfaced to the settlement path.
type WebhookNotifier struct {
	client      *http.Client
	maxAttempts int
	backoff     time.Duration
}

func NewWebhookNotifier() *WebhookNotifier {
	return &WebhookNotifier{
		client:      &http.Client{Timeout: 5 * time.Second},
		maxAttempts: 3,
		backoff:     2 * time.Second,
	}
}

func (n *WebhookNotifier) SendCallback(callbackURL string, payload WebhookPayload) {
	go n.deliver(callbackURL, payload)
}

func (n *WebhookNotifier) deliver(callbackURL string, payload WebhookPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal webhook payload", "payment_id", payload.PaymentID, "error", err.Error())
		return
	}

	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(time.Duration(attempt-1) * n.backoff)
		}

		resp, err := n.client.Post(callbackURL, "application/json", bytes.NewReader(body))
		if err != nil {
			slog.Warn("webhook attempt failed", "url", callbackURL, "attempt", attempt, "error", err.Error())
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			slog.Info("webhook delivered", "url", callbackURL, "payment_id", payload.PaymentID, "attempt", attempt)
			return
		}
		slog.Warn("webhook returned non-2xx", "url", callbackURL, "attempt", attempt, "status", resp.StatusCode)
	}

	slog.Error("webhook delivery exhausted", "url", callbackURL, "payment_id", payload.PaymentID, "attempts", n.maxAttempts)
}
