package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"fractal-respect-game/internal/domain/model"
	"fractal-respect-game/internal/domain/ports/adapter"
)

var _ adapter.Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier POSTs each event as a JSON envelope to a configured
// endpoint (chat-bridge, dashboard). Failures are logged and dropped; the
// engine never waits on or retries a webhook.
type WebhookNotifier struct {
	url    string
	client *http.Client
	log    *zerolog.Logger
}

func NewWebhookNotifier(url string, logger *zerolog.Logger) *WebhookNotifier {
	l := logger.With().Str("component", "webhook_notifier").Logger()
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    &l,
	}
}

type webhookEvent struct {
	Event   string      `json:"event"`
	SentAt  time.Time   `json:"sent_at"`
	Payload interface{} `json:"payload"`
}

func (n *WebhookNotifier) RoundResolved(ctx context.Context, view model.SessionView, level int, winnerID string) {
	n.post(ctx, "round_resolved", struct {
		Session  model.SessionView `json:"session"`
		Level    int               `json:"level"`
		WinnerID string            `json:"winner_id"`
	}{view, level, winnerID})
}

func (n *WebhookNotifier) SessionCompleted(ctx context.Context, result model.CompletionResult) {
	n.post(ctx, "session_completed", result)
}

func (n *WebhookNotifier) SessionAborted(ctx context.Context, view model.SessionView) {
	n.post(ctx, "session_aborted", view)
}

func (n *WebhookNotifier) post(ctx context.Context, event string, payload interface{}) {
	body, err := json.Marshal(webhookEvent{Event: event, SentAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		n.log.Error().Err(err).Str("event", event).Msg("marshal webhook event")
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.log.Error().Err(err).Str("event", event).Msg("build webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Warn().Err(err).Str("event", event).Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.log.Warn().Str("event", event).Err(fmt.Errorf("status %d", resp.StatusCode)).Msg("webhook rejected")
	}
}
