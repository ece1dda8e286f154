package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
)

const webPushTTLSeconds = "120"

// WebPushChannel delivers payloads to browser subscriptions through the push
// gateway. The gateway owns subscription decryption; this channel speaks a
// plain JSON relay with the standard TTL/Urgency hints. A missing or expired
// subscription is a per-attempt failure, not a system failure.
type WebPushChannel struct {
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

func NewWebPushChannel(endpoint string, client *http.Client, logger zerolog.Logger) *WebPushChannel {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebPushChannel{endpoint: endpoint, client: client, logger: logger}
}

func (c *WebPushChannel) Kind() domain.ChannelKind { return domain.ChannelWebPush }

type webPushMessage struct {
	Subscription string            `json:"subscription"`
	Title        string            `json:"title"`
	Body         string            `json:"body"`
	Kind         string            `json:"kind"`
	Data         map[string]string `json:"data,omitempty"`
}

func (c *WebPushChannel) Send(ctx context.Context, target string, payload domain.NotificationPayload) error {
	if c.endpoint == "" {
		return fmt.Errorf("webpush: no gateway endpoint configured")
	}

	body, err := json.Marshal(webPushMessage{
		Subscription: target,
		Title:        payload.Title,
		Body:         payload.Body,
		Kind:         string(payload.Kind),
		Data:         payload.Data,
	})
	if err != nil {
		return fmt.Errorf("webpush: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webpush: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("TTL", webPushTTLSeconds)
	if payload.Urgent {
		req.Header.Set("Urgency", "high")
	} else {
		req.Header.Set("Urgency", "normal")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webpush: send: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("webpush: subscription expired (status %d)", resp.StatusCode)
	default:
		return fmt.Errorf("webpush: unexpected status %d", resp.StatusCode)
	}
}
