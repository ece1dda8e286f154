// Package notify contains the concrete notification channel transports:
// mobile push, web push, and the persisted in-app record. Each channel sends
// independently and reports its own outcome; the broadcaster aggregates them.
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

const fcmDefaultEndpoint = "https://fcm.googleapis.com/fcm/send"

// Fixed attention profile applied to urgent mobile pushes.
const (
	urgentSound   = "dispatch_alert"
	urgentVibrate = "200,100,200,100,200"
)

// MobilePushChannel delivers payloads to partner devices through the FCM
// HTTP endpoint. An invalid or unregistered token is a per-attempt failure,
// never fatal to the broadcast.
type MobilePushChannel struct {
	endpoint  string
	serverKey string
	client    *http.Client
	logger    zerolog.Logger
}

func NewMobilePushChannel(endpoint, serverKey string, client *http.Client, logger zerolog.Logger) *MobilePushChannel {
	if endpoint == "" {
		endpoint = fcmDefaultEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &MobilePushChannel{endpoint: endpoint, serverKey: serverKey, client: client, logger: logger}
}

func (c *MobilePushChannel) Kind() domain.ChannelKind { return domain.ChannelMobilePush }

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound,omitempty"`
}

type fcmMessage struct {
	To           string            `json:"to"`
	Priority     string            `json:"priority"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmResult struct {
	Error string `json:"error"`
}

type fcmResponse struct {
	Failure int         `json:"failure"`
	Results []fcmResult `json:"results"`
}

// Send posts one message to FCM. Urgent payloads get high delivery priority
// and the fixed sound/vibration profile.
func (c *MobilePushChannel) Send(ctx context.Context, target string, payload domain.NotificationPayload) error {
	msg := fcmMessage{
		To:       target,
		Priority: "normal",
		Notification: fcmNotification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: cloneData(payload.Data),
	}
	msg.Data["kind"] = string(payload.Kind)
	if payload.Urgent {
		msg.Priority = "high"
		msg.Notification.Sound = urgentSound
		msg.Data["vibrate"] = urgentVibrate
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("fcm: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("fcm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fcm: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fcm: unexpected status %d", resp.StatusCode)
	}

	// FCM reports invalid tokens inside a 200 body.
	var parsed fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("fcm: decode response: %w", err)
	}
	if parsed.Failure > 0 {
		reason := "unknown"
		if len(parsed.Results) > 0 && parsed.Results[0].Error != "" {
			reason = parsed.Results[0].Error
		}
		return fmt.Errorf("fcm: delivery failed: %s", reason)
	}

	return nil
}

func cloneData(data map[string]string) map[string]string {
	out := make(map[string]string, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	return out
}
