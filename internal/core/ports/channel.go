package ports

import (
	"context"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
)

// NotificationChannel is one transport capable of delivering a payload to a
// target token. Implementations send independently and report their own
// outcome; a failed send is per-attempt data for the broadcaster, never a
// reason to abort the other channels.
type NotificationChannel interface {
	Kind() domain.ChannelKind

	// Send delivers the payload to the target. The caller bounds ctx with the
	// per-channel timeout; implementations must honour cancellation so one
	// hung transport cannot stall a broadcast.
	Send(ctx context.Context, target string, payload domain.NotificationPayload) error
}
