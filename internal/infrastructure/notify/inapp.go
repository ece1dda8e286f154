package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
	"github.com/sirahabazaar/dispatch-system/internal/core/ports"
)

// InAppChannel writes the payload as a persisted notification record. It is
// the fallback of record: when both push channels fail, the row still shows
// the message on the partner's next visit. The target is the recipient's
// user id rather than a device token.
type InAppChannel struct {
	store  ports.NotificationStore
	logger zerolog.Logger
}

func NewInAppChannel(store ports.NotificationStore, logger zerolog.Logger) *InAppChannel {
	return &InAppChannel{store: store, logger: logger}
}

func (c *InAppChannel) Kind() domain.ChannelKind { return domain.ChannelInApp }

func (c *InAppChannel) Send(ctx context.Context, target string, payload domain.NotificationPayload) error {
	record := &domain.NotificationRecord{
		UserID:    target,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.store.CreateRecord(ctx, record); err != nil {
		return fmt.Errorf("inapp: persist record: %w", err)
	}
	return nil
}
