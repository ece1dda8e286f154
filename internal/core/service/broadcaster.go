package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirahabazaar/dispatch-system/internal/api/metrics"
	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
	"github.com/sirahabazaar/dispatch-system/internal/core/ports"
)

const defaultChannelTimeout = 5 * time.Second

// BroadcastService fans one dispatch round out to every eligible partner
// through every channel the partner has registered. Sends run concurrently
// (fan-out, not fan-through) under a per-send timeout, so one unreachable
// transport can never stall the broadcast or the caller.
type BroadcastService struct {
	channels map[domain.ChannelKind]ports.NotificationChannel
	attempts ports.AttemptRepository
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewBroadcastService wires the channel implementations by kind. A timeout
// of zero falls back to the default of five seconds.
func NewBroadcastService(
	channels []ports.NotificationChannel,
	attempts ports.AttemptRepository,
	timeout time.Duration,
	logger zerolog.Logger,
) *BroadcastService {
	if timeout <= 0 {
		timeout = defaultChannelTimeout
	}
	byKind := make(map[domain.ChannelKind]ports.NotificationChannel, len(channels))
	for _, ch := range channels {
		byKind[ch.Kind()] = ch
	}
	return &BroadcastService{channels: byKind, attempts: attempts, timeout: timeout, logger: logger}
}

// Broadcast sends the round's message to every approved partner with at
// least one token. Partners with zero tokens are skipped, not failed — they
// were never reachable. One DeliveryAttempt is recorded per send regardless
// of outcome. Returns the aggregate result and the notified partner ids.
func (b *BroadcastService) Broadcast(ctx context.Context, round *domain.DispatchRound, partners []*domain.Partner) (ports.BroadcastResult, []string) {
	start := time.Now()
	defer func() { metrics.BroadcastDuration.Observe(time.Since(start).Seconds()) }()

	payload := roundPayload(round)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded = make(map[string]bool)
		failed    = make(map[string]bool)
	)

	var result ports.BroadcastResult
	notified := make([]string, 0, len(partners))

	for _, p := range partners {
		if !p.DispatchEligible() {
			continue
		}
		result.Attempted++
		notified = append(notified, p.ID)

		for _, tok := range p.Tokens {
			wg.Add(1)
			go func(partnerID string, tok domain.DeviceToken) {
				defer wg.Done()
				err := b.sendOne(ctx, round, partnerID, tok, payload)
				mu.Lock()
				if err == nil {
					succeeded[partnerID] = true
				} else {
					failed[partnerID] = true
				}
				mu.Unlock()
			}(p.ID, tok)
		}
	}
	wg.Wait()

	for _, id := range notified {
		if succeeded[id] {
			result.Delivered++
		} else if failed[id] {
			result.Failed++
		}
	}

	b.logger.Info().
		Str("round_id", round.ID).
		Str("order_id", round.OrderID).
		Int("attempted", result.Attempted).
		Int("delivered", result.Delivered).
		Int("failed", result.Failed).
		Bool("urgent", round.Urgent).
		Msg("round broadcast")

	metrics.BroadcastsTotal.WithLabelValues(strconv.FormatBool(round.Urgent)).Inc()
	return result, notified
}

// sendOne performs a single channel send under the per-send timeout and
// records the delivery attempt whatever the outcome.
func (b *BroadcastService) sendOne(ctx context.Context, round *domain.DispatchRound, partnerID string, tok domain.DeviceToken, payload domain.NotificationPayload) error {
	ch, ok := b.channels[tok.Channel]

	var sendErr error
	if !ok {
		sendErr = domain.ErrUnknownChannel
	} else {
		sendCtx, cancel := context.WithTimeout(ctx, b.timeout)
		sendErr = ch.Send(sendCtx, tok.Token, payload)
		cancel()
	}

	attempt := &domain.DeliveryAttempt{
		RoundID:     round.ID,
		PartnerID:   partnerID,
		Channel:     tok.Channel,
		TargetToken: tok.Token,
		SentAt:      time.Now().UTC(),
		Delivered:   sendErr == nil,
	}
	outcome := "delivered"
	if sendErr != nil {
		attempt.Error = sendErr.Error()
		outcome = "failed"
	}
	metrics.ChannelSendsTotal.WithLabelValues(string(tok.Channel), outcome).Inc()

	// The attempt log is diagnostics; losing a row must not fail the send.
	if err := b.attempts.Insert(ctx, attempt); err != nil {
		b.logger.Warn().Err(err).
			Str("round_id", round.ID).
			Str("partner_id", partnerID).
			Str("channel", string(tok.Channel)).
			Msg("failed to record delivery attempt")
	}

	return sendErr
}

// roundPayload builds the channel-independent payload for a round. The same
// content goes to every eligible partner; no per-partner distance filtering
// is applied in broadcast mode.
func roundPayload(round *domain.DispatchRound) domain.NotificationPayload {
	title := "New delivery opportunity"
	if round.Urgent {
		title = "Urgent delivery opportunity"
	}
	return domain.NotificationPayload{
		Kind:   domain.PayloadDelivery,
		Title:  title,
		Body:   round.Message,
		Urgent: round.Urgent,
		Data: map[string]string{
			"round_id": round.ID,
			"order_id": round.OrderID,
			"store_id": round.StoreID,
		},
	}
}
