package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sirahabazaar/dispatch-system/internal/api/metrics"
	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
	"github.com/sirahabazaar/dispatch-system/internal/core/ports"
)

const defaultRoundTTL = 3 * time.Minute

// ClaimGuard abstracts the Redis fast-path claim gate. The guard is advisory:
// the round repository's conditional update remains the single source of
// truth for who won, and a guard error never blocks a claim.
type ClaimGuard interface {
	// TryAcquire attempts to register partnerID as the first claimant of the
	// round. Returns whether the acquisition succeeded and, when it did not,
	// the id of the current holder.
	TryAcquire(ctx context.Context, roundID, partnerID string, ttl time.Duration) (bool, string, error)
}

// BroadcastQueue accepts per-order broadcast jobs for the bulk operations.
type BroadcastQueue interface {
	Enqueue(job ports.NotifyInput)
}

// DispatchService orchestrates the full round lifecycle: it opens rounds,
// broadcasts them, resolves partner claims, and applies the post-claim order
// updates and follow-up notifications.
type DispatchService struct {
	rounds        ports.RoundRepository
	orders        ports.OrderRepository
	partners      ports.PartnerDirectory
	attempts      ports.AttemptRepository
	notifications ports.NotificationStore
	broadcaster   ports.Broadcaster
	guard         ClaimGuard
	queue         BroadcastQueue
	roundTTL      time.Duration
	logger        zerolog.Logger
}

func NewDispatchService(
	rounds ports.RoundRepository,
	orders ports.OrderRepository,
	partners ports.PartnerDirectory,
	attempts ports.AttemptRepository,
	notifications ports.NotificationStore,
	broadcaster ports.Broadcaster,
	guard ClaimGuard,
	roundTTL time.Duration,
	logger zerolog.Logger,
) *DispatchService {
	if roundTTL <= 0 {
		roundTTL = defaultRoundTTL
	}
	return &DispatchService{
		rounds:        rounds,
		orders:        orders,
		partners:      partners,
		attempts:      attempts,
		notifications: notifications,
		broadcaster:   broadcaster,
		guard:         guard,
		roundTTL:      roundTTL,
		logger:        logger,
	}
}

// SetQueue attaches the worker queue used by the bulk broadcast operations.
// Wired after construction because the queue's workers call back into this
// service.
func (s *DispatchService) SetQueue(q BroadcastQueue) {
	s.queue = q
}

// NotifyForOrder opens a new dispatch round for the order and broadcasts it
// to every approved partner. Channel failures are absorbed into the
// broadcast result; only repository failures surface as errors.
func (s *DispatchService) NotifyForOrder(ctx context.Context, in ports.NotifyInput) (*ports.NotifyResult, error) {
	order, err := s.orders.FindByID(ctx, in.OrderID)
	if err != nil {
		return nil, fmt.Errorf("notify for order: %w", err)
	}
	if in.StoreID != "" && order.StoreID != in.StoreID {
		return nil, domain.ErrForbidden
	}
	if !order.DispatchEligible() {
		return nil, domain.ErrOrderNotDispatchable
	}

	now := time.Now().UTC()
	round := &domain.DispatchRound{
		ID:        uuid.NewString(),
		OrderID:   order.ID,
		StoreID:   order.StoreID,
		Message:   in.Message,
		Urgent:    in.Urgent,
		Status:    domain.RoundOpen,
		CreatedAt: now,
		ExpiresAt: now.Add(s.roundTTL),
	}
	if err := s.rounds.Create(ctx, round); err != nil {
		return nil, fmt.Errorf("notify for order: create round: %w", err)
	}

	pool, err := s.partners.ListApproved(ctx, order.StoreID)
	if err != nil {
		return nil, fmt.Errorf("notify for order: list partners: %w", err)
	}

	result, notified := s.broadcaster.Broadcast(ctx, round, pool)

	if err := s.rounds.SetNotifiedPartners(ctx, round.ID, notified); err != nil {
		s.logger.Warn().Err(err).Str("round_id", round.ID).Msg("failed to record notified partners")
	}
	round.NotifiedPartners = notified

	metrics.RoundsOpenedTotal.Inc()
	s.logger.Info().
		Str("round_id", round.ID).
		Str("order_id", order.ID).
		Int("eligible", len(pool)).
		Int("delivered", result.Delivered).
		Msg("dispatch round opened")

	return &ports.NotifyResult{Round: round, Broadcast: result, Eligible: len(pool)}, nil
}

// Claim resolves one partner's attempt to win a round. Exactly one caller
// ever receives ClaimWon; the outcome is decided by the round repository's
// atomic conditional update. On a win the order's delivery assignment is
// written first and the status transition only follows a successful
// assignment write.
func (s *DispatchService) Claim(ctx context.Context, in ports.ClaimInput) (domain.ClaimResult, error) {
	// Fast path: the Redis guard sheds claims that already lost the race.
	// Guard errors are logged and ignored; it is never authoritative.
	if s.guard != nil {
		acquired, holder, err := s.guard.TryAcquire(ctx, in.RoundID, in.PartnerID, s.roundTTL)
		if err != nil {
			s.logger.Warn().Err(err).Str("round_id", in.RoundID).Msg("claim guard unavailable, falling through")
		} else if !acquired && holder != in.PartnerID {
			if result, ok := s.resolveLostClaim(ctx, in.RoundID); ok {
				metrics.ClaimsTotal.WithLabelValues(string(result)).Inc()
				return result, nil
			}
		}
	}

	result, err := s.rounds.Claim(ctx, in.RoundID, in.PartnerID)
	if err != nil {
		return "", fmt.Errorf("claim round: %w", err)
	}
	metrics.ClaimsTotal.WithLabelValues(string(result)).Inc()

	if result != domain.ClaimWon {
		// Expected, frequent outcome for every losing partner; not an error.
		return result, nil
	}

	round, err := s.rounds.FindByID(ctx, in.RoundID)
	if err != nil {
		return result, fmt.Errorf("claim round: reload after win: %w", err)
	}

	// Assignment before status: the pair is one unit and the status
	// transition must not happen if the assignment write failed.
	if err := s.orders.UpdateDeliveryAssignment(ctx, round.OrderID, in.PartnerID); err != nil {
		return result, fmt.Errorf("claim round: assign order: %w", err)
	}
	if err := s.orders.UpdateStatus(ctx, round.OrderID, domain.OrderAssigned); err != nil {
		return result, fmt.Errorf("claim round: order status: %w", err)
	}

	s.logger.Info().
		Str("round_id", round.ID).
		Str("order_id", round.OrderID).
		Str("partner_id", in.PartnerID).
		Msg("round claimed")

	// Follow-ups are best effort: the claim is already committed and a
	// notification failure never rolls it back.
	s.sendClaimFollowUps(ctx, round, in.PartnerID)

	return result, nil
}

// resolveLostClaim maps a guard rejection to the round's authoritative state.
// Returns ok=false while the guard holder's own claim is still in flight, in
// which case the caller falls through to the conditional update.
func (s *DispatchService) resolveLostClaim(ctx context.Context, roundID string) (domain.ClaimResult, bool) {
	round, err := s.rounds.FindByID(ctx, roundID)
	if err != nil {
		return "", false
	}
	switch round.Status {
	case domain.RoundClaimed:
		return domain.ClaimLost, true
	case domain.RoundExpired, domain.RoundCancelled:
		return domain.ClaimRoundNotOpen, true
	default:
		return "", false
	}
}

func (s *DispatchService) sendClaimFollowUps(ctx context.Context, round *domain.DispatchRound, winnerID string) {
	order, err := s.orders.FindByID(ctx, round.OrderID)
	if err != nil {
		s.logger.Warn().Err(err).Str("round_id", round.ID).Msg("follow-ups: order lookup failed")
		return
	}

	assigned := &domain.NotificationRecord{
		UserID: order.CustomerID,
		Payload: domain.NotificationPayload{
			Kind:  domain.PayloadOrder,
			Title: "Delivery partner assigned",
			Body:  "A delivery partner has been assigned to your order.",
			Data:  map[string]string{"order_id": order.ID, "partner_id": winnerID},
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notifications.CreateRecord(ctx, assigned); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID).Msg("follow-ups: customer notification failed")
	}

	for _, partnerID := range round.NotifiedPartners {
		if partnerID == winnerID {
			continue
		}
		missed := &domain.NotificationRecord{
			UserID: partnerID,
			Payload: domain.NotificationPayload{
				Kind:  domain.PayloadDelivery,
				Title: "Delivery taken",
				Body:  "Another partner accepted this delivery.",
				Data:  map[string]string{"round_id": round.ID, "order_id": round.OrderID},
			},
			CreatedAt: time.Now().UTC(),
		}
		if err := s.notifications.CreateRecord(ctx, missed); err != nil {
			s.logger.Warn().Err(err).Str("partner_id", partnerID).Msg("follow-ups: missed notification failed")
		}
	}
}

// CancelRound withdraws an open round; idempotent no-op otherwise.
func (s *DispatchService) CancelRound(ctx context.Context, roundID string) error {
	if err := s.rounds.Cancel(ctx, roundID); err != nil {
		return fmt.Errorf("cancel round: %w", err)
	}
	return nil
}

// ExpireRound times out an open round; idempotent no-op otherwise.
func (s *DispatchService) ExpireRound(ctx context.Context, roundID string) error {
	if err := s.rounds.Expire(ctx, roundID); err != nil {
		return fmt.Errorf("expire round: %w", err)
	}
	metrics.RoundsExpiredTotal.Inc()
	return nil
}

// ExpireOverdue sweeps every open round past its deadline into expired.
// Used by the background expirer; per-round failures are logged and the
// sweep continues.
func (s *DispatchService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.rounds.ListOpenExpiredBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("expire sweep: %w", err)
	}

	expired := 0
	for _, round := range overdue {
		if err := s.ExpireRound(ctx, round.ID); err != nil {
			s.logger.Warn().Err(err).Str("round_id", round.ID).Msg("expire sweep: round failed")
			continue
		}
		expired++
	}
	return expired, nil
}

// ListAttempts returns the delivery attempt log for a round.
func (s *DispatchService) ListAttempts(ctx context.Context, roundID string) ([]*domain.DeliveryAttempt, error) {
	if _, err := s.rounds.FindByID(ctx, roundID); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	attempts, err := s.attempts.ListByRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}

// BroadcastAllReady opens one round per ready-for-pickup order of the store.
// Orders are enqueued as independent jobs: one order's failure never aborts
// the rest. Ready orders broadcast urgently.
func (s *DispatchService) BroadcastAllReady(ctx context.Context, storeID string) (ports.BulkBroadcastResult, error) {
	return s.broadcastBulk(ctx, storeID, domain.OrderReadyForPickup, "Order ready for pickup", true)
}

// BroadcastProcessing opens one round per processing order of the store.
func (s *DispatchService) BroadcastProcessing(ctx context.Context, storeID string) (ports.BulkBroadcastResult, error) {
	return s.broadcastBulk(ctx, storeID, domain.OrderProcessing, "Order being prepared, delivery needed soon", false)
}

func (s *DispatchService) broadcastBulk(ctx context.Context, storeID string, status domain.OrderStatus, message string, urgent bool) (ports.BulkBroadcastResult, error) {
	orders, err := s.orders.ListByStoreAndStatus(ctx, storeID, status)
	if err != nil {
		return ports.BulkBroadcastResult{}, fmt.Errorf("bulk broadcast: %w", err)
	}

	result := ports.BulkBroadcastResult{StoreID: storeID}
	for _, order := range orders {
		job := ports.NotifyInput{OrderID: order.ID, Message: message, Urgent: urgent, StoreID: storeID}
		if s.queue != nil {
			s.queue.Enqueue(job)
			result.Enqueued++
			continue
		}
		// No queue wired (tests, CLI use): run inline, isolating failures.
		if _, err := s.NotifyForOrder(ctx, job); err != nil {
			s.logger.Error().Err(err).Str("order_id", order.ID).Msg("bulk broadcast: order failed")
			continue
		}
		result.Enqueued++
	}
	return result, nil
}
