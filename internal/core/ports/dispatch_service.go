package ports

import (
	"context"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
)

// BroadcastResult aggregates the independent per-partner outcomes of one
// dispatch round broadcast. Attempted counts partners with at least one
// token; partners with none were never reachable and are skipped, not failed.
type BroadcastResult struct {
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// Broadcaster fans a round out to the partner pool through every channel
// each partner has registered.
type Broadcaster interface {
	Broadcast(ctx context.Context, round *domain.DispatchRound, partners []*domain.Partner) (BroadcastResult, []string)
}

// NotifyInput opens a new dispatch round for an order.
type NotifyInput struct {
	OrderID string
	Message string
	Urgent  bool
	// StoreID of the caller; empty for admins (no store scoping applied).
	StoreID string
}

// NotifyResult is returned to the store owner: round identity plus the
// "notifications sent to N of M partners" summary.
type NotifyResult struct {
	Round     *domain.DispatchRound
	Broadcast BroadcastResult
	Eligible  int // M: approved partners considered
}

// ClaimInput is one partner's attempt to win a round.
type ClaimInput struct {
	RoundID   string
	PartnerID string
}

// BulkBroadcastResult reports how many per-order rounds a bulk operation
// enqueued.
type BulkBroadcastResult struct {
	StoreID  string `json:"store_id"`
	Enqueued int    `json:"enqueued"`
}

// DispatchService orchestrates rounds: opening and broadcasting them,
// resolving claims, and applying post-claim order updates.
type DispatchService interface {
	NotifyForOrder(ctx context.Context, in NotifyInput) (*NotifyResult, error)
	Claim(ctx context.Context, in ClaimInput) (domain.ClaimResult, error)
	CancelRound(ctx context.Context, roundID string) error
	ExpireRound(ctx context.Context, roundID string) error
	ListAttempts(ctx context.Context, roundID string) ([]*domain.DeliveryAttempt, error)

	// BroadcastAllReady / BroadcastProcessing open one round per qualifying
	// order; each order is broadcast independently so one failure never
	// aborts the rest.
	BroadcastAllReady(ctx context.Context, storeID string) (BulkBroadcastResult, error)
	BroadcastProcessing(ctx context.Context, storeID string) (BulkBroadcastResult, error)
}
