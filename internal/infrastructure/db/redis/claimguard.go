package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClaimGuard is the Redis fast path for round claims: a single SETNX decides
// which partner registered first, so obviously-lost claims are shed without
// touching the primary store. Advisory only — the round repository's
// conditional update remains the authority on who won.
// Key format: claim:<round_id>
type ClaimGuard struct {
	client *redis.Client
}

// NewClaimGuard creates a ClaimGuard wrapping the given Redis client.
func NewClaimGuard(client *redis.Client) *ClaimGuard {
	return &ClaimGuard{client: client}
}

// TryAcquire registers partnerID as the first claimant if no one beat them
// to it. Returns whether the acquisition succeeded and, when it did not, the
// current holder. The key expires with the round's time budget.
func (g *ClaimGuard) TryAcquire(ctx context.Context, roundID, partnerID string, ttl time.Duration) (bool, string, error) {
	key := g.key(roundID)

	ok, err := g.client.SetNX(ctx, key, partnerID, ttl).Result()
	if err != nil {
		return false, "", fmt.Errorf("claim guard: %w", err)
	}
	if ok {
		return true, partnerID, nil
	}

	holder, err := g.client.Get(ctx, key).Result()
	if err != nil {
		return false, "", fmt.Errorf("claim guard: read holder: %w", err)
	}
	return false, holder, nil
}

func (g *ClaimGuard) key(roundID string) string {
	return "claim:" + roundID
}
