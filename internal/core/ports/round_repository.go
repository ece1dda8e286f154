package ports

import (
	"context"
	"time"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
)

// RoundRepository persists dispatch rounds. Claim, Expire and Cancel must be
// implemented as a single conditional update of status (compare-and-set on
// "open"), never as a read followed by a write: the claim race is resolved
// entirely inside that one storage operation.
type RoundRepository interface {
	Create(ctx context.Context, round *domain.DispatchRound) error
	FindByID(ctx context.Context, roundID string) (*domain.DispatchRound, error)

	// Claim atomically transitions the round open -> claimed with the given
	// winner. Returns ClaimWon when this call performed the transition,
	// ClaimLost when the round is claimed by someone else, and
	// ClaimRoundNotOpen when the round expired or was cancelled.
	// Unknown round ids return domain.ErrRoundNotFound.
	Claim(ctx context.Context, roundID, partnerID string) (domain.ClaimResult, error)

	// Expire transitions open -> expired; no-op when the round is not open.
	Expire(ctx context.Context, roundID string) error
	// Cancel transitions open -> cancelled; no-op when the round is not open.
	Cancel(ctx context.Context, roundID string) error

	// SetNotifiedPartners records the partner ids a broadcast reached.
	SetNotifiedPartners(ctx context.Context, roundID string, partnerIDs []string) error

	// ListOpenExpiredBefore returns open rounds whose expiry deadline has
	// passed, for the background expirer sweep.
	ListOpenExpiredBefore(ctx context.Context, cutoff time.Time) ([]*domain.DispatchRound, error)
}
