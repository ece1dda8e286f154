package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
)

const collectionRounds = "dispatch_rounds"

// RoundRepository persists dispatch rounds. All terminal transitions are
// single conditional updates filtered on status "open", so the claim race is
// settled by one linearizable document update — never a read-then-write.
type RoundRepository struct {
	col *mongo.Collection
}

func NewRoundRepository(db *mongo.Database) *RoundRepository {
	return &RoundRepository{col: db.Collection(collectionRounds)}
}

// Create inserts a new round document.
func (r *RoundRepository) Create(ctx context.Context, round *domain.DispatchRound) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, round)
	return err
}

// FindByID retrieves a round by id.
func (r *RoundRepository) FindByID(ctx context.Context, roundID string) (*domain.DispatchRound, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var round domain.DispatchRound
	err := r.col.FindOne(ctx, bson.M{"_id": roundID}).Decode(&round)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoundNotFound
		}
		return nil, err
	}
	return &round, nil
}

// Claim attempts the open -> claimed transition for partnerID. The filter
// and update run as one FindOneAndUpdate, so across arbitrarily many
// concurrent callers exactly one matches the "open" filter and wins.
func (r *RoundRepository) Claim(ctx context.Context, roundID, partnerID string) (domain.ClaimResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": roundID, "status": string(domain.RoundOpen)}
	update := bson.M{"$set": bson.M{
		"status":             string(domain.RoundClaimed),
		"winning_partner_id": partnerID,
	}}

	err := r.col.FindOneAndUpdate(ctx, filter, update).Err()
	if err == nil {
		return domain.ClaimWon, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", err
	}

	// Lost the conditional update: report the authoritative state.
	round, ferr := r.FindByID(ctx, roundID)
	if ferr != nil {
		return "", ferr
	}
	switch round.Status {
	case domain.RoundClaimed:
		if round.WinningPartnerID == partnerID {
			// Duplicate claim from the winner (retry, double tap): the round
			// is theirs, but it is no longer open.
			return domain.ClaimRoundNotOpen, nil
		}
		return domain.ClaimLost, nil
	default:
		return domain.ClaimRoundNotOpen, nil
	}
}

// Expire transitions open -> expired; no-op when the round is not open.
func (r *RoundRepository) Expire(ctx context.Context, roundID string) error {
	return r.closeRound(ctx, roundID, domain.RoundExpired)
}

// Cancel transitions open -> cancelled; no-op when the round is not open.
func (r *RoundRepository) Cancel(ctx context.Context, roundID string) error {
	return r.closeRound(ctx, roundID, domain.RoundCancelled)
}

func (r *RoundRepository) closeRound(ctx context.Context, roundID string, terminal domain.RoundStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": roundID, "status": string(domain.RoundOpen)}
	update := bson.M{"$set": bson.M{"status": string(terminal)}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Already terminal, or unknown id. Distinguish the latter so callers
		// can surface a client error instead of silently accepting a typo.
		if _, ferr := r.FindByID(ctx, roundID); ferr != nil {
			return ferr
		}
	}
	return nil
}

// SetNotifiedPartners records who the broadcast reached.
func (r *RoundRepository) SetNotifiedPartners(ctx context.Context, roundID string, partnerIDs []string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": roundID},
		bson.M{"$set": bson.M{"notified_partners": partnerIDs}},
	)
	return err
}

// ListOpenExpiredBefore returns open rounds whose deadline passed, for the
// expirer sweep.
func (r *RoundRepository) ListOpenExpiredBefore(ctx context.Context, cutoff time.Time) ([]*domain.DispatchRound, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"status":     string(domain.RoundOpen),
		"expires_at": bson.M{"$lte": cutoff},
	}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rounds []*domain.DispatchRound
	if err := cur.All(ctx, &rounds); err != nil {
		return nil, err
	}
	return rounds, nil
}

// EnsureIndexes creates necessary indexes on the rounds collection.
func (r *RoundRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
