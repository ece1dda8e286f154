package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
)

const collectionAttempts = "delivery_attempts"

// AttemptRepository stores write-once delivery attempt records.
type AttemptRepository struct {
	col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{col: db.Collection(collectionAttempts)}
}

// Insert appends one attempt record.
func (r *AttemptRepository) Insert(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"round_id":     attempt.RoundID,
		"partner_id":   attempt.PartnerID,
		"channel":      string(attempt.Channel),
		"target_token": attempt.TargetToken,
		"sent_at":      attempt.SentAt.UTC(),
		"delivered":    attempt.Delivered,
	}
	if attempt.Error != "" {
		doc["error"] = attempt.Error
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// ListByRound returns all attempts for a round, oldest first.
func (r *AttemptRepository) ListByRound(ctx context.Context, roundID string) ([]*domain.DeliveryAttempt, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"round_id": roundID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var attempts []*domain.DeliveryAttempt
	if err := cur.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

// EnsureIndexes creates necessary indexes on the attempts collection.
func (r *AttemptRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "round_id", Value: 1}, {Key: "sent_at", Value: 1}}},
		{Keys: bson.D{{Key: "partner_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
