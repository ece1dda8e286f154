package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
)

const collectionNotifications = "notifications"

// NotificationRepository persists in-app notification records for the in-app
// channel and the post-claim follow-ups.
type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection(collectionNotifications)}
}

func (r *NotificationRepository) CreateRecord(ctx context.Context, record *domain.NotificationRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"user_id":    record.UserID,
		"payload":    record.Payload,
		"read":       record.Read,
		"created_at": record.CreatedAt.UTC(),
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}
