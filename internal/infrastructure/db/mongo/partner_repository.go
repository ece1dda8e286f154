package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
)

const collectionPartners = "delivery_partners"

// PartnerRepository reads the delivery partner directory. Partner moderation
// (pending/approved/rejected) is administered by the marketplace dashboard;
// dispatch only consumes the approved pool.
type PartnerRepository struct {
	col *mongo.Collection
}

func NewPartnerRepository(db *mongo.Database) *PartnerRepository {
	return &PartnerRepository{col: db.Collection(collectionPartners)}
}

// ListApproved returns approved partners. Broadcast mode notifies the whole
// approved pool, so no store or distance filtering is applied here.
func (r *PartnerRepository) ListApproved(ctx context.Context, storeID string) ([]*domain.Partner, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"status": string(domain.PartnerApproved)})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var partners []*domain.Partner
	if err := cur.All(ctx, &partners); err != nil {
		return nil, err
	}
	return partners, nil
}

func (r *PartnerRepository) FindByID(ctx context.Context, partnerID string) (*domain.Partner, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var partner domain.Partner
	err := r.col.FindOne(ctx, bson.M{"_id": partnerID}).Decode(&partner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPartnerNotFound
		}
		return nil, err
	}
	return &partner, nil
}
