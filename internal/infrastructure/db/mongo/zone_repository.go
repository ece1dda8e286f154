package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
)

const collectionZones = "delivery_zones"

// ZoneRepository reads the externally administered delivery zone table.
type ZoneRepository struct {
	col *mongo.Collection
}

func NewZoneRepository(db *mongo.Database) *ZoneRepository {
	return &ZoneRepository{col: db.Collection(collectionZones)}
}

// ListActive returns active zones sorted ascending by min_distance_km, the
// order the fee calculator scans them in.
func (r *ZoneRepository) ListActive(ctx context.Context) ([]domain.DeliveryZone, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "min_distance_km", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var zones []domain.DeliveryZone
	if err := cur.All(ctx, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}
