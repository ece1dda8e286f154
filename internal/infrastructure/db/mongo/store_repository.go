package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
	"github.com/sirahabazaar/dispatch-system/internal/core/ports"
)

const collectionStores = "stores"

// StoreRepository reads the storefront directory for nearby discovery.
type StoreRepository struct {
	col *mongo.Collection
}

func NewStoreRepository(db *mongo.Database) *StoreRepository {
	return &StoreRepository{col: db.Collection(collectionStores)}
}

type storeDoc struct {
	ID       string            `bson:"_id"`
	Location domain.Coordinate `bson:"location"`
	Active   bool              `bson:"active"`
}

// ListStoreCandidates returns active stores as discovery candidates.
// Unlocatable stores are included here; the quote service drops them.
func (r *StoreRepository) ListStoreCandidates(ctx context.Context) ([]ports.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []storeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	candidates := make([]ports.Candidate, 0, len(docs))
	for _, d := range docs {
		candidates = append(candidates, ports.Candidate{ID: d.ID, Location: d.Location})
	}
	return candidates, nil
}
