package ports

import (
	"context"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
)

// Candidate is one id+location pair fed into radius discovery, shared by
// "nearby stores" and "nearby food items" queries.
type Candidate struct {
	ID       string
	Location domain.Coordinate
}

// Discovery is one radius-discovery hit.
type Discovery struct {
	ID         string  `json:"id"`
	DistanceKm float64 `json:"distance_km"`
}

// QuoteService computes delivery fees and radius discovery results.
type QuoteService interface {
	// FeeForDistance prices a distance against the active zone table. A
	// distance outside every zone yields an unpriced quote (fee 0, nil zone),
	// not an error.
	FeeForDistance(ctx context.Context, distanceKm float64) (domain.FeeQuote, error)

	// FeeForOrder prices the store-to-customer leg of an order.
	FeeForOrder(ctx context.Context, orderID string) (domain.FeeQuote, float64, error)

	// DiscoverWithinRadius returns locatable candidates within radiusKm of
	// origin, sorted ascending by distance (ties broken by id).
	DiscoverWithinRadius(origin domain.Coordinate, candidates []Candidate, radiusKm float64) []Discovery
}
