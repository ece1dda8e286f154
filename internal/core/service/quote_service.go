package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
	"github.com/sirahabazaar/dispatch-system/internal/core/ports"
)

// QuoteService implements fee quoting and radius discovery over the
// externally administered zone table.
type QuoteService struct {
	zones  ports.ZoneRepository
	orders ports.OrderRepository
	logger zerolog.Logger
}

func NewQuoteService(zones ports.ZoneRepository, orders ports.OrderRepository, logger zerolog.Logger) *QuoteService {
	return &QuoteService{zones: zones, orders: orders, logger: logger}
}

// FeeForDistance scans active zones in ascending min_distance_km order and
// prices the distance against the first matching band (both bounds
// inclusive, so a distance on a shared boundary resolves to the lower band).
// No matching zone is an explicit "unpriced" quote, not an error.
func (s *QuoteService) FeeForDistance(ctx context.Context, distanceKm float64) (domain.FeeQuote, error) {
	zones, err := s.zones.ListActive(ctx)
	if err != nil {
		return domain.FeeQuote{}, fmt.Errorf("fee quote: %w", err)
	}
	return feeForDistance(distanceKm, zones), nil
}

// FeeForOrder prices the store-to-customer leg of an order. Returns the
// quote and the computed distance.
func (s *QuoteService) FeeForOrder(ctx context.Context, orderID string) (domain.FeeQuote, float64, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return domain.FeeQuote{}, 0, fmt.Errorf("fee quote: %w", err)
	}
	if !order.StoreLocation.Locatable() || !order.DeliveryLocation.Locatable() {
		s.logger.Debug().Str("order_id", orderID).Msg("order has unlocatable endpoint, quote unpriced")
		return domain.FeeQuote{}, 0, nil
	}

	distance := domain.DistanceKm(order.StoreLocation, order.DeliveryLocation)
	quote, err := s.FeeForDistance(ctx, distance)
	if err != nil {
		return domain.FeeQuote{}, 0, err
	}
	return quote, distance, nil
}

// feeForDistance is the pure core of FeeForDistance, separated so the
// boundary behaviour is testable without a repository.
func feeForDistance(distanceKm float64, zones []domain.DeliveryZone) domain.FeeQuote {
	sorted := make([]domain.DeliveryZone, len(zones))
	copy(sorted, zones)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinDistanceKm < sorted[j].MinDistanceKm
	})

	for i := range sorted {
		z := sorted[i]
		if !z.Active {
			continue
		}
		if z.Contains(distanceKm) {
			return domain.FeeQuote{
				Fee:  z.BaseFee + z.PerKmRate*distanceKm,
				Zone: &sorted[i],
			}
		}
	}
	return domain.FeeQuote{}
}

// DiscoverWithinRadius filters candidates to those locatable and within
// radiusKm of origin, sorted ascending by distance with id as tie-break.
// Unlocatable candidates are dropped, never included at distance zero.
func (s *QuoteService) DiscoverWithinRadius(origin domain.Coordinate, candidates []ports.Candidate, radiusKm float64) []ports.Discovery {
	results := make([]ports.Discovery, 0, len(candidates))
	for _, c := range candidates {
		if !c.Location.Locatable() {
			continue
		}
		d := domain.DistanceKm(origin, c.Location)
		if d <= radiusKm {
			results = append(results, ports.Discovery{ID: c.ID, DistanceKm: d})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceKm != results[j].DistanceKm {
			return results[i].DistanceKm < results[j].DistanceKm
		}
		return results[i].ID < results[j].ID
	})
	return results
}
