package service

import (
	"context"
	"math"
	"testing"

	"github.com/sirahabazaar/dispatch-system/internal/core/domain"
	"github.com/sirahabazaar/dispatch-system/internal/core/ports"
)

type stubZoneRepo struct {
	zones []domain.DeliveryZone
	err   error
}

func (r *stubZoneRepo) ListActive(_ context.Context) ([]domain.DeliveryZone, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.DeliveryZone
	for _, z := range r.zones {
		if z.Active {
			out = append(out, z)
		}
	}
	return out, nil
}

func testZones() []domain.DeliveryZone {
	return []domain.DeliveryZone{
		{ID: "z1", Name: "Inner", MinDistanceKm: 0, MaxDistanceKm: 5, BaseFee: 30, PerKmRate: 5, Active: true},
		{ID: "z2", Name: "Outer", MinDistanceKm: 5, MaxDistanceKm: 15, BaseFee: 50, PerKmRate: 4, Active: true},
	}
}

func newQuoteFixture(zones []domain.DeliveryZone) (*QuoteService, *stubOrderRepo) {
	orders := newStubOrderRepo()
	return NewQuoteService(&stubZoneRepo{zones: zones}, orders, discardLogger), orders
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestQuoteService_FeeForDistance_PricesMatchingZone(t *testing.T) {
	svc, _ := newQuoteFixture(testZones())

	quote, err := svc.FeeForDistance(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !quote.Priced() {
		t.Fatal("expected a priced quote")
	}
	if quote.Zone.ID != "z2" {
		t.Errorf("expected zone z2, got %s", quote.Zone.ID)
	}
	// 50 base + 4/km * 9 km
	if !almostEqual(quote.Fee, 86) {
		t.Errorf("expected fee 86, got %v", quote.Fee)
	}
}

func TestQuoteService_FeeForDistance_BoundaryResolvesToLowerZone(t *testing.T) {
	svc, _ := newQuoteFixture(testZones())

	quote, err := svc.FeeForDistance(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Zone == nil || quote.Zone.ID != "z1" {
		t.Fatalf("distance on a shared boundary must price in the lower zone, got %+v", quote.Zone)
	}
	// 30 base + 5/km * 5 km
	if !almostEqual(quote.Fee, 55) {
		t.Errorf("expected fee 55, got %v", quote.Fee)
	}
}

func TestQuoteService_FeeForDistance_OutsideAllZonesIsUnpriced(t *testing.T) {
	svc, _ := newQuoteFixture(testZones())

	quote, err := svc.FeeForDistance(context.Background(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Priced() {
		t.Errorf("distance beyond every zone must be unpriced, got %+v", quote)
	}
	if quote.Fee != 0 {
		t.Errorf("unpriced quote must carry fee 0, got %v", quote.Fee)
	}
}

func TestQuoteService_FeeForDistance_SkipsInactiveZones(t *testing.T) {
	zones := testZones()
	zones[0].Active = false
	svc, _ := newQuoteFixture(zones)

	quote, err := svc.FeeForDistance(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Priced() {
		t.Errorf("distance covered only by an inactive zone must be unpriced, got %+v", quote)
	}
}

func TestQuoteService_FeeForDistance_UnsortedZoneTable(t *testing.T) {
	zones := testZones()
	zones[0], zones[1] = zones[1], zones[0]
	svc, _ := newQuoteFixture(zones)

	quote, err := svc.FeeForDistance(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Zone == nil || quote.Zone.ID != "z1" {
		t.Errorf("scan must sort zones, boundary still resolves to z1, got %+v", quote.Zone)
	}
}

func TestQuoteService_FeeForOrder_UnlocatableEndpoint(t *testing.T) {
	svc, orders := newQuoteFixture(testZones())
	orders.put(&domain.Order{
		ID:               "order_1",
		StoreID:          "store_1",
		Status:           domain.OrderProcessing,
		StoreLocation:    domain.Coordinate{Lat: 26.66, Lng: 86.21},
		DeliveryLocation: domain.Coordinate{}, // never set by the customer
	})

	quote, distance, err := svc.FeeForOrder(context.Background(), "order_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Priced() || distance != 0 {
		t.Errorf("unlocatable endpoint must yield an unpriced quote, got %+v distance=%v", quote, distance)
	}
}

func TestQuoteService_FeeForOrder_PricesStoreToCustomerLeg(t *testing.T) {
	svc, orders := newQuoteFixture(testZones())
	orders.put(&domain.Order{
		ID:            "order_1",
		StoreID:       "store_1",
		Status:        domain.OrderProcessing,
		StoreLocation: domain.Coordinate{Lat: 26.66, Lng: 86.21},
		// ~0.03 degrees of latitude north, a bit over 3 km
		DeliveryLocation: domain.Coordinate{Lat: 26.69, Lng: 86.21},
	})

	quote, distance, err := svc.FeeForOrder(context.Background(), "order_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if distance <= 3 || distance >= 4 {
		t.Fatalf("expected distance between 3 and 4 km, got %v", distance)
	}
	if quote.Zone == nil || quote.Zone.ID != "z1" {
		t.Errorf("expected inner zone, got %+v", quote.Zone)
	}
	if !almostEqual(quote.Fee, 30+5*distance) {
		t.Errorf("expected fee %v, got %v", 30+5*distance, quote.Fee)
	}
}

func TestQuoteService_DiscoverWithinRadius(t *testing.T) {
	svc, _ := newQuoteFixture(nil)
	origin := domain.Coordinate{Lat: 26.66, Lng: 86.21}

	candidates := []ports.Candidate{
		{ID: "near", Location: domain.Coordinate{Lat: 26.69, Lng: 86.21}},   // ~3.3 km
		{ID: "mid", Location: domain.Coordinate{Lat: 26.71, Lng: 86.21}},    // ~5.6 km
		{ID: "far", Location: domain.Coordinate{Lat: 26.86, Lng: 86.21}},    // ~22 km
		{ID: "nowhere", Location: domain.Coordinate{}},                      // unlocatable, dropped
		{ID: "origin_b", Location: origin},                                  // distance zero
		{ID: "origin_a", Location: origin},                                  // distance zero, id tie-break
	}

	results := svc.DiscoverWithinRadius(origin, candidates, 10)

	want := []string{"origin_a", "origin_b", "near", "mid"}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %v", len(want), results)
	}
	for i, id := range want {
		if results[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, results[i].ID)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].DistanceKm < results[i-1].DistanceKm {
			t.Errorf("results not sorted ascending: %v", results)
		}
	}
}

func TestQuoteService_DiscoverWithinRadius_EmptyWhenNoneInRange(t *testing.T) {
	svc, _ := newQuoteFixture(nil)
	origin := domain.Coordinate{Lat: 26.66, Lng: 86.21}

	results := svc.DiscoverWithinRadius(origin, []ports.Candidate{
		{ID: "far", Location: domain.Coordinate{Lat: 27.66, Lng: 86.21}},
	}, 10)

	if len(results) != 0 {
		t.Errorf("expected no results, got %v", results)
	}
}
