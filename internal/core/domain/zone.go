package domain

// DeliveryZone is a configured distance band with its own pricing.
// Zones are administered externally; this service only reads active zones.
type DeliveryZone struct {
	ID            string  `json:"id" bson:"_id,omitempty"`
	Name          string  `json:"name" bson:"name"`
	MinDistanceKm float64 `json:"min_distance_km" bson:"min_distance_km"`
	MaxDistanceKm float64 `json:"max_distance_km" bson:"max_distance_km"`
	BaseFee       float64 `json:"base_fee" bson:"base_fee"`
	PerKmRate     float64 `json:"per_km_rate" bson:"per_km_rate"`
	Active        bool    `json:"active" bson:"active"`
}

// Contains reports whether the distance falls inside the zone's band.
// Both bounds are inclusive; with zones scanned in ascending min_distance_km
// order a distance on a shared boundary resolves to the lower band.
func (z DeliveryZone) Contains(distanceKm float64) bool {
	return distanceKm >= z.MinDistanceKm && distanceKm <= z.MaxDistanceKm
}

// FeeQuote is the result of pricing a distance against the zone table.
// Zone is nil when no active zone covers the distance; Fee is then zero and
// the delivery is "unpriced" rather than failed.
type FeeQuote struct {
	Fee  float64       `json:"fee"`
	Zone *DeliveryZone `json:"zone,omitempty"`
}

// Priced reports whether a zone covered the distance.
func (q FeeQuote) Priced() bool {
	return q.Zone != nil
}
