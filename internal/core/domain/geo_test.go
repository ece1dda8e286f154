package domain

import (
	"math"
	"testing"
)

func TestDistanceKm_ZeroForSamePoint(t *testing.T) {
	p := Coordinate{Lat: 26.66, Lng: 86.21}
	if d := DistanceKm(p, p); d != 0 {
		t.Errorf("distance to self must be 0, got %v", d)
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := Coordinate{Lat: 26.66, Lng: 86.21}
	b := Coordinate{Lat: 27.70, Lng: 85.32}
	if d1, d2 := DistanceKm(a, b), DistanceKm(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// Siraha to Kathmandu, roughly 145 km great-circle.
	siraha := Coordinate{Lat: 26.66, Lng: 86.21}
	kathmandu := Coordinate{Lat: 27.7172, Lng: 85.324}
	d := DistanceKm(siraha, kathmandu)
	if d < 135 || d > 155 {
		t.Errorf("expected roughly 145 km, got %v", d)
	}
}

func TestCoordinate_Locatable(t *testing.T) {
	cases := []struct {
		name string
		c    Coordinate
		want bool
	}{
		{"set", Coordinate{Lat: 26.66, Lng: 86.21}, true},
		{"zero value", Coordinate{}, false},
		{"lat zero only", Coordinate{Lat: 0, Lng: 86.21}, true},
		{"nan", Coordinate{Lat: math.NaN(), Lng: 86.21}, false},
		{"inf", Coordinate{Lat: 26.66, Lng: math.Inf(1)}, false},
	}
	for _, tc := range cases {
		if got := tc.c.Locatable(); got != tc.want {
			t.Errorf("%s: Locatable() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
