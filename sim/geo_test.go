package sim

import (
	"math"
	"testing"
)

func TestHaversine_SamePointIsZero(t *testing.T) {
	p := Coordinate{Lat: 45.07, Lon: 7.69}
	if d := Haversine(p, p); d != 0 {
		t.Errorf("Haversine(p, p) = %v, want 0", d)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Turin and Milan city centers, roughly 125km apart by great circle.
	turin := Coordinate{Lat: 45.0703, Lon: 7.6869}
	milan := Coordinate{Lat: 45.4642, Lon: 9.1900}

	d := Haversine(turin, milan)
	if math.Abs(d-125) > 15 {
		t.Errorf("Haversine(turin, milan) = %.1fkm, want ≈125km", d)
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Coordinate{Lat: 45.07, Lon: 7.69}
	b := Coordinate{Lat: 41.9, Lon: 12.5}
	if Haversine(a, b) != Haversine(b, a) {
		t.Error("Haversine should be symmetric")
	}
}
