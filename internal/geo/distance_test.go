package geo

import (
	"math"
	"math/rand"
	"testing"
	"visit-planner-service/internal/domain"

	"github.com/golang/geo/s2"
)

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	p := domain.Coordinates{Lat: 48.117, Lon: -1.677}
	if d := Distance(p, p); d != 0 {
		t.Fatalf("distance = %v, want 0", d)
	}
}

func TestDistanceKnownPair(t *testing.T) {
	paris := domain.Coordinates{Lat: 48.8566, Lon: 2.3522}
	rennes := domain.Coordinates{Lat: 48.1173, Lon: -1.6778}

	d := Distance(paris, rennes)
	if d < 305 || d > 312 {
		t.Fatalf("paris -> rennes = %.2f km, want ~308 km", d)
	}
}

func TestDistanceSymmetricNonNegativeAndMatchesS2(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		a := domain.Coordinates{Lat: rng.Float64()*180 - 90, Lon: rng.Float64()*360 - 180}
		b := domain.Coordinates{Lat: rng.Float64()*180 - 90, Lon: rng.Float64()*360 - 180}

		ab := Distance(a, b)
		ba := Distance(b, a)
		if ab < 0 {
			t.Fatalf("negative distance %v for %v -> %v", ab, a, b)
		}
		if math.Abs(ab-ba) > 1e-9 {
			t.Fatalf("asymmetric distance: %v vs %v", ab, ba)
		}

		want := s2.LatLngFromDegrees(a.Lat, a.Lon).Distance(s2.LatLngFromDegrees(b.Lat, b.Lon)).Radians() * EarthRadiusKm
		if math.Abs(ab-want) > 1e-3 {
			t.Fatalf("distance %v -> %v = %v, s2 says %v", a, b, ab, want)
		}
	}
}
