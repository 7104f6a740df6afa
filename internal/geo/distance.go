// Package geo holds the great-circle distance metric shared by the
// clustering, ordering and sequencing steps.
package geo

import (
	"math"
	"visit-planner-service/internal/domain"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// Distance returns the haversine great-circle distance between a and b in km.
// It is symmetric and returns 0 for identical coordinates.
func Distance(a, b domain.Coordinates) float64 {
	dPhi := rad(b.Lat - a.Lat)
	dLambda := rad(b.Lon - a.Lon)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	h := sinPhi*sinPhi + math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*sinLambda*sinLambda

	// Rounding can push h marginally above 1 for antipodal points.
	h = math.Min(1, h)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }
