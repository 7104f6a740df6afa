package domain

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

// Immutable geographic coordinate in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinate is finite and inside
// latitude [-90, 90] and longitude [-180, 180].
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return s2.LatLngFromDegrees(c.Lat, c.Lon).IsValid()
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Lat, c.Lon)
}
