package ports

import (
	"context"
	"visit-planner-service/internal/domain"
)

// Contract for resolving a free-text postal address to coordinates.
type Geocoder interface {
	// Return the coordinates of address. found is false when the provider
	// has no match; err is reserved for transport or provider failures.
	Geocode(ctx context.Context, address string) (coords domain.Coordinates, found bool, err error)
}
