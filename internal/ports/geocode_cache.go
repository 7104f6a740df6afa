package ports

import (
	"context"
	"visit-planner-service/internal/domain"
)

// Persistent address -> coordinate cache placed in front of a Geocoder.
// Keys are expected to be normalized by the caller.
type GeocodeCache interface {
	// Return cached coordinates for the addresses that are present.
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	// Store address -> coordinate mappings.
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
