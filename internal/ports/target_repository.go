package ports

import (
	"context"
	"visit-planner-service/internal/domain"
)

// Port: a boundary for retrieving and updating client records.
type TargetRepository interface {
	// Retrieve all targets available for planning.
	ListTargets(ctx context.Context) ([]domain.VisitTarget, error)
	// Store the geocoded coordinate of a target.
	UpdateCoordinates(ctx context.Context, targetID string, coords domain.Coordinates) error
}
