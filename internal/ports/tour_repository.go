package ports

import (
	"context"
	"visit-planner-service/internal/domain"
)

// Port: history of planned schedules.
type TourRepository interface {
	SaveSchedule(ctx context.Context, s *domain.Schedule) error
	ListTours(ctx context.Context) ([]domain.TourHeader, error)
	// Return the stored schedule, or domain.ErrTourNotFound.
	GetSchedule(ctx context.Context, id string) (*domain.Schedule, error)
}
