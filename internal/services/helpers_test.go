package services

import (
	"fmt"
	"visit-planner-service/internal/domain"
)

func target(id string, lat, lon float64) domain.VisitTarget {
	return domain.VisitTarget{
		TargetID: id,
		Name:     "client " + id,
		Coords:   &domain.Coordinates{Lat: lat, Lon: lon},
	}
}

// grid builds n resolved targets spread over a small area around Rennes.
func grid(n int) []domain.VisitTarget {
	out := make([]domain.VisitTarget, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, target(fmt.Sprintf("t%02d", i), 48.0+float64(i%4)*0.05, -1.7+float64(i/4)*0.07))
	}
	return out
}

func sizes(clusters []domain.Cluster) []int {
	out := make([]int, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, c.Size())
	}
	return out
}
