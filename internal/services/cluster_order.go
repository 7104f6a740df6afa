package services

import (
	"cmp"
	"fmt"
	"slices"
	"visit-planner-service/internal/domain"
	"visit-planner-service/internal/geo"
)

// OrderClusters sorts clusters by the distance from the depot to their
// centroid, nearest first. Equal distances keep creation index order, so
// identical input always produces the same calendar.
func OrderClusters(clusters []domain.Cluster, depot domain.Coordinates) ([]domain.Cluster, error) {
	type ranked struct {
		cluster domain.Cluster
		dist    float64
	}

	items := make([]ranked, 0, len(clusters))
	for _, c := range clusters {
		centroid, ok := c.Centroid()
		if !ok {
			return nil, fmt.Errorf("order clusters: %w: cluster %d is empty", ErrInvalidInput, c.Index)
		}
		items = append(items, ranked{cluster: c, dist: geo.Distance(depot, centroid)})
	}

	slices.SortStableFunc(items, func(a, b ranked) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		return cmp.Compare(a.cluster.Index, b.cluster.Index)
	})

	out := make([]domain.Cluster, 0, len(items))
	for _, it := range items {
		out = append(out, it.cluster)
	}
	return out, nil
}
