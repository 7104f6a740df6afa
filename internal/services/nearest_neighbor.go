package services

import (
	"fmt"
	"math"
	"slices"
	"visit-planner-service/internal/domain"
	"visit-planner-service/internal/geo"
)

// Sequence the members of one cluster using a greedy nearest-neighbor walk.
//
// The walk starts at start (the depot) and always steps to the closest
// unvisited member. It does not attempt global route optimization.
// Exact ties go to the member that comes first in the cluster.
//
// Returned visits carry Sequence and DistanceKm; Week and Day are stamped
// later by AssignSchedule.
func SequenceCluster(cluster domain.Cluster, start domain.Coordinates) ([]domain.Visit, error) {
	members := cluster.Members
	if len(members) == 0 {
		return nil, fmt.Errorf("sequence cluster %d: %w: cluster is empty", cluster.Index, ErrInvalidInput)
	}

	// Indexes into members, kept in original order.
	remaining := make([]int, len(members))
	for i := range remaining {
		remaining[i] = i
	}

	current := start
	visits := make([]domain.Visit, 0, len(members))

	for len(remaining) > 0 {
		bestPos := -1
		bestDist := math.Inf(1)

		// Select next stop by minimum great-circle distance (greedy step).
		for pos, idx := range remaining {
			d := geo.Distance(current, *members[idx].Coords)
			if d < bestDist {
				bestDist = d
				bestPos = pos
			}
		}

		if bestPos < 0 {
			return nil, fmt.Errorf("sequence cluster %d: failed to select next member", cluster.Index)
		}
		next := members[remaining[bestPos]]

		visits = append(visits, domain.Visit{
			Target:     next,
			Sequence:   len(visits) + 1,
			DistanceKm: domain.Round2(bestDist),
		})

		remaining = slices.Delete(remaining, bestPos, bestPos+1)
		current = *next.Coords
	}

	return visits, nil
}
