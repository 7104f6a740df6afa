package services

import (
	"fmt"
	"slices"
	"strings"
	"visit-planner-service/internal/domain"
)

// ClusteringStrategy partitions resolved targets into day-sized groups.
//
// Every implementation must return clusters holding between 1 and
// maxPerGroup members whose union is exactly the input, with no duplicates.
type ClusteringStrategy interface {
	Name() string
	Cluster(targets []domain.VisitTarget, maxPerGroup int) ([]domain.Cluster, error)
}

const (
	StrategyBalanced   = "balanced"
	StrategyGeographic = "geographic"
)

// StrategyByName resolves a configured strategy name. An empty name selects
// the balanced strategy.
func StrategyByName(name string) (ClusteringStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyBalanced:
		return BalancedChunking{}, nil
	case StrategyGeographic:
		return GeographyAware{}, nil
	default:
		return nil, fmt.Errorf("strategy by name: %w: unknown strategy %q", ErrInvalidInput, name)
	}
}

// BalancedChunking sorts targets by latitude (north first) and cuts the
// sorted list into contiguous chunks of near-equal size.
//
// It is fast and deterministic but only aware of one geographic axis.
type BalancedChunking struct{}

func (BalancedChunking) Name() string { return StrategyBalanced }

func (BalancedChunking) Cluster(targets []domain.VisitTarget, maxPerGroup int) ([]domain.Cluster, error) {
	if err := checkClusterInput(targets, maxPerGroup); err != nil {
		return nil, fmt.Errorf("balanced clustering: %w", err)
	}

	sorted := slices.Clone(targets)
	// Stable so that equal latitudes keep their input order.
	slices.SortStableFunc(sorted, func(a, b domain.VisitTarget) int {
		switch {
		case a.Coords.Lat > b.Coords.Lat:
			return -1
		case a.Coords.Lat < b.Coords.Lat:
			return 1
		}
		return 0
	})

	return chunk(sorted, maxPerGroup, 0), nil
}

// chunk cuts an already ordered list into ceil(n/max) groups using
// ceiling division for the chunk size. Cluster indexes start at firstIndex.
func chunk(ordered []domain.VisitTarget, maxPerGroup int, firstIndex int) []domain.Cluster {
	n := len(ordered)
	numClusters := ceilDiv(n, maxPerGroup)
	chunkSize := ceilDiv(n, numClusters)

	clusters := make([]domain.Cluster, 0, numClusters)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		clusters = append(clusters, domain.Cluster{
			Index:   firstIndex + len(clusters),
			Members: slices.Clone(ordered[start:end]),
		})
	}
	return clusters
}

// enforceCapacity splits every cluster above maxPerGroup with the balanced
// strategy and renumbers the result so indexes stay contiguous.
func enforceCapacity(clusters []domain.Cluster, maxPerGroup int) ([]domain.Cluster, error) {
	out := make([]domain.Cluster, 0, len(clusters))
	for _, c := range clusters {
		if len(c.Members) == 0 {
			continue
		}
		if len(c.Members) <= maxPerGroup {
			c.Index = len(out)
			out = append(out, c)
			continue
		}

		parts, err := BalancedChunking{}.Cluster(c.Members, maxPerGroup)
		if err != nil {
			return nil, fmt.Errorf("split cluster %d: %w", c.Index, err)
		}
		for _, p := range parts {
			p.Index = len(out)
			out = append(out, p)
		}
	}
	return out, nil
}

// ceilDiv returns ceil(n/d) for n >= 0 and d > 0 without overflowing.
func ceilDiv(n, d int) int {
	if n == 0 {
		return 0
	}
	return 1 + (n-1)/d
}

// checkPartition verifies that clusters hold every target exactly once and
// that every member carries a usable coordinate.
func checkPartition(targets []domain.VisitTarget, clusters []domain.Cluster) error {
	want := make(map[string]int, len(targets))
	for _, t := range targets {
		want[t.TargetID]++
	}

	for _, c := range clusters {
		for _, m := range c.Members {
			if !m.Resolved() {
				return fmt.Errorf("%w: cluster %d member %q has no resolved coordinate", ErrInvalidInput, c.Index, m.TargetID)
			}
			if want[m.TargetID] == 0 {
				return fmt.Errorf("target %q assigned more than once or unknown", m.TargetID)
			}
			want[m.TargetID]--
		}
	}

	for id, left := range want {
		if left != 0 {
			return fmt.Errorf("target %q not assigned to any cluster", id)
		}
	}
	return nil
}

func checkClusterInput(targets []domain.VisitTarget, maxPerGroup int) error {
	if len(targets) == 0 {
		return fmt.Errorf("%w: target list must not be empty", ErrInvalidInput)
	}
	if maxPerGroup <= 0 {
		return fmt.Errorf("%w: max per group must be positive, got %d", ErrInvalidInput, maxPerGroup)
	}
	for i, t := range targets {
		if !t.Resolved() {
			return fmt.Errorf("%w: target %q at index %d has no resolved coordinate", ErrInvalidInput, t.TargetID, i)
		}
	}
	return nil
}
