package services

import (
	"fmt"
	"visit-planner-service/internal/domain"
)

const defaultKMeansIterations = 100

// GeographyAware partitions targets with a k-means pass over (lat, lon),
// k = ceil(n / maxPerGroup).
//
// K-means does not bound cluster sizes, so any oversized group is split
// with the balanced strategy before being returned. Seeding is
// deterministic: the northernmost target first, then repeatedly the target
// farthest from every chosen seed.
type GeographyAware struct {
	// MaxIterations caps Lloyd iterations; zero means 100.
	MaxIterations int
}

func (GeographyAware) Name() string { return StrategyGeographic }

func (g GeographyAware) Cluster(targets []domain.VisitTarget, maxPerGroup int) ([]domain.Cluster, error) {
	if err := checkClusterInput(targets, maxPerGroup); err != nil {
		return nil, fmt.Errorf("geographic clustering: %w", err)
	}

	n := len(targets)
	k := ceilDiv(n, maxPerGroup)
	if k == 1 {
		return []domain.Cluster{{Index: 0, Members: append([]domain.VisitTarget(nil), targets...)}}, nil
	}

	points := make([]domain.Coordinates, n)
	for i, t := range targets {
		points[i] = *t.Coords
	}

	iterations := g.MaxIterations
	if iterations <= 0 {
		iterations = defaultKMeansIterations
	}

	centroids := seedCentroids(points, k)
	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	for it := 0; it < iterations; it++ {
		changed := false
		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if best != assign[i] {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		centroids = recomputeCentroids(points, assign, centroids)
	}

	groups := make([]domain.Cluster, k)
	for i, t := range targets {
		groups[assign[i]].Members = append(groups[assign[i]].Members, t)
	}

	// Drops empty groups and splits the ones above capacity.
	return enforceCapacity(groups, maxPerGroup)
}

func seedCentroids(points []domain.Coordinates, k int) []domain.Coordinates {
	first := 0
	for i, p := range points {
		if p.Lat > points[first].Lat {
			first = i
		}
	}

	centroids := make([]domain.Coordinates, 0, k)
	centroids = append(centroids, points[first])

	minDist := make([]float64, len(points))
	for i, p := range points {
		minDist[i] = squaredDist(p, points[first])
	}

	for len(centroids) < k {
		far := 0
		for i := range points {
			if minDist[i] > minDist[far] {
				far = i
			}
		}
		c := points[far]
		centroids = append(centroids, c)
		for i, p := range points {
			minDist[i] = min(minDist[i], squaredDist(p, c))
		}
	}
	return centroids
}

// nearestCentroid returns the closest centroid index; ties go to the lowest index.
func nearestCentroid(p domain.Coordinates, centroids []domain.Coordinates) int {
	best := 0
	bestDist := squaredDist(p, centroids[0])
	for i := 1; i < len(centroids); i++ {
		if d := squaredDist(p, centroids[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// recomputeCentroids moves every centroid to the mean of its members.
// A centroid without members keeps its previous position.
func recomputeCentroids(points []domain.Coordinates, assign []int, prev []domain.Coordinates) []domain.Coordinates {
	sums := make([]domain.Coordinates, len(prev))
	counts := make([]int, len(prev))
	for i, p := range points {
		c := assign[i]
		sums[c].Lat += p.Lat
		sums[c].Lon += p.Lon
		counts[c]++
	}

	next := make([]domain.Coordinates, len(prev))
	for c := range prev {
		if counts[c] == 0 {
			next[c] = prev[c]
			continue
		}
		next[c] = domain.Coordinates{
			Lat: sums[c].Lat / float64(counts[c]),
			Lon: sums[c].Lon / float64(counts[c]),
		}
	}
	return next
}

func squaredDist(a, b domain.Coordinates) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return dLat*dLat + dLon*dLon
}
