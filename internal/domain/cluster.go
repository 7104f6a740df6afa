package domain

// A group of targets visited together on a single day.
// Index is the creation index assigned by the clustering strategy and
// serves as the deterministic tie-break when clusters are ordered.
type Cluster struct {
	Index   int
	Members []VisitTarget
}

// Centroid returns the arithmetic mean of member latitudes and longitudes.
// The second result is false for an empty cluster.
func (c Cluster) Centroid() (Coordinates, bool) {
	if len(c.Members) == 0 {
		return Coordinates{}, false
	}

	var lat, lon float64
	for _, m := range c.Members {
		lat += m.Coords.Lat
		lon += m.Coords.Lon
	}
	n := float64(len(c.Members))
	return Coordinates{Lat: lat / n, Lon: lon / n}, true
}

func (c Cluster) Size() int { return len(c.Members) }
