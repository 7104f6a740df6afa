package domain

import (
	"math"
	"testing"
)

func TestSlotForCyclesThroughWeekdays(t *testing.T) {
	cases := []struct {
		idx  int
		want Slot
	}{
		{0, Slot{Week: 1, Day: "Monday"}},
		{4, Slot{Week: 1, Day: "Friday"}},
		{5, Slot{Week: 2, Day: "Monday"}},
		{12, Slot{Week: 3, Day: "Wednesday"}},
	}

	for _, c := range cases {
		if got := SlotFor(c.idx); got != c.want {
			t.Errorf("SlotFor(%d) = %+v, want %+v", c.idx, got, c.want)
		}
	}
}

func TestScheduleSummary(t *testing.T) {
	s := &Schedule{
		Visits: []Visit{
			{Week: 1, Day: "Monday", Sequence: 1, DistanceKm: 1.25},
			{Week: 1, Day: "Monday", Sequence: 2, DistanceKm: 2.5},
			{Week: 1, Day: "Tuesday", Sequence: 1, DistanceKm: 0.33},
			{Week: 2, Day: "Monday", Sequence: 1, DistanceKm: 10},
		},
	}

	sum := s.Summary()
	if sum.TotalClients != 4 {
		t.Fatalf("total clients = %d, want 4", sum.TotalClients)
	}
	if math.Abs(sum.TotalDistanceKm-14.08) > 1e-9 {
		t.Fatalf("total distance = %v, want 14.08", sum.TotalDistanceKm)
	}
	if sum.Days != 3 {
		t.Fatalf("days = %d, want 3", sum.Days)
	}
	if sum.Weeks != 2 {
		t.Fatalf("weeks = %d, want 2", sum.Weeks)
	}
}

func TestClusterCentroid(t *testing.T) {
	c := Cluster{Members: []VisitTarget{
		{TargetID: "a", Coords: &Coordinates{Lat: 48, Lon: -1}},
		{TargetID: "b", Coords: &Coordinates{Lat: 46, Lon: -3}},
	}}

	got, ok := c.Centroid()
	if !ok {
		t.Fatal("expected centroid for non-empty cluster")
	}
	if got.Lat != 47 || got.Lon != -2 {
		t.Fatalf("centroid = %v, want (47, -2)", got)
	}

	if _, ok := (Cluster{}).Centroid(); ok {
		t.Fatal("empty cluster must not have a centroid")
	}
}

func TestVisitTargetResolvedAndFullAddress(t *testing.T) {
	tgt := VisitTarget{Street: " 3 rue de la Paix ", PostalCode: "", City: "Rennes"}
	if tgt.Resolved() {
		t.Fatal("target without coordinates must not be resolved")
	}
	if got := tgt.FullAddress("France"); got != "3 rue de la Paix, Rennes, France" {
		t.Fatalf("full address = %q", got)
	}

	tgt.Coords = &Coordinates{Lat: 91, Lon: 0}
	if tgt.Resolved() {
		t.Fatal("latitude 91 must be invalid")
	}
	tgt.Coords = &Coordinates{Lat: math.NaN(), Lon: 0}
	if tgt.Resolved() {
		t.Fatal("NaN latitude must be invalid")
	}
	tgt.Coords = &Coordinates{Lat: 48.1, Lon: -1.68}
	if !tgt.Resolved() {
		t.Fatal("expected resolved target")
	}
}
