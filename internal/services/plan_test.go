package services

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"visit-planner-service/internal/domain"
	"visit-planner-service/internal/geo"
)

func TestPlanSingleCluster(t *testing.T) {
	req := PlanRequest{
		Targets: []domain.VisitTarget{
			target("a", 48.0, -1.0),
			target("b", 48.1, -1.0),
			target("c", 47.0, -2.0),
		},
		Depot:       domain.Coordinates{Lat: 48.0, Lon: -1.5},
		MaxPerGroup: 3,
	}

	s, err := Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Visits) != 3 {
		t.Fatalf("visits = %d, want 3", len(s.Visits))
	}
	for i, v := range s.Visits {
		if v.Week != 1 || v.Day != domain.Weekdays[0] {
			t.Fatalf("visit %d slot = (%d, %s)", i, v.Week, v.Day)
		}
		if v.Sequence != i+1 {
			t.Fatalf("visit %d sequence = %d", i, v.Sequence)
		}
	}
	if s.Visits[0].Target.TargetID != "a" {
		t.Fatalf("first visit = %q, want nearest-to-depot a", s.Visits[0].Target.TargetID)
	}
	if s.ID != "" {
		t.Fatalf("schedule id = %q, want empty when not pinned", s.ID)
	}
	if s.Strategy != StrategyBalanced {
		t.Fatalf("strategy = %q", s.Strategy)
	}
}

func TestPlanSevenTargetsTwoDays(t *testing.T) {
	s, err := Plan(context.Background(), PlanRequest{
		Targets:     grid(7),
		Depot:       domain.Coordinates{Lat: 48.05, Lon: -1.6},
		MaxPerGroup: 6,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	perDay := map[string]int{}
	for _, v := range s.Visits {
		if v.Week != 1 {
			t.Fatalf("visit in week %d, want 1", v.Week)
		}
		perDay[v.Day]++
	}
	if len(perDay) != 2 {
		t.Fatalf("days used = %v, want Monday and Tuesday", perDay)
	}
	got := []int{perDay["Monday"], perDay["Tuesday"]}
	if !(got[0] == 4 && got[1] == 3) && !(got[0] == 3 && got[1] == 4) {
		t.Fatalf("day sizes = %v, want {4,3}", got)
	}
}

func TestPlanInvalidInput(t *testing.T) {
	depot := domain.Coordinates{Lat: 48, Lon: -1.5}
	cases := map[string]PlanRequest{
		"empty targets": {Depot: depot, MaxPerGroup: 3},
		"zero capacity": {Targets: grid(3), Depot: depot, MaxPerGroup: 0},
		"negative min":  {Targets: grid(3), Depot: depot, MaxPerGroup: 3, MinPerGroup: -1},
		"bad depot":     {Targets: grid(3), Depot: domain.Coordinates{Lat: 95}, MaxPerGroup: 3},
		"unresolved": {
			Targets:     append(grid(2), domain.VisitTarget{TargetID: "missing"}),
			Depot:       depot,
			MaxPerGroup: 3,
		},
	}

	for name, req := range cases {
		if _, err := Plan(context.Background(), req); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: err = %v, want ErrInvalidInput", name, err)
		}
	}
}

func TestPlanKeepsUndersizedClusters(t *testing.T) {
	s, err := Plan(context.Background(), PlanRequest{
		Targets:     grid(11),
		Depot:       domain.Coordinates{Lat: 48, Lon: -1.5},
		MaxPerGroup: 5,
		MinPerGroup: 4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Visits) != 11 {
		t.Fatalf("visits = %d, want 11", len(s.Visits))
	}
	if s.Days() != 3 {
		t.Fatalf("days = %d, want 3", s.Days())
	}
	if len(s.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one undersized cluster", s.Warnings)
	}
}

func TestPlanPropertiesAcrossStrategies(t *testing.T) {
	depot := domain.Coordinates{Lat: 48.1, Lon: -1.6}
	targets := grid(29)

	for _, strategy := range []ClusteringStrategy{BalancedChunking{}, GeographyAware{}} {
		s, err := Plan(context.Background(), PlanRequest{
			Targets:     targets,
			Depot:       depot,
			MaxPerGroup: 4,
			Strategy:    strategy,
		})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", strategy.Name(), err)
		}

		if len(s.Visits) != len(targets) {
			t.Fatalf("%s: visits = %d, want %d", strategy.Name(), len(s.Visits), len(targets))
		}

		seen := map[string]bool{}
		perSlot := map[domain.Slot]int{}
		for _, v := range s.Visits {
			if seen[v.Target.TargetID] {
				t.Fatalf("%s: target %q scheduled twice", strategy.Name(), v.Target.TargetID)
			}
			seen[v.Target.TargetID] = true
			perSlot[domain.Slot{Week: v.Week, Day: v.Day}]++

			// Every day starts from the depot.
			if v.Sequence == 1 {
				want := domain.Round2(geo.Distance(depot, *v.Target.Coords))
				if v.DistanceKm != want {
					t.Fatalf("%s: first leg = %v, want %v", strategy.Name(), v.DistanceKm, want)
				}
			}
		}
		for slot, n := range perSlot {
			if n > 4 {
				t.Fatalf("%s: %+v holds %d visits, max is 4", strategy.Name(), slot, n)
			}
		}
	}
}

func TestPlanDeterministic(t *testing.T) {
	targets := []domain.VisitTarget{
		target("a", 48, -1.5),
		target("b", 48, -1.5),
		target("c", 48.2, -1.5),
		target("d", 47.8, -1.5),
		target("e", 48, -1.3),
		target("f", 48, -1.7),
		target("g", 48.2, -1.5),
	}
	req := PlanRequest{
		Targets:     targets,
		Depot:       domain.Coordinates{Lat: 48, Lon: -1.5},
		MaxPerGroup: 2,
		MinPerGroup: 2,
	}

	for _, strategy := range []ClusteringStrategy{BalancedChunking{}, GeographyAware{}} {
		req.Strategy = strategy
		first, err := Plan(context.Background(), req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := 0; i < 10; i++ {
			again, err := Plan(context.Background(), req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(first, again) {
				t.Fatalf("%s: run %d differs from first run", strategy.Name(), i)
			}
		}
	}
}

func TestPlanDegenerateGeometry(t *testing.T) {
	depot := domain.Coordinates{Lat: 48, Lon: -1.5}
	targets := []domain.VisitTarget{
		target("a", 48, -1.5),
		target("b", 48, -1.5),
		target("c", 48, -1.5),
	}

	s, err := Plan(context.Background(), PlanRequest{Targets: targets, Depot: depot, MaxPerGroup: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.TotalDistanceKm() != 0 {
		t.Fatalf("total distance = %v, want 0", s.TotalDistanceKm())
	}
	if s.Visits[0].Day != "Monday" || s.Visits[2].Day != "Tuesday" {
		t.Fatalf("unexpected calendar: %+v", s.Visits)
	}
}

type oversizedStrategy struct{ dropLast bool }

func (oversizedStrategy) Name() string { return "oversized" }

func (s oversizedStrategy) Cluster(targets []domain.VisitTarget, _ int) ([]domain.Cluster, error) {
	members := targets
	if s.dropLast {
		members = targets[:len(targets)-1]
	}
	return []domain.Cluster{{Members: members}}, nil
}

func TestPlanEnforcesCapacityForCustomStrategy(t *testing.T) {
	s, err := Plan(context.Background(), PlanRequest{
		Targets:     grid(9),
		Depot:       domain.Coordinates{Lat: 48, Lon: -1.5},
		MaxPerGroup: 4,
		Strategy:    oversizedStrategy{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Days() != 3 {
		t.Fatalf("days = %d, want 3", s.Days())
	}

	_, err = Plan(context.Background(), PlanRequest{
		Targets:     grid(9),
		Depot:       domain.Coordinates{Lat: 48, Lon: -1.5},
		MaxPerGroup: 4,
		Strategy:    oversizedStrategy{dropLast: true},
	})
	if err == nil {
		t.Fatal("expected error for a strategy that loses targets")
	}
}

// Shares the target values with the input but strips the coordinate.
type strippedStrategy struct{}

func (strippedStrategy) Name() string { return "stripped" }

func (strippedStrategy) Cluster(targets []domain.VisitTarget, _ int) ([]domain.Cluster, error) {
	members := make([]domain.VisitTarget, len(targets))
	copy(members, targets)
	members[0].Coords = nil
	return []domain.Cluster{{Members: members}}, nil
}

func TestPlanRejectsStrategyThatDropsCoordinates(t *testing.T) {
	_, err := Plan(context.Background(), PlanRequest{
		Targets:     grid(3),
		Depot:       domain.Coordinates{Lat: 48, Lon: -1.5},
		MaxPerGroup: 4,
		Strategy:    strippedStrategy{},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPlanHugeMaxPerGroupIsOneDay(t *testing.T) {
	for _, strategy := range []ClusteringStrategy{BalancedChunking{}, GeographyAware{}} {
		s, err := Plan(context.Background(), PlanRequest{
			Targets:     grid(3),
			Depot:       domain.Coordinates{Lat: 48, Lon: -1.5},
			MaxPerGroup: math.MaxInt,
			Strategy:    strategy,
		})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", strategy.Name(), err)
		}
		if s.Days() != 1 || len(s.Visits) != 3 {
			t.Fatalf("%s: days = %d visits = %d, want 1 and 3", strategy.Name(), s.Days(), len(s.Visits))
		}
	}
}
