package domain

import "math"

// Weekly cycle of working days onto which clusters are mapped.
var Weekdays = [5]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// Slot is the calendar position of one cluster.
type Slot struct {
	Week int
	Day  string
}

// SlotFor maps a 0-based cluster ordinal onto the weekly cycle.
func SlotFor(idx int) Slot {
	return Slot{
		Week: idx/len(Weekdays) + 1,
		Day:  Weekdays[idx%len(Weekdays)],
	}
}

// Represents one scheduled stop.
// DistanceKm is the great-circle distance from the previous stop, or from
// the depot for the first stop of a day, rounded to 2 decimals.
type Visit struct {
	Target     VisitTarget
	Week       int
	Day        string
	Sequence   int
	DistanceKm float64
}

// Represents the output of a planning run.
// Visits are ordered by (week, weekday) then by sequence. A Schedule is
// immutable planning data and contains no side effects.
type Schedule struct {
	ID          string
	Depot       Coordinates
	Strategy    string
	MaxPerGroup int
	MinPerGroup int
	Visits      []Visit
	Warnings    []string
}

// Aggregate figures reported alongside a schedule.
type Summary struct {
	TotalClients    int
	TotalDistanceKm float64
	Days            int
	Weeks           int
}

// TotalDistanceKm sums the per-visit distances, rounded to 2 decimals.
func (s *Schedule) TotalDistanceKm() float64 {
	var total float64
	for _, v := range s.Visits {
		total += v.DistanceKm
	}
	return Round2(total)
}

// Days returns the number of distinct (week, day) slots used.
func (s *Schedule) Days() int {
	seen := make(map[Slot]struct{})
	for _, v := range s.Visits {
		seen[Slot{Week: v.Week, Day: v.Day}] = struct{}{}
	}
	return len(seen)
}

func (s *Schedule) Summary() Summary {
	weeks := 0
	for _, v := range s.Visits {
		if v.Week > weeks {
			weeks = v.Week
		}
	}
	return Summary{
		TotalClients:    len(s.Visits),
		TotalDistanceKm: s.TotalDistanceKm(),
		Days:            s.Days(),
		Weeks:           weeks,
	}
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
