package services

import (
	"fmt"
	"visit-planner-service/internal/domain"
)

// AssignSchedule stamps each cluster's visits with the calendar slot of its
// ordinal position and concatenates them in cluster order.
// sequenced[i] must hold the visits of ordered[i].
func AssignSchedule(ordered []domain.Cluster, sequenced [][]domain.Visit) ([]domain.Visit, error) {
	if len(ordered) != len(sequenced) {
		return nil, fmt.Errorf(
			"assign schedule: clusters and sequences differ in length: clusters=%d sequences=%d",
			len(ordered), len(sequenced),
		)
	}

	total := 0
	for _, s := range sequenced {
		total += len(s)
	}

	out := make([]domain.Visit, 0, total)
	for idx, visits := range sequenced {
		if len(visits) != len(ordered[idx].Members) {
			return nil, fmt.Errorf(
				"assign schedule: cluster %d has %d members but %d visits",
				ordered[idx].Index, len(ordered[idx].Members), len(visits),
			)
		}

		slot := domain.SlotFor(idx)
		for _, v := range visits {
			v.Week = slot.Week
			v.Day = slot.Day
			out = append(out, v)
		}
	}

	return out, nil
}
