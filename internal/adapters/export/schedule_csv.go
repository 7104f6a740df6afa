package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"visit-planner-service/internal/domain"
)

// ScheduleHeader is the column layout of an exported schedule.
var ScheduleHeader = []string{
	"week", "day", "order", "name", "address", "postal code", "city",
	"latitude", "longitude", "distance km",
}

// WriteScheduleCSV writes one row per visit in schedule order.
func WriteScheduleCSV(w io.Writer, s *domain.Schedule) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ScheduleHeader); err != nil {
		return fmt.Errorf("export schedule: write header: %w", err)
	}

	for _, v := range s.Visits {
		var lat, lon string
		if v.Target.Coords != nil {
			lat = formatFloat(v.Target.Coords.Lat, 6)
			lon = formatFloat(v.Target.Coords.Lon, 6)
		}
		row := []string{
			strconv.Itoa(v.Week),
			v.Day,
			strconv.Itoa(v.Sequence),
			v.Target.Name,
			v.Target.Street,
			v.Target.PostalCode,
			v.Target.City,
			lat,
			lon,
			formatFloat(v.DistanceKm, 2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export schedule: write visit %q: %w", v.Target.TargetID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export schedule: flush: %w", err)
	}
	return nil
}

// FileName is the suggested attachment name for an exported schedule.
func FileName(s *domain.Schedule) string {
	return fmt.Sprintf("planning_%s.csv", s.ID)
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
