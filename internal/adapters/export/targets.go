package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"visit-planner-service/internal/adapters/repositories"
	"visit-planner-service/internal/domain"
)

// Header aliases, matched case-insensitively in priority order.
var columnAliases = map[string][]string{
	"id":     {"target_id", "id", "code client"},
	"name":   {"nom client", "client", "nom", "name"},
	"street": {"adresse 2", "adresse", "address"},
	"postal": {"code postal", "postal", "zip"},
	"city":   {"ville", "city"},
	"lat":    {"latitude", "lat"},
	"lon":    {"longitude", "lon", "lng"},
}

// DetectColumns maps logical fields to column indexes of header.
// Fields without a matching column are absent from the result.
func DetectColumns(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	mapping := make(map[string]int, len(columnAliases))
	for field, aliases := range columnAliases {
		for _, a := range aliases {
			if i, ok := index[a]; ok {
				mapping[field] = i
				break
			}
		}
	}
	return mapping
}

// ReadTargetsCSV parses client records from a CSV export.
//
// A name column is required. Rows without an id column get "row-N" ids.
// Latitude and longitude are optional; when present and valid the target
// is already resolved and skips geocoding.
func ReadTargetsCSV(r io.Reader) ([]domain.VisitTarget, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read targets csv: empty file")
		}
		return nil, fmt.Errorf("read targets csv: header: %w", err)
	}

	cols := DetectColumns(header)
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("read targets csv: no name column in header %q", header)
	}

	var out []domain.VisitTarget
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read targets csv: line %d: %w", line, err)
		}
		if blank(rec) {
			continue
		}

		t := domain.VisitTarget{
			TargetID:   field(rec, cols, "id"),
			Name:       field(rec, cols, "name"),
			Street:     field(rec, cols, "street"),
			PostalCode: field(rec, cols, "postal"),
			City:       field(rec, cols, "city"),
		}
		if t.TargetID == "" {
			t.TargetID = fmt.Sprintf("row-%d", line)
		}

		coords, err := parseCoords(field(rec, cols, "lat"), field(rec, cols, "lon"))
		if err != nil {
			return nil, fmt.Errorf("read targets csv: line %d: %w", line, err)
		}
		t.Coords = coords

		out = append(out, t)
	}
	return out, nil
}

// ReadTargetsJSON parses the seed file format.
func ReadTargetsJSON(r io.Reader) ([]domain.VisitTarget, error) {
	var data []repositories.TargetSeed
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("read targets json: %w", err)
	}
	return repositories.ParseSeeds(data)
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseCoords accepts both "." and "," as decimal separator.
func parseCoords(lat, lon string) (*domain.Coordinates, error) {
	if lat == "" || lon == "" {
		return nil, nil
	}
	la, err := strconv.ParseFloat(strings.Replace(lat, ",", ".", 1), 64)
	if err != nil {
		return nil, fmt.Errorf("latitude %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(strings.Replace(lon, ",", ".", 1), 64)
	if err != nil {
		return nil, fmt.Errorf("longitude %q: %w", lon, err)
	}
	c := domain.Coordinates{Lat: la, Lon: lo}
	if !c.Valid() {
		return nil, fmt.Errorf("invalid coordinate %v", c)
	}
	return &c, nil
}
