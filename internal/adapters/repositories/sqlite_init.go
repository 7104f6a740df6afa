package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"visit-planner-service/internal/domain"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTargetsQuery := `
	CREATE TABLE IF NOT EXISTS targets (
		target_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		street TEXT NOT NULL DEFAULT '',
		postal_code TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		lat REAL,
		lon REAL
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lat REAL NOT NULL,
        lon REAL NOT NULL
    );
	`

	createToursQuery := `
	CREATE TABLE IF NOT EXISTS tours (
		tour_id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		strategy TEXT NOT NULL,
		depot_lat REAL NOT NULL,
		depot_lon REAL NOT NULL,
		max_per_group INTEGER NOT NULL,
		min_per_group INTEGER NOT NULL
	);
	`

	createTourVisitsQuery := `
	CREATE TABLE IF NOT EXISTS tour_visits (
		tour_id TEXT NOT NULL REFERENCES tours(tour_id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		target_id TEXT NOT NULL,
		name TEXT NOT NULL,
		street TEXT NOT NULL,
		postal_code TEXT NOT NULL,
		city TEXT NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		week INTEGER NOT NULL,
		day TEXT NOT NULL,
		sequence INTEGER NOT NULL,
		distance_km REAL NOT NULL,
		PRIMARY KEY (tour_id, position)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_tours_created_at
    ON tours(created_at);
	`

	statements := []string{
		createTargetsQuery,
		createGeocodeCacheQuery,
		createToursQuery,
		createTourVisitsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type TargetSeed struct {
	TargetID   string   `json:"target_id"`
	Name       string   `json:"name"`
	Street     string   `json:"street"`
	PostalCode string   `json:"postal_code"`
	City       string   `json:"city"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
}

// ParseSeeds validates seed records and converts them to targets.
func ParseSeeds(data []TargetSeed) ([]domain.VisitTarget, error) {
	out := make([]domain.VisitTarget, 0, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.TargetID)
		if id == "" {
			return nil, fmt.Errorf("seed targets: item at index %d: target_id cannot be empty", i+1)
		}

		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("seed targets: item %q: name cannot be empty", id)
		}

		t := domain.VisitTarget{
			TargetID:   id,
			Name:       name,
			Street:     item.Street,
			PostalCode: item.PostalCode,
			City:       item.City,
		}
		if (item.Lat == nil) != (item.Lon == nil) {
			return nil, fmt.Errorf("seed targets: item %q: lat and lon must be set together", id)
		}
		if item.Lat != nil {
			t.Coords = &domain.Coordinates{Lat: *item.Lat, Lon: *item.Lon}
			if !t.Coords.Valid() {
				return nil, fmt.Errorf("seed targets: item %q: invalid coordinate %v", id, *t.Coords)
			}
		}
		out = append(out, t)
	}
	return out, nil
}

// Populate the database with client records from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed targets: read %q: %w", jsonPath, err)
	}

	var data []TargetSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed targets: parse json: %w", err)
	}

	targets, err := ParseSeeds(data)
	if err != nil {
		return err
	}

	repo := NewSqliteTargetRepository(db)
	if err := repo.UpsertTargets(context.Background(), targets); err != nil {
		return fmt.Errorf("seed targets: %w", err)
	}

	return nil
}
