package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"visit-planner-service/internal/domain"
)

// SQLite-backed implementation of the TargetRepository port.
type SqliteTargetRepository struct{ DB *sql.DB }

func NewSqliteTargetRepository(db *sql.DB) *SqliteTargetRepository {
	return &SqliteTargetRepository{DB: db}
}

// Return all targets stored in the database, ordered by id.
func (s *SqliteTargetRepository) ListTargets(ctx context.Context) ([]domain.VisitTarget, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite target repository: DB is nil")
	}

	query := `
	SELECT
		target_id,
		name,
		street,
		postal_code,
		city,
		lat,
		lon
	FROM targets
	ORDER BY target_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list targets: query targets table: %w", err)
	}
	defer rows.Close()

	targets := make([]domain.VisitTarget, 0, 64)
	for rows.Next() {
		var t domain.VisitTarget
		var lat, lon sql.NullFloat64
		err := rows.Scan(&t.TargetID, &t.Name, &t.Street, &t.PostalCode, &t.City, &lat, &lon)
		if err != nil {
			return nil, fmt.Errorf("list targets: scan row: %w", err)
		}
		if lat.Valid && lon.Valid {
			t.Coords = &domain.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
		}
		targets = append(targets, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list targets: row iteration: %w", err)
	}

	return targets, nil
}

// Store the geocoded coordinate of a target.
func (s *SqliteTargetRepository) UpdateCoordinates(ctx context.Context, targetID string, coords domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("sqlite target repository: DB is nil")
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE targets SET lat = ?, lon = ? WHERE target_id = ?;`, coords.Lat, coords.Lon, targetID)
	if err != nil {
		return fmt.Errorf("update coordinates %q: %w", targetID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update coordinates %q: rows affected: %w", targetID, err)
	}
	if n == 0 {
		return fmt.Errorf("update coordinates: target %q not found", targetID)
	}
	return nil
}

// Insert or replace targets in a single transaction.
func (s *SqliteTargetRepository) UpsertTargets(ctx context.Context, targets []domain.VisitTarget) error {
	if s.DB == nil {
		return errors.New("sqlite target repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert targets: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO targets (
		target_id,
		name,
		street,
		postal_code,
		city,
		lat,
		lon
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("upsert targets: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range targets {
		var lat, lon sql.NullFloat64
		if t.Coords != nil {
			lat = sql.NullFloat64{Float64: t.Coords.Lat, Valid: true}
			lon = sql.NullFloat64{Float64: t.Coords.Lon, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, t.TargetID, t.Name, t.Street, t.PostalCode, t.City, lat, lon); err != nil {
			return fmt.Errorf("upsert targets: insert target_id=%q: %w", t.TargetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert targets: commit tx: %w", err)
	}

	return nil
}
