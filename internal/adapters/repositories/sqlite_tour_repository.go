package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"visit-planner-service/internal/domain"
)

// SQLite-backed history of planned schedules.
type SqliteTourRepository struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewSqliteTourRepository(db *sql.DB) *SqliteTourRepository {
	return &SqliteTourRepository{DB: db, Now: time.Now}
}

// Persist a schedule and its visits in one transaction.
func (s *SqliteTourRepository) SaveSchedule(ctx context.Context, sched *domain.Schedule) error {
	if s.DB == nil {
		return errors.New("sqlite tour repository: DB is nil")
	}
	if sched == nil || sched.ID == "" {
		return errors.New("save schedule: schedule id must be non-empty")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save schedule %s: begin tx: %w", sched.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO tours (
		tour_id,
		created_at,
		strategy,
		depot_lat,
		depot_lon,
		max_per_group,
		min_per_group
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`,
		sched.ID,
		s.Now().UTC().Format(time.RFC3339Nano),
		sched.Strategy,
		sched.Depot.Lat,
		sched.Depot.Lon,
		sched.MaxPerGroup,
		sched.MinPerGroup,
	)
	if err != nil {
		return fmt.Errorf("save schedule %s: insert tour: %w", sched.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO tour_visits (
		tour_id, position, target_id, name, street, postal_code, city,
		lat, lon, week, day, sequence, distance_km
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("save schedule %s: prepare visits: %w", sched.ID, err)
	}
	defer stmt.Close()

	for i, v := range sched.Visits {
		t := v.Target
		if t.Coords == nil {
			return fmt.Errorf("save schedule %s: visit %d has no coordinate", sched.ID, i+1)
		}
		_, err := stmt.ExecContext(ctx,
			sched.ID, i, t.TargetID, t.Name, t.Street, t.PostalCode, t.City,
			t.Coords.Lat, t.Coords.Lon, v.Week, v.Day, v.Sequence, v.DistanceKm,
		)
		if err != nil {
			return fmt.Errorf("save schedule %s: insert visit %d: %w", sched.ID, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save schedule %s: commit tx: %w", sched.ID, err)
	}
	return nil
}

// Return stored tour headers, newest first.
func (s *SqliteTourRepository) ListTours(ctx context.Context) ([]domain.TourHeader, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite tour repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT
		t.tour_id,
		t.created_at,
		t.strategy,
		COUNT(v.position),
		COALESCE(SUM(v.distance_km), 0)
	FROM tours t
	LEFT JOIN tour_visits v ON v.tour_id = t.tour_id
	GROUP BY t.tour_id, t.created_at, t.strategy
	ORDER BY t.created_at DESC, t.tour_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list tours: query tours table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TourHeader, 0)
	for rows.Next() {
		var h domain.TourHeader
		var created string
		if err := rows.Scan(&h.TourID, &created, &h.Strategy, &h.TotalClients, &h.TotalDistanceKm); err != nil {
			return nil, fmt.Errorf("list tours: scan row: %w", err)
		}
		h.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("list tours: parse created_at %q: %w", created, err)
		}
		h.TotalDistanceKm = domain.Round2(h.TotalDistanceKm)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tours: row iteration: %w", err)
	}

	return out, nil
}

// Load a stored schedule with its visits in calendar order.
func (s *SqliteTourRepository) GetSchedule(ctx context.Context, id string) (*domain.Schedule, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite tour repository: DB is nil")
	}

	sched := &domain.Schedule{ID: id}
	err := s.DB.QueryRowContext(ctx, `
	SELECT strategy, depot_lat, depot_lon, max_per_group, min_per_group
	FROM tours
	WHERE tour_id = ?;
	`, id).Scan(&sched.Strategy, &sched.Depot.Lat, &sched.Depot.Lon, &sched.MaxPerGroup, &sched.MinPerGroup)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get schedule %s: %w", id, domain.ErrTourNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule %s: query tour: %w", id, err)
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT target_id, name, street, postal_code, city, lat, lon, week, day, sequence, distance_km
	FROM tour_visits
	WHERE tour_id = ?
	ORDER BY position;
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get schedule %s: query visits: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var v domain.Visit
		var c domain.Coordinates
		err := rows.Scan(
			&v.Target.TargetID, &v.Target.Name, &v.Target.Street, &v.Target.PostalCode, &v.Target.City,
			&c.Lat, &c.Lon, &v.Week, &v.Day, &v.Sequence, &v.DistanceKm,
		)
		if err != nil {
			return nil, fmt.Errorf("get schedule %s: scan visit: %w", id, err)
		}
		v.Target.Coords = &c
		sched.Visits = append(sched.Visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get schedule %s: row iteration: %w", id, err)
	}

	return sched, nil
}
