package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"visit-planner-service/internal/domain"
	"visit-planner-service/internal/platform/metrics"
	"visit-planner-service/internal/platform/obs"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type PlanRequest struct {
	// ID is copied to Schedule.ID. Plan never invents one, so identical
	// requests yield identical schedules.
	ID          string
	Targets     []domain.VisitTarget
	Depot       domain.Coordinates
	MaxPerGroup int
	// MinPerGroup is advisory: undersized clusters are reported in
	// Schedule.Warnings but never merged or dropped.
	MinPerGroup int
	// Strategy defaults to BalancedChunking when nil.
	Strategy ClusteringStrategy
}

// Plan partitions the targets into capacity-bounded clusters, orders the
// clusters by centroid distance to the depot, sequences each cluster with a
// nearest-neighbor walk from the depot and maps clusters onto the weekly
// calendar.
//
// The run is a pure function of its input: identical requests produce
// identical visits. Clusters are sequenced concurrently but results are
// collected by ordinal, so output never depends on goroutine scheduling.
func Plan(ctx context.Context, req PlanRequest) (_ *domain.Schedule, err error) {
	defer obs.Time(ctx, "services.Plan")(&err)

	strategy := req.Strategy
	if strategy == nil {
		strategy = BalancedChunking{}
	}

	defer func() {
		outcome := "ok"
		switch {
		case errors.Is(err, ErrInvalidInput):
			outcome = "invalid_input"
		case err != nil:
			outcome = "error"
		}
		metrics.PlanRuns.WithLabelValues(strategy.Name(), outcome).Inc()
	}()

	if err := validatePlanRequest(req); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	clusters, err := strategy.Cluster(req.Targets, req.MaxPerGroup)
	if err != nil {
		return nil, fmt.Errorf("plan: cluster with %s: %w", strategy.Name(), err)
	}

	if err := checkPartition(req.Targets, clusters); err != nil {
		return nil, fmt.Errorf("plan: strategy %s returned an invalid partition: %w", strategy.Name(), err)
	}
	// Third-party strategies get the same capacity guarantee as the built-in ones.
	clusters, err = enforceCapacity(clusters, req.MaxPerGroup)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	ordered, err := OrderClusters(clusters, req.Depot)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	sequenced := make([][]domain.Visit, len(ordered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range ordered {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			visits, err := SequenceCluster(c, req.Depot)
			if err != nil {
				return err
			}
			sequenced[i] = visits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("plan: sequence clusters: %w", err)
	}

	visits, err := AssignSchedule(ordered, sequenced)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	schedule := &domain.Schedule{
		ID:          req.ID,
		Depot:       req.Depot,
		Strategy:    strategy.Name(),
		MaxPerGroup: req.MaxPerGroup,
		MinPerGroup: req.MinPerGroup,
		Visits:      visits,
		Warnings:    undersizedWarnings(ordered, req.MinPerGroup),
	}

	for _, w := range schedule.Warnings {
		log.Warn().Str("req_id", obs.RequestID(ctx)).Msg(w)
	}
	metrics.PlannedVisits.Observe(float64(len(visits)))

	return schedule, nil
}

func validatePlanRequest(req PlanRequest) error {
	if len(req.Targets) == 0 {
		return fmt.Errorf("%w: target list must not be empty", ErrInvalidInput)
	}
	if req.MaxPerGroup <= 0 {
		return fmt.Errorf("%w: max per group must be positive, got %d", ErrInvalidInput, req.MaxPerGroup)
	}
	if req.MinPerGroup < 0 {
		return fmt.Errorf("%w: min per group must not be negative, got %d", ErrInvalidInput, req.MinPerGroup)
	}
	if !req.Depot.Valid() {
		return fmt.Errorf("%w: depot %v is not a valid coordinate", ErrInvalidInput, req.Depot)
	}
	for i, t := range req.Targets {
		if !t.Resolved() {
			return fmt.Errorf("%w: target %q at index %d has no resolved coordinate", ErrInvalidInput, t.TargetID, i)
		}
	}
	return nil
}

// undersizedWarnings flags clusters below the advisory minimum, in calendar order.
func undersizedWarnings(ordered []domain.Cluster, minPerGroup int) []string {
	var out []string
	for idx, c := range ordered {
		if c.Size() < minPerGroup {
			slot := domain.SlotFor(idx)
			out = append(out, fmt.Sprintf(
				"week %d %s has %d visits, below the minimum of %d",
				slot.Week, slot.Day, c.Size(), minPerGroup,
			))
		}
	}
	return out
}
