package services

import (
	"context"
	"fmt"
	"visit-planner-service/internal/domain"
	"visit-planner-service/internal/platform/obs"
	"visit-planner-service/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultGeocodeLimit caps provider lookups per run.
const DefaultGeocodeLimit = 50

type ResolveOptions struct {
	// Country is appended to every address before lookup.
	Country      string
	// Limit caps geocoder calls; targets past the cap stay unresolved.
	// Zero or negative disables the cap.
	Limit int
}

// ResolveTargets fills in missing coordinates through the geocoder.
//
// Targets that cannot be located (no match, provider failure or lookup
// cap reached) are returned separately and never reach the planner.
// Only context cancellation aborts the pass. onResolved, when non-nil,
// is called for every freshly geocoded target.
func ResolveTargets(
	ctx context.Context,
	targets []domain.VisitTarget,
	geocoder ports.Geocoder,
	opts ResolveOptions,
	onResolved func(domain.VisitTarget),
) (resolved []domain.VisitTarget, unresolved []domain.VisitTarget, err error) {
	defer obs.Time(ctx, "services.ResolveTargets")(&err)

	lookups := 0
	for _, t := range targets {
		if t.Resolved() {
			resolved = append(resolved, t)
			continue
		}

		address := t.FullAddress(opts.Country)
		if geocoder == nil || address == "" || (opts.Limit > 0 && lookups >= opts.Limit) {
			unresolved = append(unresolved, t)
			continue
		}
		lookups++

		coords, found, gerr := geocoder.Geocode(ctx, address)
		if gerr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, fmt.Errorf("resolve targets: %w", ctxErr)
			}
			log.Warn().Err(gerr).Str("target_id", t.TargetID).Str("address", address).Msg("geocode failed")
			unresolved = append(unresolved, t)
			continue
		}
		if !found || !coords.Valid() {
			unresolved = append(unresolved, t)
			continue
		}

		c := coords
		t.Coords = &c
		resolved = append(resolved, t)
		if onResolved != nil {
			onResolved(t)
		}
	}

	return resolved, unresolved, nil
}

// ResolveDepot returns the explicit depot when set, otherwise geocodes
// address. A depot that cannot be located fails with ErrDepotNotFound.
func ResolveDepot(
	ctx context.Context,
	depot *domain.Coordinates,
	address string,
	country string,
	geocoder ports.Geocoder,
) (domain.Coordinates, error) {
	if depot != nil {
		if !depot.Valid() {
			return domain.Coordinates{}, fmt.Errorf("resolve depot: %w: depot %v is not a valid coordinate", ErrInvalidInput, *depot)
		}
		return *depot, nil
	}

	full := (domain.VisitTarget{City: address}).FullAddress(country)
	if address == "" || geocoder == nil {
		return domain.Coordinates{}, fmt.Errorf("resolve depot: %w: no depot coordinate or address", ErrInvalidInput)
	}

	coords, found, err := geocoder.Geocode(ctx, full)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("resolve depot %q: %w: %w", full, ErrDepotNotFound, err)
	}
	if !found || !coords.Valid() {
		return domain.Coordinates{}, fmt.Errorf("resolve depot %q: %w", full, ErrDepotNotFound)
	}
	return coords, nil
}

type PlanToursRequest struct {
	DepotAddress string
	// Depot takes precedence over DepotAddress when set.
	Depot        *domain.Coordinates
	Country      string
	// GeocodeLimit caps provider lookups: zero uses DefaultGeocodeLimit,
	// negative disables the cap.
	GeocodeLimit int
	MaxPerGroup  int
	MinPerGroup  int
	Strategy     ClusteringStrategy
}

type PlanToursResult struct {
	Schedule   *domain.Schedule
	Unresolved []domain.VisitTarget
}

// PlanTours runs a full planning pass over the stored targets: geocode the
// ones without coordinates, plan the resolved ones and record the tour.
// tours may be nil to skip persistence.
func PlanTours(
	ctx context.Context,
	req PlanToursRequest,
	repo ports.TargetRepository,
	geocoder ports.Geocoder,
	tours ports.TourRepository,
) (*PlanToursResult, error) {
	targets, err := repo.ListTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan tours: list targets: %w", err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("plan tours: %w: no targets stored", ErrInvalidInput)
	}

	// Validate the depot first so a bad request does not spend geocoder quota.
	depot, err := ResolveDepot(ctx, req.Depot, req.DepotAddress, req.Country, geocoder)
	if err != nil {
		return nil, fmt.Errorf("plan tours: %w", err)
	}

	saveCoords := func(t domain.VisitTarget) {
		if err := repo.UpdateCoordinates(ctx, t.TargetID, *t.Coords); err != nil {
			log.Warn().Err(err).Str("target_id", t.TargetID).Msg("store geocoded coordinate failed")
		}
	}

	limit := req.GeocodeLimit
	if limit == 0 {
		limit = DefaultGeocodeLimit
	}

	resolved, unresolved, err := ResolveTargets(ctx, targets, geocoder, ResolveOptions{
		Country: req.Country,
		Limit:   limit,
	}, saveCoords)
	if err != nil {
		return nil, fmt.Errorf("plan tours: %w", err)
	}
	if len(resolved) == 0 {
		return nil, fmt.Errorf("plan tours: %w: none of %d targets could be located", ErrInvalidInput, len(targets))
	}

	schedule, err := Plan(ctx, PlanRequest{
		Targets:     resolved,
		Depot:       depot,
		MaxPerGroup: req.MaxPerGroup,
		MinPerGroup: req.MinPerGroup,
		Strategy:    req.Strategy,
	})
	if err != nil {
		return nil, fmt.Errorf("plan tours: %w", err)
	}

	// The stored tour needs an identity; Plan itself stays deterministic.
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}

	if tours != nil {
		if err := tours.SaveSchedule(ctx, schedule); err != nil {
			return nil, fmt.Errorf("plan tours: save schedule: %w", err)
		}
	}

	log.Info().
		Str("req_id", obs.RequestID(ctx)).
		Str("schedule_id", schedule.ID).
		Int("visits", len(schedule.Visits)).
		Int("unresolved", len(unresolved)).
		Float64("distance_km", schedule.TotalDistanceKm()).
		Msg("tours planned")

	return &PlanToursResult{Schedule: schedule, Unresolved: unresolved}, nil
}
