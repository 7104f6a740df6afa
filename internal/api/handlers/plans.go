package handlers

import (
	"errors"
	"net/http"
	"strings"
	"visit-planner-service/internal/api/dto"
	"visit-planner-service/internal/domain"
	"visit-planner-service/internal/ports"
	"visit-planner-service/internal/services"

	"github.com/rs/zerolog/log"
)

// PlanDefaults fill in request fields the client leaves out.
type PlanDefaults struct {
	DepotAddress string
	Country      string
	GeocodeLimit int
	MaxPerGroup  int
	MinPerGroup  int
	Strategy     string
}

type PlanHandler struct {
	Targets  ports.TargetRepository
	Tours    ports.TourRepository
	Geocoder ports.Geocoder
	Defaults PlanDefaults
}

// Plan geocodes the stored targets, builds the weekly schedule and
// records it as a tour.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.PlanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	maxPerGroup := req.MaxPerGroup
	if maxPerGroup == 0 {
		maxPerGroup = h.Defaults.MaxPerGroup
	}
	if maxPerGroup < 1 || maxPerGroup > 100 {
		writeError(w, r, http.StatusBadRequest, "max_per_group must be between 1 and 100")
		return
	}

	minPerGroup := h.Defaults.MinPerGroup
	if req.MinPerGroup != nil {
		minPerGroup = *req.MinPerGroup
	}
	if minPerGroup < 0 || minPerGroup > maxPerGroup {
		writeError(w, r, http.StatusBadRequest, "min_per_group must be between 0 and max_per_group")
		return
	}

	strategyName := strings.TrimSpace(req.Strategy)
	if strategyName == "" {
		strategyName = h.Defaults.Strategy
	}
	strategy, err := services.StrategyByName(strategyName)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	svcReq := services.PlanToursRequest{
		DepotAddress: strings.TrimSpace(req.DepotAddress),
		Country:      h.Defaults.Country,
		GeocodeLimit: h.Defaults.GeocodeLimit,
		MaxPerGroup:  maxPerGroup,
		MinPerGroup:  minPerGroup,
		Strategy:     strategy,
	}
	if req.Depot != nil {
		svcReq.Depot = &domain.Coordinates{Lat: req.Depot.Lat, Lon: req.Depot.Lon}
	} else if svcReq.DepotAddress == "" {
		svcReq.DepotAddress = strings.TrimSpace(h.Defaults.DepotAddress)
	}
	if svcReq.Depot == nil && svcReq.DepotAddress == "" {
		writeError(w, r, http.StatusBadRequest, "depot or depot_address is required")
		return
	}

	result, err := services.PlanTours(r.Context(), svcReq, h.Targets, h.Geocoder, h.Tours)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDepotNotFound):
			writeError(w, r, http.StatusUnprocessableEntity, "depot address could not be located")
		case errors.Is(err, services.ErrInvalidInput):
			writeError(w, r, http.StatusBadRequest, err.Error())
		default:
			log.Error().Err(err).Msg("plan tours failed")
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	res := toPlanResponse(result.Schedule)
	res.Unresolved = make([]dto.TargetResponse, 0, len(result.Unresolved))
	for _, t := range result.Unresolved {
		res.Unresolved = append(res.Unresolved, toTargetResponse(t))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// toPlanResponse groups the flat visit list by day, preserving order.
func toPlanResponse(s *domain.Schedule) dto.PlanResponse {
	sum := s.Summary()
	res := dto.PlanResponse{
		ID:          s.ID,
		Strategy:    s.Strategy,
		Depot:       dto.CoordinatesBody{Lat: s.Depot.Lat, Lon: s.Depot.Lon},
		MaxPerGroup: s.MaxPerGroup,
		MinPerGroup: s.MinPerGroup,
		Summary: dto.SummaryResponse{
			TotalClients:    sum.TotalClients,
			TotalDistanceKm: sum.TotalDistanceKm,
			Days:            sum.Days,
			Weeks:           sum.Weeks,
		},
		Days:     make([]dto.DayResponse, 0, sum.Days),
		Warnings: append([]string{}, s.Warnings...),
	}

	for _, v := range s.Visits {
		n := len(res.Days)
		if n == 0 || res.Days[n-1].Week != v.Week || res.Days[n-1].Day != v.Day {
			res.Days = append(res.Days, dto.DayResponse{Week: v.Week, Day: v.Day})
			n++
		}
		day := &res.Days[n-1]
		day.Visits = append(day.Visits, dto.VisitResponse{
			Order:      v.Sequence,
			DistanceKm: v.DistanceKm,
			Target:     toTargetResponse(v.Target),
		})
		day.DistanceKm = domain.Round2(day.DistanceKm + v.DistanceKm)
	}

	return res
}
