package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"visit-planner-service/internal/adapters/export"
	"visit-planner-service/internal/api/dto"
	"visit-planner-service/internal/domain"
	"visit-planner-service/internal/ports"

	"github.com/rs/zerolog/log"
)

// TourHandler serves the history of planned schedules.
type TourHandler struct {
	Repo ports.TourRepository
}

func (h *TourHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	tours, err := h.Repo.ListTours(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list tours failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListToursResponse{Tours: make([]dto.TourResponse, 0, len(tours))}
	for _, t := range tours {
		res.Tours = append(res.Tours, dto.TourResponse{
			TourID:          t.TourID,
			CreatedAt:       t.CreatedAt,
			Strategy:        t.Strategy,
			TotalClients:    t.TotalClients,
			TotalDistanceKm: t.TotalDistanceKm,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Export streams a stored tour as CSV. The route must bind {id}.
func (h *TourHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "tour id is required")
		return
	}

	schedule, err := h.Repo.GetSchedule(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTourNotFound) {
			writeError(w, r, http.StatusNotFound, "tour not found")
			return
		}
		log.Error().Err(err).Str("tour_id", id).Msg("load tour failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(schedule)))
	w.WriteHeader(http.StatusOK)
	if err := export.WriteScheduleCSV(w, schedule); err != nil {
		log.Error().Err(err).Str("tour_id", id).Msg("export tour failed")
	}
}
