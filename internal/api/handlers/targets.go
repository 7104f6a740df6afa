package handlers

import (
	"net/http"
	"visit-planner-service/internal/api/dto"
	"visit-planner-service/internal/ports"

	"github.com/rs/zerolog/log"
)

// TargetHandler exposes read-only client record retrieval.
type TargetHandler struct {
	Repo ports.TargetRepository
}

func (h *TargetHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	targets, err := h.Repo.ListTargets(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list targets failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListTargetsResponse{
		Targets: make([]dto.TargetResponse, 0, len(targets)),
	}
	for _, t := range targets {
		res.Targets = append(res.Targets, toTargetResponse(t))
	}

	writeJSON(w, r, http.StatusOK, res)
}
