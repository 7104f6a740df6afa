package api

import (
	"net/http"
	"visit-planner-service/internal/api/handlers"
	"visit-planner-service/internal/platform/metrics"
	"visit-planner-service/internal/ports"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the ports the HTTP layer depends on.
type Deps struct {
	Targets  ports.TargetRepository
	Tours    ports.TourRepository
	Geocoder ports.Geocoder
	Defaults handlers.PlanDefaults
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	metrics.Register()

	mux := http.NewServeMux()

	targetHandler := &handlers.TargetHandler{Repo: deps.Targets}
	planHandler := &handlers.PlanHandler{
		Targets:  deps.Targets,
		Tours:    deps.Tours,
		Geocoder: deps.Geocoder,
		Defaults: deps.Defaults,
	}
	tourHandler := &handlers.TourHandler{Repo: deps.Tours}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/targets", targetHandler.List)
	mux.HandleFunc("/plans", planHandler.Plan)
	mux.HandleFunc("/tours", tourHandler.List)
	mux.HandleFunc("GET /tours/{id}/export", tourHandler.Export)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return requestIDMiddleware(loggingMiddleware(mux))
}
