package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"visit-planner-service/internal/adapters/repositories"
	"visit-planner-service/internal/api"
	"visit-planner-service/internal/api/handlers"
	"visit-planner-service/internal/app"
	"visit-planner-service/internal/config"
	"visit-planner-service/internal/platform/db"
	"visit-planner-service/internal/platform/logging"

	"github.com/rs/zerolog/log"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, geocoder, caches) behind ports and starts the HTTP server.
func main() {
	hasDotEnv := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		logging.Setup("production")
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.Environment)
	if !hasDotEnv {
		log.Info().Msg("no .env file found (using environment variables)")
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.OpenSqlite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(conn, cfg.SeedPath); err != nil {
		return err
	}

	geocoder, closeGeocoder, err := app.NewGeocoder(ctx, cfg, conn)
	if err != nil {
		return err
	}
	defer closeGeocoder()

	router := api.NewRouter(api.Deps{
		Targets:  repositories.NewSqliteTargetRepository(conn),
		Tours:    repositories.NewSqliteTourRepository(conn),
		Geocoder: geocoder,
		Defaults: handlers.PlanDefaults{
			DepotAddress: cfg.DepotAddress,
			Country:      cfg.GeocodeCountry,
			GeocodeLimit: cfg.GeocodeLimit,
			MaxPerGroup:  cfg.MaxPerGroup,
			MinPerGroup:  cfg.MinPerGroup,
			Strategy:     cfg.Strategy,
		},
	})

	// Timeouts are tuned for cold-cache planning (rate-limited geocoding).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("geocoder", cfg.Geocoder).
			Str("geocode_cache", cfg.GeocodeCache).
			Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func initAndSeed(conn *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("seed_path", seedPath).Msg("seed file not found, skipping")
		return nil
	}
	if err := repositories.SeedFromJSON(conn, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
