package main

import (
	"context"
	"flag"
	"visit-planner-service/internal/adapters/cache"
	"visit-planner-service/internal/adapters/repositories"
	"visit-planner-service/internal/config"
	"visit-planner-service/internal/platform/db"
	"visit-planner-service/internal/platform/logging"

	"github.com/rs/zerolog/log"
)

// dbtool prepares the SQLite database (schema and client seed) and, when
// DATABASE_URL is set, the shared Postgres geocode cache.
func main() {
	if !config.LoadDotEnv() {
		log.Info().Msg("no .env file found (using environment variables)")
	}
	logging.Setup(config.Get("ENVIRONMENT", "development"))

	dbPath := flag.String("db", config.Get("DB_PATH", "data/app.db"), "SQLite database path")
	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/targets.json"), "JSON seed file")
	flag.Parse()

	conn, err := db.OpenSqlite(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open sqlite")
	}
	defer conn.Close()

	log.Info().Str("db", *dbPath).Msg("initializing database schema")
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatal().Err(err).Msg("schema initialization failed")
	}

	log.Info().Str("seed", *seedPath).Msg("seeding database")
	if err := repositories.SeedFromJSON(conn, *seedPath); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		log.Info().Msg("done")
		return
	}

	pg, err := db.OpenPostgres(databaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open postgres")
	}
	defer pg.Close()

	if err := cache.NewSQLGeocodeCache(pg).InitSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("postgres geocode cache initialization failed")
	}
	log.Info().Msg("done")
}
