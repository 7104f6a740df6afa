package app

import (
	"context"
	"database/sql"
	"fmt"
	"visit-planner-service/internal/adapters/cache"
	"visit-planner-service/internal/adapters/geocode"
	"visit-planner-service/internal/config"
	"visit-planner-service/internal/platform/db"
	"visit-planner-service/internal/ports"

	"github.com/rs/zerolog/log"
)

// NewGeocoder builds the configured provider behind the configured cache.
// local is the SQLite handle used by the "sqlite" cache backend; it may be
// nil when that backend is not selected. The returned cleanup releases any
// connection opened here.
func NewGeocoder(ctx context.Context, cfg *config.Config, local *sql.DB) (ports.Geocoder, func(), error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, nil, err
	}

	noop := func() {}

	switch cfg.GeocodeCache {
	case config.CacheNone:
		return provider, noop, nil

	case config.CacheSqlite:
		if local == nil {
			return nil, nil, fmt.Errorf("new geocoder: sqlite cache selected without a database")
		}
		return geocode.NewCachedGeocoder(provider, cache.NewSqliteGeocodeCache(local)), noop, nil

	case config.CachePostgres:
		pg, err := db.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("new geocoder: %w", err)
		}
		c := cache.NewSQLGeocodeCache(pg)
		if err := c.InitSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("new geocoder: %w", err)
		}
		return geocode.NewCachedGeocoder(provider, c), func() { pg.Close() }, nil

	case config.CacheRedis:
		c, err := cache.NewRedisGeocodeCacheFromURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("new geocoder: %w", err)
		}
		return geocode.NewCachedGeocoder(provider, c), func() {
			if err := c.Close(); err != nil {
				log.Warn().Err(err).Msg("close redis geocode cache")
			}
		}, nil
	}

	return nil, nil, fmt.Errorf("new geocoder: unsupported cache %q", cfg.GeocodeCache)
}

func newProvider(cfg *config.Config) (ports.Geocoder, error) {
	switch cfg.Geocoder {
	case config.GeocoderORS:
		g, err := geocode.NewORSGeocoder(cfg.ORSAPIKey, cfg.CountryCode)
		if err != nil {
			return nil, fmt.Errorf("new geocoder: %w", err)
		}
		return g, nil
	case config.GeocoderNominatim:
		g, err := geocode.NewNominatimGeocoder(geocode.NominatimOptions{
			BaseURL:      cfg.NominatimURL,
			UserAgent:    cfg.NominatimUserAgent,
			CountryCodes: cfg.CountryCode,
		})
		if err != nil {
			return nil, fmt.Errorf("new geocoder: %w", err)
		}
		return g, nil
	}
	return nil, fmt.Errorf("new geocoder: unsupported provider %q", cfg.Geocoder)
}
