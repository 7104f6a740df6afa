package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config covers process level configuration.
//
// Values are resolved in order: built-in defaults, the YAML file named by
// PLANNER_CONFIG (if any), then environment variables.
type Config struct {
	Environment string `yaml:"environment"`
	Port        string `yaml:"port"`

	DBPath   string `yaml:"db_path"`
	SeedPath string `yaml:"seed_path"`

	GeocodeCache string `yaml:"geocode_cache"` // sqlite | postgres | redis | none
	DatabaseURL  string `yaml:"database_url"`
	RedisURL     string `yaml:"redis_url"`

	DepotAddress string `yaml:"depot_address"`

	Geocoder           string `yaml:"geocoder"` // nominatim | ors
	ORSAPIKey          string `yaml:"ors_api_key"`
	NominatimURL       string `yaml:"nominatim_url"`
	NominatimUserAgent string `yaml:"nominatim_user_agent"`
	GeocodeCountry     string `yaml:"geocode_country"`
	CountryCode        string `yaml:"country_code"` // ISO alpha-2 filter
	GeocodeLimit       int    `yaml:"geocode_limit"`

	MaxPerGroup int    `yaml:"max_per_group"`
	MinPerGroup int    `yaml:"min_per_group"`
	Strategy    string `yaml:"strategy"`
}

const (
	CacheSqlite   = "sqlite"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
	CacheNone     = "none"

	GeocoderNominatim = "nominatim"
	GeocoderORS       = "ors"
)

func defaults() Config {
	return Config{
		Environment:        "development",
		Port:               "8080",
		GeocodeCache:       CacheSqlite,
		DBPath:             "data/app.db",
		SeedPath:           "data/seeds/targets.json",
		Geocoder:           GeocoderNominatim,
		NominatimUserAgent: "visit-planner-service",
		GeocodeCountry:     "France",
		CountryCode:        "fr",
		GeocodeLimit:       50,
		MaxPerGroup:        6,
		MinPerGroup:        4,
		Strategy:           "balanced",
	}
}

// Get returns the environment value of key, or fallback when unset.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// LoadDotEnv loads a .env file when present. It reports whether one was found.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// Load resolves and validates the configuration.
func Load() (*Config, error) {
	cfg := defaults()

	if path := Get("PLANNER_CONFIG", ""); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	cfg.Environment = Get("ENVIRONMENT", cfg.Environment)
	cfg.Port = Get("PORT", cfg.Port)
	cfg.GeocodeCache = strings.ToLower(Get("GEOCODE_CACHE", cfg.GeocodeCache))
	cfg.DBPath = Get("DB_PATH", cfg.DBPath)
	cfg.DatabaseURL = Get("DATABASE_URL", cfg.DatabaseURL)
	cfg.SeedPath = Get("SEED_PATH", cfg.SeedPath)
	cfg.RedisURL = Get("REDIS_URL", cfg.RedisURL)
	cfg.DepotAddress = Get("DEPOT_ADDRESS", cfg.DepotAddress)
	cfg.Geocoder = strings.ToLower(Get("GEOCODER", cfg.Geocoder))
	cfg.ORSAPIKey = Get("ORS_API_KEY", cfg.ORSAPIKey)
	cfg.NominatimURL = Get("NOMINATIM_URL", cfg.NominatimURL)
	cfg.NominatimUserAgent = Get("NOMINATIM_USER_AGENT", cfg.NominatimUserAgent)
	cfg.GeocodeCountry = Get("GEOCODE_COUNTRY", cfg.GeocodeCountry)
	cfg.CountryCode = strings.ToLower(Get("GEOCODE_COUNTRY_CODE", cfg.CountryCode))
	cfg.Strategy = strings.ToLower(Get("STRATEGY", cfg.Strategy))

	var err error
	if cfg.GeocodeLimit, err = getInt("GEOCODE_LIMIT", cfg.GeocodeLimit); err != nil {
		return nil, err
	}
	if cfg.MaxPerGroup, err = getInt("MAX_PER_GROUP", cfg.MaxPerGroup); err != nil {
		return nil, err
	}
	if cfg.MinPerGroup, err = getInt("MIN_PER_GROUP", cfg.MinPerGroup); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c Config) validate() error {
	switch c.GeocodeCache {
	case CacheSqlite, CacheNone:
	case CachePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when GEOCODE_CACHE=%s", CachePostgres)
		}
	case CacheRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when GEOCODE_CACHE=%s", CacheRedis)
		}
	default:
		return fmt.Errorf("unsupported GEOCODE_CACHE %q", c.GeocodeCache)
	}

	switch c.Geocoder {
	case GeocoderNominatim:
	case GeocoderORS:
		if c.ORSAPIKey == "" {
			return fmt.Errorf("ORS_API_KEY is required when GEOCODER=%s", GeocoderORS)
		}
	default:
		return fmt.Errorf("unsupported GEOCODER %q", c.Geocoder)
	}

	if c.MaxPerGroup <= 0 {
		return fmt.Errorf("MAX_PER_GROUP must be positive, got %d", c.MaxPerGroup)
	}
	if c.MinPerGroup < 0 {
		return fmt.Errorf("MIN_PER_GROUP must not be negative, got %d", c.MinPerGroup)
	}
	return nil
}

func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %q: %w", path, err)
	}
	return nil
}

func getInt(key string, fallback int) (int, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %q is not an integer", key, raw)
	}
	return n, nil
}
