package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PLANNER_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MaxPerGroup != 6 || cfg.MinPerGroup != 4 {
		t.Fatalf("unexpected group bounds: max=%d min=%d", cfg.MaxPerGroup, cfg.MinPerGroup)
	}
	if cfg.GeocodeCache != CacheSqlite || cfg.Geocoder != GeocoderNominatim {
		t.Fatalf("unexpected backends: %q %q", cfg.GeocodeCache, cfg.Geocoder)
	}
	if cfg.GeocodeLimit != 50 {
		t.Fatalf("expected default geocode limit 50, got %d", cfg.GeocodeLimit)
	}
}

func TestLoadYAMLOverlayThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yaml")
	body := "max_per_group: 8\nstrategy: geographic\ndepot_address: 1 rue de Paris, Rennes\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PLANNER_CONFIG", path)
	t.Setenv("MAX_PER_GROUP", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MaxPerGroup != 5 {
		t.Fatalf("expected env to win over file, got %d", cfg.MaxPerGroup)
	}
	if cfg.Strategy != "geographic" {
		t.Fatalf("expected strategy from file, got %q", cfg.Strategy)
	}
	if cfg.DepotAddress != "1 rue de Paris, Rennes" {
		t.Fatalf("unexpected depot address %q", cfg.DepotAddress)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"non-integer max":      {"MAX_PER_GROUP": "six"},
		"zero max":             {"MAX_PER_GROUP": "0"},
		"negative min":         {"MIN_PER_GROUP": "-1"},
		"unknown cache":        {"GEOCODE_CACHE": "memcached"},
		"postgres without url": {"GEOCODE_CACHE": "postgres", "DATABASE_URL": ""},
		"redis without url":    {"GEOCODE_CACHE": "redis", "REDIS_URL": ""},
		"ors without key":      {"GEOCODER": "ors", "ORS_API_KEY": ""},
		"unknown geocoder":     {"GEOCODER": "google"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("PLANNER_CONFIG", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("PLANNER_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
