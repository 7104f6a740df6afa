package cache

import (
	"context"
	"database/sql"
	"testing"
	"visit-planner-service/internal/adapters/repositories"
	"visit-planner-service/internal/domain"
	"visit-planner-service/internal/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"
)

var (
	_ ports.GeocodeCache = (*SqliteGeocodeCache)(nil)
	_ ports.GeocodeCache = (*SQLGeocodeCache)(nil)
	_ ports.GeocodeCache = (*RedisGeocodeCache)(nil)
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := repositories.InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func exerciseCache(t *testing.T, c ports.GeocodeCache) {
	t.Helper()
	ctx := context.Background()

	got, err := c.GetMany(ctx, []string{"Rennes"})
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty cache, got %v", got)
	}

	err = c.PutMany(ctx, map[string]domain.Coordinates{
		"Rennes": {Lat: 48.11, Lon: -1.68},
		"Nantes": {Lat: 47.22, Lon: -1.55},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err = c.GetMany(ctx, []string{"Rennes", " Rennes ", "Brest", "", "Nantes"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("hits = %v, want Rennes and Nantes", got)
	}
	if got["Rennes"].Lat != 48.11 || got["Rennes"].Lon != -1.68 {
		t.Fatalf("Rennes = %v", got["Rennes"])
	}

	// Overwrite keeps the latest value.
	if err := c.PutMany(ctx, map[string]domain.Coordinates{"Rennes": {Lat: 48.0, Lon: -1.0}}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err = c.GetMany(ctx, []string{"Rennes"})
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if got["Rennes"].Lat != 48.0 {
		t.Fatalf("Rennes after overwrite = %v", got["Rennes"])
	}

	if err := c.PutMany(ctx, map[string]domain.Coordinates{" ": {}}); err == nil {
		t.Fatal("expected error for blank key")
	}
}

func TestSqliteGeocodeCache(t *testing.T) {
	exerciseCache(t, NewSqliteGeocodeCache(openMemoryDB(t)))
}

func TestRedisGeocodeCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisGeocodeCache(client)
	t.Cleanup(func() { c.Close() })

	exerciseCache(t, c)

	if ttl := mr.TTL(KeyGeocode + "Nantes"); ttl != DefaultGeocodeTTL {
		t.Fatalf("ttl = %v, want %v", ttl, DefaultGeocodeTTL)
	}
}

func TestRedisGeocodeCacheFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedisGeocodeCacheFromURL("redis://" + mr.Addr() + "/0")
	if err != nil {
		t.Fatalf("from url: %v", err)
	}
	defer c.Close()

	if err := c.PutMany(context.Background(), map[string]domain.Coordinates{"Brest": {Lat: 48.39, Lon: -4.49}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !mr.Exists(KeyGeocode + "Brest") {
		t.Fatal("expected key in redis")
	}

	if _, err := NewRedisGeocodeCacheFromURL("://bad"); err == nil {
		t.Fatal("expected error for invalid url")
	}
}
