package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
	"visit-planner-service/internal/domain"
)

func newTestNominatim(t *testing.T, h http.HandlerFunc) *NominatimGeocoder {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	g, err := NewNominatimGeocoder(NominatimOptions{
		BaseURL:      srv.URL,
		UserAgent:    "visit-planner-test",
		CountryCodes: "FR",
		MinDelay:     time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new geocoder: %v", err)
	}
	g.backoff = time.Millisecond
	return g
}

func TestNominatimGeocodeFound(t *testing.T) {
	g := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "3 rue de la Paix, Rennes, France" {
			t.Errorf("q = %q", got)
		}
		if got := r.URL.Query().Get("countrycodes"); got != "fr" {
			t.Errorf("countrycodes = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "visit-planner-test" {
			t.Errorf("user agent = %q", got)
		}
		w.Write([]byte(`[{"lat":"48.1113","lon":"-1.6800","display_name":"Rennes"}]`))
	})

	c, found, err := g.Geocode(context.Background(), "  3 rue de la Paix,   Rennes, France ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected address to be found")
	}
	if c.Lat != 48.1113 || c.Lon != -1.68 {
		t.Fatalf("coords = %v", c)
	}
}

func TestNominatimGeocodeNotFound(t *testing.T) {
	g := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, found, err := g.Geocode(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected not found")
	}
}

func TestNominatimGeocodeRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	g := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"lat":"47.2","lon":"-1.55"}]`))
	})

	_, found, err := g.Geocode(context.Background(), "Nantes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected address to be found")
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestNominatimGeocodeDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	g := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	_, _, err := g.Geocode(context.Background(), "Nantes")
	var he *httpStatusError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400 status error", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestNominatimRequiresUserAgent(t *testing.T) {
	if _, err := NewNominatimGeocoder(NominatimOptions{}); err == nil {
		t.Fatal("expected error without user agent")
	}
}

func TestORSGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "key" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if r.URL.Query().Get("boundary.country") != "FR" {
			t.Errorf("boundary.country = %q", r.URL.Query().Get("boundary.country"))
		}
		if r.URL.Query().Get("text") == "unknown" {
			w.Write([]byte(`{"features":[]}`))
			return
		}
		w.Write([]byte(`{"features":[{"geometry":{"coordinates":[-1.68,48.11]}}]}`))
	}))
	defer srv.Close()

	g, err := NewORSGeocoder("key", "FR")
	if err != nil {
		t.Fatalf("new geocoder: %v", err)
	}
	g.baseURL = srv.URL

	c, found, err := g.Geocode(context.Background(), "Rennes")
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if c.Lat != 48.11 || c.Lon != -1.68 {
		t.Fatalf("coords = %v", c)
	}

	_, found, err = g.Geocode(context.Background(), "unknown")
	if err != nil || found {
		t.Fatalf("found=%v err=%v, want not found", found, err)
	}
}

type mapCache struct {
	m      map[string]domain.Coordinates
	failOn bool
}

func (c *mapCache) GetMany(_ context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	if c.failOn {
		return nil, errors.New("cache down")
	}
	out := map[string]domain.Coordinates{}
	for _, a := range addresses {
		if v, ok := c.m[a]; ok {
			out[a] = v
		}
	}
	return out, nil
}

func (c *mapCache) PutMany(_ context.Context, results map[string]domain.Coordinates) error {
	if c.failOn {
		return errors.New("cache down")
	}
	for k, v := range results {
		c.m[k] = v
	}
	return nil
}

func TestCachedGeocoder(t *testing.T) {
	inner := NewMockGeocoder(map[string]domain.Coordinates{
		"Rennes": {Lat: 48.11, Lon: -1.68},
	})
	cache := &mapCache{m: map[string]domain.Coordinates{}}
	g := NewCachedGeocoder(inner, cache)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		c, found, err := g.Geocode(ctx, " Rennes ")
		if err != nil || !found || c.Lat != 48.11 {
			t.Fatalf("lookup %d: coords=%v found=%v err=%v", i, c, found, err)
		}
	}
	if n := len(inner.Calls()); n != 1 {
		t.Fatalf("inner calls = %d, want 1", n)
	}

	if _, found, _ := g.Geocode(ctx, "Atlantis"); found {
		t.Fatal("expected not found")
	}
	if _, ok := cache.m["Atlantis"]; ok {
		t.Fatal("negative results must not be cached")
	}

	cache.failOn = true
	if _, found, err := g.Geocode(ctx, "Rennes"); err != nil || !found {
		t.Fatalf("cache failure must fall through: found=%v err=%v", found, err)
	}
}
