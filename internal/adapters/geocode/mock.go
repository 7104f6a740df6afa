package geocode

import (
	"context"
	"fmt"
	"sync"
	"visit-planner-service/internal/domain"
)

// MockGeocoder answers from a fixed address table. Addresses listed in
// Failing return an error; unknown addresses are reported as not found.
type MockGeocoder struct {
	mu      sync.Mutex
	m       map[string]domain.Coordinates
	Failing map[string]bool
	calls   []string
}

func NewMockGeocoder(known map[string]domain.Coordinates) *MockGeocoder {
	m := make(map[string]domain.Coordinates, len(known))
	for addr, c := range known {
		m[normalize(addr)] = c
	}
	return &MockGeocoder{m: m, Failing: map[string]bool{}}
}

func (g *MockGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, false, err
	}

	key := normalize(address)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, key)

	if g.Failing[key] {
		return domain.Coordinates{}, false, fmt.Errorf("mock geocode %q: provider unavailable", key)
	}
	c, ok := g.m[key]
	return c, ok, nil
}

// Calls returns the normalized addresses looked up so far.
func (g *MockGeocoder) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}
