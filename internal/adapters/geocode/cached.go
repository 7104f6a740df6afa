package geocode

import (
	"context"
	"visit-planner-service/internal/domain"
	"visit-planner-service/internal/platform/metrics"
	"visit-planner-service/internal/ports"

	"github.com/rs/zerolog/log"
)

// CachedGeocoder consults a persistent cache before delegating to the
// wrapped Geocoder. Only positive results are cached; cache failures are
// logged and never fail a lookup.
type CachedGeocoder struct {
	next  ports.Geocoder
	cache ports.GeocodeCache
}

func NewCachedGeocoder(next ports.Geocoder, cache ports.GeocodeCache) *CachedGeocoder {
	return &CachedGeocoder{next: next, cache: cache}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, bool, error) {
	key := normalize(address)

	if c.cache != nil && key != "" {
		hits, err := c.cache.GetMany(ctx, []string{key})
		if err != nil {
			log.Warn().Err(err).Str("address", key).Msg("geocode cache read failed")
		} else if coords, ok := hits[key]; ok {
			metrics.GeocodeLookups.WithLabelValues("cache", "cache_hit").Inc()
			return coords, true, nil
		}
	}

	coords, found, err := c.next.Geocode(ctx, address)
	if err != nil || !found {
		return coords, found, err
	}

	if c.cache != nil && key != "" {
		if err := c.cache.PutMany(ctx, map[string]domain.Coordinates{key: coords}); err != nil {
			log.Warn().Err(err).Str("address", key).Msg("geocode cache write failed")
		}
	}

	return coords, true, nil
}
