package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"visit-planner-service/internal/domain"
	"visit-planner-service/internal/platform/metrics"
	"visit-planner-service/internal/platform/obs"
)

type orsGeocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder resolves addresses using OpenRouteService (/geocode/search).
// The geocoder is safe for concurrent use.
type ORSGeocoder struct {
	*client
	baseURL string
	country string
}

// NewORSGeocoder builds a geocoder restricted to country (ISO alpha-2,
// optional).
func NewORSGeocoder(apiKey string, country string) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSGeocoder{
		client:  newClient(map[string]string{"Authorization": apiKey}, 0),
		baseURL: "https://api.openrouteservice.org",
		country: country,
	}, nil
}

func (o *ORSGeocoder) Geocode(
	ctx context.Context,
	address string,
) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, false, errors.New("ors geocode: address must be non-empty")
	}

	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		if o.country != "" {
			q.Set("boundary.country", o.country)
		}
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		metrics.GeocodeLookups.WithLabelValues("ors", "error").Inc()
		return domain.Coordinates{}, false, fmt.Errorf("ors geocode %q: execute request: %w", norm, err)
	}
	defer resp.Body.Close()

	var decoded orsGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.GeocodeLookups.WithLabelValues("ors", "error").Inc()
		return domain.Coordinates{}, false, fmt.Errorf("ors geocode %q: decode response: %w", norm, err)
	}

	if len(decoded.Features) == 0 {
		metrics.GeocodeLookups.WithLabelValues("ors", "not_found").Inc()
		return domain.Coordinates{}, false, nil
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		metrics.GeocodeLookups.WithLabelValues("ors", "error").Inc()
		return domain.Coordinates{}, false, fmt.Errorf("ors geocode %q: invalid coordinate format", norm)
	}

	metrics.GeocodeLookups.WithLabelValues("ors", "found").Inc()
	// ORS returns GeoJSON order: [lon, lat].
	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, true, nil
}
