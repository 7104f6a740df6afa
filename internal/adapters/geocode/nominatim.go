package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"visit-planner-service/internal/domain"
	"visit-planner-service/internal/platform/metrics"
	"visit-planner-service/internal/platform/obs"
)

// DefaultNominatimURL is the public OpenStreetMap instance.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// The public instance allows at most one request per second.
const nominatimMinDelay = 1100 * time.Millisecond

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// NominatimGeocoder resolves addresses with the OpenStreetMap Nominatim
// search API. Requests are spaced by a shared rate limiter, so a single
// instance should be reused across the process.
type NominatimGeocoder struct {
	*client
	baseURL      string
	countryCodes string
}

type NominatimOptions struct {
	BaseURL string
	// UserAgent is mandatory under the Nominatim usage policy.
	UserAgent string
	// CountryCodes restricts results, e.g. "fr".
	CountryCodes string
	// MinDelay overrides the spacing between requests; zero keeps 1.1s.
	MinDelay time.Duration
}

func NewNominatimGeocoder(opts NominatimOptions) (*NominatimGeocoder, error) {
	if strings.TrimSpace(opts.UserAgent) == "" {
		return nil, errors.New("nominatim user agent is empty")
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	delay := opts.MinDelay
	if delay == 0 {
		delay = nominatimMinDelay
	}

	return &NominatimGeocoder{
		client:       newClient(map[string]string{"User-Agent": opts.UserAgent}, delay),
		baseURL:      baseURL,
		countryCodes: strings.ToLower(opts.CountryCodes),
	}, nil
}

func (n *NominatimGeocoder) Geocode(
	ctx context.Context,
	address string,
) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "nominatim.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, false, errors.New("nominatim geocode: address must be non-empty")
	}

	endpoint := n.baseURL + "/search"

	resp, err := n.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := n.newRequest(ctx, http.MethodGet, endpoint)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("q", norm)
		q.Set("format", "jsonv2")
		q.Set("limit", "1")
		if n.countryCodes != "" {
			q.Set("countrycodes", n.countryCodes)
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		metrics.GeocodeLookups.WithLabelValues("nominatim", "error").Inc()
		return domain.Coordinates{}, false, fmt.Errorf("nominatim geocode %q: execute request: %w", norm, err)
	}
	defer resp.Body.Close()

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		metrics.GeocodeLookups.WithLabelValues("nominatim", "error").Inc()
		return domain.Coordinates{}, false, fmt.Errorf("nominatim geocode %q: decode response: %w", norm, err)
	}

	if len(places) == 0 {
		metrics.GeocodeLookups.WithLabelValues("nominatim", "not_found").Inc()
		return domain.Coordinates{}, false, nil
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if err := errors.Join(errLat, errLon); err != nil {
		metrics.GeocodeLookups.WithLabelValues("nominatim", "error").Inc()
		return domain.Coordinates{}, false, fmt.Errorf("nominatim geocode %q: parse coordinates: %w", norm, err)
	}

	metrics.GeocodeLookups.WithLabelValues("nominatim", "found").Inc()
	return domain.Coordinates{Lat: lat, Lon: lon}, true, nil
}
