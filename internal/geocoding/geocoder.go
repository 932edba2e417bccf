package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Result is the first-ranked place returned by the geocoding provider.
type Result struct {
	// PlaceName is the free-text label of the place.
	PlaceName string
	// Parts is PlaceName split on commas, most-specific-first.
	Parts []string
}

// Geocoder resolves coordinates to a human-readable address. Implementations
// must honor the context; callers treat any error as non-fatal and fall back
// to an unresolved address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, longitude, latitude float64) (*Result, error)
}

// Config holds the geocoding provider connection settings.
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

const (
	defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"
	defaultTimeout = 5 * time.Second
)

type mapboxGeocoder struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewMapboxGeocoder creates a Geocoder backed by the Mapbox places API.
func NewMapboxGeocoder(cfg Config) Geocoder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &mapboxGeocoder{
		baseURL: cfg.BaseURL,
		token:   cfg.AccessToken,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type mapboxResponse struct {
	Features []struct {
		PlaceName string `json:"place_name"`
	} `json:"features"`
}

func (g *mapboxGeocoder) ReverseGeocode(ctx context.Context, longitude, latitude float64) (*Result, error) {
	endpoint := fmt.Sprintf("%s/%f,%f.json?access_token=%s",
		g.baseURL, longitude, latitude, url.QueryEscape(g.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding provider returned status %d", resp.StatusCode)
	}

	var body mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if len(body.Features) == 0 {
		return nil, fmt.Errorf("geocoding returned no features for %f,%f", longitude, latitude)
	}

	// Only the first-ranked feature is used.
	placeName := body.Features[0].PlaceName
	return &Result{
		PlaceName: placeName,
		Parts:     splitParts(placeName),
	}, nil
}

func splitParts(placeName string) []string {
	var parts []string
	for _, p := range strings.Split(placeName, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
