package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client resolves a free-text postal address to coordinates. It is a
// best-effort collaborator: callers treat every failure as "skip".
type Client interface {
	ResolveAddress(ctx context.Context, address string) (*Location, error)
}

// Location is a resolved coordinate pair
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

var (
	ErrNotFound           = errors.New("geocode: address not found")
	ErrServiceUnavailable = errors.New("geocode: service unavailable")
)

// Config holds the geocoding endpoint configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// httpClient talks to a nominatim-style /search endpoint. The client is
// constructed explicitly and injected; there is no lazy package-level
// instance.
type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a geocoding client with a bounded request timeout
func NewClient(cfg Config) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &httpClient{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *httpClient) ResolveAddress(ctx context.Context, address string) (*Location, error) {
	endpoint := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", c.baseURL, url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrServiceUnavailable, resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrServiceUnavailable, err)
	}

	if len(results) == 0 {
		return nil, ErrNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad latitude %q", ErrServiceUnavailable, results[0].Lat)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad longitude %q", ErrServiceUnavailable, results[0].Lon)
	}

	return &Location{Latitude: lat, Longitude: lng}, nil
}
