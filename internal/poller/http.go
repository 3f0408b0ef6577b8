package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/api"
)

// Mode selects the endpoint the HTTP fetcher polls.
type Mode string

const (
	ModeMilitary Mode = "mil"
	ModePoint    Mode = "point"
)

// Query describes what to poll. Lat/Lon/RadiusNM are used in point mode only.
type Query struct {
	Mode     Mode
	Lat      float64
	Lon      float64
	RadiusNM float64
}

// DefaultQuery polls the global military list; point fields default to Berlin at 250 nm.
func DefaultQuery() Query {
	return Query{Mode: ModeMilitary, Lat: 52.52, Lon: 13.405, RadiusNM: 250}
}

// HTTPFetcher reads snapshots from a running nato-watch server.
type HTTPFetcher struct {
	url        string
	httpClient *http.Client
}

// NewHTTPFetcher creates a fetcher for baseURL (e.g. "http://localhost:8080").
func NewHTTPFetcher(baseURL string, q Query, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		url:        endpointURL(strings.TrimRight(baseURL, "/"), q),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func endpointURL(base string, q Query) string {
	if q.Mode != ModePoint {
		return base + "/mil"
	}
	params := url.Values{
		"lat":  {strconv.FormatFloat(q.Lat, 'f', -1, 64)},
		"lon":  {strconv.FormatFloat(q.Lon, 'f', -1, 64)},
		"r_nm": {strconv.FormatFloat(q.RadiusNM, 'f', -1, 64)},
	}
	return base + "/airspace?" + params.Encode()
}

// URL returns the endpoint this fetcher polls.
func (f *HTTPFetcher) URL() string { return f.url }

// Fetch performs one request. Non-2xx answers are errors named "HTTP <status>".
func (f *HTTPFetcher) Fetch(ctx context.Context) (api.AirspaceResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return api.AirspaceResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return api.AirspaceResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return api.AirspaceResponse{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var out api.AirspaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return api.AirspaceResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
