// Package adsbx queries ADS-B Exchange through its RapidAPI gateway.
package adsbx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/domain"
	"github.com/couchcryptid/nato-watch-service/internal/observability"
)

const (
	// DefaultBaseURL is the RapidAPI endpoint for ADS-B Exchange.
	DefaultBaseURL = "https://adsbexchange-com1.p.rapidapi.com"

	rapidAPIHost = "adsbexchange-com1.p.rapidapi.com"
	provider     = "adsbx"
)

// Client fetches aircraft around a bounding box from ADS-B Exchange.
type Client struct {
	apiKey     string
	baseURL    string
	userAgent  string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an ADS-B Exchange client. An empty apiKey is accepted; Fetch then reports a
// configuration error without touching the network.
func NewClient(apiKey, baseURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// Fetch returns positioned aircraft inside the circle that covers bbox. Values are passed through
// in the provider's own units.
func (c *Client) Fetch(ctx context.Context, bbox domain.BBox) ([]domain.Aircraft, error) {
	if c.apiKey == "" {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "config_error").Inc()
		return nil, &domain.ConfigurationError{Provider: provider, Setting: "ADSBX_KEY"}
	}

	lat, lon := bbox.Center()
	dist := domain.ClampRadiusNM(math.Ceil(bbox.CoveringRadiusNM()))
	u := fmt.Sprintf("%s/v2/lat/%s/lon/%s/dist/%s/", c.baseURL,
		strconv.FormatFloat(lat, 'f', 4, 64),
		strconv.FormatFloat(lon, 'f', 4, 64),
		strconv.FormatFloat(dist, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Provider: provider, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", rapidAPIHost)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return nil, &domain.UpstreamError{Provider: provider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "http_error").Inc()
		c.logger.Warn("adsbx upstream error", "status", resp.StatusCode)
		return nil, &domain.UpstreamHTTPError{Provider: provider, Status: resp.StatusCode}
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return nil, &domain.UpstreamError{Provider: provider, Err: fmt.Errorf("decode response: %w", err)}
	}
	c.metrics.UpstreamRequests.WithLabelValues(provider, "success").Inc()

	if body.AC == nil {
		c.logger.Debug("adsbx response without aircraft list")
		return []domain.Aircraft{}, nil
	}

	now := domain.Now()
	out := make([]domain.Aircraft, 0, len(*body.AC))
	for i := range *body.AC {
		e := &(*body.AC)[i]
		if e.Lat == nil || e.Lon == nil {
			continue
		}
		out = append(out, e.normalize(now))
	}
	c.logger.Debug("adsbx fetch", "aircraft", len(out), "dist_nm", dist)
	return out, nil
}

// ADS-B Exchange v2 response types.

type response struct {
	AC *[]entry `json:"ac"`
}

type entry struct {
	Hex      string          `json:"hex"`
	Flight   *string         `json:"flight"`
	Lat      *float64        `json:"lat"`
	Lon      *float64        `json:"lon"`
	AltBaro  json.RawMessage `json:"alt_baro"`
	GS       *float64        `json:"gs"`
	Track    *float64        `json:"track"`
	BaroRate *float64        `json:"baro_rate"`
	Mil      json.RawMessage `json:"mil"`
}

func (e *entry) normalize(now time.Time) domain.Aircraft {
	id, hex := domain.IdentityFor(e.Hex)
	return domain.Aircraft{
		ID:           id,
		Hex:          hex,
		Callsign:     domain.TrimOrEmpty(e.Flight),
		Lat:          e.Lat,
		Lon:          e.Lon,
		Altitude:     domain.ParseAltitude(e.AltBaro),
		GroundSpeed:  e.GS,
		Track:        e.Track,
		VerticalRate: e.BaroRate,
		IsMilitary:   bytes.Equal(bytes.TrimSpace(e.Mil), []byte("true")),
		Source:       domain.SourceADSBExchange,
		Timestamp:    now,
	}
}
