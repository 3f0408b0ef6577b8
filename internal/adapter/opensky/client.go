// Package opensky queries the OpenSky Network state vector API. It is a best-effort source:
// every failure yields an empty result.
package opensky

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/domain"
	"github.com/couchcryptid/nato-watch-service/internal/observability"
)

// DefaultBaseURL is the public OpenSky REST API.
const DefaultBaseURL = "https://opensky-network.org/api"

const provider = "opensky"

// State vector positions.
const (
	idxICAO24       = 0
	idxCallsign     = 1
	idxLongitude    = 5
	idxLatitude     = 6
	idxBaroAltitude = 7
	idxOnGround     = 8
	idxVelocity     = 9
	idxTrueTrack    = 10
	idxVerticalRate = 11
	idxSquawk       = 14
)

// Client fetches state vectors inside a bounding box.
type Client struct {
	username   string
	password   string
	baseURL    string
	userAgent  string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenSky client. Basic auth is sent only when both username and password are set.
func NewClient(username, password, baseURL, userAgent string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		username:   username,
		password:   password,
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// Fetch returns positioned aircraft inside bbox with speeds, climb rates, and altitudes
// converted to knots, feet per minute, and feet. Failures are logged and return an empty slice.
func (c *Client) Fetch(ctx context.Context, bbox domain.BBox) []domain.Aircraft {
	states, err := c.fetchStates(ctx, bbox)
	if err != nil {
		c.logger.Warn("opensky fetch failed", "error", err)
		return []domain.Aircraft{}
	}

	now := domain.Now()
	out := make([]domain.Aircraft, 0, len(states))
	for _, s := range states {
		a, ok := normalize(s, now)
		if !ok {
			continue
		}
		out = append(out, a)
	}
	c.logger.Debug("opensky fetch", "aircraft", len(out))
	return out
}

func (c *Client) fetchStates(ctx context.Context, bbox domain.BBox) ([]state, error) {
	params := url.Values{
		"lamin": {formatCoord(bbox.South)},
		"lomin": {formatCoord(bbox.West)},
		"lamax": {formatCoord(bbox.North)},
		"lomax": {formatCoord(bbox.East)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/states/all?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.username != "" && c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("states request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "http_error").Inc()
		return nil, &domain.UpstreamHTTPError{Provider: provider, Status: resp.StatusCode}
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}
	c.metrics.UpstreamRequests.WithLabelValues(provider, "success").Inc()
	return body.States, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// OpenSky API response types. Each state is a positional array; unknown values are null.

type response struct {
	Time   int64   `json:"time"`
	States []state `json:"states"`
}

type state []json.RawMessage

func (s state) num(i int) *float64 {
	if i >= len(s) {
		return nil
	}
	var v *float64
	if err := json.Unmarshal(s[i], &v); err != nil {
		return nil
	}
	return v
}

func (s state) str(i int) string {
	if i >= len(s) {
		return ""
	}
	var v *string
	if err := json.Unmarshal(s[i], &v); err != nil {
		return ""
	}
	return domain.TrimOrEmpty(v)
}

func (s state) flag(i int) bool {
	if i >= len(s) {
		return false
	}
	var v bool
	_ = json.Unmarshal(s[i], &v)
	return v
}

func normalize(s state, now time.Time) (domain.Aircraft, bool) {
	lat, lon := s.num(idxLatitude), s.num(idxLongitude)
	if lat == nil || lon == nil {
		return domain.Aircraft{}, false
	}

	var alt domain.Altitude
	switch baro := s.num(idxBaroAltitude); {
	case baro != nil:
		alt = domain.AltitudeFeet(domain.MetresToFeet(*baro))
	case s.flag(idxOnGround):
		alt = domain.AltitudeGround()
	}

	id, hex := domain.IdentityFor(s.str(idxICAO24))
	return domain.Aircraft{
		ID:           id,
		Hex:          hex,
		Callsign:     s.str(idxCallsign),
		Squawk:       s.str(idxSquawk),
		Lat:          lat,
		Lon:          lon,
		Altitude:     alt,
		GroundSpeed:  domain.ConvertPtr(s.num(idxVelocity), domain.MetresPerSecondToKnots),
		Track:        s.num(idxTrueTrack),
		VerticalRate: domain.ConvertPtr(s.num(idxVerticalRate), domain.MetresPerSecondToFeetPerMinute),
		IsMilitary:   false,
		Source:       domain.SourceOpenSky,
		Timestamp:    now,
	}, true
}
