// Package airplaneslive queries the airplanes.live readsb API for point/radius and global military feeds.
package airplaneslive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/domain"
	"github.com/couchcryptid/nato-watch-service/internal/observability"
)

const (
	// DefaultBaseURL is the public airplanes.live v2 API.
	DefaultBaseURL = "https://api.airplanes.live/v2"

	provider          = "airplaneslive"
	rateLimitMarker   = "rate limited"
	maxBodyBytes      = 32 << 20
	msgRateLimited    = "Rate limited by upstream"
	msgInvalidPoint   = "Invalid JSON from upstream"
	msgInvalidMilList = "Invalid response from upstream"
)

// Client fetches readsb-style aircraft lists. Soft failures (rate limiting, unparsable bodies)
// come back as data on the Feed; only transport failures are errors.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	classifier *domain.Classifier
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an airplanes.live client. classifier flags military traffic in point queries.
func NewClient(baseURL, userAgent string, timeout time.Duration, classifier *domain.Classifier, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if classifier == nil {
		classifier = domain.DefaultClassifier
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		classifier: classifier,
		metrics:    metrics,
		logger:     logger,
	}
}

// Point returns aircraft within radiusNM of (lat, lon). The radius is clamped to [1, 250].
func (c *Client) Point(ctx context.Context, lat, lon, radiusNM float64) (domain.Feed, error) {
	r := domain.ClampRadiusNM(radiusNM)
	u := fmt.Sprintf("%s/point/%s/%s/%s", c.baseURL, formatNum(lat), formatNum(lon), formatNum(r))
	return c.fetch(ctx, u, false)
}

// Military returns every aircraft the upstream tags military, worldwide. All records are flagged military.
func (c *Client) Military(ctx context.Context) (domain.Feed, error) {
	return c.fetch(ctx, c.baseURL+"/mil", true)
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *Client) fetch(ctx context.Context, u string, milMode bool) (domain.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Feed{}, &domain.UpstreamError{Provider: provider, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return domain.Feed{}, &domain.UpstreamError{Provider: provider, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(provider, "error").Inc()
		return domain.Feed{}, &domain.UpstreamError{Provider: provider, Err: fmt.Errorf("read body: %w", err)}
	}

	feed := domain.Feed{Status: resp.StatusCode, CapturedAt: domain.Now()}
	c.decode(raw, milMode, &feed)

	outcome := "success"
	switch {
	case feed.RateLimited:
		outcome = "rate_limited"
	case !feed.OK():
		outcome = "http_error"
	}
	c.metrics.UpstreamRequests.WithLabelValues(provider, outcome).Inc()
	c.logger.Debug("airplanes.live fetch",
		"url", u,
		"status", feed.Status,
		"aircraft", len(feed.Aircraft),
		"rate_limited", feed.RateLimited,
	)
	return feed, nil
}

func (c *Client) decode(raw []byte, milMode bool, feed *domain.Feed) {
	feed.Aircraft = []domain.Aircraft{}

	if strings.Contains(string(raw), rateLimitMarker) {
		feed.RateLimited = true
		feed.Message = strPtr(msgRateLimited)
		return
	}

	var body response
	if err := json.Unmarshal(raw, &body); err != nil {
		c.logger.Warn("airplanes.live body not parseable", "status", feed.Status, "error", err)
		if milMode {
			feed.Message = strPtr(msgInvalidMilList)
		} else {
			feed.Message = strPtr(msgInvalidPoint)
		}
		return
	}

	feed.Message = body.Msg
	feed.Total = body.Total
	if body.Now != nil {
		ms := int64(*body.Now)
		feed.UpstreamNow = &ms
	}

	for _, rawEntry := range body.AC {
		var e entry
		if err := json.Unmarshal(rawEntry, &e); err != nil {
			c.logger.Debug("skipping malformed aircraft entry", "error", err)
			continue
		}
		a := e.normalize(feed.CapturedAt)
		if !a.HasPosition() {
			continue
		}
		if milMode {
			a.IsMilitary = true
		} else {
			a.IsMilitary = c.classifier.IsMilitary(domain.SignalsOf(&a))
		}
		feed.Aircraft = append(feed.Aircraft, a)
	}
}

func strPtr(s string) *string { return &s }
