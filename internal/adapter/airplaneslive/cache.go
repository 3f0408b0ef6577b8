package airplaneslive

import (
	"context"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/cache"
	"github.com/couchcryptid/nato-watch-service/internal/domain"
)

// Source is the feed contract shared by Client and CachedClient.
type Source interface {
	Point(ctx context.Context, lat, lon, radiusNM float64) (domain.Feed, error)
	Military(ctx context.Context) (domain.Feed, error)
}

// CachedClient wraps a Source with short-lived response caching to stay under the upstream's
// per-IP rate limit. Soft failures are cached like any other response; transport errors are not.
type CachedClient struct {
	inner    Source
	point    *cache.Cache[domain.Feed]
	mil      *cache.Cache[domain.Feed]
	pointTTL time.Duration
	milTTL   time.Duration
}

// NewCachedClient creates a cache decorator around a Source.
func NewCachedClient(inner Source, point, mil *cache.Cache[domain.Feed], pointTTL, milTTL time.Duration) *CachedClient {
	return &CachedClient{
		inner:    inner,
		point:    point,
		mil:      mil,
		pointTTL: pointTTL,
		milTTL:   milTTL,
	}
}

func (c *CachedClient) Point(ctx context.Context, lat, lon, radiusNM float64) (domain.Feed, error) {
	r := domain.ClampRadiusNM(radiusNM)
	e, _, err := c.point.GetOrFetch(ctx, cache.PointKey(lat, lon, r), c.pointTTL, func(ctx context.Context) (domain.Feed, int, error) {
		f, err := c.inner.Point(ctx, lat, lon, r)
		return f, f.Status, err
	})
	return e.Value, err
}

func (c *CachedClient) Military(ctx context.Context) (domain.Feed, error) {
	e, _, err := c.mil.GetOrFetch(ctx, cache.MilitaryKey, c.milTTL, func(ctx context.Context) (domain.Feed, int, error) {
		f, err := c.inner.Military(ctx)
		return f, f.Status, err
	})
	return e.Value, err
}
