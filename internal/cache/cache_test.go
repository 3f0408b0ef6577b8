package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetch struct {
	calls int
	value string
	err   error
}

func (f *countingFetch) fetch(context.Context) (string, int, error) {
	f.calls++
	if f.err != nil {
		return "", 0, f.err
	}
	return f.value, 200, nil
}

func newTestCache(maxEntries int) (*Cache[string], *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return New[string]("test", maxEntries, clock, observability.NewMetricsForTesting()), clock
}

func TestGetOrFetch_HitWithinTTL(t *testing.T) {
	c, clock := newTestCache(10)
	f := &countingFetch{value: "v1"}
	ctx := context.Background()

	first, hit, err := c.GetOrFetch(ctx, MilitaryKey, 3*time.Second, f.fetch)
	require.NoError(t, err)
	assert.False(t, hit)

	clock.Advance(2900 * time.Millisecond)
	second, hit, err := c.GetOrFetch(ctx, MilitaryKey, 3*time.Second, f.fetch)
	require.NoError(t, err)
	assert.True(t, hit)

	assert.Equal(t, 1, f.calls, "should only call upstream once")
	assert.Equal(t, first, second)
	assert.Equal(t, 200, second.Status)
	assert.Equal(t, clock.Now().Add(-2900*time.Millisecond), second.CapturedAt)
}

func TestGetOrFetch_RefetchAfterTTL(t *testing.T) {
	c, clock := newTestCache(10)
	f := &countingFetch{value: "v1"}
	ctx := context.Background()

	first, _, err := c.GetOrFetch(ctx, "k", 1500*time.Millisecond, f.fetch)
	require.NoError(t, err)

	clock.Advance(1500 * time.Millisecond)
	f.value = "v2"
	second, hit, err := c.GetOrFetch(ctx, "k", 1500*time.Millisecond, f.fetch)
	require.NoError(t, err)

	assert.False(t, hit)
	assert.Equal(t, 2, f.calls)
	assert.Equal(t, "v2", second.Value)
	assert.True(t, second.CapturedAt.After(first.CapturedAt))
	assert.Equal(t, 1, c.Len(), "entry is replaced, not appended")
}

func TestGetOrFetch_ErrorNotStored(t *testing.T) {
	c, clock := newTestCache(10)
	ctx := context.Background()
	good := &countingFetch{value: "old"}

	_, _, err := c.GetOrFetch(ctx, "k", time.Second, good.fetch)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	bad := &countingFetch{err: errors.New("connection refused")}
	_, _, err = c.GetOrFetch(ctx, "k", time.Second, bad.fetch)
	require.Error(t, err)

	good.value = "new"
	e, hit, err := c.GetOrFetch(ctx, "k", time.Second, good.fetch)
	require.NoError(t, err)
	assert.False(t, hit, "stale entry must not be served after a failed refresh")
	assert.Equal(t, "new", e.Value)
}

func TestGetOrFetch_DistinctKeys(t *testing.T) {
	c, _ := newTestCache(10)
	f := &countingFetch{value: "v"}
	ctx := context.Background()

	_, _, _ = c.GetOrFetch(ctx, PointKey(52.52, 13.405, 250), time.Minute, f.fetch)
	_, _, _ = c.GetOrFetch(ctx, PointKey(52.52, 13.405, 100), time.Minute, f.fetch)
	_, _, _ = c.GetOrFetch(ctx, PointKey(52.520001, 13.405, 250), time.Minute, f.fetch)

	assert.Equal(t, 2, f.calls, "coordinates are rounded to four decimals")
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2)
	ctx := context.Background()
	f := &countingFetch{value: "v"}

	_, _, _ = c.GetOrFetch(ctx, "a", time.Minute, f.fetch)
	_, _, _ = c.GetOrFetch(ctx, "b", time.Minute, f.fetch)
	_, _, _ = c.GetOrFetch(ctx, "a", time.Minute, f.fetch) // touch a
	_, _, _ = c.GetOrFetch(ctx, "c", time.Minute, f.fetch) // evicts b
	require.Equal(t, 3, f.calls)
	assert.Equal(t, 2, c.Len())

	_, hit, _ := c.GetOrFetch(ctx, "a", time.Minute, f.fetch)
	assert.True(t, hit)
	_, hit, _ = c.GetOrFetch(ctx, "b", time.Minute, f.fetch)
	assert.False(t, hit)
}

func TestCache_Unbounded(t *testing.T) {
	c, _ := newTestCache(0)
	f := &countingFetch{value: "v"}
	for _, k := range []string{"a", "b", "c", "d"} {
		_, _, _ = c.GetOrFetch(context.Background(), k, time.Minute, f.fetch)
	}
	assert.Equal(t, 4, c.Len())
}

func TestPointKey(t *testing.T) {
	assert.Equal(t, "point:52.5200:13.4050:250", PointKey(52.52, 13.405, 250))
	assert.Equal(t, "point:-1.0000:0.0000:1.5", PointKey(-1, 0, 1.5))
}
