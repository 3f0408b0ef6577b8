// Package cache provides a TTL response cache with a least-recently-used size bound.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Entry is a cached upstream response.
type Entry[V any] struct {
	Key        string
	CapturedAt time.Time
	Value      V
	Status     int
}

// Age returns how long ago the entry was captured.
func (e Entry[V]) Age(now time.Time) time.Duration {
	return now.Sub(e.CapturedAt)
}

// FetchFunc loads a fresh value and the upstream status it came with.
type FetchFunc[V any] func(ctx context.Context) (V, int, error)

// Cache stores one entry per key. Entries older than the caller's TTL are refetched on the next
// lookup and replaced; failed fetches leave the previous entry untouched. Concurrent misses for
// the same key each call fetch.
type Cache[V any] struct {
	name       string
	maxEntries int
	clock      clockwork.Clock
	metrics    *observability.Metrics

	mu      sync.Mutex
	entries map[string]*node[V]
	head    *node[V] // most recently used
	tail    *node[V] // least recently used
}

type node[V any] struct {
	entry Entry[V]
	prev  *node[V]
	next  *node[V]
}

// New creates a cache. name labels its metrics; maxEntries <= 0 disables the size bound.
func New[V any](name string, maxEntries int, clock clockwork.Clock, metrics *observability.Metrics) *Cache[V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache[V]{
		name:       name,
		maxEntries: maxEntries,
		clock:      clock,
		metrics:    metrics,
		entries:    make(map[string]*node[V]),
	}
}

// GetOrFetch returns the live entry for key, or calls fetch and stores its result.
// The bool result reports a cache hit.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc[V]) (Entry[V], bool, error) {
	if e, ok := c.lookup(key, ttl); ok {
		c.metrics.CacheLookups.WithLabelValues(c.name, "hit").Inc()
		return e, true, nil
	}
	c.metrics.CacheLookups.WithLabelValues(c.name, "miss").Inc()

	v, status, err := fetch(ctx)
	if err != nil {
		return Entry[V]{}, false, err
	}
	e := Entry[V]{Key: key, CapturedAt: c.clock.Now(), Value: v, Status: status}
	c.put(e)
	return e, false, nil
}

// Len returns the number of stored entries, live or stale.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) lookup(key string, ttl time.Duration) (Entry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok || n.entry.Age(c.clock.Now()) >= ttl {
		return Entry[V]{}, false
	}
	c.moveToFront(n)
	return n.entry, true
}

func (c *Cache[V]) put(e Entry[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[e.Key]; ok {
		n.entry = e
		c.moveToFront(n)
		return
	}

	n := &node[V]{entry: e}
	c.entries[e.Key] = n
	c.addToFront(n)

	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.evictTail()
		c.metrics.CacheEvictions.WithLabelValues(c.name).Inc()
	}
	c.metrics.CacheEntries.WithLabelValues(c.name).Set(float64(len(c.entries)))
}

func (c *Cache[V]) moveToFront(n *node[V]) {
	if n == c.head {
		return
	}
	c.remove(n)
	c.addToFront(n)
}

func (c *Cache[V]) addToFront(n *node[V]) {
	n.next = c.head
	n.prev = nil
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *Cache[V]) remove(n *node[V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
}

func (c *Cache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.entry.Key)
	c.remove(c.tail)
}

// PointKey builds the cache key for a point query with coordinates rounded to four decimals.
func PointKey(lat, lon, radiusNM float64) string {
	return "point:" + strconv.FormatFloat(lat, 'f', 4, 64) + ":" +
		strconv.FormatFloat(lon, 'f', 4, 64) + ":" +
		strconv.FormatFloat(radiusNM, 'g', -1, 64)
}

// MilitaryKey is the single cache key for the global military list.
const MilitaryKey = "mil:all"
