package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "natowatch"

// Metrics holds the Prometheus collectors for upstream calls, caching, serving, and the sighting feed.
type Metrics struct {
	// Upstream provider metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: provider, outcome={success,http_error,error,rate_limited,config_error}
	UpstreamDuration *prometheus.HistogramVec // labels: provider

	// Cache metrics.
	CacheLookups   *prometheus.CounterVec // labels: cache, result={hit,miss}
	CacheEvictions *prometheus.CounterVec // labels: cache
	CacheEntries   *prometheus.GaugeVec   // labels: cache

	// Query metrics.
	ProviderFallbacks prometheus.Counter
	AircraftServed    *prometheus.CounterVec // labels: endpoint

	// Poller and feed metrics.
	PollResults       *prometheus.CounterVec // labels: status
	FeedPublished     prometheus.Counter
	FeedPublishErrors prometheus.Counter
	FeedRunning       prometheus.Gauge
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      help("Upstream provider requests by provider and outcome."),
		}, []string{"provider", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      help("Upstream provider request duration in seconds."),
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"provider"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      help("Response cache lookups by cache and result."),
		}, []string{"cache", "result"}),
		CacheEvictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evictions_total",
			Help:      help("Entries evicted from a response cache to stay within its size bound."),
		}, []string{"cache"}),
		CacheEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      help("Entries currently held by a response cache."),
		}, []string{"cache"}),
		ProviderFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_fallbacks_total",
			Help:      help("Regional queries answered by the fallback provider."),
		}),
		AircraftServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aircraft_served_total",
			Help:      help("Aircraft records returned to clients by endpoint."),
		}, []string{"endpoint"}),
		PollResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_results_total",
			Help:      help("Poll cycles by resulting status."),
		}, []string{"status"}),
		FeedPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_messages_published_total",
			Help:      help("Sighting messages written to Kafka."),
		}),
		FeedPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_publish_errors_total",
			Help:      help("Failed sighting batch writes."),
		}),
		FeedRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_running",
			Help:      help("1 when the sighting feed is active, 0 otherwise."),
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates all metrics and registers them with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics(true)

	reg.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.CacheEvictions,
		m.CacheEntries,
		m.ProviderFallbacks,
		m.AircraftServed,
		m.PollResults,
		m.FeedPublished,
		m.FeedPublishErrors,
		m.FeedRunning,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}
