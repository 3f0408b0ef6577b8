package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	UserAgent       string

	// Upstream providers. An empty ADSBXKey disables provider A (queries fall back or fail).
	ADSBXKey             string
	ADSBXBaseURL         string
	OpenSkyUser          string
	OpenSkyPass          string
	OpenSkyBaseURL       string
	AirplanesLiveBaseURL string
	UpstreamTimeout      time.Duration

	RegionalCacheTTL time.Duration
	PointCacheTTL    time.Duration
	MilCacheTTL      time.Duration
	CacheMaxEntries  int

	ClassifierExtraPrefixes []string
	ClassifierExtraTypes    []string

	// Sighting feed: polls the military list and publishes each snapshot to Kafka.
	FeedEnabled      bool
	FeedPollInterval time.Duration
	KafkaBrokers     []string
	KafkaTopic       string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		UserAgent:       sharedcfg.EnvOrDefault("USER_AGENT", "nato-watch/1.0"),

		ADSBXKey:             strings.TrimSpace(os.Getenv("ADSBX_KEY")),
		ADSBXBaseURL:         sharedcfg.EnvOrDefault("ADSBX_BASE_URL", "https://adsbexchange-com1.p.rapidapi.com"),
		OpenSkyUser:          os.Getenv("OSKY_USER"),
		OpenSkyPass:          os.Getenv("OSKY_PASS"),
		OpenSkyBaseURL:       sharedcfg.EnvOrDefault("OPENSKY_BASE_URL", "https://opensky-network.org/api"),
		AirplanesLiveBaseURL: sharedcfg.EnvOrDefault("AIRPLANES_LIVE_BASE_URL", "https://api.airplanes.live/v2"),

		ClassifierExtraPrefixes: splitList(os.Getenv("CLASSIFIER_EXTRA_PREFIXES")),
		ClassifierExtraTypes:    splitList(os.Getenv("CLASSIFIER_EXTRA_TYPES")),

		FeedEnabled:  os.Getenv("FEED_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "military-sightings"),
	}
	durations := []struct {
		name string
		def  string
		dst  *time.Duration
	}{
		{"UPSTREAM_TIMEOUT", "15s", &cfg.UpstreamTimeout},
		{"REGIONAL_CACHE_TTL", "30s", &cfg.RegionalCacheTTL},
		{"POINT_CACHE_TTL", "1.5s", &cfg.PointCacheTTL},
		{"MIL_CACHE_TTL", "3s", &cfg.MilCacheTTL},
		{"FEED_POLL_INTERVAL", "2.5s", &cfg.FeedPollInterval},
	}
	for _, d := range durations {
		v, err := parsePositiveDuration(d.name, d.def)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	cfg.CacheMaxEntries, err = parseCacheMaxEntries()
	if err != nil {
		return nil, err
	}

	if cfg.FeedEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("FEED_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("FEED_ENABLED is true but KAFKA_TOPIC is empty")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(name, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}

// parseCacheMaxEntries returns the LRU bound; 0 means unbounded.
func parseCacheMaxEntries() (int, error) {
	s := os.Getenv("CACHE_MAX_ENTRIES")
	if s == "" {
		return 1000, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid CACHE_MAX_ENTRIES")
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
