// Command airwatch polls a running nato-watch server and prints a live summary of military traffic.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/domain"
	"github.com/couchcryptid/nato-watch-service/internal/observability"
	"github.com/couchcryptid/nato-watch-service/internal/poller"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

type options struct {
	server   string
	mode     string
	latLon   []float64
	radiusNM float64
	interval time.Duration
	limit    int
	once     bool
	logLevel string
}

func main() {
	var opts options
	setupCommandLineFlags(&opts)
	pflag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "airwatch:", err)
		os.Exit(1)
	}
}

func setupCommandLineFlags(o *options) {
	def := poller.DefaultQuery()
	pflag.StringVarP(&o.server, "server", "s", "http://localhost:8080", "base URL of the nato-watch server")
	pflag.StringVarP(&o.mode, "mode", "m", string(def.Mode), "what to poll: mil (global military list) or point")
	pflag.Float64SliceVarP(&o.latLon, "latlon", "l", []float64{def.Lat, def.Lon}, "center for point mode as lat,lon")
	pflag.Float64VarP(&o.radiusNM, "radius", "r", def.RadiusNM, "radius for point mode in nautical miles (1-250)")
	pflag.DurationVarP(&o.interval, "interval", "i", poller.DefaultInterval, "poll interval")
	pflag.IntVarP(&o.limit, "top", "n", 15, "number of aircraft to list, 0 for all")
	pflag.BoolVar(&o.once, "once", false, "fetch a single snapshot and exit")
	pflag.StringVar(&o.logLevel, "log-level", "warn", "log level for poll diagnostics (written to stdout)")
}

func buildQuery(o options) (poller.Query, error) {
	q := poller.DefaultQuery()
	switch poller.Mode(o.mode) {
	case poller.ModeMilitary:
	case poller.ModePoint:
		if len(o.latLon) != 2 {
			return q, fmt.Errorf("--latlon needs exactly two values, got %d", len(o.latLon))
		}
		q.Mode = poller.ModePoint
		q.Lat, q.Lon = o.latLon[0], o.latLon[1]
		q.RadiusNM = domain.ClampRadiusNM(o.radiusNM)
	default:
		return q, fmt.Errorf("unknown mode %q (want mil or point)", o.mode)
	}
	return q, nil
}

func run(o options) error {
	q, err := buildQuery(o)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(o.logLevel, "text")
	fetcher := poller.NewHTTPFetcher(o.server, q, 10*time.Second)
	classifier := domain.DefaultClassifier

	show := func(s poller.Snapshot) {
		fmt.Println(renderReport(s, classifier, o.limit))
		fmt.Println()
	}
	// Nothing serves /metrics here, so keep the collectors off the default registry.
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())
	p := poller.New(fetcher, poller.Options{Interval: o.interval, SkipOverlap: true, OnUpdate: show}, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if o.once {
		s := p.Refresh(ctx)
		if s.Status == poller.StatusOffline {
			return fmt.Errorf("fetch %s: %s", fetcher.URL(), s.Err)
		}
		return nil
	}

	fmt.Printf("polling %s every %s (ctrl-c to stop)\n\n", fetcher.URL(), o.interval)
	return p.Run(ctx)
}
