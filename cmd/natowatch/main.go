package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/nato-watch-service/internal/adapter/adsbx"
	"github.com/couchcryptid/nato-watch-service/internal/adapter/airplaneslive"
	httpadapter "github.com/couchcryptid/nato-watch-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/nato-watch-service/internal/adapter/kafka"
	"github.com/couchcryptid/nato-watch-service/internal/adapter/opensky"
	"github.com/couchcryptid/nato-watch-service/internal/aggregator"
	"github.com/couchcryptid/nato-watch-service/internal/airspace"
	"github.com/couchcryptid/nato-watch-service/internal/cache"
	"github.com/couchcryptid/nato-watch-service/internal/config"
	"github.com/couchcryptid/nato-watch-service/internal/domain"
	"github.com/couchcryptid/nato-watch-service/internal/observability"
	"github.com/couchcryptid/nato-watch-service/internal/pipeline"
	"github.com/couchcryptid/nato-watch-service/internal/poller"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
)

// alwaysReady is the readiness check when no background feed is running.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()
	classifier := domain.NewClassifier(cfg.ClassifierExtraPrefixes, cfg.ClassifierExtraTypes)

	if cfg.ADSBXKey == "" {
		logger.Warn("ADSBX_KEY not set, /aircraft queries using the primary provider will fail")
	}

	regional := aggregator.NewService(
		adsbx.NewClient(cfg.ADSBXKey, cfg.ADSBXBaseURL, cfg.UserAgent, cfg.UpstreamTimeout, metrics, logger),
		opensky.NewClient(cfg.OpenSkyUser, cfg.OpenSkyPass, cfg.OpenSkyBaseURL, cfg.UserAgent, cfg.UpstreamTimeout, metrics, logger),
		classifier,
		cache.New[[]domain.Aircraft]("regional", cfg.CacheMaxEntries, clock, metrics),
		cfg.RegionalCacheTTL,
		metrics, logger,
	)

	feedSource := airplaneslive.NewCachedClient(
		airplaneslive.NewClient(cfg.AirplanesLiveBaseURL, cfg.UserAgent, cfg.UpstreamTimeout, classifier, metrics, logger),
		cache.New[domain.Feed]("point", cfg.CacheMaxEntries, clock, metrics),
		cache.New[domain.Feed]("mil", cfg.CacheMaxEntries, clock, metrics),
		cfg.PointCacheTTL, cfg.MilCacheTTL,
	)
	airspaceSvc := airspace.NewService(feedSource, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		ready  sharedobs.ReadinessChecker = alwaysReady{}
		writer *kafkaadapter.Writer
		feed   *poller.Poller
	)
	if cfg.FeedEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sink := pipeline.New(writer, logger, metrics)
		feed = poller.New(poller.FetcherFunc(airspaceSvc.Military), poller.Options{
			Interval:    cfg.FeedPollInterval,
			SkipOverlap: true,
			OnUpdate:    sink.Offer,
			Clock:       clock,
		}, metrics, logger)
		ready = feed

		go func() {
			if err := sink.Run(ctx); err != nil {
				logger.Error("sighting feed error", "error", err)
			}
		}()
		go func() {
			if err := feed.Run(ctx); err != nil {
				logger.Error("poller error", "error", err)
			}
		}()
		logger.Info("sighting feed enabled", "topic", cfg.KafkaTopic, "interval", cfg.FeedPollInterval)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.UpstreamTimeout, regional, airspaceSvc, ready, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if feed != nil {
		feed.Stop()
		feed.Wait()
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
