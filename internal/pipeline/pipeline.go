// Package pipeline forwards poller snapshots to a sighting sink.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/api"
	"github.com/couchcryptid/nato-watch-service/internal/domain"
	"github.com/couchcryptid/nato-watch-service/internal/observability"
	"github.com/couchcryptid/nato-watch-service/internal/poller"
	"github.com/couchcryptid/storm-data-shared/retry"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Publisher writes a batch of aircraft to the destination.
type Publisher interface {
	Publish(ctx context.Context, aircraft []domain.Aircraft) error
}

// Pipeline publishes the aircraft of each new snapshot. Only the newest pending snapshot is kept;
// a slow sink skips intermediate ones rather than queueing them.
type Pipeline struct {
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	pending   chan api.AirspaceResponse
}

// New creates a Pipeline.
func New(p Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		publisher: p,
		logger:    logger,
		metrics:   metrics,
		pending:   make(chan api.AirspaceResponse, 1),
	}
}

// Offer is a poller.Options.OnUpdate callback. Only tracking snapshots are forwarded.
func (p *Pipeline) Offer(s poller.Snapshot) {
	if s.Status != poller.StatusTracking || s.Data == nil {
		return
	}
	resp := *s.Data
	for {
		select {
		case p.pending <- resp:
			return
		default:
		}
		// Drop the stale pending snapshot and retry.
		select {
		case <-p.pending:
		default:
		}
	}
}

// Run publishes offered snapshots until the context is cancelled. Repeats of the same upstream
// snapshot (served from cache) are published once.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("sighting feed started")
	p.metrics.FeedRunning.Set(1)
	defer p.metrics.FeedRunning.Set(0)

	var lastNow int64
	for {
		var resp api.AirspaceResponse
		select {
		case <-ctx.Done():
			p.logger.Info("sighting feed stopping", "reason", ctx.Err())
			return nil
		case resp = <-p.pending:
		}
		if resp.Now != 0 && resp.Now == lastNow {
			continue
		}
		if !p.publish(ctx, &resp) {
			return nil
		}
		lastNow = resp.Now
	}
}

// publish retries with exponential backoff until the batch is written, a newer snapshot
// replaces it, or ctx ends. Returns false if the pipeline should stop.
func (p *Pipeline) publish(ctx context.Context, resp *api.AirspaceResponse) bool {
	backoff := initialBackoff
	for {
		aircraft := resp.ToDomain()
		err := p.publisher.Publish(ctx, aircraft)
		if err == nil {
			p.metrics.FeedPublished.Add(float64(len(aircraft)))
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		p.metrics.FeedPublishErrors.Inc()
		p.logger.Error("publish sightings failed", "error", err, "aircraft", len(aircraft), "backoff", backoff)

		if !retry.SleepWithContext(ctx, backoff) {
			return false
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)

		select {
		case newer := <-p.pending:
			*resp = newer
		default:
		}
	}
}
