// Package poller repeatedly fetches an airspace snapshot and tracks a coarse connection status.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/api"
	"github.com/couchcryptid/nato-watch-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Status describes the outcome of the most recent poll.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusLoading  Status = "loading"
	StatusTracking Status = "tracking" // at least one aircraft
	StatusQuiet    Status = "quiet"    // healthy, nothing in view
	StatusDegraded Status = "degraded" // upstream answered but is unhealthy or rate limited
	StatusOffline  Status = "offline"  // request failed
)

// RateLimitedMessage is the snapshot error while the upstream is throttling us.
const RateLimitedMessage = "Rate limited - waiting..."

// DefaultInterval keeps military polling under the upstream's one-request-per-second limit.
const DefaultInterval = 2500 * time.Millisecond

// Fetcher loads one snapshot.
type Fetcher interface {
	Fetch(ctx context.Context) (api.AirspaceResponse, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) (api.AirspaceResponse, error)

func (f FetcherFunc) Fetch(ctx context.Context) (api.AirspaceResponse, error) { return f(ctx) }

// Snapshot is the poller state visible to callers.
type Snapshot struct {
	Status     Status
	Data       *api.AirspaceResponse // last successfully decoded response, kept across failures
	Err        string
	LastUpdate time.Time
}

// Options tune a Poller. Zero values use defaults.
type Options struct {
	Interval time.Duration
	// SkipOverlap drops a tick while the previous fetch is still running.
	SkipOverlap bool
	// OnUpdate is called after every completed poll, from the polling goroutine.
	OnUpdate func(Snapshot)
	Clock    clockwork.Clock
}

// Poller fetches immediately on Start and then on every tick. Overlapping fetches are allowed
// unless SkipOverlap is set.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	skip     bool
	onUpdate func(Snapshot)
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger

	mu       sync.Mutex
	snap     Snapshot
	stop     context.CancelFunc
	loopDone chan struct{}

	inflight atomic.Bool
	ready    atomic.Bool
	fetches  sync.WaitGroup
}

// New creates an idle Poller.
func New(f Fetcher, opts Options, metrics *observability.Metrics, logger *slog.Logger) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Poller{
		fetcher:  f,
		interval: opts.Interval,
		skip:     opts.SkipOverlap,
		onUpdate: opts.OnUpdate,
		clock:    opts.Clock,
		metrics:  metrics,
		logger:   logger,
		snap:     Snapshot{Status: StatusIdle},
	}
}

// Start fetches once right away and then on every interval until ctx ends or Stop is called.
// Calling Start on a running poller does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.stop != nil {
		p.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.stop, p.loopDone = cancel, done
	p.mu.Unlock()

	// Fetches outlive Stop so their results still land in the snapshot.
	fetchCtx := context.WithoutCancel(ctx)
	ticker := p.clock.NewTicker(p.interval)

	p.logger.Info("poller started", "interval", p.interval, "skip_overlap", p.skip)
	p.launch(fetchCtx)

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.Chan():
				p.launch(fetchCtx)
			}
		}
	}()
}

// Stop cancels the timer and returns the status to idle, so the next Start reports loading until
// its first fetch lands. A fetch already in flight still completes and is applied.
func (p *Poller) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.loopDone
	p.stop, p.loopDone = nil, nil
	p.mu.Unlock()

	if stop == nil {
		return
	}
	stop()
	<-done

	p.mu.Lock()
	p.snap.Status = StatusIdle
	p.mu.Unlock()
	p.logger.Info("poller stopped")
}

// Run polls until ctx is cancelled, then waits for in-flight fetches.
func (p *Poller) Run(ctx context.Context) error {
	p.Start(ctx)
	<-ctx.Done()
	p.Stop()
	p.Wait()
	return nil
}

// Wait blocks until no fetch is in flight.
func (p *Poller) Wait() {
	p.fetches.Wait()
}

// Refresh runs one poll synchronously and returns the resulting snapshot.
func (p *Poller) Refresh(ctx context.Context) Snapshot {
	return p.poll(ctx)
}

// Snapshot returns a copy of the current state.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// CheckReadiness returns nil once any poll has produced a decoded response.
func (p *Poller) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("poller has not completed a successful fetch yet")
	}
	return nil
}

func (p *Poller) launch(ctx context.Context) {
	if p.skip && !p.inflight.CompareAndSwap(false, true) {
		p.logger.Debug("previous fetch still running, skipping tick")
		return
	}
	p.fetches.Add(1)
	go func() {
		defer p.fetches.Done()
		if p.skip {
			defer p.inflight.Store(false)
		}
		p.poll(ctx)
	}()
}

func (p *Poller) poll(ctx context.Context) Snapshot {
	p.mu.Lock()
	p.snap.Err = ""
	if p.snap.Status == StatusIdle {
		p.snap.Status = StatusLoading
	}
	p.mu.Unlock()

	resp, err := p.fetcher.Fetch(ctx)

	p.mu.Lock()
	if err != nil {
		p.snap.Status = StatusOffline
		p.snap.Err = err.Error()
	} else {
		p.snap.Data = &resp
		p.snap.LastUpdate = p.clock.Now()
		p.snap.Status, p.snap.Err = classify(&resp)
	}
	snap := p.snap
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("poll failed", "error", err)
	} else {
		p.ready.Store(true)
		p.logger.Debug("poll complete", "status", snap.Status, "aircraft", len(resp.Aircraft))
	}
	p.metrics.PollResults.WithLabelValues(string(snap.Status)).Inc()

	if p.onUpdate != nil {
		p.onUpdate(snap)
	}
	return snap
}

func classify(resp *api.AirspaceResponse) (Status, string) {
	switch {
	case resp.RateLimited:
		return StatusDegraded, RateLimitedMessage
	case !resp.OK:
		return StatusDegraded, ""
	case len(resp.Aircraft) > 0:
		return StatusTracking, ""
	default:
		return StatusQuiet, ""
	}
}
