// Package aggregator answers regional aircraft queries from the keyed primary provider,
// falling back to the public provider when the primary has nothing to report.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/cache"
	"github.com/couchcryptid/nato-watch-service/internal/domain"
	"github.com/couchcryptid/nato-watch-service/internal/observability"
)

// Source selects which provider a query starts with.
type Source string

const (
	SourceAuto    Source = "auto"
	SourceADSBX   Source = "adsbx"
	SourceOpenSky Source = "opensky"
)

// Filter narrows the result set.
type Filter string

const (
	FilterAll  Filter = "all"
	FilterNATO Filter = "nato"
)

// ParseSource maps a query parameter to a Source. Empty means auto.
func ParseSource(s string) (Source, error) {
	switch src := Source(strings.ToLower(strings.TrimSpace(s))); src {
	case "":
		return SourceAuto, nil
	case SourceAuto, SourceADSBX, SourceOpenSky:
		return src, nil
	default:
		return "", fmt.Errorf("%w: unknown source %q", domain.ErrInvalidQuery, s)
	}
}

// ParseFilter maps a query parameter to a Filter. Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterNATO:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown filter %q", domain.ErrInvalidQuery, s)
	}
}

// Query is a regional lookup. BBox, when set, wins over Region.
type Query struct {
	Region string
	BBox   *domain.BBox
	Source Source
	Filter Filter
}

// Result is the unified answer with summary counts.
type Result struct {
	Aircraft  []domain.Aircraft
	Region    string
	Total     int
	Loitering int
	Timestamp time.Time
}

// Primary returns a hard error for configuration and upstream failures.
type Primary interface {
	Fetch(ctx context.Context, bbox domain.BBox) ([]domain.Aircraft, error)
}

// Fallback never fails; problems surface as an empty slice.
type Fallback interface {
	Fetch(ctx context.Context, bbox domain.BBox) []domain.Aircraft
}

// Service runs the primary-then-fallback policy. Provider calls within a query are sequential.
type Service struct {
	primary    Primary
	fallback   Fallback
	classifier *domain.Classifier
	cache      *cache.Cache[[]domain.Aircraft]
	ttl        time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewService creates the orchestrator. Provider results are cached per bbox for ttl.
func NewService(primary Primary, fallback Fallback, classifier *domain.Classifier, c *cache.Cache[[]domain.Aircraft], ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if classifier == nil {
		classifier = domain.DefaultClassifier
	}
	return &Service{
		primary:    primary,
		fallback:   fallback,
		classifier: classifier,
		cache:      c,
		ttl:        ttl,
		metrics:    metrics,
		logger:     logger,
	}
}

// Aircraft resolves the query's bbox, fetches, annotates loitering, filters, and counts.
// A hard error from the primary is returned as is and the fallback is not consulted.
func (s *Service) Aircraft(ctx context.Context, q Query) (Result, error) {
	if q.Source == "" {
		q.Source = SourceAuto
	}
	if q.Filter == "" {
		q.Filter = FilterAll
	}
	if q.Region == "" {
		q.Region = domain.DefaultRegionKey
	}
	bbox := domain.ResolveBBox(q.BBox, q.Region)

	var aircraft []domain.Aircraft
	if q.Source == SourceAuto || q.Source == SourceADSBX {
		got, err := s.fetchPrimary(ctx, bbox)
		if err != nil {
			s.logger.Error("primary provider failed", "region", q.Region, "bbox", bbox.String(), "error", err)
			return Result{Region: q.Region, Aircraft: []domain.Aircraft{}, Timestamp: domain.Now()}, err
		}
		aircraft = got
	}
	if len(aircraft) == 0 {
		if q.Source != SourceOpenSky {
			s.metrics.ProviderFallbacks.Inc()
			s.logger.Info("primary provider empty, using fallback", "region", q.Region)
		}
		aircraft = s.fetchFallback(ctx, bbox)
	}

	out := make([]domain.Aircraft, 0, len(aircraft))
	loitering := 0
	for i := range aircraft {
		a := aircraft[i]
		if !a.HasPosition() {
			continue
		}
		a.Loitering = domain.IsLoitering(a.GroundSpeed)
		if q.Filter == FilterNATO && !s.classifier.KeepForNATOFilter(&a) {
			continue
		}
		if a.Loitering {
			loitering++
		}
		out = append(out, a)
	}

	return Result{
		Aircraft:  out,
		Region:    q.Region,
		Total:     len(out),
		Loitering: loitering,
		Timestamp: domain.Now(),
	}, nil
}

func (s *Service) fetchPrimary(ctx context.Context, bbox domain.BBox) ([]domain.Aircraft, error) {
	e, _, err := s.cache.GetOrFetch(ctx, "adsbx:"+bbox.String(), s.ttl, func(ctx context.Context) ([]domain.Aircraft, int, error) {
		a, err := s.primary.Fetch(ctx, bbox)
		return a, 200, err
	})
	return e.Value, err
}

func (s *Service) fetchFallback(ctx context.Context, bbox domain.BBox) []domain.Aircraft {
	e, _, _ := s.cache.GetOrFetch(ctx, "opensky:"+bbox.String(), s.ttl, func(ctx context.Context) ([]domain.Aircraft, int, error) {
		return s.fallback.Fetch(ctx, bbox), 200, nil
	})
	return e.Value
}
