package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/aggregator"
	"github.com/couchcryptid/nato-watch-service/internal/airspace"
	"github.com/couchcryptid/nato-watch-service/internal/api"
	"github.com/couchcryptid/nato-watch-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AircraftQuerier answers regional queries.
type AircraftQuerier interface {
	Aircraft(ctx context.Context, q aggregator.Query) (aggregator.Result, error)
}

// AirspaceQuerier answers point and military queries.
type AirspaceQuerier interface {
	Point(ctx context.Context, q airspace.PointQuery) (api.AirspaceResponse, error)
	Military(ctx context.Context) (api.AirspaceResponse, error)
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	aircraft   AircraftQuerier
	airspace   AirspaceQuerier
	logger     *slog.Logger
}

// WriteTimeout is the response deadline for a given per-upstream timeout. /aircraft may wait on
// the primary and then the fallback provider, so it covers two upstream calls plus headroom.
func WriteTimeout(upstream time.Duration) time.Duration {
	return 2*upstream + 5*time.Second
}

// NewServer wires every route onto a fresh mux.
func NewServer(addr string, upstreamTimeout time.Duration, aircraft AircraftQuerier, airspaceSvc AirspaceQuerier, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: WriteTimeout(upstreamTimeout),
			IdleTimeout:  60 * time.Second,
		},
		aircraft: aircraft,
		airspace: airspaceSvc,
		logger:   logger,
	}

	mux.HandleFunc("GET /aircraft", s.handleAircraft)
	mux.HandleFunc("GET /airspace", s.handleAirspace)
	mux.HandleFunc("GET /mil", s.handleMilitary)
	mux.HandleFunc("GET /regions", handleRegions)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleAircraft(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	region := params.Get("region")
	if region == "" {
		region = domain.DefaultRegionKey
	}

	q, err := parseAircraftQuery(region, params.Get("source"), params.Get("filter"), params.Get("bbox"))
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, api.NewAircraftError(err.Error(), region, domain.Now()))
		return
	}

	res, err := s.aircraft.Aircraft(r.Context(), q)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusInternalServerError, api.NewAircraftError(err.Error(), res.Region, res.Timestamp))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, api.NewAircraftResponse(res.Aircraft, res.Region, res.Loitering, res.Timestamp))
}

func parseAircraftQuery(region, source, filter, bbox string) (aggregator.Query, error) {
	q := aggregator.Query{Region: region}
	var err error
	if q.Source, err = aggregator.ParseSource(source); err != nil {
		return q, err
	}
	if q.Filter, err = aggregator.ParseFilter(filter); err != nil {
		return q, err
	}
	if bbox != "" {
		b, err := domain.ParseBBox(bbox)
		if err != nil {
			return q, err
		}
		q.BBox = &b
	}
	return q, nil
}

func (s *Server) handleAirspace(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := airspace.ParsePointQuery(params.Get("lat"), params.Get("lon"), params.Get("r_nm"))

	resp, err := s.airspace.Point(r.Context(), q)
	if err != nil {
		writeUpstreamFailure(w, "Failed to fetch airspace data", err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMilitary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.airspace.Military(r.Context())
	if err != nil {
		writeUpstreamFailure(w, "Failed to fetch military aircraft data", err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func handleRegions(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, api.NewRegionsResponse())
}

func writeUpstreamFailure(w http.ResponseWriter, msg string, err error) {
	detail := err.Error()
	var ue *domain.UpstreamError
	if errors.As(err, &ue) && ue.Err != nil {
		detail = ue.Err.Error()
	}
	sharedobs.WriteJSON(w, http.StatusInternalServerError, api.ErrorResponse{OK: false, Error: msg, Detail: detail})
}
