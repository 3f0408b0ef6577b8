// Package airspace serves point/radius and global military snapshots from airplanes.live.
package airspace

import (
	"context"
	"log/slog"
	"math"
	"strconv"

	"github.com/couchcryptid/nato-watch-service/internal/adapter/airplaneslive"
	"github.com/couchcryptid/nato-watch-service/internal/api"
	"github.com/couchcryptid/nato-watch-service/internal/domain"
	"github.com/couchcryptid/nato-watch-service/internal/observability"
)

// Point query defaults (Berlin, maximum radius).
const (
	DefaultLat      = 52.52
	DefaultLon      = 13.405
	DefaultRadiusNM = 250
)

// PointQuery is a center and radius in nautical miles.
type PointQuery struct {
	Lat      float64
	Lon      float64
	RadiusNM float64
}

// ParsePointQuery reads raw query values. Missing or non-numeric values use the defaults;
// the radius is clamped when the query runs.
func ParsePointQuery(lat, lon, radiusNM string) PointQuery {
	return PointQuery{
		Lat:      parseOr(lat, DefaultLat),
		Lon:      parseOr(lon, DefaultLon),
		RadiusNM: parseOr(radiusNM, DefaultRadiusNM),
	}
}

func parseOr(s string, def float64) float64 {
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// Service turns upstream feeds into response documents.
type Service struct {
	source  airplaneslive.Source
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService creates the airspace service over a (usually cached) feed source.
func NewService(source airplaneslive.Source, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{source: source, metrics: metrics, logger: logger}
}

// Point returns aircraft around q. Only transport failures are errors.
func (s *Service) Point(ctx context.Context, q PointQuery) (api.AirspaceResponse, error) {
	q.RadiusNM = domain.ClampRadiusNM(q.RadiusNM)
	feed, err := s.source.Point(ctx, q.Lat, q.Lon, q.RadiusNM)
	if err != nil {
		s.logger.Error("airspace point fetch failed", "lat", q.Lat, "lon", q.Lon, "r_nm", q.RadiusNM, "error", err)
		return api.AirspaceResponse{}, err
	}
	resp := api.NewPointResponse(&feed, q.RadiusNM)
	s.metrics.AircraftServed.WithLabelValues("airspace").Add(float64(len(resp.Aircraft)))
	return resp, nil
}

// Military returns the global military list.
func (s *Service) Military(ctx context.Context) (api.AirspaceResponse, error) {
	feed, err := s.source.Military(ctx)
	if err != nil {
		s.logger.Error("military fetch failed", "error", err)
		return api.AirspaceResponse{}, err
	}
	resp := api.NewMilitaryResponse(&feed)
	s.metrics.AircraftServed.WithLabelValues("mil").Add(float64(len(resp.Aircraft)))
	return resp, nil
}
