package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/adapter/adsbx"
	"github.com/couchcryptid/nato-watch-service/internal/adapter/airplaneslive"
	httpadapter "github.com/couchcryptid/nato-watch-service/internal/adapter/http"
	"github.com/couchcryptid/nato-watch-service/internal/adapter/opensky"
	"github.com/couchcryptid/nato-watch-service/internal/aggregator"
	"github.com/couchcryptid/nato-watch-service/internal/airspace"
	"github.com/couchcryptid/nato-watch-service/internal/api"
	"github.com/couchcryptid/nato-watch-service/internal/cache"
	"github.com/couchcryptid/nato-watch-service/internal/domain"
	"github.com/couchcryptid/nato-watch-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type stubAircraft struct {
	res aggregator.Result
	err error
	got aggregator.Query
}

func (s *stubAircraft) Aircraft(_ context.Context, q aggregator.Query) (aggregator.Result, error) {
	s.got = q
	return s.res, s.err
}

type stubAirspace struct {
	resp   api.AirspaceResponse
	err    error
	gotQ   airspace.PointQuery
	milHit bool
}

func (s *stubAirspace) Point(_ context.Context, q airspace.PointQuery) (api.AirspaceResponse, error) {
	s.gotQ = q
	return s.resp, s.err
}

func (s *stubAirspace) Military(context.Context) (api.AirspaceResponse, error) {
	s.milHit = true
	return s.resp, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(aircraft httpadapter.AircraftQuerier, as httpadapter.AirspaceQuerier, readyErr error) *httpadapter.Server {
	if aircraft == nil {
		aircraft = &stubAircraft{}
	}
	if as == nil {
		as = &stubAirspace{}
	}
	return httpadapter.NewServer(":0", time.Second, aircraft, as, &mockReadiness{err: readyErr}, discardLogger())
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func ptr(v float64) *float64 { return &v }

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(nil, nil, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(nil, nil, fmt.Errorf("not ready yet")), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])

	rec = get(t, newTestServer(nil, nil, nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(nil, nil, nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAircraft_Success(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubAircraft{res: aggregator.Result{
		Aircraft: []domain.Aircraft{
			{Hex: "ae1234", Callsign: "RCH123", Lat: ptr(57), Lon: ptr(20), GroundSpeed: ptr(120), Loitering: true, IsMilitary: true, Timestamp: ts},
		},
		Region:    "BALTIC",
		Total:     1,
		Loitering: 1,
		Timestamp: ts,
	}}

	rec := get(t, newTestServer(stub, nil, nil), "/aircraft?region=BALTIC&source=opensky&filter=nato&bbox=10,50,35,65")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, aggregator.SourceOpenSky, stub.got.Source)
	assert.Equal(t, aggregator.FilterNATO, stub.got.Filter)
	require.NotNil(t, stub.got.BBox)
	assert.Equal(t, domain.BBox{West: 10, South: 50, East: 35, North: 65}, *stub.got.BBox)

	body := decode[api.AircraftResponse](t, rec)
	assert.Empty(t, body.Error)
	require.Len(t, body.Aircraft, 1)
	assert.Equal(t, "ae1234", body.Aircraft[0].ICAO)
	assert.Equal(t, api.Meta{Region: "BALTIC", Total: 1, Loitering: 1, Timestamp: ts}, body.Meta)
}

func TestAircraft_DefaultsToWorld(t *testing.T) {
	stub := &stubAircraft{res: aggregator.Result{Region: "WORLD", Aircraft: []domain.Aircraft{}}}

	rec := get(t, newTestServer(stub, nil, nil), "/aircraft")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "WORLD", stub.got.Region)
	assert.Equal(t, aggregator.SourceAuto, stub.got.Source)
	assert.Equal(t, aggregator.FilterAll, stub.got.Filter)
	assert.Nil(t, stub.got.BBox)
	assert.JSONEq(t, `[]`, string(decode[map[string]json.RawMessage](t, rec)["aircraft"]))
}

func TestAircraft_InvalidInput(t *testing.T) {
	for _, target := range []string{
		"/aircraft?source=flightradar",
		"/aircraft?filter=friendly",
		"/aircraft?bbox=1,2,3",
		"/aircraft?bbox=a,b,c,d",
	} {
		t.Run(target, func(t *testing.T) {
			stub := &stubAircraft{}
			rec := get(t, newTestServer(stub, nil, nil), target)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode[api.AircraftResponse](t, rec)
			assert.Contains(t, body.Error, "invalid query")
			assert.NotNil(t, body.Aircraft)
			assert.Equal(t, "WORLD", body.Meta.Region)
			assert.Empty(t, stub.got.Region, "orchestrator not called")
		})
	}
}

// Full stack: no ADSBX key configured means the primary fails hard and no fallback runs.
func TestAircraft_BalticNATOWithoutKeyReturns500(t *testing.T) {
	var openskyHits atomic.Int32
	osky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		openskyHits.Add(1)
		_, _ = io.WriteString(w, `{"time":1,"states":[]}`)
	}))
	defer osky.Close()

	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()
	svc := aggregator.NewService(
		adsbx.NewClient("", "http://adsbx.invalid", "test", time.Second, metrics, logger),
		opensky.NewClient("", "", osky.URL, "test", time.Second, metrics, logger),
		domain.DefaultClassifier,
		cache.New[[]domain.Aircraft]("regional", 10, clockwork.NewFakeClock(), metrics),
		30*time.Second, metrics, logger,
	)

	rec := get(t, newTestServer(svc, nil, nil), "/aircraft?region=BALTIC&filter=nato")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[api.AircraftResponse](t, rec)
	assert.Contains(t, body.Error, "ADSBX_KEY")
	assert.Empty(t, body.Aircraft)
	assert.NotNil(t, body.Aircraft)
	assert.Equal(t, "BALTIC", body.Meta.Region)
	assert.Equal(t, 0, body.Meta.Total)
	assert.Equal(t, int32(0), openskyHits.Load())
}

func TestAirspace_PassesParsedQuery(t *testing.T) {
	stub := &stubAirspace{resp: api.AirspaceResponse{OK: true, Source: domain.SourceAirplanesLive, Aircraft: []api.AirspaceAircraft{}}}

	rec := get(t, newTestServer(nil, stub, nil), "/airspace?lat=48.1&lon=bogus&r_nm=100")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, airspace.PointQuery{Lat: 48.1, Lon: airspace.DefaultLon, RadiusNM: 100}, stub.gotQ)
	assert.True(t, decode[api.AirspaceResponse](t, rec).OK)
	assert.False(t, stub.milHit)
}

func TestMil_RoutesToMilitary(t *testing.T) {
	stub := &stubAirspace{resp: api.AirspaceResponse{OK: true, Source: domain.SourceAirplanesLive, Aircraft: []api.AirspaceAircraft{}}}

	rec := get(t, newTestServer(nil, stub, nil), "/mil")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, stub.milHit)
	assert.Equal(t, airspace.PointQuery{}, stub.gotQ)
}

func TestAirspaceAndMil_TransportFailure(t *testing.T) {
	boom := &domain.UpstreamError{Provider: "airplaneslive", Err: errors.New("dial tcp: connection refused")}
	tests := []struct {
		target string
		msg    string
	}{
		{"/airspace", "Failed to fetch airspace data"},
		{"/mil", "Failed to fetch military aircraft data"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(t, newTestServer(nil, &stubAirspace{err: boom}, nil), tt.target)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"ok":false,"error":%q,"detail":"dial tcp: connection refused"}`, tt.msg), rec.Body.String())
		})
	}
}

// Full stack: two /mil requests inside the 3 s TTL hit the upstream once and report the same now.
func TestMil_CachedRepeatHasIdenticalNow(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/mil", r.URL.Path)
		_, _ = io.WriteString(w, `{"ac":[{"hex":"ae1234","flight":"RCH123","lat":51,"lon":12,"alt_baro":30000}],"msg":"No error"}`)
	}))
	defer upstream.Close()

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	domain.SetClock(clock)
	t.Cleanup(func() { domain.SetClock(nil) })

	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()
	client := airplaneslive.NewClient(upstream.URL, "test", time.Second, domain.DefaultClassifier, metrics, logger)
	cached := airplaneslive.NewCachedClient(client,
		cache.New[domain.Feed]("point", 10, clock, metrics),
		cache.New[domain.Feed]("mil", 10, clock, metrics),
		1500*time.Millisecond, 3*time.Second)
	srv := newTestServer(nil, airspace.NewService(cached, metrics, logger), nil)

	first := get(t, srv, "/mil")
	clock.Advance(2 * time.Second)
	second := get(t, srv, "/mil")

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	a := decode[api.AirspaceResponse](t, first)
	b := decode[api.AirspaceResponse](t, second)
	assert.Equal(t, a.Now, b.Now)
	assert.Equal(t, "/mil", b.Endpoint)
	assert.Equal(t, 1, b.Total)
	assert.True(t, b.Aircraft[0].IsMilitary)
	assert.Equal(t, int32(1), hits.Load())

	clock.Advance(2 * time.Second)
	third := decode[api.AirspaceResponse](t, get(t, srv, "/mil"))
	assert.Greater(t, third.Now, a.Now)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRegions(t *testing.T) {
	rec := get(t, newTestServer(nil, nil, nil), "/regions")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[api.RegionsResponse](t, rec)
	assert.Len(t, body.Regions, 5)
	assert.Len(t, body.Hotspots, 6)
}

func TestUnknownMethodRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(nil, nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mil", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestWriteTimeoutCoversPrimaryAndFallback(t *testing.T) {
	for _, upstream := range []time.Duration{time.Second, 15 * time.Second, time.Minute} {
		assert.Greater(t, httpadapter.WriteTimeout(upstream), 2*upstream, "upstream %s", upstream)
	}
	assert.Equal(t, 35*time.Second, httpadapter.WriteTimeout(15*time.Second))
}
