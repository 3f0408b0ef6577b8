package adsbx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/nato-watch-service/internal/domain"
	"github.com/couchcryptid/nato-watch-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key"

var baltic = domain.BBox{West: 10, South: 50, East: 35, North: 65}

func testClient(baseURL, key string) *Client {
	return NewClient(key, baseURL, "test-agent", 5*time.Second,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetch_Success(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { domain.SetClock(nil) })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/lat/57.5000/lon/22.5000/dist/250/", r.URL.Path)
		assert.Equal(t, testKey, r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, rapidAPIHost, r.Header.Get("X-RapidAPI-Host"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, `{"ac":[
			{"hex":"ae1234","flight":"RCH123  ","lat":57.1,"lon":21.9,"alt_baro":28000,"gs":430.2,"track":90,"baro_rate":-64,"mil":true},
			{"hex":"3c6444","flight":"DLH4AB","lat":55.0,"lon":13.0,"alt_baro":"ground","gs":0},
			{"hex":"4b1814","flight":"SWR1","lat":55.0},
			{"hex":"4b1815","lon":13.0}
		]}`)
	}))
	defer srv.Close()

	got, err := testClient(srv.URL, testKey).Fetch(context.Background(), baltic)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "ae1234", first.ID)
	assert.Equal(t, "RCH123", first.Callsign)
	assert.Equal(t, 57.1, *first.Lat)
	assert.Equal(t, domain.AltitudeFeet(28000), first.Altitude)
	assert.Equal(t, 430.2, *first.GroundSpeed, "speeds are not converted")
	assert.Equal(t, -64.0, *first.VerticalRate)
	assert.True(t, first.IsMilitary)
	assert.Equal(t, domain.SourceADSBExchange, first.Source)
	assert.Equal(t, fixed, first.Timestamp)

	second := got[1]
	assert.Equal(t, domain.AltitudeGround(), second.Altitude)
	assert.False(t, second.IsMilitary)
	assert.Nil(t, second.VerticalRate)
}

func TestFetch_SmallBoxRadius(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/lat/0.0000/lon/0.0000/dist/86/", r.URL.Path)
		_, _ = io.WriteString(w, `{"ac":[]}`)
	}))
	defer srv.Close()

	got, err := testClient(srv.URL, testKey).Fetch(context.Background(), domain.BBox{West: -1, South: -1, East: 1, North: 1})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetch_MissingKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, "").Fetch(context.Background(), baltic)

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "ADSBX_KEY", cfgErr.Setting)
	assert.False(t, called, "no network call without a key")
}

func TestFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, testKey).Fetch(context.Background(), baltic)

	var httpErr *domain.UpstreamHTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Status)
}

func TestFetch_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>gateway</html>`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, testKey).Fetch(context.Background(), baltic)

	var upErr *domain.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, provider, upErr.Provider)
}

func TestFetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := testClient(url, testKey).Fetch(context.Background(), baltic)

	var upErr *domain.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestFetch_NoAircraftList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"msg":"No error","total":0}`)
	}))
	defer srv.Close()

	got, err := testClient(srv.URL, testKey).Fetch(context.Background(), baltic)
	require.NoError(t, err)
	assert.Empty(t, got)
}
