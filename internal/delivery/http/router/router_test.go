package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lesingerouge/crawler/internal/delivery/http/handler"
	"github.com/lesingerouge/crawler/internal/delivery/http/response"
	"github.com/lesingerouge/crawler/pkg/metrics"
)

type stubStore struct{ err error }

func (s stubStore) Ping(context.Context) error { return s.err }

func newTestServer(t *testing.T, store handler.Pinger) (*httptest.Server, *metrics.Metrics) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	srv := httptest.NewServer(New(handler.NewHandler(store, logger), m, reg, logger))
	t.Cleanup(srv.Close)
	return srv, m
}

func getHealth(t *testing.T, url string) (int, response.HealthResponse) {
	t.Helper()
	resp, err := http.Get(url + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body response.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	return resp.StatusCode, body
}

func scrape(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func TestHealthOK(t *testing.T) {
	srv, _ := newTestServer(t, stubStore{})

	status, body := getHealth(t, srv.URL)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body.Status)
	assert.Empty(t, body.Error)

	assert.Contains(t, scrape(t, srv.URL), `http_requests_total{method="GET",path="/api/health",status="200"} 1`)
}

func TestHealthStoreDown(t *testing.T) {
	srv, _ := newTestServer(t, stubStore{err: errors.New("dial tcp: connection refused")})

	status, body := getHealth(t, srv.URL)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unavailable", body.Status)
	assert.Contains(t, body.Error, "connection refused")

	assert.Contains(t, scrape(t, srv.URL), `http_requests_total{method="GET",path="/api/health",status="503"} 1`)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, m := newTestServer(t, stubStore{})
	m.FetchesTotal.WithLabelValues("success").Add(3)

	assert.Contains(t, scrape(t, srv.URL), `crawler_fetches_total{outcome="success"} 3`)
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t, stubStore{})

	resp, err := http.Get(srv.URL + "/api/crawl/12345")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Contains(t, scrape(t, srv.URL), `http_requests_total{method="GET",path="unmatched",status="404"} 1`)
}
