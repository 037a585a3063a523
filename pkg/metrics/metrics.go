package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the crawler.
type Metrics struct {
	FetchesTotal        *prometheus.CounterVec
	FetchDuration       prometheus.Histogram
	LinksExtractedTotal prometheus.Counter
	ParseErrorsTotal    prometheus.Counter
	SanitizedTotal      *prometheus.CounterVec
	FrontierSize        prometheus.Gauge
	LevelsTotal         prometheus.Counter
	SinkWritesTotal     *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers the crawler metrics with reg. Pass prometheus.DefaultRegisterer
// in the binary and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FetchesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_fetches_total",
				Help: "Total number of page fetches.",
			},
			[]string{"outcome"}, // success, failure
		),
		FetchDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crawler_fetch_duration_seconds",
				Help:    "Latency of successful page fetches.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		LinksExtractedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_links_extracted_total",
				Help: "Total number of distinct href values extracted per level.",
			},
		),
		ParseErrorsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_parse_errors_total",
				Help: "Total number of pages that could not be parsed.",
			},
		),
		SanitizedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_sanitized_urls_total",
				Help: "Sanitization decisions per candidate URL.",
			},
			[]string{"result"}, // kept, invalid, visited, store_error
		),
		FrontierSize: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawler_frontier_size",
				Help: "Number of URLs scheduled for the current level.",
			},
		),
		LevelsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_levels_total",
				Help: "Total number of BFS levels fetched.",
			},
		),
		SinkWritesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_sink_writes_total",
				Help: "Result batches written to sinks.",
			},
			[]string{"sink", "status"},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
}
