// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds.
	// Validation requests wait on an outbound fetch, so buckets reach 60s.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsInFlight tracks the current number of HTTP requests being processed.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPRateLimited counts requests rejected by the per-client limiter.
	HTTPRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// Feed fetch metrics
var (
	// FeedFetchTotal counts fetch attempts by classified outcome
	// (success, too_many_redirects, not_found, timeout, content_type, http_error, exception).
	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_total",
			Help: "Total number of feed fetches by outcome",
		},
		[]string{"outcome"},
	)

	// FeedFetchDuration measures the whole redirect chain, not a single hop.
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Feed fetch duration in seconds including redirects",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"outcome"},
	)

	// FeedRedirectsFollowed records how many redirects a fetch followed.
	FeedRedirectsFollowed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_redirects",
			Help:    "Number of redirects followed per feed fetch",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	// FeedSizeBytes records the size of successfully fetched documents.
	FeedSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_size_bytes",
			Help:    "Size of fetched feed documents in bytes",
			Buckets: prometheus.ExponentialBuckets(512, 4, 8),
		},
	)
)

// Validation metrics
var (
	// ValidationsTotal counts validation requests by result
	// (valid, invalid, fetch_error, parse_error).
	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_validations_total",
			Help: "Total number of feed validations by result",
		},
		[]string{"result"},
	)

	// ValidationMessagesTotal counts report messages by kind (error, warning).
	ValidationMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_validation_messages_total",
			Help: "Total number of report messages by kind",
		},
		[]string{"kind"},
	)

	// ValidationDuration measures an end-to-end validation including the fetch.
	ValidationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_validation_duration_seconds",
			Help:    "End-to-end feed validation duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// SchemaLoadsTotal counts schema load attempts at startup by status.
	SchemaLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schema_loads_total",
			Help: "Total number of schema load attempts by status",
		},
		[]string{"status"},
	)
)
