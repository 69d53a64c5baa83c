// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Feed fetch outcomes and redirect counts
//   - Validation results and emitted message counts
//
// All metrics are registered with the Prometheus default registry and
// exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "jsonfeed-validator/internal/observability/metrics"
//
//	start := time.Now()
//	// ... fetch the feed ...
//	metrics.RecordFeedFetch(metrics.OutcomeSuccess, time.Since(start))
package metrics
