package metrics

import (
	"time"

	"jsonfeed-validator/internal/domain/entity"
)

// Fetch outcomes used as the "outcome" label.
const (
	OutcomeSuccess          = "success"
	OutcomeTooManyRedirects = "too_many_redirects"
	OutcomeNotFound         = "not_found"
	OutcomeTimeout          = "timeout"
	OutcomeContentType      = "content_type"
	OutcomeTooLarge         = "too_large"
	OutcomeHTTPError        = "http_error"
	OutcomeException        = "exception"
)

// Validation results used as the "result" label.
const (
	ResultValid      = "valid"
	ResultInvalid    = "invalid"
	ResultFetchError = "fetch_error"
	ResultParseError = "parse_error"
)

// RecordFeedFetch records a classified fetch outcome and its duration.
func RecordFeedFetch(outcome string, duration time.Duration) {
	FeedFetchTotal.WithLabelValues(outcome).Inc()
	FeedFetchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordRedirects records how many redirects a single fetch followed.
func RecordRedirects(count int) {
	FeedRedirectsFollowed.Observe(float64(count))
}

// RecordFeedSize records the size of a fetched document.
func RecordFeedSize(size int) {
	FeedSizeBytes.Observe(float64(size))
}

// RecordValidation records the result of one validation and the kinds of
// messages its report carried.
func RecordValidation(result string, messages []entity.FeedError, duration time.Duration) {
	ValidationsTotal.WithLabelValues(result).Inc()
	ValidationDuration.Observe(duration.Seconds())
	for _, m := range messages {
		ValidationMessagesTotal.WithLabelValues(string(m.Kind)).Inc()
	}
}

// RecordSchemaLoad records a schema load attempt.
func RecordSchemaLoad(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	SchemaLoadsTotal.WithLabelValues(status).Inc()
}

// RecordRateLimited records a request rejected by the rate limiter.
func RecordRateLimited() {
	HTTPRateLimited.Inc()
}
