// Package retry re-attempts downloads of a remote JSON Schema.
//
// The schema is fetched once at startup, so a schema host that is briefly
// unavailable (5xx, 429, dropped connection) should not keep the server
// from starting, while a wrong URL (404) should fail at once.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"jsonfeed-validator/internal/observability/logging"
)

// Policy bounds how often and how patiently a download is repeated.
type Policy struct {
	// Attempts is the total number of downloads, the first one included.
	Attempts int

	// BaseDelay is the wait after the first failure; it doubles per attempt.
	BaseDelay time.Duration

	// MaxDelay caps the doubled wait before jitter.
	MaxDelay time.Duration

	// Jitter adds up to this fraction of the wait at random (0 to 1).
	Jitter float64
}

// SchemaPolicy is used when the schema location is an http(s) URL.
func SchemaPolicy() Policy {
	return Policy{
		Attempts:  4,
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  5 * time.Second,
		Jitter:    0.1,
	}
}

// StatusError is a schema host's answer other than 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports whether the host may answer differently later.
func (e *StatusError) Temporary() bool {
	switch {
	case e.StatusCode >= 500:
		return true
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode == http.StatusRequestTimeout:
		return true
	default:
		return false
	}
}

// Retryable reports whether a failed download is worth repeating.
// Cancellation and an open breaker stop immediately; a temporary status or
// a failed round trip is repeated; anything else (4xx, oversized or
// unreadable documents) is final.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// 開いたブレーカーには再試行しない
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Temporary()
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}

// Do calls download until it succeeds, fails with a final error, or the
// policy runs out of attempts. Waits between attempts end early when ctx is
// canceled.
func Do[T any](ctx context.Context, p Policy, download func(context.Context) (T, error)) (T, error) {
	var zero T
	logger := logging.FromContext(ctx)
	attempts := max(p.Attempts, 1)

	for attempt := 1; ; attempt++ {
		v, err := download(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info("schema download succeeded after retry", slog.Int("attempt", attempt))
			}
			return v, nil
		}

		if !Retryable(err) {
			return zero, err
		}
		if attempt >= attempts {
			return zero, fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}

		wait := p.delay(attempt)
		logger.Warn("schema download failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("attempts", attempts),
			slog.Duration("wait", wait),
			slog.Any("error", err))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("retry aborted: %w", ctx.Err())
		}
	}
}

// delay returns the wait after the given failed attempt (1-based).
func (p Policy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt && d < p.MaxDelay; i++ {
		d *= 2
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}

	jitter := min(max(p.Jitter, 0), 1)
	if jitter > 0 {
		// #nosec G404 -- jitter does not need cryptographic randomness.
		d += time.Duration(rand.Float64() * jitter * float64(d))
	}
	return d
}
