package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"jsonfeed-validator/internal/domain/entity"
	"jsonfeed-validator/internal/observability/logging"
	"jsonfeed-validator/internal/observability/metrics"
	"jsonfeed-validator/internal/observability/tracing"
)

// Fixed failure messages.
const (
	msgTooManyRedirects = "Too many redirects."
	msgNotFound         = "404 not found. No feed was found at this URL."
	msgTimeout          = "Timeout downloading the feed."
	feedContentType     = "application/feed+json"
)

// HTTPFetcher downloads feed documents.
// It is safe for concurrent use; fetches share only the connection pool.
type HTTPFetcher struct {
	client   *http.Client
	config   Config
	resolver resolver
}

// NewHTTPFetcher creates a fetcher with the given configuration.
// Redirects are never followed by the http.Client itself: Fetch walks the
// chain so every hop is validated and counted.
//
// Example:
//
//	cfg := fetcher.DefaultConfig()
//	f := fetcher.NewHTTPFetcher(cfg)
//	body, ferr := f.Fetch(ctx, "https://example.org/feed.json")
func NewHTTPFetcher(config Config) *HTTPFetcher {
	dialer := &net.Dialer{
		Timeout:   config.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   config.ConnectTimeout,
		ResponseHeaderTimeout: config.ReadTimeout,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &HTTPFetcher{
		client:   client,
		config:   config,
		resolver: net.DefaultResolver,
	}
}

// failure is a classified fetch failure before it becomes a FeedError.
type failure struct {
	outcome string
	message string
}

func exception(outcome, kind string) *failure {
	return &failure{outcome: outcome, message: fmt.Sprintf("Unknown exception %s.", kind)}
}

// Fetch downloads the document at rawURL.
// It returns the body, or exactly one error-kind FeedError; no other error
// type leaves this method. Cancelling ctx aborts the fetch, and the whole
// redirect chain must finish within TotalTimeout.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, *entity.FeedError) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "fetcher.Fetch", attribute.String("feed.url", rawURL))
	defer span.End()

	if f.config.TotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.TotalTimeout)
		defer cancel()
	}

	body, redirects, fail := f.follow(ctx, rawURL)
	duration := time.Since(start)
	logger := logging.FromContext(ctx)

	outcome := metrics.OutcomeSuccess
	if fail != nil {
		outcome = fail.outcome
	}
	metrics.RecordFeedFetch(outcome, duration)
	metrics.RecordRedirects(redirects)
	span.SetAttributes(
		attribute.Int("feed.redirects", redirects),
		attribute.String("feed.outcome", outcome),
	)

	if fail != nil {
		span.SetStatus(codes.Error, fail.message)
		logger.Info("feed fetch failed",
			slog.String("url", rawURL),
			slog.String("outcome", fail.outcome),
			slog.String("error", fail.message),
			slog.Int("redirects", redirects),
			slog.Duration("duration", duration))
		return nil, entity.Errorf("%s", fail.message)
	}

	metrics.RecordFeedSize(len(body))
	span.SetAttributes(attribute.Int("feed.size_bytes", len(body)))
	logger.Debug("feed fetched",
		slog.String("url", rawURL),
		slog.Int("size_bytes", len(body)),
		slog.Int("redirects", redirects),
		slog.Duration("duration", duration))
	return body, nil
}

// follow walks the redirect chain with an explicit hop budget.
// A request is only issued while budget remains, so MaxRedirects requests
// at most are made.
func (f *HTTPFetcher) follow(ctx context.Context, rawURL string) ([]byte, int, *failure) {
	current := rawURL
	redirects := 0

	for remaining := f.config.MaxRedirects; ; remaining-- {
		if remaining <= 0 {
			return nil, redirects, &failure{outcome: metrics.OutcomeTooManyRedirects, message: msgTooManyRedirects}
		}

		body, next, fail := f.fetchOnce(ctx, current)
		if fail != nil {
			return nil, redirects, fail
		}
		if next == "" {
			return body, redirects, nil
		}

		logging.FromContext(ctx).Debug("following redirect",
			slog.String("from", current),
			slog.String("to", next))
		current = next
		redirects++
	}
}

// fetchOnce performs a single request. It returns either the body, the
// absolute URL of the next hop, or a failure.
func (f *HTTPFetcher) fetchOnce(ctx context.Context, rawURL string) ([]byte, string, *failure) {
	u, err := validateURL(ctx, f.resolver, rawURL, f.config.DenyPrivateIPs)
	if err != nil {
		return nil, "", exception(metrics.OutcomeException, classifyTransportError(err))
	}

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", exception(metrics.OutcomeException, ExceptionInvalidURL)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", feedContentType+", application/json;q=0.9, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		kind := classifyTransportError(err)
		return nil, "", exception(outcomeForException(kind), kind)
	}
	defer func() { _ = resp.Body.Close() }()

	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		contentType := resp.Header.Get("Content-Type")
		if !acceptableContentType(contentType) {
			if contentType == "" {
				contentType = "not sent"
			}
			return nil, "", &failure{
				outcome: metrics.OutcomeContentType,
				message: fmt.Sprintf("Content-Type was %s. It should be %s.", contentType, feedContentType),
			}
		}
		body, fail := f.readBody(resp.Body, cancel)
		return body, "", fail

	case code >= 300 && code < 400:
		location := resp.Header.Get("Location")
		if location == "" {
			return nil, "", unknownStatus(resp)
		}
		next, err := u.Parse(location)
		if err != nil {
			return nil, "", exception(metrics.OutcomeException, ExceptionInvalidURL)
		}
		return nil, next.String(), nil

	case code == http.StatusNotFound:
		return nil, "", &failure{outcome: metrics.OutcomeNotFound, message: msgNotFound}

	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return nil, "", &failure{outcome: metrics.OutcomeTimeout, message: msgTimeout}

	default:
		return nil, "", unknownStatus(resp)
	}
}

// readBody reads at most MaxBodySize bytes. The read is bounded by
// ReadTimeout; on expiry the request context is cancelled.
func (f *HTTPFetcher) readBody(body io.Reader, cancel context.CancelFunc) ([]byte, *failure) {
	var timedOut atomic.Bool
	timer := time.AfterFunc(f.config.ReadTimeout, func() {
		timedOut.Store(true)
		cancel()
	})
	defer timer.Stop()

	data, err := io.ReadAll(io.LimitReader(body, f.config.MaxBodySize+1))
	if err != nil {
		if timedOut.Load() {
			return nil, exception(metrics.OutcomeTimeout, ExceptionTimeout)
		}
		kind := classifyTransportError(err)
		if kind == ExceptionGeneric {
			kind = ExceptionReadError
		}
		return nil, exception(outcomeForException(kind), kind)
	}

	if int64(len(data)) > f.config.MaxBodySize {
		return nil, &failure{
			outcome: metrics.OutcomeTooLarge,
			message: fmt.Sprintf("Feed is larger than %d bytes.", f.config.MaxBodySize),
		}
	}

	return data, nil
}

func acceptableContentType(contentType string) bool {
	return strings.Contains(contentType, "application/json") ||
		strings.Contains(contentType, feedContentType)
}

func unknownStatus(resp *http.Response) *failure {
	return &failure{
		outcome: metrics.OutcomeHTTPError,
		message: fmt.Sprintf("Unknown error %d %s, %s.", resp.StatusCode, reasonPhrase(resp), statusClass(resp.StatusCode)),
	}
}

func outcomeForException(kind string) string {
	if kind == ExceptionTimeout {
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeException
}
