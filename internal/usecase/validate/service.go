// Package validate implements feed validation: fetch, parse, schema check,
// message cleanup and advisory warnings.
package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"jsonfeed-validator/internal/domain/entity"
	"jsonfeed-validator/internal/infra/feedparser"
	"jsonfeed-validator/internal/infra/schema"
	"jsonfeed-validator/internal/observability/logging"
	"jsonfeed-validator/internal/observability/metrics"
	"jsonfeed-validator/internal/observability/tracing"
)

// FeedFetcher retrieves a feed document. It returns the body or exactly one
// classified FeedError.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, *entity.FeedError)
}

// SchemaValidator returns raw violations for a decoded document, in the
// phrasing CleanMessage understands.
type SchemaValidator interface {
	Validate(doc any) []string
}

// Report is the outcome of validating one feed URL.
type Report struct {
	// URL is the normalized feed URL; empty when none was supplied.
	URL string
	// Document is the decoded feed, nil when fetching or parsing failed.
	Document any
	// Pretty is the document re-encoded with two-space indentation.
	Pretty string
	// Errors holds errors first, then warnings.
	Errors []entity.FeedError
	// Summary is an optional digest of the feed for display.
	Summary *feedparser.Summary
}

// Valid reports whether a URL was supplied and produced no messages at all.
// Warnings count: a feed with advisory warnings is not reported as valid.
func (r Report) Valid() bool {
	return r.URL != "" && len(r.Errors) == 0
}

// ErrorCount returns the number of error-kind messages.
func (r Report) ErrorCount() int {
	n := 0
	for _, e := range r.Errors {
		if !e.IsWarning() {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-kind messages.
func (r Report) WarningCount() int {
	return len(r.Errors) - r.ErrorCount()
}

// Service validates feeds. Requests are independent; the only shared
// state is the read-only schema.
type Service struct {
	Fetcher FeedFetcher
	Schema  SchemaValidator
	// Summarize is optional; failures are ignored because the summary is display-only.
	Summarize func([]byte) (*feedparser.Summary, error)
}

// Check validates Fetcher and Schema are set.
func (s *Service) Check() error {
	if s.Fetcher == nil || s.Schema == nil {
		return ErrMissingCollaborator
	}
	return nil
}

// Validate fetches and validates the feed at rawURL.
// Every failure is reported inside the Report; Validate never fails.
func (s *Service) Validate(ctx context.Context, rawURL string) Report {
	feedURL := entity.NormalizeFeedURL(rawURL)
	if feedURL == "" {
		return Report{}
	}

	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "validate.Validate", attribute.String("feed.url", feedURL))
	defer span.End()

	report, result := s.validate(ctx, feedURL)

	duration := time.Since(start)
	metrics.RecordValidation(result, report.Errors, duration)
	span.SetAttributes(
		attribute.String("validation.result", result),
		attribute.Int("validation.errors", report.ErrorCount()),
		attribute.Int("validation.warnings", report.WarningCount()),
	)
	logging.FromContext(ctx).Info("feed validated",
		slog.String("url", feedURL),
		slog.String("result", result),
		slog.Int("errors", report.ErrorCount()),
		slog.Int("warnings", report.WarningCount()),
		slog.Duration("duration", duration))

	return report
}

func (s *Service) validate(ctx context.Context, feedURL string) (Report, string) {
	report := Report{URL: feedURL}

	body, ferr := s.Fetcher.Fetch(ctx, feedURL)
	if ferr != nil {
		report.Errors = append(report.Errors, *ferr)
		return report, metrics.ResultFetchError
	}

	doc, err := schema.ParseDocument(body)
	if err != nil {
		report.Errors = append(report.Errors, *entity.Errorf("JSON could not be parsed. %s.", parserMessage(err)))
		return report, metrics.ResultParseError
	}
	report.Document = doc
	report.Pretty = prettyJSON(doc)

	for _, msg := range CleanMessages(s.Schema.Validate(doc)) {
		report.Errors = append(report.Errors, *entity.Errorf("%s", msg))
	}

	for _, w := range CheckWarnings(doc) {
		report.Errors = append(report.Errors, entity.Warning(w))
	}

	if s.Summarize != nil {
		if summary, err := s.Summarize(body); err == nil {
			report.Summary = summary
		} else {
			logging.FromContext(ctx).Debug("feed summary unavailable",
				slog.String("url", feedURL),
				slog.Any("error", err))
		}
	}

	if len(report.Errors) > 0 {
		return report, metrics.ResultInvalid
	}
	return report, metrics.ResultValid
}

// parserMessage strips the sentinel prefix so only the decoder's own words
// reach the user.
func parserMessage(err error) string {
	msg := err.Error()
	if errors.Is(err, schema.ErrDocumentParse) {
		msg = strings.TrimPrefix(msg, schema.ErrDocumentParse.Error()+": ")
	}
	return msg
}

// prettyJSON re-encodes doc with two-space indentation, leaving HTML
// characters unescaped.
func prettyJSON(doc any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}
