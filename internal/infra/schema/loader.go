package schema

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"jsonfeed-validator/internal/observability/logging"
	"jsonfeed-validator/internal/observability/metrics"
	"jsonfeed-validator/internal/resilience/circuitbreaker"
	"jsonfeed-validator/internal/resilience/retry"
)

// maxSchemaSize bounds a schema document downloaded over HTTP.
const maxSchemaSize = 5 * 1024 * 1024

// Options controls how remote schema documents are retrieved.
type Options struct {
	// HTTPClient downloads http(s) schemas and remote $refs.
	HTTPClient *http.Client

	// Retry is applied to each remote download.
	Retry retry.Policy

	// Breaker guards remote downloads; nil creates one from SchemaLoaderConfig.
	Breaker *circuitbreaker.CircuitBreaker
}

// DefaultOptions returns options suitable for loading a schema at startup.
func DefaultOptions() Options {
	return Options{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Retry:      retry.SchemaPolicy(),
	}
}

// Load reads and compiles the schema at location, which may be a file path,
// a file:// URL or an http(s) URL. The schema is compiled once; the returned
// Validator is safe for concurrent use.
func Load(ctx context.Context, location string, opts Options) (*Validator, error) {
	start := time.Now()
	logger := logging.FromContext(ctx)

	schemaURL, err := toURL(location)
	if err != nil {
		metrics.RecordSchemaLoad(false)
		return nil, fmt.Errorf("%w: %v", ErrSchemaLoad, err)
	}

	c := newCompiler(ctx, opts)
	sch, err := c.Compile(schemaURL)
	if err != nil {
		metrics.RecordSchemaLoad(false)
		return nil, fmt.Errorf("%w: compile %s: %v", ErrSchemaLoad, schemaURL, err)
	}

	metrics.RecordSchemaLoad(true)
	logger.Info("schema loaded",
		slog.String("location", schemaURL),
		slog.Duration("duration", time.Since(start)))

	return newValidator(sch, schemaURL), nil
}

// Compile builds a Validator from an in-memory schema document registered
// under name. Remote $refs are not resolved.
func Compile(name string, data []byte) (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrSchemaLoad, name, err)
	}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft4)
	c.AssertFormat()
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("%w: add %s: %v", ErrSchemaLoad, name, err)
	}

	sch, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: compile %s: %v", ErrSchemaLoad, name, err)
	}
	return newValidator(sch, name), nil
}

// JSON Feed schemas predate $schema-less drafts, so draft 4 is assumed.
func newCompiler(ctx context.Context, opts Options) *jsonschema.Compiler {
	if opts.HTTPClient == nil {
		opts.HTTPClient = DefaultOptions().HTTPClient
	}
	if opts.Retry.Attempts == 0 {
		opts.Retry = retry.SchemaPolicy()
	}
	if opts.Breaker == nil {
		opts.Breaker = circuitbreaker.New(circuitbreaker.SchemaLoaderConfig())
	}

	remote := &httpLoader{ctx: ctx, opts: opts}
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft4)
	c.AssertFormat()
	c.UseLoader(jsonschema.SchemeURLLoader{
		"file":  jsonschema.FileLoader{},
		"http":  remote,
		"https": remote,
	})
	return c
}

// toURL turns a file path into a file:// URL; URLs pass through.
func toURL(location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", fmt.Errorf("empty schema location")
	}

	// A one-letter scheme is a Windows drive.
	if u, err := url.Parse(location); err == nil && len(u.Scheme) > 1 {
		switch u.Scheme {
		case "file", "http", "https":
			return location, nil
		default:
			return "", fmt.Errorf("unsupported schema scheme %q", u.Scheme)
		}
	}

	abs, err := filepath.Abs(location)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", location, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// httpLoader downloads schema documents with retry and a circuit breaker.
// jsonschema.URLLoader carries no context, so the load context is captured
// when the compiler is built.
type httpLoader struct {
	ctx  context.Context
	opts Options
}

func (l *httpLoader) Load(rawURL string) (any, error) {
	body, err := retry.Do(l.ctx, l.opts.Retry, func(ctx context.Context) ([]byte, error) {
		return circuitbreaker.Do(l.opts.Breaker, func() ([]byte, error) {
			return l.get(ctx, rawURL)
		})
	})
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(body))
}

func (l *httpLoader) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/schema+json, application/json")

	resp, err := l.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSchemaSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxSchemaSize {
		return nil, fmt.Errorf("schema %s exceeds %d bytes", rawURL, maxSchemaSize)
	}
	return data, nil
}
