// Package main provides a CLI command for validating JSON feeds without the HTTP server.
// Usage: jsonfeed-validate [-schema path] [-parallel N] [-output text|json] URL...
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"jsonfeed-validator/internal/config"
	"jsonfeed-validator/internal/handler/http/validator"
	"jsonfeed-validator/internal/infra/feedparser"
	"jsonfeed-validator/internal/infra/fetcher"
	"jsonfeed-validator/internal/infra/schema"
	"jsonfeed-validator/internal/observability/logging"
	"jsonfeed-validator/internal/usecase/validate"
)

const usage = "Usage: jsonfeed-validate [-schema path] [-parallel N] [-output text|json] URL..."

// errUsage marks argument errors; they exit with status 2.
var errUsage = errors.New("invalid arguments")

// options are the parsed command-line flags.
type options struct {
	schemaPath string
	parallel   int
	output     string
	urls       []string
}

// FeedResult is one entry of the JSON output.
type FeedResult struct {
	URL string `json:"url"`
	validator.Response
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n%s\n", err, usage)
		return 2
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(stderr, "Error: Failed to load configuration: %v\n", err)
		return 1
	}
	if opts.schemaPath != "" {
		cfg.Schema.Path = opts.schemaPath
	}

	// CLI のログは stderr に出して stdout の結果と混ぜない
	logger := logging.New(stderr, logging.ParseLevel(cfg.Log.Level), "text")
	slog.SetDefault(logger)
	ctx = logging.WithLogger(ctx, logger)

	schemaValidator, err := schema.Load(ctx, cfg.Schema.Path, schema.DefaultOptions())
	if err != nil {
		fmt.Fprintf(stderr, "Error: Failed to load schema %q: %v\n", cfg.Schema.Path, err)
		return 1
	}

	svc := &validate.Service{
		Fetcher:   fetcher.NewHTTPFetcher(cfg.Fetch),
		Schema:    schemaValidator,
		Summarize: feedparser.Summarize,
	}

	reports, err := validateAll(ctx, svc, opts.urls, opts.parallel)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	switch opts.output {
	case "json":
		err = writeJSON(stdout, reports)
	default:
		err = writeText(stdout, reports)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: Failed to write output: %v\n", err)
		return 1
	}

	for _, r := range reports {
		if !r.Valid() {
			return 1
		}
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("jsonfeed-validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.schemaPath, "schema", "", "JSON Feed schema file path or URL (overrides SCHEMA_PATH)")
	fs.IntVar(&opts.parallel, "parallel", 4, "Maximum number of feeds validated concurrently")
	fs.StringVar(&opts.output, "output", "text", "Output format: text or json")
	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: %v", errUsage, err)
	}

	opts.urls = fs.Args()
	if len(opts.urls) == 0 {
		return opts, fmt.Errorf("%w: at least one URL is required", errUsage)
	}
	if opts.parallel < 1 {
		return opts, fmt.Errorf("%w: -parallel must be at least 1, got %d", errUsage, opts.parallel)
	}
	if opts.output != "text" && opts.output != "json" {
		return opts, fmt.Errorf("%w: invalid output %q (must be 'text' or 'json')", errUsage, opts.output)
	}
	return opts, nil
}

// validateAll validates urls with at most parallel in flight.
// Reports are returned in the order of urls.
func validateAll(ctx context.Context, v validator.Validator, urls []string, parallel int) ([]validate.Report, error) {
	reports := make([]validate.Report, len(urls))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(parallel)
	for i, u := range urls {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			reports[i] = v.Validate(egCtx, u)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func writeText(w io.Writer, reports []validate.Report) error {
	for i, r := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		status := "VALID"
		if !r.Valid() {
			status = "INVALID"
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", status, r.URL); err != nil {
			return err
		}
		for _, e := range r.Errors {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", e.Label(), e.Message); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeJSON(w io.Writer, reports []validate.Report) error {
	results := make([]FeedResult, 0, len(reports))
	for _, r := range reports {
		results = append(results, FeedResult{URL: r.URL, Response: validator.NewResponse(r)})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(results)
}
