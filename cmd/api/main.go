package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jsonfeed-validator/internal/config"
	hhttp "jsonfeed-validator/internal/handler/http"
	"jsonfeed-validator/internal/handler/http/middleware"
	"jsonfeed-validator/internal/handler/http/requestid"
	"jsonfeed-validator/internal/handler/http/validator"
	"jsonfeed-validator/internal/infra/feedparser"
	"jsonfeed-validator/internal/infra/fetcher"
	"jsonfeed-validator/internal/infra/schema"
	"jsonfeed-validator/internal/observability/logging"
	"jsonfeed-validator/internal/observability/tracing"
	"jsonfeed-validator/internal/usecase/validate"
)

// maxRequestBody bounds request bodies. The endpoint only takes query
// parameters, so anything large is rejected.
const maxRequestBody = 64 << 10

func main() {
	cfg, err := config.Load("")
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)

	shutdownTracing := tracing.Init("jsonfeed-validator", cfg.Server.Version)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shut down tracer provider", slog.Any("error", err))
		}
	}()

	components := setupServer(logger, &cfg)
	runServer(logger, cfg.Server, components)
}

// initLogger builds the process logger from configuration and installs it as the default.
func initLogger(cfg config.LogConfig) *slog.Logger {
	logger := logging.New(os.Stdout, logging.ParseLevel(cfg.Level), cfg.Format)
	slog.SetDefault(logger)
	return logger
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler         http.Handler
	RateLimiter     *middleware.RateLimiter
	CleanupInterval time.Duration
}

// setupServer loads the schema, wires the validation service and returns the
// fully wrapped handler.
func setupServer(logger *slog.Logger, cfg *config.Config) *ServerComponents {
	ctx := logging.WithLogger(context.Background(), logger)

	schemaValidator, err := schema.Load(ctx, cfg.Schema.Path, schema.DefaultOptions())
	if err != nil {
		// スキーマなしでは検証できないので起動しない
		logger.Error("failed to load JSON Feed schema",
			slog.String("path", cfg.Schema.Path),
			slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("schema loaded", slog.String("location", schemaValidator.Location()))

	svc := &validate.Service{
		Fetcher:   fetcher.NewHTTPFetcher(cfg.Fetch),
		Schema:    schemaValidator,
		Summarize: feedparser.Summarize,
	}

	proxyConfig, err := middleware.LoadTrustedProxyConfig()
	if err != nil {
		logger.Error("failed to load trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}

	var ipExtractor middleware.IPExtractor
	if proxyConfig.Enabled {
		ipExtractor = middleware.NewTrustedProxyExtractor(*proxyConfig)
		logger.Info("rate limiting: trusted proxy mode enabled",
			slog.Int("trusted_proxies_count", len(proxyConfig.AllowedCIDRs)))
	} else {
		ipExtractor = &middleware.RemoteAddrExtractor{}
		logger.Info("rate limiting: using RemoteAddr (proxy headers ignored)")
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit, ipExtractor)
	if cfg.RateLimit.Enabled {
		logger.Info("rate limiting initialized",
			slog.Float64("requests_per_second", cfg.RateLimit.RequestsPerSecond),
			slog.Int("burst", cfg.RateLimit.Burst),
			slog.Int("max_clients", cfg.RateLimit.MaxClients))
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	mux := setupRoutes(svc, schemaValidator.Location(), limiter, cfg)
	handler := applyMiddleware(logger, mux, limiter, cfg)

	return &ServerComponents{
		Handler:     handler,
		RateLimiter: limiter,
		// idle 判定の半分の間隔で掃除する
		CleanupInterval: cfg.RateLimit.IdleTTL / 2,
	}
}

// setupRoutes registers the validator and operational endpoints.
func setupRoutes(svc *validate.Service, schemaLocation string, limiter *middleware.RateLimiter, cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()
	validator.Register(mux, svc)

	mux.Handle("GET /health", &hhttp.HealthHandler{
		Service:        svc,
		SchemaLocation: schemaLocation,
		Version:        cfg.Server.Version,
		RateLimiter:    limiter,
		CSPEnabled:     cfg.CSP.Enabled,
		CSPReportOnly:  cfg.CSP.ReportOnly,
	})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{Service: svc})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	return mux
}

// applyMiddleware wraps the handler with the middleware chain.
// Order (outermost first): Request ID → logger injection → Tracing → Logging →
// Recovery → Metrics → Rate Limit → CSP → Body Limit → Timeout
func applyMiddleware(logger *slog.Logger, handler http.Handler, limiter *middleware.RateLimiter, cfg *config.Config) http.Handler {
	cspConfig := middleware.DefaultCSPConfig()
	cspConfig.Enabled = cfg.CSP.Enabled
	cspConfig.ReportOnly = cfg.CSP.ReportOnly
	if cspConfig.Enabled {
		logger.Info("CSP enabled", slog.Bool("report_only", cspConfig.ReportOnly))
	} else {
		logger.Warn("CSP is disabled")
	}

	return hhttp.Chain(handler,
		requestid.Middleware,
		logging.Middleware(logger),
		tracing.Middleware,
		hhttp.Logging(logger),
		hhttp.Recover(logger),
		hhttp.MetricsMiddleware,
		limiter.Middleware,
		middleware.NewCSPMiddleware(cspConfig).Middleware(),
		hhttp.LimitRequestBody(maxRequestBody),
		hhttp.Timeout(cfg.Server.RequestTimeout),
	)
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, cfg config.ServerConfig, components *ServerComponents) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if components.RateLimiter != nil && components.CleanupInterval > 0 {
		go hhttp.StartRateLimitCleanup(ctx, components.RateLimiter, components.CleanupInterval)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout, // Slowloris 対策
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Addr),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()
	logger.Debug("background cleanup goroutines cancelled")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
