// Package config assembles the server configuration: defaults, then an
// optional YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"jsonfeed-validator/internal/infra/fetcher"
	pkgconfig "jsonfeed-validator/pkg/config"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete server configuration.
type Config struct {
	Server    ServerConfig              `yaml:"server"`
	Schema    SchemaConfig              `yaml:"schema"`
	Fetch     fetcher.Config            `yaml:"fetch"`
	RateLimit pkgconfig.RateLimitConfig `yaml:"rate_limit"`
	CSP       CSPConfig                 `yaml:"csp"`
	Log       LogConfig                 `yaml:"log"`
}

// fetchTimeoutMargin leaves room after the fetch for parsing, schema
// validation and rendering within the request timeout.
const fetchTimeoutMargin = time.Second

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// RequestTimeout bounds a whole request, including the outbound fetch.
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	Version           string        `yaml:"version"`
}

// SchemaConfig locates the JSON Schema feeds are validated against.
type SchemaConfig struct {
	// Path is a file path or a file/http/https URL.
	Path string `yaml:"path"`
}

// CSPConfig toggles the Content-Security-Policy middleware.
type CSPConfig struct {
	Enabled    bool `yaml:"enabled"`
	ReportOnly bool `yaml:"report_only"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			RequestTimeout:    90 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			Version:           "dev",
		},
		Schema:    SchemaConfig{Path: "config/schema.json"},
		Fetch:     fetcher.DefaultConfig(),
		RateLimit: pkgconfig.DefaultRateLimitConfig(),
		CSP:       CSPConfig{Enabled: true},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration. path may be empty, in which case
// CONFIG_FILE is consulted; a missing file is an error only when a path
// was given explicitly.
//
// Environment variables (all optional):
//   - HTTP_ADDR, REQUEST_TIMEOUT, SHUTDOWN_TIMEOUT, VERSION
//   - SCHEMA_PATH
//   - FEED_FETCH_* (see fetcher.LoadConfigFromEnv)
//   - RATELIMIT_* (see pkg/config.LoadRateLimitConfig)
//   - CSP_ENABLED, CSP_REPORT_ONLY
//   - LOG_LEVEL, LOG_FORMAT
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	// #nosec G304 -- path comes from the operator (flag or CONFIG_FILE), not from requests
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Server.Addr = pkgconfig.GetEnvString("HTTP_ADDR", c.Server.Addr)
	c.Server.RequestTimeout = pkgconfig.GetEnvDuration("REQUEST_TIMEOUT", c.Server.RequestTimeout)
	c.Server.ShutdownTimeout = pkgconfig.GetEnvDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.Version = pkgconfig.GetEnvString("VERSION", c.Server.Version)

	c.Schema.Path = pkgconfig.GetEnvString("SCHEMA_PATH", c.Schema.Path)

	fetch, err := fetcher.LoadConfigFromEnv(c.Fetch)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.Fetch = fetch

	c.RateLimit = pkgconfig.LoadRateLimitConfig(c.RateLimit)

	c.CSP.Enabled = pkgconfig.GetEnvBool("CSP_ENABLED", c.CSP.Enabled)
	c.CSP.ReportOnly = pkgconfig.GetEnvBool("CSP_REPORT_ONLY", c.CSP.ReportOnly)

	c.Log.Level = pkgconfig.GetEnvString("LOG_LEVEL", c.Log.Level)
	c.Log.Format = pkgconfig.GetEnvString("LOG_FORMAT", c.Log.Format)
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server addr is required", ErrInvalidConfig)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Server.RequestTimeout); err != nil {
		return fmt.Errorf("%w: request_timeout: %w", ErrInvalidConfig, err)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Server.ReadHeaderTimeout); err != nil {
		return fmt.Errorf("%w: read_header_timeout: %w", ErrInvalidConfig, err)
	}
	if err := pkgconfig.ValidatePositiveDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("%w: shutdown_timeout: %w", ErrInvalidConfig, err)
	}
	// 取得全体のタイムアウトより短いとレポートではなく 504 が返ってしまう
	if c.Server.RequestTimeout < c.Fetch.TotalTimeout+fetchTimeoutMargin {
		return fmt.Errorf("%w: request_timeout (%s) must exceed fetch total_timeout (%s) by at least %s",
			ErrInvalidConfig, c.Server.RequestTimeout, c.Fetch.TotalTimeout, fetchTimeoutMargin)
	}
	if c.Schema.Path == "" {
		return fmt.Errorf("%w: schema path is required", ErrInvalidConfig)
	}
	if err := c.Fetch.Validate(); err != nil {
		return fmt.Errorf("%w: fetch: %w", ErrInvalidConfig, err)
	}
	return nil
}
