package fetcher

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for feed fetching.
//
// Security settings:
//   - MaxBodySize: Prevents memory exhaustion from oversized feeds
//   - MaxRedirects: Bounds the redirect chain
//   - DenyPrivateIPs: Blocks hosts resolving to private addresses (SSRF)
//
// Timeouts:
//   - ConnectTimeout: TCP connect and TLS handshake
//   - ReadTimeout: Waiting for response headers and reading the body
//   - TotalTimeout: The whole fetch, every redirect hop included
type Config struct {
	// ConnectTimeout bounds dialing and the TLS handshake.
	// Default: 30s
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// ReadTimeout bounds the wait for response headers and, separately,
	// reading the response body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// TotalTimeout bounds the whole fetch across all redirect hops.
	// Expiry is reported like any other timeout, as "Unknown exception Timeout.".
	// Default: 60s
	TotalTimeout time.Duration `yaml:"total_timeout"`

	// MaxRedirects is the number of requests a single fetch may issue before
	// it fails with "Too many redirects.". With 5, a chain of four redirects
	// followed by a success is accepted.
	// Default: 5
	MaxRedirects int `yaml:"max_redirects"`

	// MaxBodySize is the maximum feed size in bytes.
	// This is enforced while reading, not from Content-Length.
	// Default: 10485760 (10MB)
	MaxBodySize int64 `yaml:"max_body_size"`

	// UserAgent is sent with every request.
	// Default: JSONFeedValidator/1.0
	UserAgent string `yaml:"user_agent"`

	// DenyPrivateIPs rejects hosts that resolve to loopback, private or
	// link-local addresses.
	// Default: false
	DenyPrivateIPs bool `yaml:"deny_private_ips"`
}

// DefaultUserAgent identifies the validator to feed publishers.
const DefaultUserAgent = "JSONFeedValidator/1.0"

// DefaultConfig returns the default configuration for feed fetching.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 30 * time.Second,
		ReadTimeout:    30 * time.Second,
		TotalTimeout:   60 * time.Second,
		MaxRedirects:   5,
		MaxBodySize:    10 * 1024 * 1024, // 10MB
		UserAgent:      DefaultUserAgent,
		DenyPrivateIPs: false,
	}
}

// Validate checks if the configuration values are valid and safe.
//
// Validation rules:
//   - ConnectTimeout, ReadTimeout, TotalTimeout: > 0
//   - MaxRedirects: 1-10
//   - MaxBodySize: 1KB-100MB
//   - UserAgent: non-empty
func (c *Config) Validate() error {
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("connect timeout must be positive, got %v", c.ConnectTimeout)
	}

	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", c.ReadTimeout)
	}

	if c.TotalTimeout <= 0 {
		return fmt.Errorf("total timeout must be positive, got %v", c.TotalTimeout)
	}

	if c.MaxRedirects < 1 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 1 and 10, got %d", c.MaxRedirects)
	}

	minBodySize := int64(1024)              // 1KB
	maxBodySize := int64(100 * 1024 * 1024) // 100MB
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}

	return nil
}

// LoadConfigFromEnv overlays environment variables on base and validates
// the result. Unset variables keep the value from base.
//
// Environment variables:
//   - FEED_FETCH_CONNECT_TIMEOUT: duration string, e.g. "30s"
//   - FEED_FETCH_READ_TIMEOUT: duration string
//   - FEED_FETCH_TOTAL_TIMEOUT: duration string
//   - FEED_FETCH_MAX_REDIRECTS: integer
//   - FEED_FETCH_MAX_BODY_SIZE: integer in bytes
//   - FEED_FETCH_USER_AGENT: string
//   - FEED_FETCH_DENY_PRIVATE_IPS: "true" or "false"
//
// Example:
//
//	cfg, err := fetcher.LoadConfigFromEnv(fetcher.DefaultConfig())
//	if err != nil {
//	    log.Fatalf("Invalid configuration: %v", err)
//	}
func LoadConfigFromEnv(base Config) (Config, error) {
	cfg := base

	if val := os.Getenv("FEED_FETCH_CONNECT_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid FEED_FETCH_CONNECT_TIMEOUT: %v (expected format: '30s', '1m')", err)
		}
		cfg.ConnectTimeout = parsed
	}

	if val := os.Getenv("FEED_FETCH_READ_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid FEED_FETCH_READ_TIMEOUT: %v (expected format: '30s', '1m')", err)
		}
		cfg.ReadTimeout = parsed
	}

	if val := os.Getenv("FEED_FETCH_TOTAL_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid FEED_FETCH_TOTAL_TIMEOUT: %v (expected format: '60s', '1m')", err)
		}
		cfg.TotalTimeout = parsed
	}

	if val := os.Getenv("FEED_FETCH_MAX_REDIRECTS"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid FEED_FETCH_MAX_REDIRECTS: %v", err)
		}
		cfg.MaxRedirects = parsed
	}

	if val := os.Getenv("FEED_FETCH_MAX_BODY_SIZE"); val != "" {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid FEED_FETCH_MAX_BODY_SIZE: %v", err)
		}
		cfg.MaxBodySize = parsed
	}

	if val := os.Getenv("FEED_FETCH_USER_AGENT"); val != "" {
		cfg.UserAgent = val
	}

	if val := os.Getenv("FEED_FETCH_DENY_PRIVATE_IPS"); val != "" {
		cfg.DenyPrivateIPs = val == "true"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
