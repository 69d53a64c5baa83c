package config

import (
	"log/slog"
	"time"
)

// RateLimitConfig configures the per-client token bucket in front of the
// validation endpoint. Every validation triggers an outbound fetch, so the
// limiter bounds how much traffic one client can make us send.
type RateLimitConfig struct {
	Enabled bool `yaml:"enabled"`
	// RequestsPerSecond is the sustained refill rate per client IP.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	// Burst is the bucket size per client IP.
	Burst int `yaml:"burst"`
	// IdleTTL is how long an idle client's bucket is kept before cleanup.
	IdleTTL time.Duration `yaml:"idle_ttl"`
	// MaxClients caps the number of tracked client buckets.
	MaxClients int `yaml:"max_clients"`
}

// DefaultRateLimitConfig returns the defaults listed on LoadRateLimitConfig.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 1,
		Burst:             10,
		IdleTTL:           10 * time.Minute,
		MaxClients:        10000,
	}
}

// LoadRateLimitConfig overlays environment variables on base. Invalid
// values log a warning and fall back to the defaults instead of failing.
//
// Environment variables:
//   - RATELIMIT_ENABLED (default: true)
//   - RATELIMIT_RPS (default: 1)
//   - RATELIMIT_BURST (default: 10)
//   - RATELIMIT_IDLE_TTL (default: 10m)
//   - RATELIMIT_MAX_CLIENTS (default: 10000)
func LoadRateLimitConfig(base RateLimitConfig) RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:           GetEnvBool("RATELIMIT_ENABLED", base.Enabled),
		RequestsPerSecond: GetEnvFloat("RATELIMIT_RPS", base.RequestsPerSecond),
		Burst:             GetEnvInt("RATELIMIT_BURST", base.Burst),
		IdleTTL:           GetEnvDuration("RATELIMIT_IDLE_TTL", base.IdleTTL),
		MaxClients:        GetEnvInt("RATELIMIT_MAX_CLIENTS", base.MaxClients),
	}

	if cfg.RequestsPerSecond <= 0 {
		slog.Warn("invalid RATELIMIT_RPS, using default",
			slog.Float64("value", cfg.RequestsPerSecond),
			slog.Float64("default", 1))
		cfg.RequestsPerSecond = 1
	}

	if cfg.Burst < 1 {
		slog.Warn("invalid RATELIMIT_BURST, using default",
			slog.Int("value", cfg.Burst),
			slog.Int("default", 10))
		cfg.Burst = 10
	}

	if err := ValidatePositiveDuration(cfg.IdleTTL); err != nil {
		slog.Warn("invalid RATELIMIT_IDLE_TTL, using default",
			slog.String("value", cfg.IdleTTL.String()),
			slog.String("default", "10m"),
			slog.String("error", err.Error()))
		cfg.IdleTTL = 10 * time.Minute
	}

	if cfg.MaxClients < 1 {
		slog.Warn("invalid RATELIMIT_MAX_CLIENTS, using default",
			slog.Int("value", cfg.MaxClients),
			slog.Int("default", 10000))
		cfg.MaxClients = 10000
	}

	return cfg
}
