package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "HTTP_ADDR", "REQUEST_TIMEOUT", "SHUTDOWN_TIMEOUT", "VERSION",
	"SCHEMA_PATH",
	"FEED_FETCH_CONNECT_TIMEOUT", "FEED_FETCH_READ_TIMEOUT", "FEED_FETCH_TOTAL_TIMEOUT", "FEED_FETCH_MAX_REDIRECTS",
	"FEED_FETCH_MAX_BODY_SIZE", "FEED_FETCH_USER_AGENT", "FEED_FETCH_DENY_PRIVATE_IPS",
	"RATELIMIT_ENABLED", "RATELIMIT_RPS", "RATELIMIT_BURST", "RATELIMIT_IDLE_TTL", "RATELIMIT_MAX_CLIENTS",
	"CSP_ENABLED", "CSP_REPORT_ONLY", "LOG_LEVEL", "LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "validator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 90*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "config/schema.json", cfg.Schema.Path)
	assert.Equal(t, 5, cfg.Fetch.MaxRedirects)
	assert.Equal(t, "JSONFeedValidator/1.0", cfg.Fetch.UserAgent)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.True(t, cfg.CSP.Enabled)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
server:
  addr: ":9090"
  request_timeout: 2m
schema:
  path: https://example.org/schema.json
fetch:
  max_redirects: 3
  deny_private_ips: true
rate_limit:
  burst: 4
csp:
  report_only: true
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Minute, cfg.Server.RequestTimeout)
	assert.Equal(t, "https://example.org/schema.json", cfg.Schema.Path)
	assert.Equal(t, 3, cfg.Fetch.MaxRedirects)
	assert.True(t, cfg.Fetch.DenyPrivateIPs)
	// Unset keys keep their defaults.
	assert.Equal(t, 30*time.Second, cfg.Fetch.ConnectTimeout)
	assert.Equal(t, 4, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.CSP.ReportOnly)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_FileFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeFile(t, "server:\n  addr: \":7070\"\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "server:\n  addr: \":9090\"\nschema:\n  path: a.json\n")
	t.Setenv("HTTP_ADDR", ":6060")
	t.Setenv("SCHEMA_PATH", "b.json")
	t.Setenv("FEED_FETCH_MAX_REDIRECTS", "7")
	t.Setenv("RATELIMIT_ENABLED", "false")
	t.Setenv("CSP_ENABLED", "false")
	t.Setenv("VERSION", "1.2.3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":6060", cfg.Server.Addr)
	assert.Equal(t, "b.json", cfg.Schema.Path)
	assert.Equal(t, 7, cfg.Fetch.MaxRedirects)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.CSP.Enabled)
	assert.Equal(t, "1.2.3", cfg.Server.Version)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name: "missing explicit file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.yaml")
			},
		},
		{
			name: "malformed yaml",
			setup: func(t *testing.T) string {
				return writeFile(t, "server: [unterminated")
			},
		},
		{
			name: "invalid fetch env",
			setup: func(t *testing.T) string {
				t.Setenv("FEED_FETCH_MAX_REDIRECTS", "many")
				return ""
			},
		},
		{
			name: "fetch out of range in file",
			setup: func(t *testing.T) string {
				return writeFile(t, "fetch:\n  max_redirects: 50\n")
			},
		},
		{
			name: "request timeout shorter than fetch",
			setup: func(t *testing.T) string {
				t.Setenv("REQUEST_TIMEOUT", "45s")
				return ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(tt.setup(t))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero request timeout", func(c *Config) { c.Server.RequestTimeout = 0 }},
		{"zero read header timeout", func(c *Config) { c.Server.ReadHeaderTimeout = 0 }},
		{"negative shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = -time.Second }},
		{"empty schema path", func(c *Config) { c.Schema.Path = "" }},
		{"empty user agent", func(c *Config) { c.Fetch.UserAgent = "" }},
		{"request timeout equals fetch total", func(c *Config) {
			c.Fetch.TotalTimeout = c.Server.RequestTimeout
		}},
		{"request timeout without margin", func(c *Config) {
			c.Server.RequestTimeout = c.Fetch.TotalTimeout + 500*time.Millisecond
		}},
		{"long redirect chain budget", func(c *Config) {
			c.Fetch.TotalTimeout = 5 * time.Minute
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}

	cfg := Default()
	assert.NoError(t, cfg.Validate())
}
