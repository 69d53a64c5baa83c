package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	assert.Equal(t, "value", GetEnvString("TEST_STRING", "default"))
	assert.Equal(t, "default", GetEnvString("TEST_STRING_UNSET", "default"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "valid", value: "42", want: 42},
		{name: "negative", value: "-3", want: -3},
		{name: "invalid falls back", value: "abc", want: 7},
		{name: "empty falls back", value: "", want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.value)
			assert.Equal(t, tt.want, GetEnvInt("TEST_INT", 7))
		})
	}
}

func TestGetEnvInt64(t *testing.T) {
	t.Setenv("TEST_INT64", "10485760")
	assert.Equal(t, int64(10485760), GetEnvInt64("TEST_INT64", 1))

	t.Setenv("TEST_INT64", "ten")
	assert.Equal(t, int64(1), GetEnvInt64("TEST_INT64", 1))
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.5")
	assert.InDelta(t, 0.5, GetEnvFloat("TEST_FLOAT", 1), 1e-9)

	t.Setenv("TEST_FLOAT", "half")
	assert.InDelta(t, 1.0, GetEnvFloat("TEST_FLOAT", 1), 1e-9)
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"False", false},
		{"0", false},
		{"yes", true}, // invalid, default wins
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			assert.Equal(t, tt.want, GetEnvBool("TEST_BOOL", true))
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "45s")
	assert.Equal(t, 45*time.Second, GetEnvDuration("TEST_DURATION", time.Second))

	t.Setenv("TEST_DURATION", "forever")
	assert.Equal(t, time.Second, GetEnvDuration("TEST_DURATION", time.Second))
}

func TestValidateDurationRange(t *testing.T) {
	assert.NoError(t, ValidateDurationRange(30*time.Second, time.Second, time.Minute))
	assert.Error(t, ValidateDurationRange(0, time.Second, time.Minute))
	assert.Error(t, ValidateDurationRange(2*time.Minute, time.Second, time.Minute))
	assert.Error(t, ValidateDurationRange(time.Second, time.Minute, time.Second))
	assert.Error(t, ValidatePositiveDuration(0))
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := LoadRateLimitConfig(DefaultRateLimitConfig())
		assert.True(t, cfg.Enabled)
		assert.InDelta(t, 1.0, cfg.RequestsPerSecond, 1e-9)
		assert.Equal(t, 10, cfg.Burst)
		assert.Equal(t, 10*time.Minute, cfg.IdleTTL)
		assert.Equal(t, 10000, cfg.MaxClients)
	})

	t.Run("invalid values fall back", func(t *testing.T) {
		t.Setenv("RATELIMIT_RPS", "-1")
		t.Setenv("RATELIMIT_BURST", "0")
		t.Setenv("RATELIMIT_IDLE_TTL", "-5m")
		t.Setenv("RATELIMIT_MAX_CLIENTS", "0")
		cfg := LoadRateLimitConfig(DefaultRateLimitConfig())
		assert.InDelta(t, 1.0, cfg.RequestsPerSecond, 1e-9)
		assert.Equal(t, 10, cfg.Burst)
		assert.Equal(t, 10*time.Minute, cfg.IdleTTL)
		assert.Equal(t, 10000, cfg.MaxClients)
	})

	t.Run("base values kept without env", func(t *testing.T) {
		base := DefaultRateLimitConfig()
		base.Burst = 42
		base.Enabled = false
		cfg := LoadRateLimitConfig(base)
		assert.False(t, cfg.Enabled)
		assert.Equal(t, 42, cfg.Burst)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("RATELIMIT_ENABLED", "false")
		t.Setenv("RATELIMIT_RPS", "2.5")
		t.Setenv("RATELIMIT_BURST", "3")
		cfg := LoadRateLimitConfig(DefaultRateLimitConfig())
		assert.False(t, cfg.Enabled)
		assert.InDelta(t, 2.5, cfg.RequestsPerSecond, 1e-9)
		assert.Equal(t, 3, cfg.Burst)
	})
}
