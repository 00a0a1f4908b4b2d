package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"ACADEMY_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "CODE_LENGTH",
		"CODE_MAX_ATTEMPTS", "VERIFY_RATE_LIMIT", "REQUEST_TIMEOUT", "CORS_ALLOWED_ORIGINS", "AUDIT_VERIFIED_SAMPLE_RATE", "RATE_LIMIT_DISABLED", "TRUSTED_PROXIES"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 10, cfg.Codes.Length)
	assert.Equal(t, 5, cfg.Codes.MaxAttempts)
	assert.Equal(t, 30, cfg.RateLimit.VerifyPerMinute)
	assert.Equal(t, 1.0, cfg.Audit.VerifiedSampleRate)
	assert.False(t, cfg.RateLimit.Disabled)
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ACADEMY_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://academy.example")
	t.Setenv("CODE_LENGTH", "12")
	t.Setenv("REQUEST_TIMEOUT", "10s")
	t.Setenv("RATE_LIMIT_DISABLED", "true")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.10")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"https://academy.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 12, cfg.Codes.Length)
	assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
	assert.True(t, cfg.RateLimit.Disabled)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.10/32"),
	}, cfg.Server.TrustedProxies)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Run("malformed integer", func(t *testing.T) {
		t.Setenv("CODE_MAX_ATTEMPTS", "many")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "CODE_MAX_ATTEMPTS")
	})
	t.Run("code length out of range", func(t *testing.T) {
		t.Setenv("CODE_LENGTH", "3")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "CODE_LENGTH")
	})
	t.Run("malformed bool", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_DISABLED", "sometimes")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "RATE_LIMIT_DISABLED")
	})
	t.Run("malformed trusted proxy", func(t *testing.T) {
		t.Setenv("TRUSTED_PROXIES", "load-balancer")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "TRUSTED_PROXIES")
	})
	t.Run("sample rate above one", func(t *testing.T) {
		t.Setenv("AUDIT_VERIFIED_SAMPLE_RATE", "1.5")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "AUDIT_VERIFIED_SAMPLE_RATE")
	})
}
