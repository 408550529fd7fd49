package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "http://localhost:5000", cfg.Backend.URL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, StoreMemory, cfg.Session.Store)
	assert.Equal(t, 5, cfg.RateLimit.LoginMaxAttempts)
	assert.Empty(t, cfg.CORS.Origins)
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("BACKEND_URL", "http://api.local:5000/")
	t.Setenv("SESSION_STORE", "SQLite")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("COACH_COOLDOWN_SECONDS", "45")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 172.16.5.9/12,::1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "http://api.local:5000", cfg.Backend.URL)
	assert.Equal(t, StoreSQLite, cfg.Session.Store)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.Origins)
	assert.Equal(t, 45*time.Second, cfg.RateLimit.CoachCooldown)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.1/32"),
		netip.MustParsePrefix("172.16.0.0/12"),
		netip.MustParsePrefix("::1/128"),
	}, cfg.Server.TrustedProxies)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SERVER_PORT", "http"},
		{"BACKEND_RPS", "fast"},
		{"SESSION_STORE", "redis"},
		{"SECURE_COOKIES", "maybe"},
		{"TRUSTED_PROXIES", "10.0.0.0/99"},
		{"TRUSTED_PROXIES", "proxy.local"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", "s")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
