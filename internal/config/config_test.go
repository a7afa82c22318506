package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "test-secret-32-characters-long!")
	t.Setenv("DB_PASSWORD", "test")
}

func TestServerConfig_Timeouts_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name     string
		actual   time.Duration
		expected time.Duration
	}{
		{"ReadTimeout", cfg.Server.ReadTimeout, 15 * time.Second},
		{"WriteTimeout", cfg.Server.WriteTimeout, 15 * time.Second},
		{"IdleTimeout", cfg.Server.IdleTimeout, 60 * time.Second},
	}

	for _, tt := range tests {
		if tt.actual != tt.expected {
			t.Errorf("%s: got %v, want %v", tt.name, tt.actual, tt.expected)
		}
	}
}

func TestServerConfig_Timeouts_InvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	// Invalid duration falls back to default
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestServerConfig_Timeouts_ZeroValues(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_READ_TIMEOUT", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Server.ReadTimeout)
}

func TestGuardConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Guard.MaxAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Guard.BlockDuration)
	assert.Equal(t, 24*time.Hour, cfg.Guard.AttemptWindow)
}

func TestGuardConfig_Custom(t *testing.T) {
	setRequired(t)
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")
	t.Setenv("LOGIN_BLOCK_DURATION", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Guard.MaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Guard.BlockDuration)
}

func TestGuardConfig_RejectsZeroAttempts(t *testing.T) {
	setRequired(t)
	t.Setenv("LOGIN_MAX_ATTEMPTS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RequiresSecrets(t *testing.T) {
	t.Run("missing session secret", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "")
		t.Setenv("DB_PASSWORD", "test")

		_, err := Load()
		assert.ErrorContains(t, err, "SESSION_SECRET")
	})

	t.Run("missing db password", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "test-secret-32-characters-long!")
		t.Setenv("DB_PASSWORD", "")

		_, err := Load()
		assert.ErrorContains(t, err, "DB_PASSWORD")
	})

	t.Run("short secret in production", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "only-twenty-chars-ab")
		t.Setenv("DB_PASSWORD", "test")
		t.Setenv("ENV", "production")

		_, err := Load()
		assert.ErrorContains(t, err, "at least 32")
	})
}

func TestStoreAndEmailConfig(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("AWS_REGION", "")
	t.Setenv("EMAIL_FROM_ADDRESS", "")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.0.0/16,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.RedisURL)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.0.0/16"}, cfg.Server.TrustedProxies)
	assert.False(t, cfg.Email.Enabled())

	t.Setenv("AWS_REGION", "eu-west-2")
	t.Setenv("EMAIL_FROM_ADDRESS", "noreply@example.com")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.Email.Enabled())
}
