package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "HTTP_PORT", "DB_DRIVER", "DATABASE_URL", "REDIS_ADDR", "QUEUE_BACKEND", "RATE_LIMIT_PER_MIN", "HOSTEL_TZ", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "8081", cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "hostel_hms.db", cfg.DatabaseURL)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.Equal(t, "memory", cfg.QueueBackend)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.Production())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HOSTEL_TZ", "Asia/Kolkata")

	cfg := Load()
	assert.True(t, cfg.Production())
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
	assert.Equal(t, 0, cfg.RedisDB, "invalid ints fall back")
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
}

func TestLocationInvalid(t *testing.T) {
	_, err := App{TimeZone: "Mars/Olympus"}.Location()
	assert.Error(t, err)

	loc, err := App{}.Location()
	require.NoError(t, err)
	assert.Equal(t, "Local", loc.String())
}
