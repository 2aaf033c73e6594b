package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"APP_PORT", "ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_JSON", "DATABASE_URL",
		"REDIS_ADDR", "REDIS_DB", "GRACE_PERIOD_SECONDS", "WS_RATE_LIMIT",
		"ACTION_RATE_PER_SECOND", "ACTION_BURST", "TILE_SPACING", "TILE_TOLERANCE",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 2*time.Minute, cfg.GracePeriod)
	assert.Equal(t, 30, cfg.WSRateLimit)
	assert.Equal(t, 60, cfg.WSRateWindow)
	assert.Equal(t, 10.0, cfg.ActionRate)
	assert.Equal(t, 20, cfg.ActionBurst)
	assert.Equal(t, 50.0, cfg.TileSpacing)
	assert.Equal(t, 5.0, cfg.TileTolerance)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("GRACE_PERIOD_SECONDS", "5")
	t.Setenv("REDIS_DB", "0")
	t.Setenv("ACTION_BURST", "-3")
	t.Setenv("TILE_SPACING", "64")
	t.Setenv("TILE_TOLERANCE", "8")
	t.Setenv("LOG_JSON", "true")

	cfg := Load()
	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.GracePeriod)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 20, cfg.ActionBurst, "invalid values fall back")
	assert.Equal(t, 64.0, cfg.TileSpacing)
	assert.Equal(t, 8.0, cfg.TileTolerance)
	assert.True(t, cfg.LogJSON)
}

func TestLoadRejectsToleranceWiderThanHalfSpacing(t *testing.T) {
	t.Setenv("TILE_SPACING", "20")
	t.Setenv("TILE_TOLERANCE", "10")

	cfg := Load()
	assert.Equal(t, 50.0, cfg.TileSpacing)
	assert.Equal(t, 5.0, cfg.TileTolerance)
}
