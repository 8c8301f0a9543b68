package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "EMAIL_WORKERS", "STATS_CACHE_TTL", "SESSION_CLEANUP_INTERVAL", "DEFAULT_LOCALE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2, cfg.EmailWorkers)
	assert.Equal(t, 5*time.Minute, cfg.StatsCacheTTL)
	assert.Equal(t, 6*time.Hour, cfg.SessionCleanupInterval)
	assert.Equal(t, "es", cfg.DefaultLocale)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("EMAIL_WORKERS", "8")
	t.Setenv("EMAIL_QUEUE_SIZE", "not-a-number")
	t.Setenv("JWT_ACCESS_EXPIRY", "30m")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 8, cfg.EmailWorkers)
	assert.Equal(t, 256, cfg.EmailQueueSize)
	assert.Equal(t, 30*time.Minute, cfg.JWTAccessExpiry)
	assert.True(t, cfg.MinIOUseSSL)
}
