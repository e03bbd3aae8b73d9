package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_TTL_HOURS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "sqlite::memory:", cfg.DatabaseURL)
	assert.Equal(t, "Florida Atlantic University", cfg.CommuteDestination)
	assert.Equal(t, "https://api.openrouteservice.org", cfg.RoutingBaseURL)
	assert.Equal(t, float64(2), cfg.RoutingRatePerSec)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/commute")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("ORS_API_KEY", "ors-key")
	t.Setenv("ORS_BASE_URL", "http://routing.local/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "postgres://u:p@localhost:5432/commute", cfg.DatabaseURL)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, "ors-key", cfg.RoutingAPIKey)
	assert.Equal(t, "http://routing.local", cfg.RoutingBaseURL)
	assert.True(t, cfg.IsProduction())
}
