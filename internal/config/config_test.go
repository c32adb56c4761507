package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clubfin")
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://club.example, https://admin.club.example")
	t.Setenv("BILLING_DUE_DAY", "5")
	t.Setenv("BILLING_RUN_INTERVAL", "12h")
	t.Setenv("TIMEZONE", "America/Santiago")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, []string{"https://club.example", "https://admin.club.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 5, cfg.Billing.DueDay)
	assert.Equal(t, 12*time.Hour, cfg.Billing.RunInterval)
	assert.Equal(t, time.Hour, cfg.Billing.OverdueSweepInterval)
	assert.True(t, cfg.Billing.SchedulerEnabled)
	assert.Equal(t, "America/Santiago", cfg.Location.String())
	assert.Equal(t, "dev-secret-change-in-production", cfg.JWTSecret)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresJWTSecretInProduction(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clubfin")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsInvalidDueDay(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clubfin")
	t.Setenv("BILLING_DUE_DAY", "40")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clubfin.yaml")
	content := []byte("database_url: postgres://file/clubfin\nworker_count: 3\nallowed_origins:\n  - https://a.example\n  - https://b.example\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://file/clubfin", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.WorkerCount)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}
