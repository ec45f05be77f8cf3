package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.SaveInterval)
	assert.Empty(t, cfg.CatalogPath)
	assert.True(t, cfg.Playground)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SAVE_INTERVAL", "5s")
	t.Setenv("CATALOG_PATH", "/etc/siteplan/devices.yaml")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("PLAYGROUND", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.SaveInterval)
	assert.Equal(t, "/etc/siteplan/devices.yaml", cfg.CatalogPath)
	assert.False(t, cfg.Playground)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("SAVE_INTERVAL", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestOrigins(t *testing.T) {
	cfg := &Config{AllowedOrigins: " http://localhost:5173, ,https://plan.example.com "}

	assert.Equal(t, []string{"http://localhost:5173", "https://plan.example.com"}, cfg.Origins())
	assert.Equal(t, []string{"localhost:5173", "plan.example.com"}, cfg.OriginPatterns())
}
