package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DUELINE_WORKSPACE", "main")
	t.Setenv("DUELINE_CACHE_PATH", t.TempDir()+"/cache.db")
}

func TestLoad_WorkspaceRequired(t *testing.T) {
	t.Setenv("DUELINE_WORKSPACE", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DUELINE_WORKSPACE")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("DUELINE_FLUSH_SCHEDULE", "")
	t.Setenv("DUELINE_HYDRATION_TIMEOUT", "")
	t.Setenv("DUELINE_LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.Workspace)
	assert.Equal(t, "@every 30s", cfg.FlushSchedule)
	assert.Equal(t, 10*time.Second, cfg.HydrationTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DUELINE_FALLBACK_WORKSPACE", "personal")
	t.Setenv("DUELINE_PROFILE", "eur")
	t.Setenv("DUELINE_FLUSH_SCHEDULE", "@every 5s")
	t.Setenv("DUELINE_HYDRATION_TIMEOUT", "2s")
	t.Setenv("DUELINE_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "personal", cfg.FallbackWorkspace)
	assert.Equal(t, "eur", cfg.Profile)
	assert.Equal(t, "@every 5s", cfg.FlushSchedule)
	assert.Equal(t, 2*time.Second, cfg.HydrationTimeout)
	assert.Equal(t, "debug", cfg.LogLevel, "level is normalized")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	setRequired(t)

	t.Setenv("DUELINE_HYDRATION_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DUELINE_HYDRATION_TIMEOUT", "-3s")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("DUELINE_HYDRATION_TIMEOUT", "1s")
	t.Setenv("DUELINE_LOG_LEVEL", "loud")
	_, err = Load()
	assert.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&AppConfig{LogLevel: "debug"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&AppConfig{LogLevel: "info"}).SlogLevel())
	assert.Equal(t, slog.LevelWarn, (&AppConfig{LogLevel: "warn"}).SlogLevel())
	assert.Equal(t, slog.LevelError, (&AppConfig{LogLevel: "error"}).SlogLevel())
}
