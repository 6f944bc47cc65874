// Package config loads application configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	// Workspace is the shared workspace id. Required.
	Workspace string

	// FallbackWorkspace absorbs writes the primary workspace rejects.
	FallbackWorkspace string

	// Profile is the currency profile namespace inside the workspace.
	Profile string

	// ProfileFile is the path of a CUE profile to apply at startup.
	ProfileFile string

	// CachePath is the SQLite cache location.
	CachePath string

	// FlushSchedule is the cron spec driving dirty-queue flush ticks.
	FlushSchedule string

	// HydrationTimeout bounds the startup readiness wait.
	HydrationTimeout time.Duration

	LogLevel string
}

// Load reads configuration from environment variables and the .env
// file when present. godotenv never overrides variables already set.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.Workspace = os.Getenv("DUELINE_WORKSPACE")
	if cfg.Workspace == "" {
		return nil, fmt.Errorf("DUELINE_WORKSPACE is not set")
	}

	cfg.FallbackWorkspace = os.Getenv("DUELINE_FALLBACK_WORKSPACE")
	cfg.Profile = os.Getenv("DUELINE_PROFILE")
	cfg.ProfileFile = os.Getenv("DUELINE_PROFILE_FILE")

	cfg.CachePath = os.Getenv("DUELINE_CACHE_PATH")
	if cfg.CachePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("DUELINE_CACHE_PATH is not set and home directory is unknown: %w", err)
		}
		cfg.CachePath = filepath.Join(home, ".dueline", "cache.db")
	}

	cfg.FlushSchedule = os.Getenv("DUELINE_FLUSH_SCHEDULE")
	if cfg.FlushSchedule == "" {
		cfg.FlushSchedule = "@every 30s"
	}

	cfg.HydrationTimeout = 10 * time.Second
	if raw := os.Getenv("DUELINE_HYDRATION_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid DUELINE_HYDRATION_TIMEOUT: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("DUELINE_HYDRATION_TIMEOUT must be positive")
		}
		cfg.HydrationTimeout = d
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("DUELINE_LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid DUELINE_LOG_LEVEL %q", cfg.LogLevel)
	}

	return cfg, nil
}

// SlogLevel maps the configured log level onto slog.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
