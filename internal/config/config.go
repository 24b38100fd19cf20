// Package config loads application settings from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/ldi/focusbloom/pkg/models"
)

// Config holds process-level settings. Durations are minutes.
type Config struct {
	DBPath            string `env:"FOCUSBLOOM_DB_PATH" envDefault:".focusbloom/focusbloom.db"`
	SnapshotPath      string `env:"FOCUSBLOOM_SNAPSHOT_PATH" envDefault:".focusbloom/snapshot.jsonl"`
	ListenAddr        string `env:"FOCUSBLOOM_LISTEN_ADDR" envDefault:":8000"`
	SessionMinutes    int    `env:"FOCUSBLOOM_SESSION_MINUTES" envDefault:"25"`
	ShortBreakMinutes int    `env:"FOCUSBLOOM_SHORT_BREAK_MINUTES" envDefault:"5"`
	LongBreakMinutes  int    `env:"FOCUSBLOOM_LONG_BREAK_MINUTES" envDefault:"15"`
}

// Load parses the environment and validates the duration overrides.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SessionMinutes <= 0 {
		return Config{}, fmt.Errorf("session minutes must be positive, got %d", cfg.SessionMinutes)
	}
	if cfg.ShortBreakMinutes <= 0 {
		return Config{}, fmt.Errorf("short break minutes must be positive, got %d", cfg.ShortBreakMinutes)
	}
	if cfg.LongBreakMinutes <= 0 {
		return Config{}, fmt.Errorf("long break minutes must be positive, got %d", cfg.LongBreakMinutes)
	}
	return cfg, nil
}

// SessionConfig returns the configured durations as a models value.
func (c Config) SessionConfig() models.SessionConfig {
	return models.SessionConfig{
		SessionMinutes:    c.SessionMinutes,
		ShortBreakMinutes: c.ShortBreakMinutes,
		LongBreakMinutes:  c.LongBreakMinutes,
	}
}
