package db

import (
	"context"
	"fmt"

	"github.com/ldi/focusbloom/pkg/models"
)

// GetSessionConfig reads the configured session durations. The settings row
// is seeded by the schema, so a missing row is an error.
func (db *DB) GetSessionConfig(ctx context.Context) (models.SessionConfig, error) {
	query := `
		SELECT session_minutes, short_break_minutes, long_break_minutes
		FROM settings
		WHERE id = 1
	`
	var cfg models.SessionConfig
	err := db.QueryRowContext(ctx, query).Scan(
		&cfg.SessionMinutes, &cfg.ShortBreakMinutes, &cfg.LongBreakMinutes,
	)
	if err != nil {
		return models.SessionConfig{}, fmt.Errorf("failed to get session config: %w", err)
	}

	return cfg, nil
}

// SaveSessionConfig stores new session durations.
func (db *DB) SaveSessionConfig(ctx context.Context, cfg models.SessionConfig) error {
	if cfg.SessionMinutes <= 0 || cfg.ShortBreakMinutes <= 0 || cfg.LongBreakMinutes <= 0 {
		return fmt.Errorf("session durations must be positive: %+v", cfg)
	}

	query := `
		UPDATE settings
		SET session_minutes = ?, short_break_minutes = ?, long_break_minutes = ?
		WHERE id = 1
	`
	_, err := db.ExecContext(ctx, query,
		cfg.SessionMinutes, cfg.ShortBreakMinutes, cfg.LongBreakMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to save session config: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}
