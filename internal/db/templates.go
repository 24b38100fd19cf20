package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ldi/focusbloom/pkg/models"
)

// CreateTemplate inserts a new task template.
// If t.ID is empty, a new UUID is generated. A zero color is filled in from
// the task type.
func (db *DB) CreateTemplate(ctx context.Context, t *models.TaskTemplate) error {
	if err := db.createTemplate(ctx, db.DB, t); err != nil {
		return err
	}

	db.triggerChange(ctx)
	return nil
}

func (db *DB) createTemplate(ctx context.Context, exec executor, t *models.TaskTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Color == 0 {
		t.Color = t.Type.Color()
	}

	query := `
		INSERT INTO templates (id, name, task_name, task_description, type, start_time, color, focus_sessions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at, updated_at
	`
	err := exec.QueryRowContext(ctx, query,
		t.ID, t.Name, t.TaskName, t.TaskDescription, t.Type, t.StartTime, t.Color, t.FocusSessions,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	return nil
}

// GetTemplate retrieves a template by its ID. Returns (nil, nil) when no
// template exists.
func (db *DB) GetTemplate(ctx context.Context, id string) (*models.TaskTemplate, error) {
	query := `
		SELECT id, name, task_name, task_description, type, start_time, color, focus_sessions, created_at, updated_at
		FROM templates
		WHERE id = ?
	`
	return db.scanTemplateRow(db.QueryRowContext(ctx, query, id))
}

// GetTemplateByName retrieves a template by its unique name.
func (db *DB) GetTemplateByName(ctx context.Context, name string) (*models.TaskTemplate, error) {
	return db.getTemplateByName(ctx, db.DB, name)
}

func (db *DB) getTemplateByName(ctx context.Context, exec executor, name string) (*models.TaskTemplate, error) {
	query := `
		SELECT id, name, task_name, task_description, type, start_time, color, focus_sessions, created_at, updated_at
		FROM templates
		WHERE name = ?
	`
	return db.scanTemplateRow(exec.QueryRowContext(ctx, query, name))
}

func (db *DB) scanTemplateRow(row *sql.Row) (*models.TaskTemplate, error) {
	t := &models.TaskTemplate{}
	err := row.Scan(
		&t.ID, &t.Name, &t.TaskName, &t.TaskDescription, &t.Type, &t.StartTime,
		&t.Color, &t.FocusSessions, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return t, nil
}

// ListTemplates returns all templates, newest first.
func (db *DB) ListTemplates(ctx context.Context) ([]*models.TaskTemplate, error) {
	query := `
		SELECT id, name, task_name, task_description, type, start_time, color, focus_sessions, created_at, updated_at
		FROM templates
		ORDER BY created_at DESC
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.TaskTemplate
	for rows.Next() {
		t := &models.TaskTemplate{}
		err := rows.Scan(
			&t.ID, &t.Name, &t.TaskName, &t.TaskDescription, &t.Type, &t.StartTime,
			&t.Color, &t.FocusSessions, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return templates, nil
}

// UpdateTemplate updates an existing template.
func (db *DB) UpdateTemplate(ctx context.Context, t *models.TaskTemplate) error {
	if t.Color == 0 {
		t.Color = t.Type.Color()
	}

	query := `
		UPDATE templates
		SET name = ?, task_name = ?, task_description = ?, type = ?, start_time = ?, color = ?, focus_sessions = ?
		WHERE id = ?
		RETURNING updated_at
	`
	err := db.QueryRowContext(ctx, query,
		t.Name, t.TaskName, t.TaskDescription, t.Type, t.StartTime, t.Color, t.FocusSessions, t.ID,
	).Scan(&t.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("template not found: %s", t.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}

// DeleteTemplate deletes a template by its ID. Tasks created from it keep
// their values; their template reference is cleared by the schema.
func (db *DB) DeleteTemplate(ctx context.Context, id string) error {
	query := `DELETE FROM templates WHERE id = ?`
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("template not found: %s", id)
	}

	db.triggerChange(ctx)
	return nil
}
