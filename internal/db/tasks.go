package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ldi/focusbloom/internal/schedule"
	"github.com/ldi/focusbloom/pkg/models"
)

// CreateTask inserts a new scheduled task. The end time is always derived
// from the start time, the focus session count, and the stored session
// durations; any End value on the input is ignored.
func (db *DB) CreateTask(ctx context.Context, t *models.Task) error {
	cfg, err := db.GetSessionConfig(ctx)
	if err != nil {
		return err
	}

	if err := db.createTask(ctx, db.DB, t, cfg); err != nil {
		return err
	}

	db.triggerChange(ctx)
	return nil
}

func (db *DB) createTask(ctx context.Context, exec executor, t *models.Task, cfg models.SessionConfig) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = models.TaskStatusPending
	}
	if t.Color == 0 {
		t.Color = t.Type.Color()
	}
	t.End = schedule.EndTime(t.Start, t.FocusSessions, cfg)

	query := `
		INSERT INTO tasks (id, template_id, name, description, type, color, start_at, end_at, focus_sessions, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at, updated_at
	`
	err := exec.QueryRowContext(ctx, query,
		t.ID, t.TemplateID, t.Name, t.Description, t.Type, t.Color,
		t.Start, t.End, t.FocusSessions, t.Status,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetTask retrieves a task by its ID. Returns (nil, nil) when no task exists.
func (db *DB) GetTask(ctx context.Context, id string) (*models.Task, error) {
	query := `
		SELECT t.id, t.template_id, t.name, t.description, t.type, t.color, t.start_at, t.end_at,
		       t.focus_sessions, t.status, t.created_at, t.updated_at, t.completed_at,
		       COALESCE(p.name, '') as template_name
		FROM tasks t
		LEFT JOIN templates p ON t.template_id = p.id
		WHERE t.id = ?
	`
	t := &models.Task{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.TemplateID, &t.Name, &t.Description, &t.Type, &t.Color, &t.Start, &t.End,
		&t.FocusSessions, &t.Status, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
		&t.TemplateName,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return t, nil
}

// ListTasks returns tasks, optionally filtered by status or template name.
func (db *DB) ListTasks(ctx context.Context, status *models.TaskStatus, templateName *string) ([]*models.Task, error) {
	query := `
		SELECT t.id, t.template_id, t.name, t.description, t.type, t.color, t.start_at, t.end_at,
		       t.focus_sessions, t.status, t.created_at, t.updated_at, t.completed_at,
		       COALESCE(p.name, '') as template_name
		FROM tasks t
		LEFT JOIN templates p ON t.template_id = p.id
		WHERE 1=1
	`
	args := []interface{}{}

	if status != nil {
		query += " AND t.status = ?"
		args = append(args, *status)
	}

	if templateName != nil {
		query += " AND p.name = ?"
		args = append(args, *templateName)
	}

	query += " ORDER BY t.start_at ASC, t.created_at ASC"

	return db.queryTasks(ctx, query, args...)
}

func (db *DB) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*models.Task, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t := &models.Task{}
		err := rows.Scan(
			&t.ID, &t.TemplateID, &t.Name, &t.Description, &t.Type, &t.Color, &t.Start, &t.End,
			&t.FocusSessions, &t.Status, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
			&t.TemplateName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return tasks, nil
}

// UpdateTask updates an existing task and recomputes its end time.
func (db *DB) UpdateTask(ctx context.Context, t *models.Task) error {
	cfg, err := db.GetSessionConfig(ctx)
	if err != nil {
		return err
	}

	if t.Color == 0 {
		t.Color = t.Type.Color()
	}
	t.End = schedule.EndTime(t.Start, t.FocusSessions, cfg)

	query := `
		UPDATE tasks
		SET name = ?, description = ?, type = ?, color = ?, start_at = ?, end_at = ?, focus_sessions = ?, template_id = ?
		WHERE id = ?
		RETURNING updated_at
	`
	err = db.QueryRowContext(ctx, query,
		t.Name, t.Description, t.Type, t.Color, t.Start, t.End, t.FocusSessions, t.TemplateID, t.ID,
	).Scan(&t.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("task not found: %s", t.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}

// UpdateTaskStatus moves a task through its lifecycle after validating the
// transition.
func (db *DB) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	current, err := db.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("task not found: %s", id)
	}

	if err := validateStatusTransition(current.Status, status); err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET status = ?
		WHERE id = ?
		RETURNING updated_at, completed_at
	`
	var t models.Task
	err = db.QueryRowContext(ctx, query, status, id).Scan(&t.UpdatedAt, &t.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}

// DeleteTask deletes a task by its ID.
func (db *DB) DeleteTask(ctx context.Context, id string) error {
	query := `DELETE FROM tasks WHERE id = ?`
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("task not found: %s", id)
	}

	db.triggerChange(ctx)
	return nil
}

// TasksOn returns tasks whose start falls on the given calendar day.
func (db *DB) TasksOn(ctx context.Context, day time.Time) ([]*models.Task, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT t.id, t.template_id, t.name, t.description, t.type, t.color, t.start_at, t.end_at,
		       t.focus_sessions, t.status, t.created_at, t.updated_at, t.completed_at,
		       COALESCE(p.name, '') as template_name
		FROM tasks t
		LEFT JOIN templates p ON t.template_id = p.id
		WHERE t.start_at >= ? AND t.start_at < ?
		ORDER BY t.start_at ASC
	`
	return db.queryTasks(ctx, query, dayStart, dayEnd)
}

// ResetInProgressTasks resets all tasks with status 'in_progress' to
// 'pending'. Called on startup to recover sessions orphaned by a crash.
func (db *DB) ResetInProgressTasks(ctx context.Context) error {
	query := `UPDATE tasks SET status = 'pending' WHERE status = 'in_progress'`
	_, err := db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to reset in_progress tasks: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}

func validateStatusTransition(from, to models.TaskStatus) error {
	if from == to {
		return nil
	}

	switch from {
	case models.TaskStatusPending:
		if to != models.TaskStatusInProgress && to != models.TaskStatusCancelled {
			return fmt.Errorf("invalid transition from %s to %s", from, to)
		}
	case models.TaskStatusInProgress:
		if to != models.TaskStatusCompleted && to != models.TaskStatusCancelled && to != models.TaskStatusPending {
			return fmt.Errorf("invalid transition from %s to %s", from, to)
		}
	case models.TaskStatusCompleted:
		// Reopening a finished task is allowed so a session can be redone.
		if to != models.TaskStatusInProgress {
			return fmt.Errorf("invalid transition from %s to %s", from, to)
		}
	case models.TaskStatusCancelled:
		if to != models.TaskStatusPending {
			return fmt.Errorf("invalid transition from %s to %s", from, to)
		}
	}

	return nil
}
