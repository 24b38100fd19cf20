package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ldi/focusbloom/pkg/models"
)

// CommitBatch writes all items staged under sessionID in a single
// transaction. Staged tasks may reference a staged template by name; the
// reference is resolved to the freshly created ID.
func (db *DB) CommitBatch(ctx context.Context, sessionID string) error {
	items := db.Staging.GetAndClear(sessionID)
	if items == nil {
		return nil
	}

	cfg, err := db.GetSessionConfig(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	templateIDs := make(map[string]string)

	// 1. Templates
	for _, t := range items.Templates {
		if err := db.createTemplate(ctx, tx, t); err != nil {
			return fmt.Errorf("failed to create staged template %s: %w", t.Name, err)
		}
		templateIDs[t.Name] = t.ID
	}

	// 2. Tasks
	for _, t := range items.Tasks {
		// Resolve template ID if it was also staged, otherwise look it up
		if t.TemplateID == nil && t.TemplateName != "" {
			if id, ok := templateIDs[t.TemplateName]; ok {
				t.TemplateID = &id
			} else {
				tpl, err := db.getTemplateByName(ctx, tx, t.TemplateName)
				if err != nil {
					return fmt.Errorf("failed to resolve template %s for task %s: %w", t.TemplateName, t.Name, err)
				}
				if tpl == nil {
					return fmt.Errorf("template %s not found for task %s", t.TemplateName, t.Name)
				}
				t.TemplateID = &tpl.ID
			}
		}

		if err := db.createTask(ctx, tx, t, cfg); err != nil {
			return fmt.Errorf("failed to create staged task %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}

// ApplyTemplate materializes a template into a scheduled task on the given
// day. The task inherits the template's fields; its end time is derived by
// the scheduler inside CreateTask.
func (db *DB) ApplyTemplate(ctx context.Context, templateName string, day time.Time) (*models.Task, error) {
	tpl, err := db.GetTemplateByName(ctx, templateName)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, fmt.Errorf("template not found: %s", templateName)
	}

	start, err := tpl.StartOn(day)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		TemplateID:    &tpl.ID,
		Name:          tpl.TaskName,
		Description:   tpl.TaskDescription,
		Type:          tpl.Type,
		Color:         tpl.Color,
		Start:         start,
		FocusSessions: tpl.FocusSessions,
		Status:        models.TaskStatusPending,
	}

	if err := db.CreateTask(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}
