package db

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ldi/focusbloom/pkg/models"
)

// snapshotLine is one JSONL record. Kind is "template" or "task".
type snapshotLine struct {
	Kind     string               `json:"kind"`
	Template *models.TaskTemplate `json:"template,omitempty"`
	Task     *models.Task         `json:"task,omitempty"`
}

// EnableAutoSnapshot sets up a hook that automatically exports a snapshot
// to the given path after every successful write operation.
func (db *DB) EnableAutoSnapshot(path string) {
	db.SetOnChange(func(ctx context.Context) {
		// Hooks are best-effort; an export failure must not fail the
		// original write.
		_ = db.ExportSnapshot(ctx, path)
	})
}

// ExportSnapshot writes all templates and tasks as JSONL, atomically via a
// temporary file.
func (db *DB) ExportSnapshot(ctx context.Context, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "snapshot-*.jsonl")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	templates, err := db.ListTemplates(ctx)
	if err != nil {
		return err
	}

	tasks, err := db.ListTasks(ctx, nil, nil)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(tempFile)
	for _, t := range templates {
		if err := enc.Encode(snapshotLine{Kind: "template", Template: t}); err != nil {
			return fmt.Errorf("failed to write template line: %w", err)
		}
	}
	for _, t := range tasks {
		if err := enc.Encode(snapshotLine{Kind: "task", Task: t}); err != nil {
			return fmt.Errorf("failed to write task line: %w", err)
		}
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	filename := tempFile.Name()
	tempFile = nil // Prevent defer from removing it

	if err := os.Rename(filename, path); err != nil {
		os.Remove(filename)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// ImportSnapshot reads a JSONL snapshot and populates the database inside a
// transaction. Templates are keyed by name: existing names are skipped, new
// ones created with fresh IDs. Task template references are remapped through
// the template's name.
func (db *DB) ImportSnapshot(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	cfg, err := db.GetSessionConfig(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Snapshot template ID -> local template ID
	templateIDMap := make(map[string]string)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var line snapshotLine
		if err := json.Unmarshal(raw, &line); err != nil {
			return fmt.Errorf("failed to parse snapshot line %d: %w", lineNo, err)
		}

		switch line.Kind {
		case "template":
			if line.Template == nil {
				return fmt.Errorf("snapshot line %d: missing template payload", lineNo)
			}
			snapshotID := line.Template.ID

			existing, err := db.getTemplateByName(ctx, tx, line.Template.Name)
			if err != nil {
				return err
			}
			if existing != nil {
				templateIDMap[snapshotID] = existing.ID
				continue
			}

			line.Template.ID = ""
			if err := db.createTemplate(ctx, tx, line.Template); err != nil {
				return err
			}
			templateIDMap[snapshotID] = line.Template.ID

		case "task":
			if line.Task == nil {
				return fmt.Errorf("snapshot line %d: missing task payload", lineNo)
			}
			if line.Task.TemplateID != nil {
				if localID, ok := templateIDMap[*line.Task.TemplateID]; ok {
					line.Task.TemplateID = &localID
				} else {
					line.Task.TemplateID = nil
				}
			}

			line.Task.ID = ""
			if err := db.createTask(ctx, tx, line.Task, cfg); err != nil {
				return err
			}

		default:
			return fmt.Errorf("snapshot line %d: unknown kind %q", lineNo, line.Kind)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read snapshot file: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot import: %w", err)
	}

	db.triggerChange(ctx)
	return nil
}
