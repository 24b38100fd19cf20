package db

import (
	"context"
	"strings"
	"testing"

	"github.com/ldi/focusbloom/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Init(context.Background()); err != nil {
		t.Fatalf("Failed to init database: %v", err)
	}
	return db
}

func TestTemplateCRUD(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	tpl := &models.TaskTemplate{
		Name:            "Morning Deep Work",
		TaskName:        "Write report",
		TaskDescription: "Quarterly report draft",
		Type:            models.TaskTypeWork,
		StartTime:       "09:00",
		FocusSessions:   4,
	}

	if err := db.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("Failed to create template: %v", err)
	}

	if len(tpl.ID) != 36 || !strings.Contains(tpl.ID, "-") {
		t.Errorf("Expected UUID id, got %q", tpl.ID)
	}
	if tpl.CreatedAt.IsZero() || tpl.UpdatedAt.IsZero() {
		t.Errorf("Expected CreatedAt and UpdatedAt to be set")
	}
	if tpl.Color != models.TaskTypeWork.Color() {
		t.Errorf("Expected color derived from type, got %#x", tpl.Color)
	}

	fetched, err := db.GetTemplate(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("Failed to get template: %v", err)
	}
	if fetched == nil {
		t.Fatal("Template not found")
	}
	if fetched.Name != tpl.Name {
		t.Errorf("Expected name %s, got %s", tpl.Name, fetched.Name)
	}
	if fetched.FocusSessions != 4 {
		t.Errorf("Expected 4 focus sessions, got %d", fetched.FocusSessions)
	}

	byName, err := db.GetTemplateByName(ctx, "Morning Deep Work")
	if err != nil {
		t.Fatalf("Failed to get template by name: %v", err)
	}
	if byName == nil || byName.ID != tpl.ID {
		t.Errorf("GetTemplateByName returned wrong template: %+v", byName)
	}

	tpl.TaskName = "Write summary"
	tpl.FocusSessions = 6
	if err := db.UpdateTemplate(ctx, tpl); err != nil {
		t.Fatalf("Failed to update template: %v", err)
	}

	fetched, err = db.GetTemplate(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("Failed to get template: %v", err)
	}
	if fetched.TaskName != "Write summary" {
		t.Errorf("Expected task name Write summary, got %s", fetched.TaskName)
	}
	if fetched.FocusSessions != 6 {
		t.Errorf("Expected 6 focus sessions, got %d", fetched.FocusSessions)
	}

	if err := db.DeleteTemplate(ctx, tpl.ID); err != nil {
		t.Fatalf("Failed to delete template: %v", err)
	}

	fetched, err = db.GetTemplate(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("Get after delete failed: %v", err)
	}
	if fetched != nil {
		t.Errorf("Expected template to be gone, got %+v", fetched)
	}
}

func TestGetTemplateNotFound(t *testing.T) {
	db := openTestDB(t)

	tpl, err := db.GetTemplate(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("Expected nil error for missing template, got %v", err)
	}
	if tpl != nil {
		t.Errorf("Expected nil template, got %+v", tpl)
	}
}

func TestCreateTemplateDuplicateName(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := &models.TaskTemplate{Name: "dup", TaskName: "a", Type: models.TaskTypeOther, StartTime: "08:00"}
	if err := db.CreateTemplate(ctx, first); err != nil {
		t.Fatalf("Failed to create template: %v", err)
	}

	second := &models.TaskTemplate{Name: "dup", TaskName: "b", Type: models.TaskTypeOther, StartTime: "08:00"}
	if err := db.CreateTemplate(ctx, second); err == nil {
		t.Fatal("Expected error for duplicate template name")
	}
}

func TestUpdateTemplateNotFound(t *testing.T) {
	db := openTestDB(t)

	tpl := &models.TaskTemplate{ID: "missing", Name: "x", TaskName: "y", Type: models.TaskTypeOther}
	if err := db.UpdateTemplate(context.Background(), tpl); err == nil {
		t.Fatal("Expected error updating missing template")
	}
}

func TestDeleteTemplateNotFound(t *testing.T) {
	db := openTestDB(t)

	if err := db.DeleteTemplate(context.Background(), "missing"); err == nil {
		t.Fatal("Expected error deleting missing template")
	}
}

func TestListTemplates(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"one", "two", "three"} {
		tpl := &models.TaskTemplate{Name: name, TaskName: name, Type: models.TaskTypeStudy, StartTime: "10:00"}
		if err := db.CreateTemplate(ctx, tpl); err != nil {
			t.Fatalf("Failed to create template %s: %v", name, err)
		}
	}

	templates, err := db.ListTemplates(ctx)
	if err != nil {
		t.Fatalf("Failed to list templates: %v", err)
	}
	if len(templates) != 3 {
		t.Errorf("Expected 3 templates, got %d", len(templates))
	}
}
