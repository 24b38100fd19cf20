package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ldi/focusbloom/internal/viewmodel"
	"github.com/ldi/focusbloom/pkg/models"
)

type recordingStore struct {
	created []*models.TaskTemplate
	deleted []string
}

func (r *recordingStore) CreateTemplate(ctx context.Context, t *models.TaskTemplate) error {
	t.ID = "new-id"
	r.created = append(r.created, t)
	return nil
}

func (r *recordingStore) UpdateTemplate(ctx context.Context, t *models.TaskTemplate) error {
	return nil
}

func (r *recordingStore) DeleteTemplate(ctx context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}

var editorCfg = models.SessionConfig{SessionMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 15}

func typeString(m *EditorModel, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestEditorTypingUpdatesViewModel(t *testing.T) {
	vm := viewmodel.NewEditorViewModel(&recordingStore{}, editorCfg)
	m := NewEditorModel(vm)

	typeString(m, "Morning")
	if got := vm.State().TemplateName; got != "Morning" {
		t.Errorf("expected template name Morning, got %q", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeString(m, "Write")
	if got := vm.State().TaskName; got != "Write" {
		t.Errorf("expected task name Write, got %q", got)
	}
}

func TestEditorSessionCounter(t *testing.T) {
	vm := viewmodel.NewEditorViewModel(&recordingStore{}, editorCfg)
	vm.SetStart(time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC))
	m := NewEditorModel(vm)

	for m.focus != fieldSessions {
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
	}

	typeString(m, "+++")
	if got := vm.State().FocusSessions; got != 3 {
		t.Errorf("expected 3 sessions, got %d", got)
	}

	typeString(m, "----")
	if got := vm.State().FocusSessions; got != 0 {
		t.Errorf("expected decrement clamped at 0, got %d", got)
	}
}

func TestEditorViewShowsEndTime(t *testing.T) {
	vm := viewmodel.NewEditorViewModel(&recordingStore{}, editorCfg)
	vm.SetStart(time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC))
	m := NewEditorModel(vm)

	for m.focus != fieldSessions {
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	typeString(m, "++++")

	// 4 sessions from 09:00: ends 115 minutes later at 10:55
	view := m.View()
	if !strings.Contains(view, "Ends at 10:55") {
		t.Errorf("expected view to show computed end time, got:\n%s", view)
	}
}

func TestEditorTypeCycling(t *testing.T) {
	vm := viewmodel.NewEditorViewModel(&recordingStore{}, editorCfg)
	m := NewEditorModel(vm)

	for m.focus != fieldType {
		m.Update(tea.KeyMsg{Type: tea.KeyTab})
	}

	// The form starts on "other", the last entry; cycling wraps to "work".
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	state := vm.State()
	if state.Type != models.TaskTypeWork {
		t.Errorf("expected type work after cycling, got %s", state.Type)
	}
	if state.Color != models.TaskTypeWork.Color() {
		t.Errorf("expected color to follow type")
	}
}

func TestEditorSaveEmitsStatus(t *testing.T) {
	store := &recordingStore{}
	vm := viewmodel.NewEditorViewModel(store, editorCfg)
	m := NewEditorModel(vm)

	typeString(m, "My Template")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	if len(store.created) != 1 {
		t.Fatalf("expected 1 created template, got %d", len(store.created))
	}

	// The saved event is delivered asynchronously through Events.
	select {
	case e := <-vm.Events():
		model, _ := m.Update(e)
		m = model.(*EditorModel)
	case <-time.After(time.Second):
		t.Fatal("no event emitted")
	}

	if !strings.Contains(m.View(), "Saved") {
		t.Errorf("expected status line after save, got:\n%s", m.View())
	}
}
