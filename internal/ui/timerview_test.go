package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ldi/focusbloom/internal/timer"
	"github.com/ldi/focusbloom/pkg/models"
)

type noopStore struct{}

func (noopStore) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	return nil
}

func newTestTimerModel() *TimerModel {
	task := &models.Task{ID: "t1", Name: "Deep work", FocusSessions: 2}
	cfg := models.SessionConfig{SessionMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 15}
	runner := timer.NewRunner(noopStore{}, task, cfg)
	return NewTimerModel(runner, task.Name)
}

func TestTimerViewShowsPhase(t *testing.T) {
	m := newTestTimerModel()

	m.Update(timer.PhaseStartedMsg{
		Phase: models.SessionPhase{Kind: models.PhaseFocus, Minutes: 25},
		Index: 0,
		Total: 3,
	})
	m.Update(timer.TickMsg{
		Phase:     models.SessionPhase{Kind: models.PhaseFocus, Minutes: 25},
		Remaining: 24*time.Minute + 30*time.Second,
	})

	view := m.View()
	if !strings.Contains(view, "Deep work") {
		t.Errorf("expected view to contain task name, got:\n%s", view)
	}
	if !strings.Contains(view, "focus (1/3)") {
		t.Errorf("expected view to contain phase counter, got:\n%s", view)
	}
	if !strings.Contains(view, "24:30") {
		t.Errorf("expected view to contain remaining time, got:\n%s", view)
	}
}

func TestTimerViewCompletedPhases(t *testing.T) {
	m := newTestTimerModel()

	m.Update(timer.PhaseCompletedMsg{
		Phase: models.SessionPhase{Kind: models.PhaseFocus, Minutes: 25},
	})
	m.Update(timer.PhaseCompletedMsg{
		Phase: models.SessionPhase{Kind: models.PhaseShortBreak, Minutes: 5},
	})

	view := m.View()
	if !strings.Contains(view, "✓ focus (25m)") {
		t.Errorf("expected completed focus phase in view, got:\n%s", view)
	}
	if !strings.Contains(view, "✓ short break (5m)") {
		t.Errorf("expected completed break phase in view, got:\n%s", view)
	}
}

func TestTimerViewFinish(t *testing.T) {
	m := newTestTimerModel()

	_, cmd := m.Update(timer.SessionFinishedMsg{TaskID: "t1"})
	if cmd == nil {
		t.Fatal("expected quit command on session finish")
	}

	view := m.View()
	if !strings.Contains(view, "Session complete") {
		t.Errorf("expected completion message, got:\n%s", view)
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{25 * time.Minute, "25:00"},
		{90 * time.Second, "01:30"},
		{0, "00:00"},
		{-5 * time.Second, "00:00"},
	}
	for _, tt := range tests {
		if got := formatRemaining(tt.d); got != tt.want {
			t.Errorf("formatRemaining(%v) = %s, want %s", tt.d, got, tt.want)
		}
	}
}
