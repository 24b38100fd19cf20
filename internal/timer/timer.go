// Package timer runs a task's focus/break phases in real time and feeds
// progress messages to the TUI.
package timer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ldi/focusbloom/internal/schedule"
	"github.com/ldi/focusbloom/pkg/models"
)

// TaskStore defines the database operations the runner needs.
type TaskStore interface {
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error
}

type PhaseStartedMsg struct {
	Phase models.SessionPhase
	Index int
	Total int
}

type PhaseCompletedMsg struct {
	Phase models.SessionPhase
	Index int
	Total int
}

type TickMsg struct {
	Phase     models.SessionPhase
	Index     int
	Remaining time.Duration
}

type SessionFinishedMsg struct {
	TaskID string
}

// Runner executes one task's phase plan. It owns a single goroutine via Run
// and publishes progress on Messages.
type Runner struct {
	store TaskStore
	task  *models.Task
	plan  []models.SessionPhase

	// TickInterval is how often TickMsg is published. MinuteScale is the
	// real duration of one scheduled minute; tests shrink it to run fast.
	TickInterval time.Duration
	MinuteScale  time.Duration

	msgChan chan tea.Msg
}

func NewRunner(store TaskStore, task *models.Task, cfg models.SessionConfig) *Runner {
	return &Runner{
		store:        store,
		task:         task,
		plan:         schedule.Plan(task.FocusSessions, cfg),
		TickInterval: time.Second,
		MinuteScale:  time.Minute,
		msgChan:      make(chan tea.Msg, 100),
	}
}

// Plan returns the phases the runner will execute.
func (r *Runner) Plan() []models.SessionPhase {
	return r.plan
}

// Messages returns the progress channel. It is closed when Run returns.
func (r *Runner) Messages() <-chan tea.Msg {
	return r.msgChan
}

func (r *Runner) send(msg tea.Msg) {
	select {
	case r.msgChan <- msg:
	default:
		slog.Warn("timer message dropped", "task", r.task.ID)
	}
}

// Run marks the task in progress, walks the phase plan, and marks the task
// completed when every phase has elapsed. Cancellation puts the task back
// to pending.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.msgChan)

	if len(r.plan) == 0 {
		return fmt.Errorf("task %s has no focus sessions scheduled", r.task.ID)
	}

	if err := r.store.UpdateTaskStatus(ctx, r.task.ID, models.TaskStatusInProgress); err != nil {
		return fmt.Errorf("failed to start task: %w", err)
	}

	total := len(r.plan)
	for i, phase := range r.plan {
		r.send(PhaseStartedMsg{Phase: phase, Index: i, Total: total})

		if err := r.runPhase(ctx, i, phase); err != nil {
			// The original context is already cancelled here.
			resetCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if resetErr := r.store.UpdateTaskStatus(resetCtx, r.task.ID, models.TaskStatusPending); resetErr != nil {
				slog.Warn("failed to reset interrupted task", "task", r.task.ID, "error", resetErr)
			}
			return err
		}

		r.send(PhaseCompletedMsg{Phase: phase, Index: i, Total: total})
	}

	if err := r.store.UpdateTaskStatus(ctx, r.task.ID, models.TaskStatusCompleted); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	r.send(SessionFinishedMsg{TaskID: r.task.ID})
	return nil
}

func (r *Runner) runPhase(ctx context.Context, index int, phase models.SessionPhase) error {
	duration := time.Duration(phase.Minutes) * r.MinuteScale
	deadline := time.Now().Add(duration)

	ticker := time.NewTicker(r.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			remaining := deadline.Sub(now)
			if remaining <= 0 {
				return nil
			}
			r.send(TickMsg{Phase: phase, Index: index, Remaining: remaining})
		}
	}
}
