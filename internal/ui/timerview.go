package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ldi/focusbloom/internal/timer"
	"github.com/ldi/focusbloom/internal/ui/components"
	"github.com/ldi/focusbloom/pkg/models"
)

var (
	timerTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	phaseFocusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	phaseBreakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	remainingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	timerHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// TimerModel renders a running session fed by a timer.Runner.
type TimerModel struct {
	runner   *timer.Runner
	taskName string
	progress progress.Model
	history  *components.PhaseHistory

	phase      models.SessionPhase
	phaseIndex int
	phaseTotal int
	remaining  time.Duration
	running    bool
	finished   bool
	quitting   bool
}

func NewTimerModel(runner *timer.Runner, taskName string) *TimerModel {
	return &TimerModel{
		runner:   runner,
		taskName: taskName,
		progress: progress.New(progress.WithDefaultGradient()),
		history:  components.NewPhaseHistory(0),
	}
}

func (m *TimerModel) Init() tea.Cmd {
	return m.pollMessages()
}

func (m *TimerModel) pollMessages() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.runner.Messages()
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - 8
		m.history.Width = msg.Width

	case timer.PhaseStartedMsg:
		m.phase = msg.Phase
		m.phaseIndex = msg.Index
		m.phaseTotal = msg.Total
		m.remaining = time.Duration(msg.Phase.Minutes) * time.Minute
		m.running = true
		return m, m.pollMessages()

	case timer.TickMsg:
		m.remaining = msg.Remaining
		return m, m.pollMessages()

	case timer.PhaseCompletedMsg:
		m.history.Add(components.PhaseResult{
			Label:   phaseLabel(msg.Phase.Kind),
			Minutes: msg.Phase.Minutes,
			IsBreak: msg.Phase.Kind != models.PhaseFocus,
		}, 12)
		return m, m.pollMessages()

	case timer.SessionFinishedMsg:
		m.finished = true
		m.running = false
		return m, tea.Quit
	}

	return m, nil
}

func phaseLabel(kind models.PhaseKind) string {
	switch kind {
	case models.PhaseFocus:
		return "focus"
	case models.PhaseShortBreak:
		return "short break"
	case models.PhaseLongBreak:
		return "long break"
	}
	return string(kind)
}

func (m *TimerModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(timerTitleStyle.Render(fmt.Sprintf("FocusBloom: %s", m.taskName)))
	s.WriteString("\n\n")

	if m.finished {
		s.WriteString(phaseBreakStyle.Render("Session complete ✓"))
		s.WriteString("\n\n")
		s.WriteString(m.history.View())
		s.WriteString("\n")
		return s.String()
	}

	if m.running {
		label := phaseLabel(m.phase.Kind)
		style := phaseFocusStyle
		if m.phase.Kind != models.PhaseFocus {
			style = phaseBreakStyle
		}
		s.WriteString(style.Render(fmt.Sprintf("%s (%d/%d)", label, m.phaseIndex+1, m.phaseTotal)))
		s.WriteString("  ")
		s.WriteString(remainingStyle.Render(formatRemaining(m.remaining)))
		s.WriteString("\n\n")

		total := time.Duration(m.phase.Minutes) * time.Minute
		elapsed := total - m.remaining
		pct := 0.0
		if total > 0 {
			pct = float64(elapsed) / float64(total)
		}
		s.WriteString(m.progress.ViewAs(pct))
		s.WriteString("\n\n")
	} else {
		s.WriteString(timerHelpStyle.Render("Waiting for session to start..."))
		s.WriteString("\n\n")
	}

	s.WriteString(m.history.View())
	s.WriteString("\n\n")
	s.WriteString(timerHelpStyle.Render("q: abandon session"))
	s.WriteString("\n")

	return s.String()
}

func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
