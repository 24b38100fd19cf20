package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	focusPhaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(0, 1)

	breakPhaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 1)

	historyHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Padding(0, 1)

	emptyHistoryStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true).
				Padding(0, 1)
)

type PhaseResult struct {
	Label   string
	Minutes int
	IsBreak bool
}

// PhaseHistory renders the phases completed so far in a running session.
type PhaseHistory struct {
	Completed []PhaseResult
	Width     int
	Title     string
}

func NewPhaseHistory(width int) *PhaseHistory {
	return &PhaseHistory{
		Completed: make([]PhaseResult, 0),
		Width:     width,
		Title:     "Completed Phases",
	}
}

// Add appends a result, keeping at most limit entries (oldest dropped).
func (h *PhaseHistory) Add(result PhaseResult, limit int) {
	h.Completed = append(h.Completed, result)
	if limit > 0 && len(h.Completed) > limit {
		h.Completed = h.Completed[len(h.Completed)-limit:]
	}
}

func (h *PhaseHistory) View() string {
	var s strings.Builder

	s.WriteString(historyHeaderStyle.Render(h.Title))
	s.WriteString("\n")

	if len(h.Completed) == 0 {
		s.WriteString(emptyHistoryStyle.Render("Nothing completed yet"))
		return s.String()
	}

	cells := make([]string, 0, len(h.Completed))
	for _, r := range h.Completed {
		label := fmt.Sprintf("✓ %s (%dm)", r.Label, r.Minutes)
		if r.IsBreak {
			cells = append(cells, breakPhaseStyle.Render(label))
		} else {
			cells = append(cells, focusPhaseStyle.Render(label))
		}
	}

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	return s.String()
}
