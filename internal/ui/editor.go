package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ldi/focusbloom/internal/viewmodel"
	"github.com/ldi/focusbloom/pkg/models"
)

var (
	editorTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(14)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("212")).
				Bold(true).
				Width(14)

	endTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true).
			Padding(0, 1)

	statusLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	errorLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

const (
	fieldTemplateName = iota
	fieldTaskName
	fieldDescription
	fieldStartTime
	fieldType
	fieldSessions
	fieldCount
)

var taskTypes = []models.TaskType{
	models.TaskTypeWork,
	models.TaskTypeStudy,
	models.TaskTypePersonal,
	models.TaskTypeHealth,
	models.TaskTypeOther,
}

// EditorModel is the template editing screen. All form state lives in the
// view model; the model only owns focus handling and text input widgets.
type EditorModel struct {
	vm       *viewmodel.EditorViewModel
	inputs   []textinput.Model
	focus    int
	typeIdx  int
	status   string
	errLine  string
	quitting bool
}

func NewEditorModel(vm *viewmodel.EditorViewModel) *EditorModel {
	state := vm.State()

	inputs := make([]textinput.Model, 4)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].CharLimit = 120
	}
	inputs[fieldTemplateName].Placeholder = "Template name"
	inputs[fieldTemplateName].SetValue(state.TemplateName)
	inputs[fieldTaskName].Placeholder = "Task name"
	inputs[fieldTaskName].SetValue(state.TaskName)
	inputs[fieldDescription].Placeholder = "Description (optional)"
	inputs[fieldDescription].SetValue(state.TaskDescription)
	inputs[fieldStartTime].Placeholder = "HH:MM"
	inputs[fieldStartTime].CharLimit = 5
	inputs[fieldStartTime].SetValue(state.Start.Format("15:04"))

	typeIdx := 0
	for i, tt := range taskTypes {
		if tt == state.Type {
			typeIdx = i
			break
		}
	}

	m := &EditorModel{
		vm:      vm,
		inputs:  inputs,
		typeIdx: typeIdx,
	}
	m.inputs[0].Focus()
	return m
}

func (m *EditorModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

func (m *EditorModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.vm.Events()
	}
}

func (m *EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewmodel.Event:
		switch msg.Kind {
		case viewmodel.EventSaved:
			m.status = fmt.Sprintf("Saved %q", msg.Message)
			m.errLine = ""
		case viewmodel.EventDeleted:
			m.status = fmt.Sprintf("Deleted %q", msg.Message)
			m.errLine = ""
			m.quitting = true
			return m, tea.Quit
		case viewmodel.EventError:
			m.errLine = msg.Message
		}
		return m, m.waitForEvent()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit

		case "tab", "down":
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil

		case "shift+tab", "up":
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil

		case "ctrl+s":
			m.vm.Save(context.Background())
			return m, nil

		case "ctrl+d":
			m.vm.Delete(context.Background())
			return m, nil

		case "left", "right", "+", "-", " ", "enter":
			if m.handleSelector(msg.String()) {
				return m, nil
			}
		}
	}

	return m, m.updateFocusedInput(msg)
}

// handleSelector consumes keys on the type and sessions fields. Returns
// false when the key belongs to a text input instead.
func (m *EditorModel) handleSelector(key string) bool {
	switch m.focus {
	case fieldType:
		switch key {
		case "left":
			m.typeIdx = (m.typeIdx + len(taskTypes) - 1) % len(taskTypes)
		case "right", " ", "enter":
			m.typeIdx = (m.typeIdx + 1) % len(taskTypes)
		default:
			return false
		}
		m.vm.SetType(taskTypes[m.typeIdx])
		return true

	case fieldSessions:
		switch key {
		case "right", "+":
			m.vm.IncrementSessions()
		case "left", "-":
			m.vm.DecrementSessions()
		default:
			return false
		}
		return true
	}

	return false
}

func (m *EditorModel) updateFocusedInput(msg tea.Msg) tea.Cmd {
	if m.focus >= len(m.inputs) {
		return nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	value := m.inputs[m.focus].Value()
	switch m.focus {
	case fieldTemplateName:
		m.vm.SetTemplateName(value)
	case fieldTaskName:
		m.vm.SetTaskName(value)
	case fieldDescription:
		m.vm.SetTaskDescription(value)
	case fieldStartTime:
		if clock, err := time.Parse("15:04", value); err == nil {
			cur := m.vm.State().Start
			m.vm.SetStart(time.Date(cur.Year(), cur.Month(), cur.Day(),
				clock.Hour(), clock.Minute(), 0, 0, cur.Location()))
			m.errLine = ""
		} else if value != "" {
			m.errLine = fmt.Sprintf("invalid start time %q", value)
		}
	}

	return cmd
}

func (m *EditorModel) setFocus(focus int) {
	m.focus = focus
	for i := range m.inputs {
		if i == focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *EditorModel) label(field int, text string) string {
	if m.focus == field {
		return focusedLabelStyle.Render("> " + text)
	}
	return labelStyle.Render("  " + text)
}

func (m *EditorModel) View() string {
	if m.quitting && m.status != "" {
		return m.status + "\n"
	}

	state := m.vm.State()

	var s strings.Builder
	title := "New Template"
	if state.TemplateID != "" {
		title = "Edit Template"
	}
	s.WriteString(editorTitleStyle.Render(title))
	s.WriteString("\n\n")

	s.WriteString(m.label(fieldTemplateName, "Template"))
	s.WriteString(m.inputs[fieldTemplateName].View())
	s.WriteString("\n")
	s.WriteString(m.label(fieldTaskName, "Task"))
	s.WriteString(m.inputs[fieldTaskName].View())
	s.WriteString("\n")
	s.WriteString(m.label(fieldDescription, "Description"))
	s.WriteString(m.inputs[fieldDescription].View())
	s.WriteString("\n")
	s.WriteString(m.label(fieldStartTime, "Start"))
	s.WriteString(m.inputs[fieldStartTime].View())
	s.WriteString("\n")
	s.WriteString(m.label(fieldType, "Type"))
	s.WriteString(string(taskTypes[m.typeIdx]))
	s.WriteString("\n")
	s.WriteString(m.label(fieldSessions, "Sessions"))
	s.WriteString(fmt.Sprintf("- %d +", state.FocusSessions))
	s.WriteString("\n\n")

	s.WriteString(endTimeStyle.Render(fmt.Sprintf("Ends at %s", state.EndTime.Format("15:04"))))
	s.WriteString("\n\n")

	if m.errLine != "" {
		s.WriteString(errorLineStyle.Render(m.errLine))
		s.WriteString("\n")
	}
	if m.status != "" {
		s.WriteString(statusLineStyle.Render(m.status))
		s.WriteString("\n")
	}

	s.WriteString(statusLineStyle.Render("tab: next field • ctrl+s: save • ctrl+d: delete • esc: quit"))
	s.WriteString("\n")

	return s.String()
}

// RunEditor opens the template editor for a new or existing template.
func RunEditor(vm *viewmodel.EditorViewModel) error {
	p := tea.NewProgram(NewEditorModel(vm))
	_, err := p.Run()
	return err
}
