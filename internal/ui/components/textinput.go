package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// MaxAnswerLength caps a typed answer.
const MaxAnswerLength = 300

// AnswerInput wraps bubbles/textinput for free-text answers.
type AnswerInput struct {
	Model textinput.Model
}

// NewAnswerInput creates a focused input of the given display width.
func NewAnswerInput(placeholder string, width int) AnswerInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = MaxAnswerLength
	ti.Prompt = "› "
	if width > 0 {
		ti.SetWidth(width)
	}
	ti.Focus()
	return AnswerInput{Model: ti}
}

// Init returns the initial command.
func (a AnswerInput) Init() tea.Cmd {
	return a.Model.Focus()
}

// Update handles messages.
func (a AnswerInput) Update(msg tea.Msg) (AnswerInput, tea.Cmd) {
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// View renders the input.
func (a AnswerInput) View() string {
	return a.Model.View()
}

// Value returns the current text.
func (a AnswerInput) Value() string {
	return a.Model.Value()
}

// SetWidth resizes the input.
func (a *AnswerInput) SetWidth(w int) {
	if w > 0 {
		a.Model.SetWidth(w)
	}
}

// Reset clears the text.
func (a *AnswerInput) Reset() {
	a.Model.Reset()
}

// Focused reports whether the input takes key presses.
func (a AnswerInput) Focused() bool {
	return a.Model.Focused()
}

// Blur stops the input from taking key presses.
func (a *AnswerInput) Blur() {
	a.Model.Blur()
}

// Focus resumes key handling.
func (a *AnswerInput) Focus() tea.Cmd {
	return a.Model.Focus()
}
