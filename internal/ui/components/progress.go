package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/theme"
)

// Step is the outcome of one question in a QuestionTrack.
type Step int

const (
	StepPending Step = iota
	StepCurrent
	StepCorrect
	StepIncorrect
)

// QuestionTrack shows one marker per question: answered ones as ✓ or ✗,
// the current one highlighted.
type QuestionTrack struct {
	Steps []Step
}

// View renders the track followed by "n/N".
func (q QuestionTrack) View() string {
	parts := make([]string, len(q.Steps))
	done := 0
	for i, s := range q.Steps {
		switch s {
		case StepCorrect:
			parts[i] = theme.Correct.Render("✓")
			done++
		case StepIncorrect:
			parts[i] = theme.Incorrect.Render("✗")
			done++
		case StepCurrent:
			parts[i] = theme.Selected.Render("●")
		default:
			parts[i] = lipgloss.NewStyle().Foreground(theme.Border).Render("○")
		}
	}
	return strings.Join(parts, " ") +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  %d/%d", done, len(q.Steps)))
}

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6
	}

	barWidth := p.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(p.Percent*100+0.5)))
	}

	return result
}
