package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	sess "github.com/Oiubrab/edaccelerator-learning-assessment/internal/session"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/components"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/layout"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.machine == nil {
		return s.renderLoading(width)
	}

	st := s.machine.State()
	if st.Phase == sess.PhaseComplete {
		return s.renderResults(width)
	}

	s.resize(width, height)
	passagePane := s.renderPassage()

	qWidth := width
	if layout.IsWide(width) {
		qWidth = width - s.paneW - 1
	}
	questionPane := theme.Card.Width(qWidth).Render(s.renderQuestion(st, qWidth-4))

	if layout.IsWide(width) {
		return lipgloss.JoinHorizontal(lipgloss.Top, passagePane, " ", questionPane)
	}
	return lipgloss.JoinVertical(lipgloss.Left, passagePane, questionPane)
}

// resize lays out the passage pane: left three fifths on wide terminals,
// the top half otherwise.
func (s *SessionScreen) resize(width, height int) {
	paneW, paneH := width, height/2
	if layout.IsWide(width) {
		paneW, paneH = width*3/5, height
	}
	if paneW == s.paneW && paneH == s.paneH {
		return
	}
	s.paneW, s.paneH = paneW, paneH

	// Border and padding take four columns; border and the pane title
	// take three rows.
	s.passage.SetWidth(max(paneW-4, 10))
	s.passage.SetHeight(max(paneH-3, 3))
	s.dirty = true
	s.refreshPassage()

	inputW := paneW - 8
	if layout.IsWide(width) {
		inputW = width - paneW - 10
	}
	s.input.SetWidth(min(max(inputW, 20), 80))
}

func (s *SessionScreen) renderPassage() string {
	s.refreshPassage()

	var title string
	if s.mode == ModeGuided {
		title = fmt.Sprintf("%s · Section %d of %d", s.deps.Passage.Title, s.chunk+1, s.chunkCount())
	} else {
		title = fmt.Sprintf("%s · %d%%", s.deps.Passage.Title, int(s.passage.ScrollPercent()*100+0.5))
	}
	head := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(title)

	return theme.Passage.Width(s.paneW).Render(head + "\n" + s.passage.View())
}

func (s *SessionScreen) renderQuestion(st sess.State, width int) string {
	q, ok := s.machine.Current()
	if !ok {
		return ""
	}
	total := len(s.machine.Questions())

	var b strings.Builder

	info := fmt.Sprintf("Question %d of %d", st.ActiveIndex+1, total)
	if q.Difficulty != "" {
		info += "  ·  " + string(q.Difficulty)
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(info))
	b.WriteString("\n")
	b.WriteString(trackFor(st, total).View())
	b.WriteString("\n\n")

	if s.notice != "" {
		b.WriteString(theme.Hint.Width(width).Render(s.notice))
		b.WriteString("\n\n")
	}

	b.WriteString(theme.Question.Width(width).Render(q.Text))
	b.WriteString("\n\n")

	if s.feedback != nil {
		b.WriteString(renderFeedback(*s.feedback, width))
		return b.String()
	}

	if s.showHint {
		hint := q.Hint
		if hint == "" {
			hint = "No hint for this question. Try the section finder."
		}
		b.WriteString(theme.Hint.Width(width).Render("Hint: " + hint))
		b.WriteString("\n\n")
	}

	if s.grading {
		b.WriteString(s.spinner.View() + " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render("Checking your answer..."))
	} else {
		b.WriteString(s.input.View())
	}
	return b.String()
}

func renderFeedback(fb sess.Feedback, width int) string {
	var b strings.Builder

	if fb.Correct {
		b.WriteString(theme.Correct.Render("✓ Correct!"))
	} else {
		b.WriteString(theme.Incorrect.Render("✗ Not quite"))
	}
	b.WriteString("\n")

	body := theme.Body.Width(width)
	if fb.Message != "" {
		b.WriteString(body.Render(fb.Message))
		b.WriteString("\n")
	}
	if !fb.Correct && fb.ExpectedAnswer != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Width(width).
			Render("Expected answer: " + fb.ExpectedAnswer))
		b.WriteString("\n")
	}
	if fb.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(body.Render(fb.Explanation))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	next := "Press Enter for the next question."
	if fb.Last {
		next = "Press Enter to see your results."
	}
	b.WriteString(theme.Hint.Render(next))
	return b.String()
}

// trackFor builds the per-question markers from the answer log.
func trackFor(st sess.State, total int) components.QuestionTrack {
	steps := make([]components.Step, total)
	for i := range steps {
		switch {
		case i < len(st.AnswerLog) && st.AnswerLog[i].Correct:
			steps[i] = components.StepCorrect
		case i < len(st.AnswerLog):
			steps[i] = components.StepIncorrect
		case i == st.ActiveIndex:
			steps[i] = components.StepCurrent
		}
	}
	return components.QuestionTrack{Steps: steps}
}

func (s *SessionScreen) renderResults(width int) string {
	attempt, _ := s.machine.Attempt()
	cw := min(width-4, 90)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Title, sess.Band(attempt.Percentage)))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Subtitle,
		fmt.Sprintf("You got %d out of %d questions correct", attempt.Score, attempt.Total)))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("Score", float64(attempt.Percentage)/100, true, min(cw, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	var rows strings.Builder
	for i, r := range s.machine.Results() {
		mark := theme.Incorrect.Render("✗")
		if r.Answer.Correct {
			mark = theme.Correct.Render("✓")
		}
		rows.WriteString(fmt.Sprintf("%s %d. %s\n", mark, i+1, r.Question.Text))

		dim := lipgloss.NewStyle().Foreground(theme.TextDim).PaddingLeft(5).Width(cw)
		rows.WriteString(dim.Render("Your answer: " + r.Answer.SubmittedText))
		rows.WriteString("\n")
		if !r.Answer.Correct {
			rows.WriteString(dim.Render("Expected: " + r.Question.ExpectedAnswer))
			rows.WriteString("\n")
		}
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(cw).Render(rows.String())))

	return b.String()
}

func (s *SessionScreen) renderLoading(width int) string {
	msg := "Preparing your questions..."
	if s.renew {
		msg = "Writing a new set of questions..."
	}
	return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim),
		"\n\n\n"+s.spinner.View()+" "+msg)
}

func renderError(width int, errMsg string) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(width, theme.Incorrect, "Could not prepare the questions"))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), errMsg))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(width, theme.Hint, "Press R to try again or Esc to go back."))
	return b.String()
}
