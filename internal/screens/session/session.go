package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/checkpoint"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/grading"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/history"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/logger"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/passage"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/questiongen"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/router"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/screen"
	sess "github.com/Oiubrab/edaccelerator-learning-assessment/internal/session"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/components"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/layout"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/theme"
)

// Deps are the collaborators of the reading screen.
type Deps struct {
	Passage     *passage.Passage
	Questions   *questiongen.CachedGenerator
	Grader      grading.Grader
	Checkpoints *checkpoint.Store
	History     *history.Store
	Log         *logger.Logger
}

// ReadingMode selects how the passage pane shows the text.
type ReadingMode int

const (
	// ModeGuided shows one section at a time.
	ModeGuided ReadingMode = iota
	// ModeFull shows the whole passage.
	ModeFull
)

// Option configures a SessionScreen.
type Option func(*SessionScreen)

// WithNewQuestions discards the cached question set (and its progress)
// before loading, so the session starts on a freshly generated set.
func WithNewQuestions() Option {
	return func(s *SessionScreen) { s.renew = true }
}

// SessionScreen implements screen.Screen for a reading session.
type SessionScreen struct {
	deps  Deps
	log   *logger.Logger
	renew bool

	machine *sess.Machine
	errMsg  string

	input    components.AnswerInput
	spinner  spinner.Model
	passage  viewport.Model
	mode     ReadingMode
	chunk    int
	offsets  []int
	paneW    int
	paneH    int
	dirty    bool
	grading  bool
	token    uint64
	feedback *sess.Feedback
	showHint bool
	notice   string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)

// New creates a SessionScreen.
func New(deps Deps, opts ...Option) *SessionScreen {
	s := &SessionScreen{
		deps:  deps,
		log:   deps.Log,
		input: components.NewAnswerInput("Type your answer...", 40),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)),
		),
		passage: viewport.New(viewport.WithWidth(60), viewport.WithHeight(10)),
		dirty:   true,
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionScreen) Init() tea.Cmd {
	return tea.Batch(s.spinner.Tick, s.load())
}

func (s *SessionScreen) Title() string {
	return "Reading"
}

// Status shows the running score once questions are loaded.
func (s *SessionScreen) Status() string {
	if s.machine == nil {
		return ""
	}
	sum := s.machine.Summary()
	return fmt.Sprintf("Score %d/%d  ", sum.Correct, sum.Total)
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{
			{Key: "R", Description: "Try again"},
			{Key: "Esc", Description: "Back"},
		}
	case s.machine == nil:
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}

	switch s.machine.State().Phase {
	case sess.PhaseComplete:
		return []layout.KeyHint{
			{Key: "R", Description: "Try again"},
			{Key: "Enter", Description: "Home"},
		}
	case sess.PhaseFeedback:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Continue"},
			{Key: "PgUp/PgDn", Description: "Scroll"},
			{Key: "Ctrl+R", Description: "Restart"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+O", Description: "Hint"},
		{Key: "Ctrl+G", Description: "Find section"},
		{Key: "Ctrl+T", Description: s.modeToggleLabel()},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "Esc", Description: "Save & exit"},
	}
}

func (s *SessionScreen) modeToggleLabel() string {
	if s.mode == ModeGuided {
		return "Full text"
	}
	return "Guided"
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case setReadyMsg:
		return s.handleReady(msg)

	case setFailedMsg:
		s.errMsg = msg.Err.Error()
		return s, nil

	case gradedMsg:
		return s.handleGraded(msg)

	case spinner.TickMsg:
		if (s.machine == nil && s.errMsg == "") || s.grading {
			var cmd tea.Cmd
			s.spinner, cmd = s.spinner.Update(msg)
			return s, cmd
		}
		return s, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		s.passage, cmd = s.passage.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.acceptingInput() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// load resolves the question set and builds the state machine, resuming a
// checkpoint saved for the same set.
func (s *SessionScreen) load() tea.Cmd {
	deps := s.deps
	renew := s.renew
	log := s.log
	return func() tea.Msg {
		ctx := context.Background()
		if deps.Passage == nil || deps.Questions == nil {
			return setFailedMsg{Err: errors.New("no passage or question source configured")}
		}

		if renew {
			if old, ok := deps.Questions.Cached(ctx, deps.Passage.ID); ok && deps.Checkpoints != nil {
				deps.Checkpoints.Clear(ctx, old.Identity())
			}
			if err := deps.Questions.Forget(ctx, deps.Passage.ID); err != nil {
				log.Warn("forget question set", "passage", deps.Passage.ID, "error", err)
			}
		}

		set, err := deps.Questions.Generate(ctx, deps.Passage)
		if err != nil {
			log.Error("question generation failed", "passage", deps.Passage.ID, "error", err)
			return setFailedMsg{Err: err}
		}

		m, err := sess.New(ctx, set, sess.Deps{
			Grader:      deps.Grader,
			Checkpoints: deps.Checkpoints,
			History:     deps.History,
			Log:         log,
		})
		if err != nil {
			return setFailedMsg{Err: err}
		}
		return setReadyMsg{Machine: m}
	}
}

func (s *SessionScreen) handleReady(msg setReadyMsg) (screen.Screen, tea.Cmd) {
	s.machine = msg.Machine
	s.errMsg = ""
	s.renew = false
	s.dirty = true

	if fb, ok := s.machine.LastFeedback(); ok {
		s.feedback = &fb
		s.input.Blur()
	}
	if s.machine.Resumed() {
		s.notice = "Welcome back! Picking up where you left off."
	}
	return s, s.input.Focus()
}

func (s *SessionScreen) handleGraded(msg gradedMsg) (screen.Screen, tea.Cmd) {
	if msg.Token != s.token {
		return s, nil
	}
	s.grading = false
	if !msg.OK {
		s.notice = "Your answer could not be checked. Please try again."
		return s, s.input.Focus()
	}
	fb := msg.Feedback
	s.feedback = &fb
	s.notice = ""
	s.input.Blur()
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		if key == "r" || key == "R" {
			s.errMsg = ""
			return s, tea.Batch(s.spinner.Tick, s.load())
		}
		return s, nil
	}
	if s.machine == nil {
		return s, nil
	}

	switch key {
	case "pgdown":
		s.pageDown()
		return s, nil
	case "pgup":
		s.pageUp()
		return s, nil
	case "ctrl+t":
		s.toggleMode()
		return s, nil
	case "ctrl+r":
		return s.restart()
	}

	switch s.machine.State().Phase {
	case sess.PhaseComplete:
		switch key {
		case "r", "R":
			return s.restart()
		case "enter":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil

	case sess.PhaseFeedback:
		if key == "enter" {
			return s.advance()
		}
		return s, nil
	}

	if s.grading {
		return s, nil
	}

	switch key {
	case "enter":
		return s.submit()
	case "ctrl+o":
		s.showHint = !s.showHint
		return s, nil
	case "ctrl+g":
		s.jumpToQuestion()
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *SessionScreen) acceptingInput() bool {
	return s.machine != nil && !s.grading && s.feedback == nil &&
		s.machine.State().Phase == sess.PhaseAnswering
}

func (s *SessionScreen) submit() (screen.Screen, tea.Cmd) {
	text := strings.TrimSpace(s.input.Value())
	if text == "" || s.machine.InFlight() {
		return s, nil
	}

	s.grading = true
	s.notice = ""
	s.input.Blur()

	m := s.machine
	token := s.token
	grade := func() tea.Msg {
		fb, ok := m.Submit(context.Background(), text)
		return gradedMsg{Token: token, Feedback: fb, OK: ok}
	}
	return s, tea.Batch(s.spinner.Tick, grade)
}

func (s *SessionScreen) advance() (screen.Screen, tea.Cmd) {
	if !s.machine.Advance(context.Background()) {
		return s, nil
	}
	s.feedback = nil
	s.showHint = false
	s.notice = ""
	s.input.Reset()
	if s.machine.State().Phase == sess.PhaseComplete {
		return s, nil
	}
	return s, s.input.Focus()
}

func (s *SessionScreen) restart() (screen.Screen, tea.Cmd) {
	s.machine.Restart(context.Background())
	s.token++
	s.grading = false
	s.feedback = nil
	s.showHint = false
	s.notice = ""
	s.input.Reset()
	s.chunk = 0
	s.dirty = true
	return s, s.input.Focus()
}

func (s *SessionScreen) toggleMode() {
	if s.mode == ModeGuided {
		s.mode = ModeFull
	} else {
		s.mode = ModeGuided
	}
	s.dirty = true
	s.refreshPassage()
	s.scrollToChunk()
}

// jumpToQuestion shows the section holding the current question's excerpt.
func (s *SessionScreen) jumpToQuestion() {
	q, ok := s.machine.Current()
	if !ok || s.deps.Passage == nil {
		return
	}
	idx := s.deps.Passage.FindChunk(q.PassageExcerpt)
	if idx < 0 {
		s.notice = "This question draws on the whole passage."
		return
	}
	s.chunk = idx
	s.dirty = true
	s.refreshPassage()
	s.scrollToChunk()
}

func (s *SessionScreen) pageDown() {
	if s.mode == ModeGuided && s.passage.AtBottom() {
		if s.chunk < s.chunkCount()-1 {
			s.chunk++
			s.dirty = true
			s.refreshPassage()
			s.passage.GotoTop()
		}
		return
	}
	s.passage.PageDown()
}

func (s *SessionScreen) pageUp() {
	if s.mode == ModeGuided && s.passage.AtTop() {
		if s.chunk > 0 {
			s.chunk--
			s.dirty = true
			s.refreshPassage()
			s.passage.GotoTop()
		}
		return
	}
	s.passage.PageUp()
}

func (s *SessionScreen) scrollToChunk() {
	if s.mode == ModeGuided {
		s.passage.GotoTop()
		return
	}
	if s.chunk >= 0 && s.chunk < len(s.offsets) {
		s.passage.SetYOffset(s.offsets[s.chunk])
	}
}

func (s *SessionScreen) chunkCount() int {
	if s.deps.Passage == nil {
		return 0
	}
	return len(s.deps.Passage.Chunks)
}

// refreshPassage re-renders the passage into the viewport when the mode,
// the section or the pane width changed.
func (s *SessionScreen) refreshPassage() {
	if !s.dirty || s.deps.Passage == nil {
		return
	}
	s.dirty = false

	width := s.passage.Width()
	body := theme.Body.Width(max(width, 10))
	p := s.deps.Passage

	if s.mode == ModeGuided {
		c := p.Chunks[s.chunk]
		s.passage.SetContent(theme.Heading.Render(c.Heading) + "\n\n" + body.Render(c.Text))
		s.offsets = nil
		return
	}

	var b strings.Builder
	s.offsets = make([]int, len(p.Chunks))
	line := 0
	for i, c := range p.Chunks {
		if i > 0 {
			b.WriteString("\n\n")
			line += 2
		}
		s.offsets[i] = line
		block := theme.Heading.Render(c.Heading) + "\n\n" + body.Render(c.Text)
		b.WriteString(block)
		line += lipgloss.Height(block) - 1
	}
	s.passage.SetContent(b.String())
}
