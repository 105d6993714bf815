package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	hist "github.com/Oiubrab/edaccelerator-learning-assessment/internal/history"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/router"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/screen"
	historyscreen "github.com/Oiubrab/edaccelerator-learning-assessment/internal/screens/history"
	sessionscreen "github.com/Oiubrab/edaccelerator-learning-assessment/internal/screens/session"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/session"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/components"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/layout"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/theme"
)

// wordsPerMinute is the reading speed used for the time estimate.
const wordsPerMinute = 200

// progressMsg carries what the home screen shows about past and current work.
type progressMsg struct {
	Stats    hist.Stats
	Progress string
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	deps     sessionscreen.Deps
	menu     components.Menu
	stats    hist.Stats
	progress string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps sessionscreen.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	h.menu = components.NewMenu(h.items())
	return h
}

func (h *HomeScreen) items() []components.MenuItem {
	deps := h.deps
	return []components.MenuItem{
		{Label: "Start reading", Detail: h.progress, Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: sessionscreen.New(deps)}
			}
		}},
		{Label: "New questions", Detail: "discard the current set", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: sessionscreen.New(deps, sessionscreen.WithNewQuestions())}
			}
		}},
		{Label: "History", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: historyscreen.New(deps.History)}
			}
		}},
		{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// load reads history stats and any unfinished session for the passage.
func (h *HomeScreen) load() tea.Cmd {
	deps := h.deps
	return func() tea.Msg {
		ctx := context.Background()
		var msg progressMsg
		if deps.History != nil {
			msg.Stats = deps.History.Stats(ctx)
		}
		if deps.Questions == nil || deps.Checkpoints == nil || deps.Passage == nil {
			return msg
		}
		set, ok := deps.Questions.Cached(ctx, deps.Passage.ID)
		if !ok {
			return msg
		}
		rec, ok := deps.Checkpoints.Load(ctx, set.Identity())
		if !ok {
			return msg
		}
		switch {
		case rec.Complete:
			msg.Progress = "review your last results"
		case len(rec.AnswerLog) > 0:
			msg.Progress = fmt.Sprintf("continue at question %d of %d", rec.ActiveIndex+1, set.Len())
		}
		return msg
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		h.stats = msg.Stats
		h.progress = msg.Progress
		selected := h.menu.Selected
		h.menu = components.NewMenu(h.items())
		h.menu.Selected = selected
		return h, nil

	case screen.ResumedMsg:
		return h, h.load()
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) View(width, height int) string {
	cw := min(width-4, 64)
	var sections []string

	sections = append(sections, theme.Title.Width(cw).Render("Reading Comprehension"))

	if p := h.deps.Passage; p != nil {
		words := len(strings.Fields(p.Content))
		minutes := max(1, (words+wordsPerMinute-1)/wordsPerMinute)
		card := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(p.Title) + "\n" +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(
				fmt.Sprintf("%d sections · about %d min read", len(p.Chunks), minutes))
		sections = append(sections, theme.Card.Width(cw).Render(card))
	}

	sections = append(sections, renderStats(h.stats, cw))
	sections = append(sections, h.menu.View())

	content := lipgloss.NewStyle().Width(cw).Render(strings.Join(sections, "\n\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func renderStats(st hist.Stats, width int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	if st.Count == 0 {
		return dim.Width(width).Align(lipgloss.Center).Render("No attempts yet")
	}
	line := fmt.Sprintf("Attempts %d   Best %d%%   Average %d%%", st.Count, st.Best, st.Average)
	band := session.Band(st.Best)
	return lipgloss.NewStyle().Foreground(theme.Secondary).Width(width).Align(lipgloss.Center).Render(line) +
		"\n" + dim.Width(width).Align(lipgloss.Center).Render("Best result: "+band)
}
