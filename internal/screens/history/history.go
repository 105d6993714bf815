package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	hist "github.com/Oiubrab/edaccelerator-learning-assessment/internal/history"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/router"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/screen"
	sess "github.com/Oiubrab/edaccelerator-learning-assessment/internal/session"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/layout"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/theme"
)

type historyLoadedMsg struct {
	Attempts []hist.AttemptSummary
}

type historyClearedMsg struct {
	Err error
}

// HistoryScreen lists past attempts, most recent first.
type HistoryScreen struct {
	store      *hist.Store
	attempts   []hist.AttemptSummary
	stats      hist.Stats
	selected   int
	expanded   map[int]bool
	loaded     bool
	confirming bool
	errMsg     string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.EscapeCapturer = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(store *hist.Store) *HistoryScreen {
	return &HistoryScreen{
		store:    store,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	store := s.store
	return func() tea.Msg {
		if store == nil {
			return historyLoadedMsg{}
		}
		return historyLoadedMsg{Attempts: store.Recent(context.Background())}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

// CapturesEscape keeps Esc inside the clear-history prompt.
func (s *HistoryScreen) CapturesEscape() bool {
	return s.confirming
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	if s.confirming {
		return []layout.KeyHint{
			{Key: "Y", Description: "Clear history"},
			{Key: "N", Description: "Keep it"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "C", Description: "Clear"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.attempts = msg.Attempts
		s.stats = hist.Summarize(msg.Attempts)
		s.selected = 0
		s.expanded = make(map[int]bool)
		s.loaded = true
		return s, nil

	case historyClearedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, s.load()

	case tea.KeyMsg:
		if s.confirming {
			switch msg.String() {
			case "y", "Y":
				s.confirming = false
				return s, s.clear()
			case "n", "N", "esc":
				s.confirming = false
			}
			return s, nil
		}

		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		case "c", "C":
			if len(s.attempts) > 0 {
				s.confirming = true
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) clear() tea.Cmd {
	store := s.store
	return func() tea.Msg {
		if store == nil {
			return historyClearedMsg{}
		}
		return historyClearedMsg{Err: store.Clear(context.Background())}
	}
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.attempts) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No attempts yet. Finish a reading session to see it here.")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true),
		fmt.Sprintf("Attempts %d   Best %d%%   Average %d%%", s.stats.Count, s.stats.Best, s.stats.Average)))
	b.WriteString("\n\n")

	if s.confirming {
		b.WriteString(layout.Centered(width, theme.Incorrect, "Clear all past attempts? This cannot be undone. [Y/N]"))
		b.WriteString("\n\n")
	}

	for i, a := range s.attempts {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s%s  %d/%d  %3d%%  %s",
			prefix, a.CompletedAt.Local().Format("Jan 02, 2006 15:04"), a.Score, a.Total, a.Percentage, sess.Band(a.Percentage))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			id := a.SessionID
			if id == "" {
				id = "unknown"
			}
			detail := fmt.Sprintf("    session %s · %d correct, %d missed", id, a.Score, a.Total-a.Score)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}
