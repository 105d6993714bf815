package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/router"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/screen"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	bookEnd      = 400 * time.Millisecond
	bannerEnd    = 800 * time.Millisecond
	totalDur     = 2000 * time.Millisecond
)

const bookArt = `   __________   __________
  /          \ /          \
 |  ~~~~~~~~  |  ~~~~~~~~  |
 |  ~~~~~~~   |  ~~~~~~~~  |
 |  ~~~~~~~~  |  ~~~~~~    |
 |__________  |  __________|
            \_|_/`

type tickMsg time.Time

// WelcomeScreen shows a short splash and then hands over to the home
// screen. The passage title is typed out while the splash plays.
type WelcomeScreen struct {
	homeFactory  func() screen.Screen
	passageTitle string
	elapsed      time.Duration
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that will transition to the screen produced by homeFactory.
func New(passageTitle string, homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		homeFactory:  homeFactory,
		passageTitle: passageTitle,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.elapsed >= totalDur {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	homeScreen := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

// typed returns the part of the passage title revealed so far.
func (w *WelcomeScreen) typed() string {
	if w.elapsed < bannerEnd {
		return ""
	}
	runes := []rune(w.passageTitle)
	span := totalDur - bannerEnd
	n := len(runes) * int(w.elapsed-bannerEnd) / int(span)
	if n > len(runes) {
		n = len(runes)
	}
	return string(runes[:n])
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	if w.elapsed >= bookEnd {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Secondary).Render(bookArt))
	}

	if w.elapsed >= bannerEnd {
		sections = append(sections, "", RenderBanner(width), "")
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("Today's reading: "+w.typed()))
	}

	if w.elapsed >= totalDur {
		sections = append(sections, "", lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("press any key to continue"))
	}

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
