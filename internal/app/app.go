package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/logger"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/router"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/screen"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/screens/home"
	sessionscreen "github.com/Oiubrab/edaccelerator-learning-assessment/internal/screens/session"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/screens/welcome"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Deps sessionscreen.Deps
	// SkipSplash opens the home screen directly.
	SkipSplash bool
	// StartReading pushes a reading session on top of home at launch.
	StartReading bool
	Log          *logger.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	log    *logger.Logger
	start  tea.Cmd
	width  int
	height int
}

// newAppModel creates a new AppModel starting at the splash or home screen.
func newAppModel(opts Options) AppModel {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}

	homeFactory := func() screen.Screen { return home.New(opts.Deps) }

	var first screen.Screen
	var start tea.Cmd
	switch {
	case opts.StartReading:
		first = homeFactory()
		reading := sessionscreen.New(opts.Deps)
		start = func() tea.Msg { return router.PushScreenMsg{Screen: reading} }
	case opts.SkipSplash || opts.Deps.Passage == nil:
		first = homeFactory()
	default:
		first = welcome.New(opts.Deps.Passage.Title, homeFactory)
	}

	return AppModel{
		router: router.New(first),
		log:    log,
		start:  start,
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Active().Init(), m.start)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.log.Debug("quit requested")
			return m, tea.Quit
		case "esc":
			if c, ok := m.router.Active().(screen.EscapeCapturer); ok && c.CapturesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if frame := m.render(); frame != "" {
		v.SetContent(frame)
	}
	return v
}

// render draws header, active screen and footer for the current size.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if kp, ok := active.(screen.KeyHintProvider); ok {
		if hints := kp.KeyHints(); len(hints) > 0 {
			return hints
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
