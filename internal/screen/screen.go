package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is an optional interface for screens that show a status
// string (score, progress) on the right of the header.
type StatusProvider interface {
	Status() string
}

// ResumedMsg is delivered to a screen when it becomes active again after
// the screen above it was popped.
type ResumedMsg struct{}

// EscapeCapturer is implemented by screens that use Esc themselves in some
// states, such as closing a confirmation prompt, instead of going back.
type EscapeCapturer interface {
	CapturesEscape() bool
}
