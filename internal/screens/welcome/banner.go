package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/ui/theme"
)

const bannerArt = `
 ┌─┐┌─┐┌┬┐┌─┐┬─┐┌─┐┬ ┬┌─┐┌┐┌┌┬┐
 │  │ ││││├─┘├┬┘├┤ ├─┤├┤ │││ ││
 └─┘└─┘┴ ┴┴  ┴└─└─┘┴ ┴└─┘┘└┘─┴┘`

const bannerCompact = "C O M P R E H E N D"

// RenderBanner returns the banner styled in the primary color. Uses a
// compact fallback for terminals narrower than 40 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 40 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
