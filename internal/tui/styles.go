package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	borderCol = lipgloss.Color("#243141")
)

// panelStyles binds the panel styles to a renderer so forced color
// profiles apply to the frame as well as to the map.
func panelStyles(r *lipgloss.Renderer) (border, title, subtitle lipgloss.Style) {
	border = r.NewStyle().Foreground(borderCol)
	title = r.NewStyle().Foreground(accentFg).Bold(true)
	subtitle = r.NewStyle().Foreground(baseDimFg)
	return border, title, subtitle
}

func spinnerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(accentFg)
}
