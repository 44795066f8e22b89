package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/skillgenie/skillgenie/internal/ui/theme"
)

// ProgressBar displays a horizontal bar filled to Percent (0.0-1.0).
type ProgressBar struct {
	Label   string
	Percent float64
	Width   int

	// Fill overrides the filled color.
	Fill lipgloss.Style
}

// NewProgressBar creates a progress bar with the default fill.
func NewProgressBar(label string, percent float64, width int) ProgressBar {
	return ProgressBar{
		Label:   label,
		Percent: percent,
		Width:   width,
		Fill:    lipgloss.NewStyle().Background(theme.Primary),
	}
}

// View renders the bar followed by the percentage.
func (p ProgressBar) View() string {
	var out string
	if p.Label != "" {
		out = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	barWidth := max(p.Width-lipgloss.Width(out)-6, 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)

	out += p.Fill.Render(strings.Repeat(" ", filled))
	out += lipgloss.NewStyle().Background(theme.Track).Render(strings.Repeat(" ", barWidth-filled))
	out += lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	return out
}
