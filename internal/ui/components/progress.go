package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/speedlearn/internal/ui/theme"
)

// Meter is a labelled horizontal bar for a 0-1 value such as difficulty
// or engagement.
type Meter struct {
	Label       string
	Value       float64
	ShowPercent bool
	Width       int
}

// NewMeter creates a meter.
func NewMeter(label string, value float64, showPercent bool, width int) Meter {
	return Meter{
		Label:       label,
		Value:       value,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the meter with th's progress styles. Plain themes draw the
// bar with '#' and '.' since they have no background colours.
func (m Meter) View(th theme.Theme) string {
	var b strings.Builder

	if m.Label != "" {
		b.WriteString(th.Label.Render(m.Label) + "  ")
	}

	labelWidth := lipgloss.Width(b.String())
	percentWidth := 0
	if m.ShowPercent {
		percentWidth = 6 // "  100%"
	}

	barWidth := max(m.Width-labelWidth-percentWidth, 4)
	filled := min(max(int(float64(barWidth)*m.Value), 0), barWidth)
	empty := barWidth - filled

	fill, gap := " ", " "
	if th.Plain {
		fill, gap = "#", "."
	}
	b.WriteString(th.ProgressFilled.Render(strings.Repeat(fill, filled)))
	b.WriteString(th.ProgressEmpty.Render(strings.Repeat(gap, empty)))

	if m.ShowPercent {
		b.WriteString(th.Subtitle.Render(fmt.Sprintf("  %d%%", int(m.Value*100))))
	}
	return b.String()
}
