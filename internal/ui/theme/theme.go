// Package theme turns a speed profile's UI knobs into lipgloss styles.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/speedlearn/internal/speed"
)

// Palette is one colour scheme.
type Palette struct {
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color
	Success   color.Color
	Error     color.Color
	Text      color.Color
	TextDim   color.Color
	Border    color.Color
}

// Palettes keyed by the "colors" UI knob.
var (
	// Soft blues and greens for the slower speeds.
	Calming = Palette{
		Primary:   lipgloss.Color("#60A5FA"), // Sky
		Secondary: lipgloss.Color("#6EE7B7"), // Mint
		Accent:    lipgloss.Color("#C4B5FD"), // Lavender
		Success:   lipgloss.Color("#86EFAC"),
		Error:     lipgloss.Color("#FDA4AF"),
		Text:      lipgloss.Color("#F1F5F9"),
		TextDim:   lipgloss.Color("#94A3B8"),
		Border:    lipgloss.Color("#475569"),
	}

	Vibrant = Palette{
		Primary:   lipgloss.Color("#8B5CF6"), // Vivid Purple
		Secondary: lipgloss.Color("#14B8A6"), // Teal
		Accent:    lipgloss.Color("#F97316"), // Orange
		Success:   lipgloss.Color("#22C55E"),
		Error:     lipgloss.Color("#F43F5E"),
		Text:      lipgloss.Color("#F8FAFC"),
		TextDim:   lipgloss.Color("#94A3B8"),
		Border:    lipgloss.Color("#334155"),
	}

	Professional = Palette{
		Primary:   lipgloss.Color("#6366F1"), // Indigo
		Secondary: lipgloss.Color("#64748B"), // Slate
		Accent:    lipgloss.Color("#0EA5E9"),
		Success:   lipgloss.Color("#16A34A"),
		Error:     lipgloss.Color("#DC2626"),
		Text:      lipgloss.Color("#E2E8F0"),
		TextDim:   lipgloss.Color("#94A3B8"),
		Border:    lipgloss.Color("#1E293B"),
	}
)

// PaletteFor returns the palette for a "colors" knob, Vibrant when unknown.
func PaletteFor(colors string) Palette {
	switch colors {
	case "calming":
		return Calming
	case "professional":
		return Professional
	}
	return Vibrant
}

// Theme is a resolved set of styles for one UI config.
type Theme struct {
	UI speed.UIConfig

	// Width is the text column width in cells.
	Width int

	// ParagraphGap is the number of blank lines between paragraphs.
	ParagraphGap int

	// Plain themes carry no colours or text attributes.
	Plain bool

	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Body      lipgloss.Style
	Hint      lipgloss.Style
	Label     lipgloss.Style
	Card      lipgloss.Style
	Correct   lipgloss.Style
	Incorrect lipgloss.Style
	Highlight lipgloss.Style

	ProgressFilled lipgloss.Style
	ProgressEmpty  lipgloss.Style
}

var columnWidths = map[string]int{
	"large":    60,
	"standard": 72,
	"compact":  88,
}

var paragraphGaps = map[string]int{
	"spacious":    2,
	"focused":     1,
	"balanced":    1,
	"dense":       0,
	"streamlined": 0,
}

var cardPadding = map[string]int{
	"spacious":    3,
	"focused":     2,
	"balanced":    2,
	"dense":       1,
	"streamlined": 1,
}

// For resolves ui into a Theme. A plain theme keeps layout but emits no
// colours or text attributes, for pipes and tests.
func For(ui speed.UIConfig, plain bool) Theme {
	width, ok := columnWidths[ui.FontSize]
	if !ok {
		width = columnWidths["standard"]
	}
	pad, ok := cardPadding[ui.Layout]
	if !ok {
		pad = 2
	}
	t := Theme{
		UI:           ui,
		Width:        width,
		ParagraphGap: paragraphGaps[ui.Layout],
		Plain:        plain,
	}

	base := lipgloss.NewStyle()
	t.Title = base
	t.Subtitle = base
	t.Body = base.Width(width)
	t.Hint = base.Width(width)
	t.Label = base
	t.Card = base.Border(lipgloss.RoundedBorder()).Padding(0, pad)
	t.Correct = base
	t.Incorrect = base
	t.Highlight = base
	t.ProgressFilled = base
	t.ProgressEmpty = base
	if plain {
		return t
	}

	p := PaletteFor(ui.Colors)
	t.Title = t.Title.Bold(true).Foreground(p.Primary)
	t.Subtitle = t.Subtitle.Foreground(p.TextDim)
	t.Body = t.Body.Foreground(p.Text)
	t.Hint = t.Hint.Foreground(p.TextDim).Italic(true)
	t.Label = t.Label.Foreground(p.Secondary).Bold(true)
	t.Card = t.Card.BorderForeground(p.Border)
	t.Correct = t.Correct.Foreground(p.Success).Bold(true)
	t.Incorrect = t.Incorrect.Foreground(p.Error).Bold(true)
	t.Highlight = t.Highlight.Foreground(p.Accent).Bold(true)
	t.ProgressFilled = t.ProgressFilled.Background(p.Secondary)
	t.ProgressEmpty = t.ProgressEmpty.Background(p.Border)
	return t
}

// ForSpeed resolves the default UI config of a speed.
func ForSpeed(s speed.Speed, plain bool) Theme {
	return For(speed.MustLookup(s).UI, plain)
}
