// Package render projects controller views onto text. Every function here
// reads a View and returns a string; the stateful renderers (soundscape,
// map) keep only their own output state.
package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/i474232898/weathervision/internal/format"
	"github.com/i474232898/weathervision/internal/prefs"
)

// Styles is the palette for one theme. Plain styles carry no colour and
// replace glyphs with words, for accessibility mode.
type Styles struct {
	Plain bool

	Title  lipgloss.Style
	Muted  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Accent lipgloss.Style
	Warn   lipgloss.Style
	Error  lipgloss.Style
	Box    lipgloss.Style
}

type palette struct {
	title, muted, label, accent, warn, err, border string
}

var (
	darkPalette = palette{
		title:  "#7DD3FC",
		muted:  "245",
		label:  "250",
		accent: "#A78BFA",
		warn:   "#FBBF24",
		err:    "#FF6B6B",
		border: "62",
	}
	lightPalette = palette{
		title:  "#0369A1",
		muted:  "240",
		label:  "236",
		accent: "#6D28D9",
		warn:   "#B45309",
		err:    "#B91C1C",
		border: "25",
	}
)

// NewStyles builds the styles for theme. a11y selects plain output.
func NewStyles(theme prefs.Theme, a11y bool) Styles {
	if a11y {
		plain := lipgloss.NewStyle()
		return Styles{
			Plain: true,
			Title: plain, Muted: plain, Label: plain, Value: plain,
			Accent: plain, Warn: plain, Error: plain,
			Box: plain.PaddingBottom(1),
		}
	}

	pick := func(light, dark string) lipgloss.TerminalColor {
		switch theme {
		case prefs.ThemeDark:
			return lipgloss.Color(dark)
		case prefs.ThemeLight:
			return lipgloss.Color(light)
		default:
			return lipgloss.AdaptiveColor{Light: light, Dark: dark}
		}
	}
	l, d := lightPalette, darkPalette

	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(pick(l.title, d.title)),
		Muted:  lipgloss.NewStyle().Foreground(pick(l.muted, d.muted)),
		Label:  lipgloss.NewStyle().Foreground(pick(l.label, d.label)),
		Value:  lipgloss.NewStyle().Bold(true),
		Accent: lipgloss.NewStyle().Foreground(pick(l.accent, d.accent)),
		Warn:   lipgloss.NewStyle().Bold(true).Foreground(pick(l.warn, d.warn)),
		Error:  lipgloss.NewStyle().Bold(true).Foreground(pick(l.err, d.err)),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(pick(l.border, d.border)).
			Padding(0, 1),
	}
}

// icon returns the glyph for a code followed by a space, or nothing in
// plain mode.
func (s Styles) icon(code *int, isDay bool) string {
	if s.Plain {
		return ""
	}
	return format.Icon(code, isDay) + " "
}

func (s Styles) marker(selected bool) string {
	switch {
	case !selected:
		return "  "
	case s.Plain:
		return "* "
	default:
		return s.Accent.Render("▶ ")
	}
}

func (s Styles) row(label, value string) string {
	return s.Label.Render(label+": ") + value
}
