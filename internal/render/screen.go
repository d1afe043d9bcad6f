package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/i474232898/weathervision/internal/controller"
)

var tabs = []controller.Tab{
	controller.TabForecast,
	controller.TabHourly,
	controller.TabDaily,
	controller.TabDashboard,
	controller.TabMap,
}

// Tabs returns the tab order.
func Tabs() []controller.Tab {
	return append([]controller.Tab(nil), tabs...)
}

// Terminal composes the panels of the active tab into one screen.
type Terminal struct {
	// Map, if set, supplies the map tab. Without it the tab shows the
	// coordinates of the current place.
	Map *Map
}

// StylesFor picks the styles matching the view's theme and accessibility flag.
func StylesFor(v controller.View) Styles {
	return NewStyles(v.Theme, v.Flags.A11y)
}

func tabBar(active controller.Tab, s Styles) string {
	parts := make([]string, len(tabs))
	for i, t := range tabs {
		name := fmt.Sprintf("%d %s", i+1, t)
		if t == active {
			if s.Plain {
				name = "[" + name + "]"
			} else {
				name = s.Accent.Render(name)
			}
		} else {
			name = s.Muted.Render(name)
		}
		parts[i] = name
	}
	return strings.Join(parts, "  ")
}

func (t Terminal) mapPanel(v controller.View, s Styles) string {
	if t.Map != nil {
		mv, err := t.Map.View()
		switch {
		case err != nil && mv == nil:
			return s.Box.Render(s.Error.Render("Map unavailable: " + err.Error()))
		case mv != nil:
			if str, ok := mv.(fmt.Stringer); ok {
				return s.Box.Render(str.String())
			}
		}
	}
	return s.Box.Render(fmt.Sprintf("%s\n%.4f, %.4f", s.Title.Render(v.Place.Title()), v.Place.Latitude, v.Place.Longitude))
}

// Screen renders v. A blocking notice replaces every panel.
func (t Terminal) Screen(v controller.View) string {
	s := StylesFor(v)
	sections := []string{tabBar(v.Tab, s)}

	if v.Blocked() {
		sections = append(sections, "", Notice(v.Notice, s), s.Muted.Render("Press r to retry."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	switch v.Tab {
	case controller.TabHourly:
		sections = append(sections, Hourly(v, s))
	case controller.TabDaily:
		sections = append(sections, Daily(v, s))
	case controller.TabDashboard:
		sections = append(sections, Dashboard(v, s), Favorites(v, s))
	case controller.TabMap:
		sections = append(sections, t.mapPanel(v, s))
	default:
		sections = append(sections, Current(v, s), Widget(v, s))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
