package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/i474232898/weathervision/internal/controller"
	"github.com/i474232898/weathervision/internal/format"
	"github.com/i474232898/weathervision/internal/weather"
)

const dashboardColumns = 3

// Favorites renders the numbered favorites list; the current place is marked.
func Favorites(v controller.View, s Styles) string {
	lines := []string{s.Title.Render("Favorites")}
	if len(v.Favorites) == 0 {
		lines = append(lines, s.Muted.Render("No favorites yet"))
	}
	for i, p := range v.Favorites {
		lines = append(lines, fmt.Sprintf("%s%d. %s", s.marker(weather.SamePlace(p, v.Place)), i+1, p.Title()))
	}
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Card renders one dashboard card in unit.
func Card(c controller.DashboardCard, unit weather.Unit, s Styles) string {
	lines := []string{s.Title.Render(c.Place.Title())}
	switch {
	case c.Current != nil:
		cur := c.Current
		lines = append(lines,
			s.Value.Render(format.Temp(cur.Temperature, unit)),
			s.icon(cur.WeatherCode, cur.IsDaytime)+format.WeatherText(cur.WeatherCode),
			s.row("Wind", format.Wind(cur.WindSpeed, unit)),
		)
	case c.Failed:
		lines = append(lines, s.Error.Render("Unavailable"))
	default:
		lines = append(lines, format.Unknown)
	}
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Dashboard lays the favorite cards out in rows. Each card settles on its
// own, so failed and pending cards sit next to filled ones.
func Dashboard(v controller.View, s Styles) string {
	if len(v.Dashboard) == 0 {
		return s.Box.Render(s.Muted.Render("Add favorites to see them here."))
	}
	unit := v.DashboardUnit
	if unit == "" {
		unit = v.Unit
	}

	cards := make([]string, len(v.Dashboard))
	for i, c := range v.Dashboard {
		cards[i] = Card(c, unit, s)
	}
	if s.Plain {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}

	var rows []string
	for i := 0; i < len(cards); i += dashboardColumns {
		end := min(i+dashboardColumns, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
