package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/i474232898/weathervision/internal/controller"
	"github.com/i474232898/weathervision/internal/format"
)

// ExplainModal renders the "why this weather" dialog for the selected day.
func ExplainModal(v controller.View, s Styles) string {
	if v.Insights == nil {
		return s.Box.Render(s.Muted.Render("No forecast loaded yet."))
	}
	in := v.Insights
	lines := []string{s.Title.Render(in.Explanation.Title), in.Explanation.Text}
	if in.HasConfidence {
		lines = append(lines, "", s.row("Forecast confidence", fmt.Sprintf("%d%%", in.Confidence)))
	}
	if len(in.Alerts) > 0 {
		lines = append(lines, "")
		for _, a := range in.Alerts {
			lines = append(lines, s.Warn.Render(a.Title+": ")+a.Message)
		}
	}
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// CompareModal renders a two-day comparison table. today labels the columns.
func CompareModal(c controller.Comparison, today string, s Styles) string {
	a, b := format.DayLabel(c.A.Date, today), format.DayLabel(c.B.Date, today)
	width := 0
	for _, r := range c.Rows {
		width = max(width, len(r.Label))
	}

	lines := []string{s.Title.Render(fmt.Sprintf("%-*s  %-12s %s", width, "", a, b))}
	for _, r := range c.Rows {
		lines = append(lines, fmt.Sprintf("%s  %-12s %s", s.Label.Render(fmt.Sprintf("%-*s", width, r.Label)), r.A, r.B))
	}
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
