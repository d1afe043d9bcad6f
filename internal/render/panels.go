package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/i474232898/weathervision/internal/controller"
	"github.com/i474232898/weathervision/internal/format"
	"github.com/i474232898/weathervision/internal/weather"
)

// Notice renders n, or nothing for nil.
func Notice(n *controller.Notice, s Styles) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case controller.NoticeError:
		return s.Error.Render("! " + n.Message)
	case controller.NoticeOffline:
		return s.Warn.Render("Offline: " + n.Message)
	default:
		return s.Muted.Render(n.Message)
	}
}

// Status describes freshness: refreshing, offline, or saved data.
func Status(v controller.View, s Styles) string {
	var parts []string
	if v.Refreshing {
		parts = append(parts, "Updating…")
	}
	switch {
	case v.ShowingSaved:
		parts = append(parts, "Offline, saved "+v.SavedAt.Format("Mon 15:04"))
	case v.Offline:
		parts = append(parts, "Offline")
	}
	if len(parts) == 0 {
		return ""
	}
	return s.Warn.Render(strings.Join(parts, " · "))
}

func airQuality(aq *weather.AirQuality) string {
	if aq == nil {
		return format.Unknown
	}
	return fmt.Sprintf("%d %s", int(math.Round(aq.Index)), aq.Label)
}

// Current renders the current-conditions panel. Before the first fetch for
// a place or unit settles every value shows as unknown.
func Current(v controller.View, s Styles) string {
	if v.Blocked() {
		return Notice(v.Notice, s)
	}

	var cur weather.Current
	if v.Snapshot != nil {
		cur = v.Snapshot.Current
	}
	u := v.DisplayUnit

	title := v.Place.Title()
	if v.IsFavorite {
		if s.Plain {
			title += " (favorite)"
		} else {
			title += " ★"
		}
	}

	lines := []string{s.Title.Render(title)}
	if st := Status(v, s); st != "" {
		lines = append(lines, st)
	}
	if n := Notice(v.Notice, s); n != "" && v.Notice.Kind != controller.NoticeOffline {
		lines = append(lines, n)
	}
	lines = append(lines,
		s.Value.Render(format.Temp(cur.Temperature, u))+"  "+s.icon(cur.WeatherCode, cur.IsDaytime)+format.WeatherText(cur.WeatherCode),
		s.row("Feels like", format.Temp(cur.ApparentTemperature, u)),
		s.row("Humidity", format.Percent(cur.Humidity)),
		s.row("Wind", format.Wind(cur.WindSpeed, u)),
		s.row("Pressure", format.Pressure(cur.Pressure)),
		s.row("Visibility", format.Km(cur.VisibilityKm)),
		s.row("UV index", format.UV(cur.UVIndex)),
		s.row("Air quality", airQuality(v.AirQuality)),
		s.Muted.Render("Observed "+format.Clock(cur.ObservedAt)),
	)
	if v.Insights != nil {
		for _, a := range v.Insights.Alerts {
			lines = append(lines, s.Warn.Render(a.Title+": ")+a.Message)
		}
	}
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws one rune per value scaled between the series min and max.
// Absent values are blanks.
func Sparkline(values []*float64) string {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if v == nil {
			continue
		}
		lo = math.Min(lo, *v)
		hi = math.Max(hi, *v)
	}

	var b strings.Builder
	for _, v := range values {
		switch {
		case v == nil:
			b.WriteRune(' ')
		case hi == lo:
			b.WriteRune(sparkRunes[len(sparkRunes)/2])
		default:
			i := int(math.Round((*v - lo) / (hi - lo) * float64(len(sparkRunes)-1)))
			b.WriteRune(sparkRunes[i])
		}
	}
	return b.String()
}

// Hourly renders the selected day's timeline: a temperature chart with the
// selected hour marked, then one row per hour.
func Hourly(v controller.View, s Styles) string {
	if v.Blocked() {
		return ""
	}
	hours := v.Hours()
	if len(hours) == 0 {
		return s.Box.Render(s.Muted.Render("Hourly: " + format.Unknown))
	}
	u := v.DisplayUnit
	today := v.Snapshot.Current.Day()

	lines := []string{s.Title.Render("Hourly · " + format.DayLabel(v.SelectedDay, today))}
	if !s.Plain {
		temps := make([]*float64, len(hours))
		for i, h := range hours {
			temps[i] = h.Temperature
		}
		lines = append(lines, s.Accent.Render(Sparkline(temps)))
		if v.SelectedHour >= 0 {
			lines = append(lines, strings.Repeat(" ", v.SelectedHour)+"^")
		}
	}

	for i, h := range hours {
		lines = append(lines, fmt.Sprintf("%s%s  %s%-5s %-5s %s",
			s.marker(i == v.SelectedHour),
			format.Clock(h.Time),
			s.icon(h.WeatherCode, h.IsDaytime),
			format.Temp(h.Temperature, u),
			format.Percent(h.PrecipitationProbability),
			format.Wind(h.WindSpeed, u),
		))
	}

	if h, ok := v.Hour(); ok {
		lines = append(lines, "",
			s.Value.Render(format.Clock(h.Time)+" "+format.WeatherText(h.WeatherCode)),
			s.row("Feels like", format.Temp(h.ApparentTemperature, u)),
			s.row("Humidity", format.Percent(h.Humidity)),
			s.row("Dew point", format.Temp(h.DewPoint, u)),
			s.row("Visibility", format.Km(h.VisibilityKm)),
		)
	}
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Daily renders one row per forecast day, the selected day marked, followed
// by the selected day's confidence and summary.
func Daily(v controller.View, s Styles) string {
	if v.Blocked() {
		return ""
	}
	if v.Snapshot == nil {
		return s.Box.Render(s.Muted.Render("Daily: " + format.Unknown))
	}
	u := v.DisplayUnit
	today := v.Snapshot.Current.Day()

	lines := []string{s.Title.Render("Next days")}
	for _, d := range v.Snapshot.Daily {
		lines = append(lines, fmt.Sprintf("%s%-10s %s%s / %s  %s",
			s.marker(d.Date == v.SelectedDay),
			format.DayLabel(d.Date, today),
			s.icon(d.WeatherCode, true),
			format.Temp(d.TempMax, u),
			format.Temp(d.TempMin, u),
			format.Percent(d.PrecipitationProbabilityMax),
		))
	}

	if in := v.Insights; in != nil {
		lines = append(lines, "")
		if in.HasConfidence {
			lines = append(lines, s.row("Forecast confidence", fmt.Sprintf("%d%%", in.Confidence)))
		}
		lines = append(lines, s.Value.Render(in.Explanation.Title), s.Muted.Render(in.Explanation.Text))
	}
	return s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
