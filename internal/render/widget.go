package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/i474232898/weathervision/internal/controller"
	"github.com/i474232898/weathervision/internal/format"
	"github.com/i474232898/weathervision/internal/weather"
)

// WidgetHours is how far ahead the widget looks.
const WidgetHours = 12

// NextHours returns up to n hourly rows starting at the observation hour.
func NextHours(s weather.Snapshot, n int) []weather.Hour {
	obs := s.Current.ObservedAt
	from := time.Date(obs.Year(), obs.Month(), obs.Day(), obs.Hour(), 0, 0, 0, obs.Location())
	var out []weather.Hour
	for _, h := range s.Hourly {
		if h.Time.Before(from) {
			continue
		}
		out = append(out, h)
		if len(out) == n {
			break
		}
	}
	return out
}

// Widget renders the one-line summary: current temperature and conditions
// plus the range and peak precipitation chance of the next hours.
func Widget(v controller.View, s Styles) string {
	if v.Blocked() {
		return s.Warn.Render("Offline, no saved forecast")
	}
	if v.Snapshot == nil {
		return v.Place.Name + " " + format.Unknown
	}
	u := v.DisplayUnit
	cur := v.Snapshot.Current

	parts := []string{
		s.Title.Render(v.Place.Name) + " " + s.Value.Render(format.Temp(cur.Temperature, u)) + " " +
			s.icon(cur.WeatherCode, cur.IsDaytime) + format.WeatherText(cur.WeatherCode),
	}

	lo, hi, pop := math.Inf(1), math.Inf(-1), math.Inf(-1)
	for _, h := range NextHours(*v.Snapshot, WidgetHours) {
		if h.Temperature != nil {
			lo = math.Min(lo, *h.Temperature)
			hi = math.Max(hi, *h.Temperature)
		}
		if h.PrecipitationProbability != nil {
			pop = math.Max(pop, *h.PrecipitationProbability)
		}
	}
	if !math.IsInf(lo, 0) {
		parts = append(parts, fmt.Sprintf("next %dh %s to %s", WidgetHours, format.Temp(&lo, u), format.Temp(&hi, u)))
	}
	if !math.IsInf(pop, 0) {
		parts = append(parts, "precipitation "+format.Percent(&pop))
	}

	switch {
	case v.ShowingSaved:
		parts = append(parts, s.Warn.Render("offline, saved "+format.Clock(v.SavedAt)))
	case v.Offline:
		parts = append(parts, s.Warn.Render("offline"))
	}
	return strings.Join(parts, " · ")
}
