package controller

import (
	"fmt"
	"math"

	"github.com/i474232898/weathervision/internal/common"
	"github.com/i474232898/weathervision/internal/format"
	"github.com/i474232898/weathervision/internal/weather"
)

const (
	confidenceHours = 12
	rainAlertPct    = 65
	rainExplainPct  = 60
	humidPct        = 75
)

// Insights are derived summaries of the selected day.
type Insights struct {
	Confidence    int     `json:"confidence"`
	HasConfidence bool    `json:"hasConfidence"`
	Alerts        []Alert `json:"alerts"`
	Explanation   Explain `json:"explanation"`
}

// AlertKind names an advisory.
type AlertKind string

const (
	AlertRain  AlertKind = "rain"
	AlertWind  AlertKind = "wind"
	AlertStorm AlertKind = "storm"
)

type Alert struct {
	Kind    AlertKind `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
}

type Explain struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Comparison is a side-by-side of two days.
type Comparison struct {
	A, B weather.Day
	Rows []ComparisonRow
}

type ComparisonRow struct {
	Label string
	A, B  string
}

func windAlertThreshold(u weather.Unit) float64 {
	if u == weather.UnitImperial {
		return 22
	}
	return 10
}

func windyThreshold(u weather.Unit) float64 {
	if u == weather.UnitImperial {
		return 18
	}
	return 8
}

// Confidence is a placeholder score in [35, 98] from the first twelve hours
// of a day: higher average precipitation probability and stronger peak wind
// lower it. Absent values count as zero. It reports false for no hours.
func Confidence(hours []weather.Hour, u weather.Unit) (int, bool) {
	if len(hours) == 0 {
		return 0, false
	}
	if len(hours) > confidenceHours {
		hours = hours[:confidenceHours]
	}
	var popSum, maxWind float64
	for _, h := range hours {
		if h.PrecipitationProbability != nil {
			popSum += *h.PrecipitationProbability
		}
		if h.WindSpeed != nil && *h.WindSpeed > maxWind {
			maxWind = *h.WindSpeed
		}
	}
	avgPop := popSum / float64(len(hours))
	windFactor := 2.2
	if u == weather.UnitImperial {
		windFactor = 1.3
	}
	score := 92 - avgPop*0.55 - maxWind*windFactor
	return int(common.Clamp(math.Round(score), 35, 98)), true
}

// Alerts lists advisories for a day's hours and the current conditions.
func Alerts(hours []weather.Hour, cur weather.Current, u weather.Unit) []Alert {
	var out []Alert
	for _, h := range hours {
		if h.PrecipitationProbability != nil && *h.PrecipitationProbability >= rainAlertPct {
			out = append(out, Alert{
				Kind:    AlertRain,
				Title:   "Precipitation likely",
				Message: fmt.Sprintf("Around %s the chance is ~%s.", format.Clock(h.Time), format.Percent(h.PrecipitationProbability)),
			})
			break
		}
	}

	var maxWind float64
	for _, h := range hours {
		if h.WindSpeed != nil && *h.WindSpeed > maxWind {
			maxWind = *h.WindSpeed
		}
	}
	if maxWind >= windAlertThreshold(u) {
		out = append(out, Alert{
			Kind:    AlertWind,
			Title:   "Strong wind",
			Message: "Gusts up to " + format.Wind(&maxWind, u) + ".",
		})
	}

	if format.IsStorm(cur.WeatherCode) {
		out = append(out, Alert{
			Kind:    AlertStorm,
			Title:   "Thunderstorm",
			Message: "Avoid open spaces and water.",
		})
	}
	return out
}

// Explanation summarises the current conditions using the first hour of
// the selected day for precipitation.
func Explanation(cur weather.Current, hours []weather.Hour, u weather.Unit) Explain {
	var pop *float64
	if len(hours) > 0 {
		pop = hours[0].PrecipitationProbability
	}
	windy := cur.WindSpeed != nil && *cur.WindSpeed >= windyThreshold(u)
	humid := cur.Humidity != nil && *cur.Humidity >= humidPct
	isFog := format.CategoryOf(cur.WeatherCode) == format.CategoryFog

	switch {
	case pop != nil && *pop >= rainExplainPct:
		return Explain{Title: "High chance of precipitation", Text: "The chance in the next hour is about " + format.Percent(pop) + "."}
	case isFog || (humid && (pop == nil || *pop < 40)):
		return Explain{Title: "Humid or foggy", Text: "High humidity often brings haze or fog."}
	case windy:
		return Explain{Title: "Windy", Text: "Wind changes how the temperature feels and brings weather fronts."}
	default:
		return Explain{Title: format.WeatherText(cur.WeatherCode), Text: "Based on the current conditions and the next hours."}
	}
}

// Compare builds a two-day comparison. Missing dates fall back to the first
// day of the snapshot.
func Compare(s weather.Snapshot, dateA, dateB string, u weather.Unit) (Comparison, bool) {
	if len(s.Daily) == 0 {
		return Comparison{}, false
	}
	a, _ := s.DayByDate(dateA)
	b, _ := s.DayByDate(dateB)
	minMax := func(d weather.Day) string {
		return format.Temp(d.TempMax, u) + " / " + format.Temp(d.TempMin, u)
	}
	precip := func(d weather.Day) string {
		if d.PrecipitationSum == nil {
			return format.Unknown
		}
		return fmt.Sprintf("%d mm", int(math.Round(*d.PrecipitationSum)))
	}
	return Comparison{
		A: a,
		B: b,
		Rows: []ComparisonRow{
			{Label: "High / low", A: minMax(a), B: minMax(b)},
			{Label: "Precipitation", A: precip(a), B: precip(b)},
			{Label: "Chance of precipitation", A: format.Percent(a.PrecipitationProbabilityMax), B: format.Percent(b.PrecipitationProbabilityMax)},
			{Label: "UV index", A: format.UV(a.UVMax), B: format.UV(b.UVMax)},
		},
	}, true
}

func buildInsights(s *weather.Snapshot, day string, u weather.Unit) *Insights {
	if s == nil {
		return nil
	}
	hours := s.HoursOn(day)
	score, ok := Confidence(hours, u)
	return &Insights{
		Confidence:    score,
		HasConfidence: ok,
		Alerts:        Alerts(hours, s.Current, u),
		Explanation:   Explanation(s.Current, hours, u),
	}
}
