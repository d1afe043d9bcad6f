// Package format converts canonical weather values into display strings and
// semantic categories. Absent values always render as Unknown, never as zero.
package format

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/i474232898/weathervision/internal/weather"
)

// Unknown is the placeholder for an absent reading.
const Unknown = "—"

func Temp(v *float64, unit weather.Unit) string {
	if v == nil {
		return Unknown
	}
	suffix := "°C"
	if unit == weather.UnitImperial {
		suffix = "°F"
	}
	return strconv.Itoa(round(*v)) + suffix
}

func Wind(v *float64, unit weather.Unit) string {
	if v == nil {
		return Unknown
	}
	if unit == weather.UnitImperial {
		return fmt.Sprintf("%d mph", round(*v))
	}
	return fmt.Sprintf("%d m/s", round(*v))
}

// Km renders a distance in kilometres, switching to metres below 1 km.
func Km(v *float64) string {
	if v == nil {
		return Unknown
	}
	if *v < 1 {
		return fmt.Sprintf("%d m", round(*v*1000))
	}
	return fmt.Sprintf("%d km", round(*v))
}

// Pressure renders hPa as reported by the provider.
func Pressure(v *float64) string {
	if v == nil {
		return Unknown
	}
	return fmt.Sprintf("%d hPa", round(*v))
}

func Percent(v *float64) string {
	if v == nil {
		return Unknown
	}
	return fmt.Sprintf("%d%%", round(*v))
}

func UV(v *float64) string {
	if v == nil {
		return Unknown
	}
	return strconv.FormatFloat(math.Round(*v*10)/10, 'f', 1, 64)
}

// Clock renders the wall time in the value's own location.
func Clock(t time.Time) string {
	if t.IsZero() {
		return Unknown
	}
	return t.Format("15:04")
}

// DayLabel renders an ISO date as "Today", "Tomorrow" or "Mon 15 Jan",
// relative to today (also an ISO date).
func DayLabel(date, today string) string {
	d, err := time.Parse(weather.DateLayout, date)
	if err != nil {
		return date
	}
	if t, err := time.Parse(weather.DateLayout, today); err == nil {
		switch int(d.Sub(t).Hours() / 24) {
		case 0:
			return "Today"
		case 1:
			return "Tomorrow"
		}
	}
	return d.Format("Mon 2 Jan")
}

// ShortDay renders an ISO date as a weekday abbreviation.
func ShortDay(date string) string {
	d, err := time.Parse(weather.DateLayout, date)
	if err != nil {
		return date
	}
	return d.Format("Mon")
}

// AQILabel maps a US AQI value to its band name.
func AQILabel(index float64) string {
	switch {
	case index <= 50:
		return "Good"
	case index <= 100:
		return "Moderate"
	case index <= 150:
		return "Unhealthy for sensitive groups"
	case index <= 200:
		return "Unhealthy"
	case index <= 300:
		return "Very unhealthy"
	default:
		return "Hazardous"
	}
}

func round(v float64) int {
	r := int(math.Round(v))
	if r == 0 {
		return 0 // avoid "-0"
	}
	return r
}
