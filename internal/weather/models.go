package weather

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the ISO date format used for daily rows and day selection.
const DateLayout = "2006-01-02"

// placeTolerance is the coordinate delta (degrees) under which two places are the same.
const placeTolerance = 1e-6

// Unit is the measurement system requested from the provider.
type Unit string

const (
	UnitMetric   Unit = "metric"
	UnitImperial Unit = "imperial"
)

// ParseUnit maps any value other than "imperial" to metric.
func ParseUnit(s string) Unit {
	if s == string(UnitImperial) {
		return UnitImperial
	}
	return UnitMetric
}

// Place is a geocoded location. Identity is defined by coordinates only;
// Name and Country are display-only.
type Place struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"lon" validate:"gte=-180,lte=180"`
	Timezone  string  `json:"tz,omitempty"`
}

// Title returns "Name, Country" or just the name.
func (p Place) Title() string {
	if p.Country == "" {
		return p.Name
	}
	return p.Name + ", " + p.Country
}

// TimezoneParam is the value sent to the provider: the hint or "auto".
func (p Place) TimezoneParam() string {
	if p.Timezone == "" {
		return "auto"
	}
	return p.Timezone
}

// SamePlace reports whether a and b denote the same coordinate.
func SamePlace(a, b Place) bool {
	return math.Abs(a.Latitude-b.Latitude) < placeTolerance &&
		math.Abs(a.Longitude-b.Longitude) < placeTolerance
}

// Current holds the conditions at observation time. Nil pointers mean the
// provider did not report a finite value.
type Current struct {
	ObservedAt          time.Time `json:"observedAt" validate:"required"`
	Temperature         *float64  `json:"temperature"`
	ApparentTemperature *float64  `json:"apparentTemperature"`
	Humidity            *float64  `json:"humidity"`
	WindSpeed           *float64  `json:"windSpeed"`
	WeatherCode         *int      `json:"weatherCode"`
	IsDaytime           bool      `json:"isDaytime"`
	Pressure            *float64  `json:"pressure,omitempty"`
	VisibilityKm        *float64  `json:"visibilityKm,omitempty"`
	UVIndex             *float64  `json:"uvIndex,omitempty"`
}

// Day returns the ISO date of the observation in the place's local time.
func (c Current) Day() string {
	if c.ObservedAt.IsZero() {
		return ""
	}
	return c.ObservedAt.Format(DateLayout)
}

// Hour is one hourly forecast row.
type Hour struct {
	Time                     time.Time `json:"time" validate:"required"`
	Temperature              *float64  `json:"temperature"`
	Humidity                 *float64  `json:"humidity"`
	ApparentTemperature      *float64  `json:"apparentTemperature"`
	PrecipitationProbability *float64  `json:"precipitationProbability"`
	DewPoint                 *float64  `json:"dewPoint"`
	WindSpeed                *float64  `json:"windSpeed"`
	WeatherCode              *int      `json:"weatherCode"`
	IsDaytime                bool      `json:"isDaytime"`
	VisibilityKm             *float64  `json:"visibilityKm,omitempty"`
}

// Day returns the ISO date of the row.
func (h Hour) Day() string {
	return h.Time.Format(DateLayout)
}

// Day is one daily forecast row. Date is an ISO date.
type Day struct {
	Date                        string    `json:"date" validate:"required,datetime=2006-01-02"`
	WeatherCode                 *int      `json:"weatherCode"`
	TempMax                     *float64  `json:"tempMax"`
	TempMin                     *float64  `json:"tempMin"`
	PrecipitationSum            *float64  `json:"precipitationSum"`
	PrecipitationProbabilityMax *float64  `json:"precipitationProbabilityMax"`
	Sunrise                     time.Time `json:"sunrise"`
	Sunset                      time.Time `json:"sunset"`
	UVMax                       *float64  `json:"uvMax"`
}

// Snapshot is the canonical, provider-independent forecast for one place and unit.
type Snapshot struct {
	Current Current `json:"current"`
	Hourly  []Hour  `json:"hourly" validate:"required,min=1,dive"`
	Daily   []Day   `json:"daily" validate:"required,min=1,dive"`
}

// Check enforces the ordering invariants of a snapshot: hourly and daily
// rows strictly ascending, and the observation day present in daily.
func (s Snapshot) Check() error {
	for i := 1; i < len(s.Hourly); i++ {
		if !s.Hourly[i].Time.After(s.Hourly[i-1].Time) {
			return fmt.Errorf("%w: hourly rows out of order at %d", ErrMalformed, i)
		}
	}
	for i := 1; i < len(s.Daily); i++ {
		if s.Daily[i].Date <= s.Daily[i-1].Date {
			return fmt.Errorf("%w: daily rows out of order at %d", ErrMalformed, i)
		}
	}
	if day := s.Current.Day(); !s.HasDay(day) {
		return fmt.Errorf("%w: observation day %s not in daily rows", ErrMalformed, day)
	}
	return nil
}

// HasDay reports whether date is present in the daily sequence.
func (s Snapshot) HasDay(date string) bool {
	for _, d := range s.Daily {
		if d.Date == date {
			return true
		}
	}
	return false
}

// DayByDate returns the daily row for date, falling back to the first row.
func (s Snapshot) DayByDate(date string) (Day, bool) {
	for _, d := range s.Daily {
		if d.Date == date {
			return d, true
		}
	}
	if len(s.Daily) > 0 {
		return s.Daily[0], false
	}
	return Day{}, false
}

// HoursOn returns at most 24 hourly rows falling on date.
func (s Snapshot) HoursOn(date string) []Hour {
	var out []Hour
	for _, h := range s.Hourly {
		if h.Day() != date {
			continue
		}
		out = append(out, h)
		if len(out) == 24 {
			break
		}
	}
	return out
}

// AirQuality is the current US AQI reading.
type AirQuality struct {
	Index float64 `json:"index" validate:"gte=0"`
	Label string  `json:"label"`
}

// Float returns a pointer to v, or nil if v is not finite.
func Float(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
