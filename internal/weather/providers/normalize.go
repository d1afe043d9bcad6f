package providers

import (
	"fmt"
	"math"
	"time"

	"github.com/i474232898/weathervision/internal/weather"
)

const (
	localTimeLayout = "2006-01-02T15:04"
	maxHourlyRows   = 24 * 16
)

// forecastPayload mirrors the Open-Meteo forecast response. Numeric arrays
// decode null entries to nil.
type forecastPayload struct {
	UTCOffsetSeconds     int    `json:"utc_offset_seconds"`
	Timezone             string `json:"timezone"`
	TimezoneAbbreviation string `json:"timezone_abbreviation"`

	Current *struct {
		Time                string   `json:"time"`
		Temperature         *float64 `json:"temperature_2m"`
		RelativeHumidity    *float64 `json:"relativehumidity_2m"`
		ApparentTemperature *float64 `json:"apparent_temperature"`
		WindSpeed           *float64 `json:"windspeed_10m"`
		WeatherCode         *float64 `json:"weathercode"`
		IsDay               *float64 `json:"is_day"`
		PressureMSL         *float64 `json:"pressure_msl"`
	} `json:"current"`

	Hourly *struct {
		Time                     []string   `json:"time"`
		Temperature              []*float64 `json:"temperature_2m"`
		RelativeHumidity         []*float64 `json:"relativehumidity_2m"`
		ApparentTemperature      []*float64 `json:"apparent_temperature"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
		DewPoint                 []*float64 `json:"dewpoint_2m"`
		WindSpeed                []*float64 `json:"windspeed_10m"`
		WeatherCode              []*float64 `json:"weathercode"`
		IsDay                    []*float64 `json:"is_day"`
		Visibility               []*float64 `json:"visibility"`
	} `json:"hourly"`

	Daily *struct {
		Time                        []string   `json:"time"`
		WeatherCode                 []*float64 `json:"weathercode"`
		TempMax                     []*float64 `json:"temperature_2m_max"`
		TempMin                     []*float64 `json:"temperature_2m_min"`
		PrecipitationSum            []*float64 `json:"precipitation_sum"`
		PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
		Sunrise                     []string   `json:"sunrise"`
		Sunset                      []string   `json:"sunset"`
		UVIndexMax                  []*float64 `json:"uv_index_max"`
	} `json:"daily"`
}

func (p *forecastPayload) location() *time.Location {
	name := p.TimezoneAbbreviation
	if name == "" {
		name = p.Timezone
	}
	if name == "" {
		name = "UTC"
	}
	return time.FixedZone(name, p.UTCOffsetSeconds)
}

// normalizeForecast zips the parallel arrays of p into the row-oriented
// canonical model. It reads p without modifying it, so repeated calls on the
// same payload return equal snapshots.
func normalizeForecast(p *forecastPayload) (weather.Snapshot, error) {
	if p == nil || p.Current == nil || p.Hourly == nil || p.Daily == nil {
		return weather.Snapshot{}, fmt.Errorf("%w: missing current, hourly or daily block", weather.ErrMalformed)
	}
	if len(p.Hourly.Time) == 0 || len(p.Daily.Time) == 0 {
		return weather.Snapshot{}, fmt.Errorf("%w: empty time axis", weather.ErrMalformed)
	}

	loc := p.location()
	current, err := normalizeCurrent(p, loc)
	if err != nil {
		return weather.Snapshot{}, err
	}

	h := p.Hourly
	hourly := make([]weather.Hour, 0, min(len(h.Time), maxHourlyRows))
	for i, raw := range h.Time {
		if len(hourly) == maxHourlyRows {
			break
		}
		ts, err := time.ParseInLocation(localTimeLayout, raw, loc)
		if err != nil {
			continue
		}
		hourly = append(hourly, weather.Hour{
			Time:                     ts,
			Temperature:              at(h.Temperature, i),
			Humidity:                 at(h.RelativeHumidity, i),
			ApparentTemperature:      at(h.ApparentTemperature, i),
			PrecipitationProbability: at(h.PrecipitationProbability, i),
			DewPoint:                 at(h.DewPoint, i),
			WindSpeed:                at(h.WindSpeed, i),
			WeatherCode:              code(at(h.WeatherCode, i)),
			IsDaytime:                flag(at(h.IsDay, i)),
			VisibilityKm:             km(at(h.Visibility, i)),
		})
	}

	d := p.Daily
	daily := make([]weather.Day, 0, len(d.Time))
	for i, raw := range d.Time {
		if _, err := time.ParseInLocation(weather.DateLayout, raw, loc); err != nil {
			continue
		}
		daily = append(daily, weather.Day{
			Date:                        raw,
			WeatherCode:                 code(at(d.WeatherCode, i)),
			TempMax:                     at(d.TempMax, i),
			TempMin:                     at(d.TempMin, i),
			PrecipitationSum:            at(d.PrecipitationSum, i),
			PrecipitationProbabilityMax: at(d.PrecipitationProbabilityMax, i),
			Sunrise:                     clock(d.Sunrise, i, loc),
			Sunset:                      clock(d.Sunset, i, loc),
			UVMax:                       at(d.UVIndexMax, i),
		})
	}

	if len(hourly) == 0 || len(daily) == 0 {
		return weather.Snapshot{}, fmt.Errorf("%w: no parseable rows", weather.ErrMalformed)
	}

	current.UVIndex = daily[0].UVMax
	observedHour := current.ObservedAt.Truncate(time.Hour)
	for _, row := range hourly {
		if row.Time.Equal(observedHour) {
			current.VisibilityKm = row.VisibilityKm
			break
		}
	}

	snap := weather.Snapshot{Current: current, Hourly: hourly, Daily: daily}
	if err := snap.Check(); err != nil {
		return weather.Snapshot{}, err
	}
	return snap, nil
}

// normalizeCurrent builds the current block. It is shared with the
// current-only fetch, which has no hourly or daily arrays.
func normalizeCurrent(p *forecastPayload, loc *time.Location) (weather.Current, error) {
	if p == nil || p.Current == nil {
		return weather.Current{}, fmt.Errorf("%w: missing current block", weather.ErrMalformed)
	}
	c := p.Current
	observed, err := time.ParseInLocation(localTimeLayout, c.Time, loc)
	if err != nil {
		return weather.Current{}, fmt.Errorf("%w: current time %q", weather.ErrMalformed, c.Time)
	}
	return weather.Current{
		ObservedAt:          observed,
		Temperature:         finite(c.Temperature),
		ApparentTemperature: finite(c.ApparentTemperature),
		Humidity:            finite(c.RelativeHumidity),
		WindSpeed:           finite(c.WindSpeed),
		WeatherCode:         code(finite(c.WeatherCode)),
		IsDaytime:           flag(finite(c.IsDay)),
		Pressure:            finite(c.PressureMSL),
	}, nil
}

func at(values []*float64, i int) *float64 {
	if i < 0 || i >= len(values) {
		return nil
	}
	return finite(values[i])
}

// finite copies v so the snapshot never aliases the payload.
func finite(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return weather.Float(*v)
}

func code(v *float64) *int {
	if v == nil {
		return nil
	}
	return weather.Int(int(math.Round(*v)))
}

// flag treats an absent is_day as night.
func flag(v *float64) bool {
	return v != nil && *v != 0
}

func km(metres *float64) *float64 {
	if metres == nil {
		return nil
	}
	return weather.Float(*metres / 1000)
}

func clock(values []string, i int, loc *time.Location) time.Time {
	if i >= len(values) {
		return time.Time{}
	}
	ts, err := time.ParseInLocation(localTimeLayout, values[i], loc)
	if err != nil {
		return time.Time{}
	}
	return ts
}
