package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/i474232898/weathervision/internal/format"
	"github.com/i474232898/weathervision/internal/weather"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	DefaultAirURL      = "https://air-quality-api.open-meteo.com/v1/air-quality"

	currentFields = "temperature_2m,relativehumidity_2m,apparent_temperature,windspeed_10m,weathercode,is_day,pressure_msl"
	hourlyFields  = "temperature_2m,relativehumidity_2m,apparent_temperature,precipitation_probability,dewpoint_2m,windspeed_10m,weathercode,is_day,visibility"
	dailyFields   = "weathercode,temperature_2m_max,temperature_2m_min,precipitation_sum,precipitation_probability_max,sunrise,sunset,uv_index_max"
)

// OpenMeteoConfig configures the Open-Meteo client. Zero values fall back to
// the public endpoints and a ten day horizon.
type OpenMeteoConfig struct {
	ForecastURL  string
	AirURL       string
	ForecastDays int
	HTTP         HTTPClientConfig
}

// OpenMeteoProvider implements weather.ForecastProvider and
// weather.AirQualityProvider for Open-Meteo.
type OpenMeteoProvider struct {
	name         string
	forecastURL  string
	airURL       string
	forecastDays int
	httpCfg      HTTPClientConfig
	circuit      *gobreaker.CircuitBreaker
	airCircuit   *gobreaker.CircuitBreaker
	log          *zap.Logger
}

func NewOpenMeteoProvider(cfg OpenMeteoConfig, log *zap.Logger) *OpenMeteoProvider {
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = DefaultForecastURL
	}
	if cfg.AirURL == "" {
		cfg.AirURL = DefaultAirURL
	}
	if cfg.ForecastDays < 7 || cfg.ForecastDays > 10 {
		cfg.ForecastDays = 10
	}
	if cfg.HTTP.Client == nil {
		cfg.HTTP.Client = http.DefaultClient
	}
	if cfg.HTTP.Backoff == (BackoffConfig{}) {
		cfg.HTTP.Backoff = DefaultBackoff
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &OpenMeteoProvider{
		name:         "openmeteo",
		forecastURL:  cfg.ForecastURL,
		airURL:       cfg.AirURL,
		forecastDays: cfg.ForecastDays,
		httpCfg:      cfg.HTTP,
		circuit:      newCircuit("openmeteo-forecast"),
		airCircuit:   newCircuit("openmeteo-air"),
		log:          log.Named("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, place weather.Place, unit weather.Unit) (weather.Snapshot, error) {
	values := p.baseParams(place, unit)
	values.Set("current", currentFields)
	values.Set("hourly", hourlyFields)
	values.Set("daily", dailyFields)
	values.Set("forecast_days", strconv.Itoa(p.forecastDays))

	var payload forecastPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.log, p.forecastURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Snapshot{}, err
	}
	return normalizeForecast(&payload)
}

func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, place weather.Place, unit weather.Unit) (weather.Current, error) {
	values := p.baseParams(place, unit)
	values.Set("current", currentFields)
	values.Set("forecast_days", "1")

	var payload forecastPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.log, p.forecastURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Current{}, err
	}
	return normalizeCurrent(&payload, payload.location())
}

// FetchAirQuality reads the first hourly US AQI value. Missing coverage
// returns nil without error.
func (p *OpenMeteoProvider) FetchAirQuality(ctx context.Context, place weather.Place) (*weather.AirQuality, error) {
	values := url.Values{}
	values.Set("latitude", coord(place.Latitude))
	values.Set("longitude", coord(place.Longitude))
	values.Set("timezone", place.TimezoneParam())
	values.Set("hourly", "us_aqi")

	var payload struct {
		Hourly *struct {
			USAQI []*float64 `json:"us_aqi"`
		} `json:"hourly"`
	}
	if err := getJSON(ctx, p.httpCfg, p.airCircuit, p.log, p.airURL+"?"+values.Encode(), &payload); err != nil {
		return nil, err
	}
	if payload.Hourly == nil {
		return nil, nil
	}
	idx := at(payload.Hourly.USAQI, 0)
	if idx == nil || *idx < 0 {
		return nil, nil
	}
	return &weather.AirQuality{Index: *idx, Label: format.AQILabel(*idx)}, nil
}

func (p *OpenMeteoProvider) baseParams(place weather.Place, unit weather.Unit) url.Values {
	values := url.Values{}
	values.Set("latitude", coord(place.Latitude))
	values.Set("longitude", coord(place.Longitude))
	values.Set("timezone", place.TimezoneParam())
	if unit == weather.UnitImperial {
		values.Set("temperature_unit", "fahrenheit")
		values.Set("wind_speed_unit", "mph")
	} else {
		values.Set("temperature_unit", "celsius")
		values.Set("wind_speed_unit", "ms")
	}
	return values
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
