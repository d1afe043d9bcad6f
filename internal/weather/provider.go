package weather

import (
	"context"
	"errors"
)

var (
	// ErrTransient covers network failures, non-success statuses, open
	// circuits and timeouts. Callers may retry.
	ErrTransient = errors.New("transient network error")

	// ErrMalformed is returned when a payload lacks the arrays required to
	// build a Snapshot. It is reported to users like ErrTransient.
	ErrMalformed = errors.New("malformed provider response")

	// ErrUnsupported is returned when a capability (e.g. geolocation) is absent.
	ErrUnsupported = errors.New("capability not supported")
)

// ForecastProvider abstracts the forecast data source (Open-Meteo).
type ForecastProvider interface {
	Name() string
	FetchForecast(ctx context.Context, place Place, unit Unit) (Snapshot, error)
	// FetchCurrent is the lightweight current-only fetch used by dashboard cards.
	FetchCurrent(ctx context.Context, place Place, unit Unit) (Current, error)
}

// AirQualityProvider returns nil, nil when the region has no coverage.
type AirQualityProvider interface {
	FetchAirQuality(ctx context.Context, place Place) (*AirQuality, error)
}

// Geocoder resolves free text to ranked places.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]Place, error)
	ResolveOne(ctx context.Context, query string) (Place, error)
}

// ReverseGeocoder names a coordinate.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (Place, error)
}

// Locator reports the device position. Implementations return ErrUnsupported
// when no position source exists.
type Locator interface {
	Locate(ctx context.Context) (lat, lon float64, err error)
}
