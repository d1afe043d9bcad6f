// Package geocode resolves free text to places and coordinates to names.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/i474232898/weathervision/internal/weather"
	"golang.org/x/time/rate"
)

// MaxResults caps a search.
const MaxResults = 10

// FallbackName names a coordinate that no provider could resolve.
const FallbackName = "My location"

// ErrNotFound is returned by ResolveOne when a query matches nothing.
var ErrNotFound = errors.New("place not found")

// Error is a transport or status failure. It matches weather.ErrTransient.
type Error struct {
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("geocode %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("geocode %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{weather.ErrTransient}
	}
	return []error{weather.ErrTransient, e.Err}
}

// Options configures the HTTP geocoders.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RPS       float64
	UserAgent string
}

func newRestyClient(o Options) *resty.Client {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.UserAgent == "" {
		o.UserAgent = "weathervision/1.0"
	}
	return resty.New().
		SetBaseURL(o.BaseURL).
		SetHeader("User-Agent", o.UserAgent).
		SetHeader("Accept", "application/json").
		SetTimeout(o.Timeout)
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Home is a weather.Locator that reports a configured coordinate.
type Home struct {
	Lat, Lon float64
}

func (h Home) Locate(context.Context) (float64, float64, error) {
	return h.Lat, h.Lon, nil
}
