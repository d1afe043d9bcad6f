package geocode

import (
	"context"
	"strings"
	"sync"

	"github.com/i474232898/weathervision/internal/common"
	"github.com/i474232898/weathervision/internal/weather"
	"github.com/kelvins/geocoder"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// googleMu guards the geocoder package's global API key.
var googleMu sync.Mutex

// Google geocodes through the Google Maps API. It is used when an API key is
// configured and implements both weather.Geocoder and weather.ReverseGeocoder.
type Google struct {
	apiKey  string
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewGoogle(apiKey string, rps float64, log *zap.Logger) *Google {
	if log == nil {
		log = zap.NewNop()
	}
	return &Google{apiKey: apiKey, limiter: newLimiter(rps), log: log.Named("google")}
}

// Search returns at most one place: the Google API resolves an address to a
// single coordinate.
func (g *Google) Search(ctx context.Context, query string) ([]weather.Place, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []weather.Place{}, nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, &Error{Op: "search", Err: err}
	}

	loc, err := withKey(ctx, g.apiKey, func() (geocoder.Location, error) {
		return geocoder.Geocoding(geocoder.Address{City: q})
	})
	if err != nil {
		return nil, &Error{Op: "search", Err: err}
	}
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return []weather.Place{}, nil
	}
	return []weather.Place{{Name: q, Latitude: loc.Latitude, Longitude: loc.Longitude}}, nil
}

func (g *Google) ResolveOne(ctx context.Context, query string) (weather.Place, error) {
	return resolveFirst(ctx, g, query)
}

func (g *Google) Reverse(ctx context.Context, lat, lon float64) (weather.Place, error) {
	addrs, err := withKey(ctx, g.apiKey, func() ([]geocoder.Address, error) {
		return geocoder.GeocodingReverse(geocoder.Location{Latitude: lat, Longitude: lon})
	})
	if err != nil {
		return weather.Place{}, &Error{Op: "reverse", Err: err}
	}
	p := weather.Place{Name: FallbackName, Latitude: lat, Longitude: lon}
	if len(addrs) > 0 {
		a := addrs[0]
		p.Name = common.FirstNonEmpty(a.City, a.County, a.State, a.FormattedAddress, FallbackName)
		p.Country = a.Country
	}
	return p, nil
}

// withKey runs fn with the package API key set. The library takes no
// context, so a cancelled ctx abandons the call rather than aborting it.
func withKey[T any](ctx context.Context, key string, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		googleMu.Lock()
		defer googleMu.Unlock()
		geocoder.ApiKey = key
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
