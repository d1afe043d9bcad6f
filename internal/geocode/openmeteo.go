package geocode

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/i474232898/weathervision/internal/weather"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const DefaultSearchURL = "https://geocoding-api.open-meteo.com"

type searchResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

// OpenMeteo searches the Open-Meteo geocoding API. Results are not cached.
type OpenMeteo struct {
	client  *resty.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewOpenMeteo(o Options, log *zap.Logger) *OpenMeteo {
	if o.BaseURL == "" {
		o.BaseURL = DefaultSearchURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OpenMeteo{
		client:  newRestyClient(o),
		limiter: newLimiter(o.RPS),
		log:     log.Named("geocode"),
	}
}

// Search returns up to MaxResults places ranked by the provider. A blank
// query returns an empty slice without a request.
func (g *OpenMeteo) Search(ctx context.Context, query string) ([]weather.Place, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []weather.Place{}, nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, &Error{Op: "search", Err: err}
	}

	var out searchResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"name":     q,
			"count":    strconv.Itoa(MaxResults),
			"language": "en",
			"format":   "json",
		}).
		SetResult(&out).
		Get("/v1/search")
	if err != nil {
		return nil, &Error{Op: "search", Err: err}
	}
	if resp.IsError() {
		return nil, &Error{Op: "search", Status: resp.StatusCode()}
	}

	places := make([]weather.Place, 0, len(out.Results))
	for _, r := range out.Results {
		if len(places) == MaxResults {
			break
		}
		places = append(places, weather.Place{
			Name:      r.Name,
			Country:   r.Country,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Timezone:  r.Timezone,
		})
	}
	g.log.Debug("search", zap.String("query", q), zap.Int("results", len(places)))
	return places, nil
}

// ResolveOne returns the top search result or ErrNotFound.
func (g *OpenMeteo) ResolveOne(ctx context.Context, query string) (weather.Place, error) {
	return resolveFirst(ctx, g, query)
}

func resolveFirst(ctx context.Context, g weather.Geocoder, query string) (weather.Place, error) {
	places, err := g.Search(ctx, query)
	if err != nil {
		return weather.Place{}, err
	}
	if len(places) == 0 {
		return weather.Place{}, ErrNotFound
	}
	return places[0], nil
}
