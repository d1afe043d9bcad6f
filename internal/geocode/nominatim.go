package geocode

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/i474232898/weathervision/internal/common"
	"github.com/i474232898/weathervision/internal/weather"
	"go.uber.org/zap"
)

const DefaultReverseURL = "https://nominatim.openstreetmap.org"

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		County  string `json:"county"`
		Country string `json:"country"`
	} `json:"address"`
}

// Nominatim names coordinates with OpenStreetMap's reverse geocoder.
type Nominatim struct {
	client *resty.Client
	log    *zap.Logger
}

func NewNominatim(o Options, log *zap.Logger) *Nominatim {
	if o.BaseURL == "" {
		o.BaseURL = DefaultReverseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Nominatim{client: newRestyClient(o), log: log.Named("reverse")}
}

// Reverse returns a Place at lat/lon. Any address subfield may be missing;
// the name falls back through city, town, village, county and display name.
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (weather.Place, error) {
	var out reverseResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"format":         "jsonv2",
			"lat":            strconv.FormatFloat(lat, 'f', 6, 64),
			"lon":            strconv.FormatFloat(lon, 'f', 6, 64),
			"zoom":           "10",
			"addressdetails": "1",
		}).
		SetResult(&out).
		Get("/reverse")
	if err != nil {
		return weather.Place{}, &Error{Op: "reverse", Err: err}
	}
	if resp.IsError() {
		return weather.Place{}, &Error{Op: "reverse", Status: resp.StatusCode()}
	}

	a := out.Address
	return weather.Place{
		Name:      common.FirstNonEmpty(a.City, a.Town, a.Village, a.County, out.DisplayName, FallbackName),
		Country:   a.Country,
		Latitude:  lat,
		Longitude: lon,
	}, nil
}
