package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/hingham-practice/city-explorer/internal/explore"
)

// GoogleGeocoder implements explore.Geocoder against the Google Geocoding API.
type GoogleGeocoder struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewGoogleGeocoder(client *http.Client, apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		name:    "google-geocoding",
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com/maps/api/geocode/json",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newBreaker("google-geocoding"),
	}
}

func (p *GoogleGeocoder) Name() string {
	return p.name
}

// Locate geocodes a free-text query. An empty result set maps to
// explore.ErrNoResult; otherwise the first result wins, with no
// disambiguation among the rest.
func (p *GoogleGeocoder) Locate(ctx context.Context, query string) (explore.Location, error) {
	if p.apiKey == "" {
		return explore.Location{}, fmt.Errorf("geocoding api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("address", query)
		values.Set("key", p.apiKey)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return explore.Location{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return explore.Location{}, err
	}

	if len(payload.Results) == 0 {
		return explore.Location{}, explore.ErrNoResult
	}

	first := payload.Results[0]
	return explore.Location{
		SearchQuery:    query,
		FormattedQuery: first.FormattedAddress,
		Latitude:       first.Geometry.Location.Lat,
		Longitude:      first.Geometry.Location.Lng,
	}, nil
}
