package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/hingham-practice/city-explorer/internal/explore"
)

// YelpProvider implements explore.ListingProvider against the Yelp business
// search API. Yelp requires a bearer credential on every request.
type YelpProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	log     *zap.SugaredLogger
}

func NewYelpProvider(client *http.Client, apiKey string, log *zap.SugaredLogger) *YelpProvider {
	return &YelpProvider{
		name:    "yelp",
		apiKey:  apiKey,
		baseURL: "https://api.yelp.com/v3/businesses/search",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newBreaker("yelp"),
		log:     log,
	}
}

func (p *YelpProvider) Name() string {
	return p.name
}

// Nearby returns one Listing per business in upstream order. A malformed
// business entry is skipped and logged; it never aborts the batch.
func (p *YelpProvider) Nearby(ctx context.Context, lat, lon float64) ([]explore.Listing, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("yelp api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", lat))
		values.Set("longitude", fmt.Sprintf("%f", lon))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Businesses []json.RawMessage `json:"businesses"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	listings := make([]explore.Listing, 0, len(payload.Businesses))
	for i, raw := range payload.Businesses {
		var biz struct {
			Name     string  `json:"name"`
			ImageURL string  `json:"image_url"`
			Price    string  `json:"price"`
			Rating   float64 `json:"rating"`
			URL      string  `json:"url"`
		}
		if err := json.Unmarshal(raw, &biz); err != nil {
			p.log.Warnw("skipping malformed business", "provider", p.name, "index", i, "error", err)
			continue
		}
		listings = append(listings, explore.Listing{
			Name:     biz.Name,
			ImageURL: biz.ImageURL,
			Price:    biz.Price,
			Rating:   biz.Rating,
			URL:      biz.URL,
		})
	}

	return listings, nil
}
