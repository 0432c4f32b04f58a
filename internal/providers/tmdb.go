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

// tmdbImageHost is the fixed prefix poster paths are appended to. The
// concatenation happens even when the upstream supplies no poster path, in
// which case the image URL is the bare prefix; clients treat that as "no
// poster" and the shape is kept for compatibility.
const tmdbImageHost = "https://image.tmdb.org/t/p/w500"

// TMDBProvider implements explore.MediaProvider against The Movie Database
// title search API.
type TMDBProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	log     *zap.SugaredLogger
}

func NewTMDBProvider(client *http.Client, apiKey string, log *zap.SugaredLogger) *TMDBProvider {
	return &TMDBProvider{
		name:    "tmdb",
		apiKey:  apiKey,
		baseURL: "https://api.themoviedb.org/3/search/movie",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newBreaker("tmdb"),
		log:     log,
	}
}

func (p *TMDBProvider) Name() string {
	return p.name
}

// Search queries titles by the city token of the formatted query (the text
// before the first comma) and returns one MediaItem per result in upstream
// relevance order. A malformed result is skipped and logged; it never aborts
// the batch.
func (p *TMDBProvider) Search(ctx context.Context, formattedQuery string) ([]explore.MediaItem, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("tmdb api key is not configured")
	}

	city := explore.CityToken(formattedQuery)

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("api_key", p.apiKey)
		values.Set("query", city)
		values.Set("page", "1")
		values.Set("include_adult", "false")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results []json.RawMessage `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	items := make([]explore.MediaItem, 0, len(payload.Results))
	for i, raw := range payload.Results {
		var movie struct {
			Title       string  `json:"title"`
			Overview    string  `json:"overview"`
			VoteAverage float64 `json:"vote_average"`
			VoteCount   int     `json:"vote_count"`
			Popularity  float64 `json:"popularity"`
			ReleaseDate string  `json:"release_date"`
			PosterPath  string  `json:"poster_path"`
		}
		if err := json.Unmarshal(raw, &movie); err != nil {
			p.log.Warnw("skipping malformed movie", "provider", p.name, "index", i, "error", err)
			continue
		}
		items = append(items, explore.MediaItem{
			Title:        movie.Title,
			Overview:     movie.Overview,
			AverageVotes: movie.VoteAverage,
			TotalVotes:   movie.VoteCount,
			Popularity:   movie.Popularity,
			ReleasedOn:   movie.ReleaseDate,
			ImageURL:     tmdbImageHost + movie.PosterPath,
		})
	}

	return items, nil
}
