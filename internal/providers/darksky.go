package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/hingham-practice/city-explorer/internal/explore"
)

// dayLayout is the fixed-width prefix clients expect in the time field:
// weekday, month, day-of-month and year, no time-of-day. Timestamps are
// rendered in UTC so the output never drifts with host locale or zone.
const dayLayout = "Mon Jan 02 2006"

// DarkSkyProvider implements explore.ForecastProvider against the Dark Sky
// forecast API.
type DarkSkyProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	log     *zap.SugaredLogger
}

func NewDarkSkyProvider(client *http.Client, apiKey string, log *zap.SugaredLogger) *DarkSkyProvider {
	return &DarkSkyProvider{
		name:    "darksky",
		apiKey:  apiKey,
		baseURL: "https://api.darksky.net/forecast",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newBreaker("darksky"),
		log:     log,
	}
}

func (p *DarkSkyProvider) Name() string {
	return p.name
}

// Forecast returns one WeatherDay per forecast day in the upstream's native
// order. A malformed day is skipped and logged; it never aborts the batch.
func (p *DarkSkyProvider) Forecast(ctx context.Context, lat, lon float64) ([]explore.WeatherDay, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("darksky api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s/%f,%f", p.baseURL, p.apiKey, lat, lon)
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Daily struct {
			Data []json.RawMessage `json:"data"`
		} `json:"daily"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	days := make([]explore.WeatherDay, 0, len(payload.Daily.Data))
	for i, raw := range payload.Daily.Data {
		var day struct {
			Time    int64  `json:"time"`
			Summary string `json:"summary"`
		}
		if err := json.Unmarshal(raw, &day); err != nil {
			p.log.Warnw("skipping malformed forecast day", "provider", p.name, "index", i, "error", err)
			continue
		}
		days = append(days, explore.WeatherDay{
			Forecast: day.Summary,
			Time:     formatDay(day.Time),
		})
	}

	return days, nil
}

// formatDay converts unix seconds to the fixed calendar prefix.
func formatDay(unixSeconds int64) string {
	return time.Unix(unixSeconds, 0).UTC().Format(dayLayout)
}
