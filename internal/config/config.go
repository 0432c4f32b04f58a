package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	GeocodeAPIKey string
	WeatherAPIKey string
	YelpAPIKey    string
	MovieAPIKey   string

	// DatabaseURL is the Postgres connection string for the cache store.
	DatabaseURL string

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	// WarmQueries are seed searches the scheduler resolves ahead of traffic.
	WarmQueries []string

	// WarmInterval controls how often the warm job runs.
	WarmInterval time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.GeocodeAPIKey = os.Getenv("GEOCODE_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("DARKSKY_API_KEY")
	cfg.YelpAPIKey = os.Getenv("YELP_API_KEY")
	cfg.MovieAPIKey = os.Getenv("MOVIE_API_KEY")

	cfg.DatabaseURL = getenvDefault("DATABASE_URL", "postgres://localhost:5432/city_explorer?sslmode=disable")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	intervalStr := getenvDefault("WARM_INTERVAL", "1h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid WARM_INTERVAL: %w", err)
	}
	cfg.WarmInterval = interval

	cfg.WarmQueries = loadWarmQueries()
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// loadWarmQueries parses the comma-separated WARM_LOCATIONS list. An empty
// value disables cache warming.
func loadWarmQueries() []string {
	raw := os.Getenv("WARM_LOCATIONS")
	if raw == "" {
		return nil
	}
	var queries []string
	for _, q := range strings.Split(raw, ",") {
		q = strings.TrimSpace(q)
		if q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
