package explore

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Service is the cache coordinator. Per category it checks the store first
// and only on a miss calls the provider, persists the batch, and returns the
// fetched records. Concurrent misses for the same key are collapsed through
// singleflight so a key is fetched at most once at a time.
type Service struct {
	store    Store
	geocoder Geocoder
	weather  ForecastProvider
	listings ListingProvider
	media    MediaProvider
	log      *zap.SugaredLogger

	flight singleflight.Group
}

// NewService creates a Service. All dependencies are injected; the Service
// holds no ambient state.
func NewService(store Store, geocoder Geocoder, weather ForecastProvider, listings ListingProvider, media MediaProvider, log *zap.SugaredLogger) *Service {
	return &Service{
		store:    store,
		geocoder: geocoder,
		weather:  weather,
		listings: listings,
		media:    media,
		log:      log,
	}
}

// Locate resolves a free-text query to a Location, serving from the store
// when the query has been seen before. On a miss the geocoded result is
// upserted; if the write fails the fetched location is still returned (the
// miss simply recurs on the next identical request).
func (s *Service) Locate(ctx context.Context, query string) (Location, error) {
	loc, found, err := s.store.FindLocation(ctx, query)
	if err != nil {
		return Location{}, err
	}
	if found {
		return loc, nil
	}

	v, err, _ := s.flight.Do("location:"+query, func() (interface{}, error) {
		// A concurrent miss may have landed while we waited.
		loc, found, err := s.store.FindLocation(ctx, query)
		if err == nil && found {
			return loc, nil
		}

		fetched, err := s.geocoder.Locate(ctx, query)
		if err != nil {
			return Location{}, err
		}
		fetched.SearchQuery = query
		if fetched.ID == "" {
			fetched.ID = uuid.New().String()
		}

		saved, err := s.store.SaveLocation(ctx, fetched)
		if err != nil {
			s.log.Warnw("location persist failed; returning unsaved result", "query", query, "error", err)
			return fetched, nil
		}
		return saved, nil
	})
	if err != nil {
		return Location{}, err
	}
	return v.(Location), nil
}

// Forecast returns the weather days for a resolved location, fetching and
// persisting them on first request.
func (s *Service) Forecast(ctx context.Context, loc Location) ([]WeatherDay, error) {
	days, found, err := s.store.WeatherFor(ctx, loc.ID)
	if err != nil {
		return nil, err
	}
	if found {
		return days, nil
	}

	v, err, _ := s.flight.Do("weather:"+loc.ID, func() (interface{}, error) {
		days, found, err := s.store.WeatherFor(ctx, loc.ID)
		if err == nil && found {
			return days, nil
		}

		fetched, err := s.weather.Forecast(ctx, loc.Latitude, loc.Longitude)
		if err != nil {
			return nil, err
		}
		if err := s.store.SaveWeather(ctx, loc.ID, fetched); err != nil {
			s.log.Warnw("weather persist failed", "location_id", loc.ID, "error", err)
		}
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]WeatherDay), nil
}

// Nearby returns the business listings for a resolved location, fetching and
// persisting them on first request.
func (s *Service) Nearby(ctx context.Context, loc Location) ([]Listing, error) {
	listings, found, err := s.store.ListingsFor(ctx, loc.ID)
	if err != nil {
		return nil, err
	}
	if found {
		return listings, nil
	}

	v, err, _ := s.flight.Do("listings:"+loc.ID, func() (interface{}, error) {
		listings, found, err := s.store.ListingsFor(ctx, loc.ID)
		if err == nil && found {
			return listings, nil
		}

		fetched, err := s.listings.Nearby(ctx, loc.Latitude, loc.Longitude)
		if err != nil {
			return nil, err
		}
		if err := s.store.SaveListings(ctx, loc.ID, fetched); err != nil {
			s.log.Warnw("listings persist failed", "location_id", loc.ID, "error", err)
		}
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Listing), nil
}

// Movies returns the media items for a resolved location, fetching and
// persisting them on first request. The provider derives its search term
// from the location's formatted query.
func (s *Service) Movies(ctx context.Context, loc Location) ([]MediaItem, error) {
	items, found, err := s.store.MediaFor(ctx, loc.ID)
	if err != nil {
		return nil, err
	}
	if found {
		return items, nil
	}

	v, err, _ := s.flight.Do("media:"+loc.ID, func() (interface{}, error) {
		items, found, err := s.store.MediaFor(ctx, loc.ID)
		if err == nil && found {
			return items, nil
		}

		fetched, err := s.media.Search(ctx, loc.FormattedQuery)
		if err != nil {
			return nil, err
		}
		if err := s.store.SaveMedia(ctx, loc.ID, fetched); err != nil {
			s.log.Warnw("media persist failed", "location_id", loc.ID, "error", err)
		}
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]MediaItem), nil
}

// Explore resolves a query and fetches all dependent categories concurrently.
// The categories share nothing beyond the location key, so they run in
// parallel; the first failure cancels the rest.
func (s *Service) Explore(ctx context.Context, query string) (Result, error) {
	loc, err := s.Locate(ctx, query)
	if err != nil {
		return Result{}, err
	}

	res := Result{Location: loc}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		res.Weather, err = s.Forecast(ctx, loc)
		return err
	})
	g.Go(func() error {
		var err error
		res.Listings, err = s.Nearby(ctx, loc)
		return err
	})
	g.Go(func() error {
		var err error
		res.Movies, err = s.Movies(ctx, loc)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Warm primes the cache for a seed query. Every path is cache-first, so
// warming an already-resolved query performs no upstream calls.
func (s *Service) Warm(ctx context.Context, query string) error {
	_, err := s.Explore(ctx, query)
	return err
}

// CityToken returns the text before the first comma of a formatted query,
// e.g. "Seattle, WA, USA" -> "Seattle".
func CityToken(formattedQuery string) string {
	if i := strings.Index(formattedQuery, ","); i >= 0 {
		return formattedQuery[:i]
	}
	return formattedQuery
}
