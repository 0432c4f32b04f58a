package explore

import "context"

// Geocoder resolves a free-text search into a Location. Implementations must
// return ErrNoResult when the upstream result set is empty and otherwise take
// the first result (first-match-wins is the documented policy).
type Geocoder interface {
	Locate(ctx context.Context, query string) (Location, error)
}

// ForecastProvider returns one WeatherDay per forecast day, in the upstream's
// native order.
type ForecastProvider interface {
	Forecast(ctx context.Context, lat, lon float64) ([]WeatherDay, error)
}

// ListingProvider returns nearby businesses in upstream order.
type ListingProvider interface {
	Nearby(ctx context.Context, lat, lon float64) ([]Listing, error)
}

// MediaProvider searches films by the city token of a location's formatted
// query (the text before the first comma), in upstream relevance order.
type MediaProvider interface {
	Search(ctx context.Context, formattedQuery string) ([]MediaItem, error)
}

// Store is the persistence contract the cache coordinator runs against.
// Lookups return an explicit hit/miss via the found flag; a hit returns rows
// in storage order. Saves are batch inserts; SaveLocation upserts on the
// search query and returns the canonical row, so concurrent first-time
// lookups converge on a single location.
type Store interface {
	FindLocation(ctx context.Context, query string) (Location, bool, error)
	SaveLocation(ctx context.Context, loc Location) (Location, error)

	WeatherFor(ctx context.Context, locationID string) ([]WeatherDay, bool, error)
	SaveWeather(ctx context.Context, locationID string, days []WeatherDay) error

	ListingsFor(ctx context.Context, locationID string) ([]Listing, bool, error)
	SaveListings(ctx context.Context, locationID string, listings []Listing) error

	MediaFor(ctx context.Context, locationID string) ([]MediaItem, bool, error)
	SaveMedia(ctx context.Context, locationID string, items []MediaItem) error
}
