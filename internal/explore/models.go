package explore

// Location is the resolved place a free-text search maps to. It is the
// aggregate root for every other record category: weather days, listings and
// media items all hang off its ID.
type Location struct {
	ID             string  `db:"id" json:"id"`
	SearchQuery    string  `db:"search_query" json:"search_query"`
	FormattedQuery string  `db:"formatted_query" json:"formatted_query"`
	Latitude       float64 `db:"latitude" json:"latitude"`
	Longitude      float64 `db:"longitude" json:"longitude"`
}

// WeatherDay is one day of forecast for a location. Time is a fixed-width
// calendar prefix ("Fri Jan 01 2021") derived from the upstream unix
// timestamp; downstream clients rely on that exact shape.
type WeatherDay struct {
	Forecast   string `db:"forecast" json:"forecast"`
	Time       string `db:"time" json:"time"`
	LocationID string `db:"location_id" json:"-"`
}

// Listing is one restaurant/business near a location.
type Listing struct {
	Name       string  `db:"name" json:"name"`
	ImageURL   string  `db:"image_url" json:"image_url"`
	Price      string  `db:"price" json:"price"`
	Rating     float64 `db:"rating" json:"rating"`
	URL        string  `db:"url" json:"url"`
	LocationID string  `db:"location_id" json:"-"`
}

// MediaItem is one film matching a location's city name.
type MediaItem struct {
	Title        string  `db:"title" json:"title"`
	Overview     string  `db:"overview" json:"overview"`
	AverageVotes float64 `db:"average_votes" json:"average_votes"`
	TotalVotes   int     `db:"total_votes" json:"total_votes"`
	Popularity   float64 `db:"popularity" json:"popularity"`
	ReleasedOn   string  `db:"released_on" json:"released_on"`
	ImageURL     string  `db:"image_url" json:"image_url"`
	LocationID   string  `db:"location_id" json:"-"`
}

// Result bundles a resolved location with all of its dependent categories,
// as served by the composite explore endpoint.
type Result struct {
	Location Location     `json:"location"`
	Weather  []WeatherDay `json:"weather"`
	Listings []Listing    `json:"listings"`
	Movies   []MediaItem  `json:"movies"`
}
