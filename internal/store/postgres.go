package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hingham-practice/city-explorer/internal/explore"
)

// PgStore is the PostgreSQL-backed persistence layer. Locations are the
// parent table; weather days, listings and media items are children keyed by
// location id. Rows are append-only: there is no update or delete path and
// no TTL.
type PgStore struct {
	db *sqlx.DB
}

func NewPgStore(db *sql.DB) *PgStore {
	return &PgStore{db: sqlx.NewDb(db, "postgres")}
}

// RunMigrations ensures the four tables exist. Child rows keep an ordered
// serial id so "storage order" is deterministic insertion order.
func RunMigrations(db *sql.DB) error {
	initSQL := `
CREATE TABLE IF NOT EXISTS locations(
  id UUID PRIMARY KEY,
  search_query TEXT NOT NULL UNIQUE,
  formatted_query TEXT NOT NULL,
  latitude DOUBLE PRECISION NOT NULL,
  longitude DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS weather_days(
  id BIGSERIAL PRIMARY KEY,
  forecast TEXT NOT NULL,
  time TEXT NOT NULL,
  location_id UUID NOT NULL REFERENCES locations(id)
);

CREATE TABLE IF NOT EXISTS listings(
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  image_url TEXT NOT NULL,
  price TEXT NOT NULL,
  rating DOUBLE PRECISION NOT NULL,
  url TEXT NOT NULL,
  location_id UUID NOT NULL REFERENCES locations(id)
);

CREATE TABLE IF NOT EXISTS media_items(
  id BIGSERIAL PRIMARY KEY,
  title TEXT NOT NULL,
  overview TEXT NOT NULL,
  average_votes DOUBLE PRECISION NOT NULL,
  total_votes INTEGER NOT NULL,
  popularity DOUBLE PRECISION NOT NULL,
  released_on TEXT NOT NULL,
  image_url TEXT NOT NULL,
  location_id UUID NOT NULL REFERENCES locations(id)
);

CREATE INDEX IF NOT EXISTS idx_weather_days_location ON weather_days(location_id);
CREATE INDEX IF NOT EXISTS idx_listings_location ON listings(location_id);
CREATE INDEX IF NOT EXISTS idx_media_items_location ON media_items(location_id);
`
	_, err := db.Exec(initSQL)
	return err
}

// FindLocation looks up a location by its original search query. The found
// flag is the cache hit/miss signal.
func (p *PgStore) FindLocation(ctx context.Context, query string) (explore.Location, bool, error) {
	var loc explore.Location
	err := p.db.GetContext(ctx, &loc, `
SELECT id, search_query, formatted_query, latitude, longitude
FROM locations
WHERE search_query = $1
`, query)
	if errors.Is(err, sql.ErrNoRows) {
		return explore.Location{}, false, nil
	}
	if err != nil {
		return explore.Location{}, false, err
	}
	return loc, true, nil
}

// SaveLocation upserts on the unique search query and returns the canonical
// row, so two writers racing on the same query converge on a single
// location id.
func (p *PgStore) SaveLocation(ctx context.Context, loc explore.Location) (explore.Location, error) {
	if loc.ID == "" {
		loc.ID = uuid.New().String()
	}

	var saved explore.Location
	err := p.db.GetContext(ctx, &saved, `
INSERT INTO locations (id, search_query, formatted_query, latitude, longitude)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (search_query) DO UPDATE SET search_query = EXCLUDED.search_query
RETURNING id, search_query, formatted_query, latitude, longitude
`, loc.ID, loc.SearchQuery, loc.FormattedQuery, loc.Latitude, loc.Longitude)
	if err != nil {
		return explore.Location{}, err
	}
	return saved, nil
}

func (p *PgStore) WeatherFor(ctx context.Context, locationID string) ([]explore.WeatherDay, bool, error) {
	rows := []explore.WeatherDay{}
	err := p.db.SelectContext(ctx, &rows, `
SELECT forecast, time, location_id
FROM weather_days
WHERE location_id = $1
ORDER BY id
`, locationID)
	if err != nil {
		return nil, false, err
	}
	return rows, len(rows) > 0, nil
}

// SaveWeather inserts a fetched forecast as one batch inside a transaction.
func (p *PgStore) SaveWeather(ctx context.Context, locationID string, days []explore.WeatherDay) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	for _, d := range days {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO weather_days (forecast, time, location_id)
VALUES ($1,$2,$3)
`, d.Forecast, d.Time, locationID); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (p *PgStore) ListingsFor(ctx context.Context, locationID string) ([]explore.Listing, bool, error) {
	rows := []explore.Listing{}
	err := p.db.SelectContext(ctx, &rows, `
SELECT name, image_url, price, rating, url, location_id
FROM listings
WHERE location_id = $1
ORDER BY id
`, locationID)
	if err != nil {
		return nil, false, err
	}
	return rows, len(rows) > 0, nil
}

func (p *PgStore) SaveListings(ctx context.Context, locationID string, listings []explore.Listing) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	for _, l := range listings {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO listings (name, image_url, price, rating, url, location_id)
VALUES ($1,$2,$3,$4,$5,$6)
`, l.Name, l.ImageURL, l.Price, l.Rating, l.URL, locationID); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (p *PgStore) MediaFor(ctx context.Context, locationID string) ([]explore.MediaItem, bool, error) {
	rows := []explore.MediaItem{}
	err := p.db.SelectContext(ctx, &rows, `
SELECT title, overview, average_votes, total_votes, popularity, released_on, image_url, location_id
FROM media_items
WHERE location_id = $1
ORDER BY id
`, locationID)
	if err != nil {
		return nil, false, err
	}
	return rows, len(rows) > 0, nil
}

func (p *PgStore) SaveMedia(ctx context.Context, locationID string, items []explore.MediaItem) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	for _, m := range items {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO media_items (title, overview, average_votes, total_votes, popularity, released_on, image_url, location_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, m.Title, m.Overview, m.AverageVotes, m.TotalVotes, m.Popularity, m.ReleasedOn, m.ImageURL, locationID); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}
