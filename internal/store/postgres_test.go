package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hingham-practice/city-explorer/internal/explore"
)

func newMockStore(t *testing.T) (*PgStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPgStore(db), mock
}

func TestFindLocationHit(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "search_query", "formatted_query", "latitude", "longitude"}).
		AddRow("11111111-2222-3333-4444-555555555555", "seattle", "Seattle, WA, USA", 47.6, -122.3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, search_query, formatted_query, latitude, longitude")).
		WithArgs("seattle").
		WillReturnRows(rows)

	loc, found, err := s.FindLocation(context.Background(), "seattle")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Seattle, WA, USA", loc.FormattedQuery)
	assert.Equal(t, 47.6, loc.Latitude)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindLocationMissIsNotAnError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, search_query, formatted_query, latitude, longitude")).
		WithArgs("nowhere").
		WillReturnRows(sqlmock.NewRows([]string{"id", "search_query", "formatted_query", "latitude", "longitude"}))

	_, found, err := s.FindLocation(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveLocationReturnsCanonicalRow(t *testing.T) {
	s, mock := newMockStore(t)

	// A conflicting concurrent insert already claimed the search query; the
	// upsert must hand back the existing row, not the one we tried to write.
	canonical := sqlmock.NewRows([]string{"id", "search_query", "formatted_query", "latitude", "longitude"}).
		AddRow("existing-id", "seattle", "Seattle, WA, USA", 47.6, -122.3)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO locations")).
		WillReturnRows(canonical)

	saved, err := s.SaveLocation(context.Background(), explore.Location{
		SearchQuery:    "seattle",
		FormattedQuery: "Seattle, WA, USA",
		Latitude:       47.6,
		Longitude:      -122.3,
	})
	require.NoError(t, err)
	assert.Equal(t, "existing-id", saved.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeatherForReturnsRowsInStorageOrder(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"forecast", "time", "location_id"}).
		AddRow("Clear", "Fri Jan 01 2021", "loc-1").
		AddRow("Rain", "Sat Jan 02 2021", "loc-1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT forecast, time, location_id")).
		WithArgs("loc-1").
		WillReturnRows(rows)

	days, found, err := s.WeatherFor(context.Background(), "loc-1")
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, days, 2)
	assert.Equal(t, "Fri Jan 01 2021", days[0].Time)
	assert.Equal(t, "Sat Jan 02 2021", days[1].Time)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeatherForMiss(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT forecast, time, location_id")).
		WithArgs("loc-unknown").
		WillReturnRows(sqlmock.NewRows([]string{"forecast", "time", "location_id"}))

	days, found, err := s.WeatherFor(context.Background(), "loc-unknown")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, days)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveWeatherBatchIsTransactional(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weather_days")).
		WithArgs("Clear", "Fri Jan 01 2021", "loc-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weather_days")).
		WithArgs("Rain", "Sat Jan 02 2021", "loc-1").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := s.SaveWeather(context.Background(), "loc-1", []explore.WeatherDay{
		{Forecast: "Clear", Time: "Fri Jan 01 2021"},
		{Forecast: "Rain", Time: "Sat Jan 02 2021"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveListingsRollsBackOnFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO listings")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := s.SaveListings(context.Background(), "loc-1", []explore.Listing{
		{Name: "Pike Place Chowder", Price: "$$", Rating: 4.5},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveMediaBatch(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO media_items")).
		WithArgs("Sleepless in Seattle", "A widower's son calls a radio show.", 6.8, 2200, 19.7, "1993-06-24", "https://image.tmdb.org/t/p/w500/x.jpg", "loc-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := s.SaveMedia(context.Background(), "loc-1", []explore.MediaItem{
		{
			Title:        "Sleepless in Seattle",
			Overview:     "A widower's son calls a radio show.",
			AverageVotes: 6.8,
			TotalVotes:   2200,
			Popularity:   19.7,
			ReleasedOn:   "1993-06-24",
			ImageURL:     "https://image.tmdb.org/t/p/w500/x.jpg",
		},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
