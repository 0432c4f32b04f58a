package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hingham-practice/city-explorer/internal/explore"
)

// fastBackoff keeps retry delays out of test runtime.
func fastBackoff() BackoffConfig {
	return BackoffConfig{
		MaxRetries:      0,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
	}
}

func TestGoogleGeocoderFirstResultWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != "seattle" {
			t.Errorf("expected address=seattle, got %q", got)
		}
		w.Write([]byte(`{
			"results": [
				{"formatted_address": "Seattle, WA, USA", "geometry": {"location": {"lat": 47.6, "lng": -122.3}}},
				{"formatted_address": "Seattle, Something Else", "geometry": {"location": {"lat": 1, "lng": 2}}}
			]
		}`))
	}))
	defer srv.Close()

	p := NewGoogleGeocoder(srv.Client(), "test-key")
	p.baseURL = srv.URL
	p.httpCfg.Backoff = fastBackoff()

	loc, err := p.Locate(context.Background(), "seattle")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.FormattedQuery != "Seattle, WA, USA" {
		t.Errorf("expected first result, got %q", loc.FormattedQuery)
	}
	if loc.SearchQuery != "seattle" {
		t.Errorf("expected search query to be preserved, got %q", loc.SearchQuery)
	}
	if loc.Latitude != 47.6 || loc.Longitude != -122.3 {
		t.Errorf("unexpected coordinates: %f,%f", loc.Latitude, loc.Longitude)
	}
}

func TestGoogleGeocoderEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	p := NewGoogleGeocoder(srv.Client(), "test-key")
	p.baseURL = srv.URL
	p.httpCfg.Backoff = fastBackoff()

	_, err := p.Locate(context.Background(), "nowhere at all")
	if !errors.Is(err, explore.ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestGoogleGeocoderUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error_message": "bad key"}`))
	}))
	defer srv.Close()

	p := NewGoogleGeocoder(srv.Client(), "test-key")
	p.baseURL = srv.URL
	p.httpCfg.Backoff = fastBackoff()

	_, err := p.Locate(context.Background(), "seattle")
	var ue *explore.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", ue.Status)
	}
	if ue.Body == "" {
		t.Error("expected upstream body to be captured")
	}
}
