package cardapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"price-desk/internal/cache"
	"price-desk/internal/domain"
	"price-desk/internal/fetch"
	"price-desk/internal/providers"
)

const nestedSearchBody = `{
	"data": [
		{
			"id": "base1-4",
			"name": "Charizard",
			"set": {"name": "Base Set", "series": "Base"},
			"tcgplayer": {
				"url": "https://prices.example/base1-4",
				"prices": {
					"holofoil": {"low": 280, "mid": 310, "high": 520, "market": 312.5}
				}
			}
		},
		{
			"id": "base1-58",
			"name": "Pikachu",
			"setName": "Base Set",
			"prices": {"low": 2, "market": 4.5, "high": 12}
		},
		{
			"id": "base1-99",
			"name": "No Prices Card"
		}
	],
	"totalCount": 3
}`

func newTestProvider(t *testing.T, handler http.Handler, key string) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	creds := fetch.APIKeyHeader{Name: "X-Api-Key", Value: key}
	fc := fetch.New(fetch.Config{
		Provider: Name,
		BaseURL:  srv.URL,
		CacheTTL: time.Minute,
	}, cache.New(cache.Config{}, nil), fetch.WithCredentials(creds))
	return New(fc, creds, nil)
}

func TestSearchNormalizesBothShapes(t *testing.T) {
	var gotKey string
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		w.Write([]byte(nestedSearchBody))
	}), "secret-key")

	records, err := p.Search(context.Background(), "charizard", providers.SearchOptions{Limit: 10})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotKey != "secret-key" {
		t.Errorf("Expected API key header, got %q", gotKey)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 usable records (priceless card dropped), got %d", len(records))
	}

	cz := records[0]
	if cz.ItemID != "base1-4" {
		t.Errorf("ItemID = %q", cz.ItemID)
	}
	if cz.Name != "Charizard (Base Set)" {
		t.Errorf("Name = %q", cz.Name)
	}
	if cz.Category != domain.CategoryTradingCard {
		t.Errorf("Category = %q", cz.Category)
	}
	if cz.SourceURL != "https://prices.example/base1-4" {
		t.Errorf("SourceURL = %q", cz.SourceURL)
	}
	if cz.Prices.Raw == nil || cz.Prices.Raw.Mid != 312.5 || cz.Prices.Raw.Low != 280 {
		t.Errorf("Raw = %+v", cz.Prices.Raw)
	}

	pika := records[1]
	if pika.Name != "Pikachu (Base Set)" {
		t.Errorf("Name = %q", pika.Name)
	}
	if pika.Prices.Raw == nil || pika.Prices.Raw.Mid != 4.5 {
		t.Errorf("Raw = %+v", pika.Prices.Raw)
	}
}

func TestMissingKeyMeansUnavailable(t *testing.T) {
	called := false
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), "")

	if p.IsAvailable(context.Background()) {
		t.Error("Expected provider without key to be unavailable")
	}

	records, err := p.Search(context.Background(), "charizard", providers.SearchOptions{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if records != nil {
		t.Errorf("Expected nil records, got %v", records)
	}
	if called {
		t.Error("Expected no API call without a key")
	}
}

func TestGetPrice(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/cards/base1-4" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"data": {"id": "base1-4", "name": "Charizard",
			"set": {"name": "Base Set"},
			"tcgplayer": {"prices": {"normal": {"low": 100, "high": 200, "market": 150}}}}}`))
	}), "secret-key")

	rec, err := p.GetPrice(context.Background(), "base1-4")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec == nil {
		t.Fatal("Expected a record")
	}
	if rec.Prices.Raw == nil || rec.Prices.Raw.Mid != 150 {
		t.Errorf("Raw = %+v", rec.Prices.Raw)
	}
}

func TestGarbagePayloadDegradesToEmpty(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance page</html>"))
	}), "secret-key")

	records, err := p.Search(context.Background(), "charizard", providers.SearchOptions{})
	if err != nil {
		t.Fatalf("Expected no error on bad payload, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty result, got %d", len(records))
	}
}
