// Package cardapi adapts a documented JSON card-pricing API behind an API
// key header. A missing key demotes the provider to unavailable; it is never
// a startup error.
package cardapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"price-desk/internal/domain"
	"price-desk/internal/fetch"
	"price-desk/internal/providers"
)

const Name = "cardapi"

type Provider struct {
	fc     *fetch.Client
	creds  fetch.CredentialProvider
	logger *slog.Logger
}

func New(fc *fetch.Client, creds fetch.CredentialProvider, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{fc: fc, creds: creds, logger: logger}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Categories() []domain.Category {
	return []domain.Category{domain.CategoryTradingCard}
}

func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.hasKey(ctx)
}

func (p *Provider) hasKey(ctx context.Context) bool {
	if p.creds == nil {
		return false
	}
	_, ok := p.creds.Headers(ctx)
	return ok
}

func (p *Provider) Search(ctx context.Context, query string, opts providers.SearchOptions) ([]domain.MarketPriceRecord, error) {
	if !p.hasKey(ctx) {
		return nil, nil
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}

	q := url.Values{}
	q.Set("q", fmt.Sprintf("name:%q", "*"+query+"*"))
	q.Set("pageSize", fmt.Sprintf("%d", limit))

	res, err := p.fc.Fetch(ctx, "/v2/cards?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.Unmarshal(res.Body, &sr); err != nil {
		p.logger.Warn("unexpected search payload", "provider", Name, "error", err)
		p.fc.ObserveResults(query, 0)
		return nil, nil
	}
	p.fc.ObserveResults(query, len(sr.Data))

	records := make([]domain.MarketPriceRecord, 0, len(sr.Data))
	now := time.Now()
	for _, c := range sr.Data {
		rec := c.toRecord(now)
		if rec.Usable() {
			records = append(records, rec)
		}
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Refresh drops cached API responses and re-warms with a popular query.
func (p *Provider) Refresh(ctx context.Context) (int, error) {
	if !p.hasKey(ctx) {
		return 0, nil
	}
	p.fc.ClearCache(ctx)
	records, err := p.Search(ctx, "charizard", providers.SearchOptions{})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (p *Provider) GetPrice(ctx context.Context, itemID string) (*domain.MarketPriceRecord, error) {
	if !p.hasKey(ctx) {
		return nil, nil
	}

	res, err := p.fc.Fetch(ctx, "/v2/cards/"+url.PathEscape(itemID))
	if err != nil {
		return nil, err
	}

	var cr cardResponse
	if err := json.Unmarshal(res.Body, &cr); err != nil {
		p.logger.Warn("unexpected card payload", "provider", Name, "itemId", itemID, "error", err)
		return nil, nil
	}
	if cr.Data.ID == "" {
		return nil, nil
	}
	rec := cr.Data.toRecord(time.Now())
	if !rec.Usable() {
		return nil, nil
	}
	return &rec, nil
}

// toRecord normalizes either payload generation into the unified record.
func (c cardPayload) toRecord(now time.Time) domain.MarketPriceRecord {
	name := c.Name
	switch {
	case c.Set != nil && c.Set.Name != "":
		name = fmt.Sprintf("%s (%s)", c.Name, c.Set.Name)
	case c.SetName != "":
		name = fmt.Sprintf("%s (%s)", c.Name, c.SetName)
	}

	rec := domain.MarketPriceRecord{
		ItemID:      c.ID,
		Name:        name,
		Category:    domain.CategoryTradingCard,
		Source:      Name,
		LastUpdated: now,
	}
	if c.Marketplace != nil {
		rec.SourceURL = c.Marketplace.URL
		if r, ok := bestVariant(c.Marketplace.Prices); ok {
			rec.Prices.Raw = &r
		}
	}
	if rec.Prices.Raw == nil && c.Prices != nil {
		r := domain.PriceRange{Low: c.Prices.Low, Mid: c.Prices.Market, High: c.Prices.High}
		if r.Mid == 0 {
			r.Mid = (r.Low + r.High) / 2
		}
		if r.Valid() && r.High > 0 {
			rec.Prices.Raw = &r
		}
	}
	return rec
}

// variantPreference orders marketplace print variants from most to least
// representative of the card's market price.
var variantPreference = []string{"normal", "holofoil", "reverseHolofoil", "1stEditionHolofoil", "unlimited"}

func bestVariant(prices map[string]priceEntry) (domain.PriceRange, bool) {
	pick := func(e priceEntry) (domain.PriceRange, bool) {
		mid := e.Market
		if mid == 0 {
			mid = e.Mid
		}
		r := domain.PriceRange{Low: e.Low, Mid: mid, High: e.High}
		if !r.Valid() || r.High == 0 {
			return domain.PriceRange{}, false
		}
		return r, true
	}

	for _, v := range variantPreference {
		if e, ok := prices[v]; ok {
			if r, ok := pick(e); ok {
				return r, true
			}
		}
	}
	// deterministic fallback for unknown variant names
	keys := make([]string, 0, len(prices))
	for k := range prices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if r, ok := pick(prices[k]); ok {
			return r, true
		}
	}
	return domain.PriceRange{}, false
}
