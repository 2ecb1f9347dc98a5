// Package dealersheet adapts a dealer price guide that answers plain HTTP
// with a bot-detection challenge, so every fetch rides headless-browser
// navigation. The page structure itself matches the plain guide scrapers.
package dealersheet

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"price-desk/internal/domain"
	"price-desk/internal/fetch"
	"price-desk/internal/providers"
	"price-desk/internal/providers/scrape"
)

const Name = "dealersheet"

type Provider struct {
	fc     *fetch.Client
	creds  fetch.CredentialProvider
	logger *slog.Logger
}

// New builds the adapter. creds carries the subscriber session cookie; when
// absent the provider reports unavailable rather than failing.
func New(fc *fetch.Client, creds fetch.CredentialProvider, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{fc: fc, creds: creds, logger: logger}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Categories() []domain.Category {
	return []domain.Category{domain.CategoryCoin, domain.CategorySportsCard}
}

func (p *Provider) IsAvailable(ctx context.Context) bool {
	if !p.hasCredentials(ctx) {
		return false
	}
	_, err := p.fc.Fetch(ctx, "/")
	return err == nil
}

func (p *Provider) hasCredentials(ctx context.Context) bool {
	if p.creds == nil {
		return false
	}
	_, ok := p.creds.Headers(ctx)
	return ok
}

func (p *Provider) Search(ctx context.Context, query string, opts providers.SearchOptions) ([]domain.MarketPriceRecord, error) {
	if !p.hasCredentials(ctx) {
		return nil, nil
	}

	res, err := p.fc.Fetch(ctx, "/guide/search?q="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}

	items := scrape.ParseGuideTable(res.Body, "/guide/item/")
	p.fc.ObserveResults(query, len(items))

	records := make([]domain.MarketPriceRecord, 0, len(items))
	now := time.Now()
	for _, it := range items {
		rec := itemToRecord(it, now)
		if opts.Category != "" && rec.Category != opts.Category {
			continue
		}
		if rec.Usable() {
			records = append(records, rec)
		}
	}
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}
	return records, nil
}

// Refresh drops the cached sheet pages and re-warms the search index.
// Without a session cookie there is nothing to refresh.
func (p *Provider) Refresh(ctx context.Context) (int, error) {
	if !p.hasCredentials(ctx) {
		return 0, nil
	}
	p.fc.ClearCache(ctx)
	records, err := p.Search(ctx, "morgan", providers.SearchOptions{})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (p *Provider) GetPrice(ctx context.Context, itemID string) (*domain.MarketPriceRecord, error) {
	if !p.hasCredentials(ctx) {
		return nil, nil
	}

	path := "/guide/item/" + itemID
	res, err := p.fc.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	ungraded, hasRaw, grades := scrape.ParseGradeList(res.Body)
	if !hasRaw && len(grades) == 0 {
		p.logger.Warn("no prices extracted from guide page", "provider", Name, "itemId", itemID)
		return nil, nil
	}

	rec := &domain.MarketPriceRecord{
		ItemID:      itemID,
		Name:        itemID,
		Category:    scrape.DetectCategory(itemID, path),
		Source:      Name,
		SourceURL:   path,
		LastUpdated: time.Now(),
	}
	if hasRaw {
		rec.Prices.Raw = &domain.PriceRange{Low: ungraded, Mid: ungraded, High: ungraded}
	}
	if len(grades) > 0 {
		rec.Prices.Graded = make(map[string]domain.PriceRange, len(grades))
		for g, v := range grades {
			rec.Prices.Graded[g] = domain.PriceRange{Low: v, Mid: v, High: v}
		}
	}
	return rec, nil
}

func itemToRecord(it scrape.GuideItem, now time.Time) domain.MarketPriceRecord {
	rec := domain.MarketPriceRecord{
		ItemID:      it.ID,
		Name:        it.Name,
		Category:    scrape.DetectCategory(it.Name, it.URL),
		Source:      Name,
		SourceURL:   it.URL,
		LastUpdated: now,
	}
	if it.HasRaw {
		rec.Prices.Raw = &domain.PriceRange{Low: it.Ungraded, Mid: it.Ungraded, High: it.Ungraded}
	}
	if len(it.Grades) > 0 {
		rec.Prices.Graded = make(map[string]domain.PriceRange, len(it.Grades))
		for g, v := range it.Grades {
			rec.Prices.Graded[g] = domain.PriceRange{Low: v, Mid: v, High: v}
		}
	}
	return rec
}
