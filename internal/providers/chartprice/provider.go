// Package chartprice adapts a free multi-category price guide that serves
// plain HTML tables: video games, trading cards, comics, funko and more.
package chartprice

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"price-desk/internal/domain"
	"price-desk/internal/fetch"
	"price-desk/internal/providers"
	"price-desk/internal/providers/scrape"
)

const Name = "chartprice"

type Provider struct {
	fc     *fetch.Client
	logger *slog.Logger
}

func New(fc *fetch.Client, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{fc: fc, logger: logger}
}

func (p *Provider) Name() string { return Name }

func (p *Provider) Categories() []domain.Category {
	return []domain.Category{
		domain.CategorySportsCard,
		domain.CategoryTradingCard,
		domain.CategoryComic,
		domain.CategoryFunko,
		domain.CategoryCoin,
		domain.CategoryOther,
	}
}

func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.fc.Fetch(ctx, "/")
	return err == nil
}

func (p *Provider) Search(ctx context.Context, query string, opts providers.SearchOptions) ([]domain.MarketPriceRecord, error) {
	res, err := p.fc.Fetch(ctx, "/search-products?q="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}

	items := scrape.ParseGuideTable(res.Body, "/item/")
	p.fc.ObserveResults(query, len(items))

	records := make([]domain.MarketPriceRecord, 0, len(items))
	now := time.Now()
	for _, it := range items {
		rec := guideItemToRecord(it, now)
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

// Refresh drops the cached guide pages and re-warms the search index.
func (p *Provider) Refresh(ctx context.Context) (int, error) {
	p.fc.ClearCache(ctx)
	records, err := p.Search(ctx, "charizard", providers.SearchOptions{})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (p *Provider) GetPrice(ctx context.Context, itemID string) (*domain.MarketPriceRecord, error) {
	path := "/item/" + itemID
	res, err := p.fc.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	ungraded, hasRaw, grades := scrape.ParseGradeList(res.Body)
	if !hasRaw && len(grades) == 0 {
		p.logger.Warn("no prices extracted from detail page", "provider", Name, "itemId", itemID)
		return nil, nil
	}

	name := pageTitle(res.Body)
	rec := &domain.MarketPriceRecord{
		ItemID:      itemID,
		Name:        name,
		Category:    scrape.DetectCategory(name, path),
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

func guideItemToRecord(it scrape.GuideItem, now time.Time) domain.MarketPriceRecord {
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

func pageTitle(page []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return ""
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
