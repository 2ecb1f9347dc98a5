// Package coinguide adapts an HTML coin price guide. Detail pages embed a
// structured JSON pricing block; when the block is absent we fall back to
// scanning the grade tables directly.
package coinguide

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

const Name = "coinguide"

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
	return []domain.Category{domain.CategoryCoin}
}

// IsAvailable probes the guide's front page. The result rides the fetch
// cache, so repeated checks are cheap.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	_, err := p.fc.Fetch(ctx, "/")
	return err == nil
}

func (p *Provider) Search(ctx context.Context, query string, opts providers.SearchOptions) ([]domain.MarketPriceRecord, error) {
	res, err := p.fc.Fetch(ctx, "/search?q="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}

	records := p.parseSearchPage(res.Body)
	p.fc.ObserveResults(query, len(records))

	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}
	return records, nil
}

// parseSearchPage reads the search-results table: one row per coin with a
// detail link and the guide value for a typical grade.
func (p *Provider) parseSearchPage(page []byte) []domain.MarketPriceRecord {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		p.logger.Warn("search page unreadable", "provider", Name, "error", err)
		return nil
	}

	var records []domain.MarketPriceRecord
	now := time.Now()
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find(`a[href*="/coin/"]`).First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		name := strings.TrimSpace(link.Text())
		itemID := strings.TrimPrefix(href, "/coin/")
		if name == "" || itemID == "" {
			return
		}

		rec := domain.MarketPriceRecord{
			ItemID:      itemID,
			Name:        name,
			Category:    domain.CategoryCoin,
			Source:      Name,
			SourceURL:   href,
			LastUpdated: now,
		}
		row.Find("td").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			// the name cell holds the link and usually a year; skip it
			if cell.Find("a").Length() > 0 {
				return true
			}
			if v, ok := scrape.ParsePrice(cell.Text()); ok {
				rec.Prices.Raw = &domain.PriceRange{Low: v, Mid: v, High: v}
				return false
			}
			return true
		})
		if rec.Usable() {
			records = append(records, rec)
		}
	})
	return records
}

// Refresh drops the cached guide pages and re-warms the search index with a
// high-traffic query so the next lookups hit fresh data.
func (p *Provider) Refresh(ctx context.Context) (int, error) {
	p.fc.ClearCache(ctx)
	records, err := p.Search(ctx, "morgan dollar", providers.SearchOptions{})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (p *Provider) GetPrice(ctx context.Context, itemID string) (*domain.MarketPriceRecord, error) {
	path := "/coin/" + itemID
	res, err := p.fc.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	item := ParseItemPage(res.Body)
	if item.Outcome == OutcomeNone {
		// structural mismatch, not a hard failure
		p.logger.Warn("no pricing data extracted from detail page",
			"provider", Name, "itemId", itemID)
		return nil, nil
	}

	rec := &domain.MarketPriceRecord{
		ItemID:      itemID,
		Name:        item.Name,
		Category:    domain.CategoryCoin,
		Source:      Name,
		SourceURL:   path,
		Population:  item.Population,
		LastUpdated: time.Now(),
	}
	rec.Prices.Raw = item.Raw
	if len(item.Graded) > 0 {
		rec.Prices.Graded = item.Graded
	}
	if len(item.Sales) > 0 {
		rec.LastSale = &item.Sales[0]
	}
	if !rec.Usable() {
		return nil, nil
	}
	return rec, nil
}
