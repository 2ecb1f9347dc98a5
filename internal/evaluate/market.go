package evaluate

import (
	"price-desk/internal/domain"
)

// SourceRoles tells the assembler which providers act as a dealer guide
// (bid/ask spreads) and which as independent price guides.
type SourceRoles struct {
	DealerSources map[string]bool
	GuideSources  map[string]bool
}

// MarketDataFromRecords folds aggregated records into the evaluation input:
// recorded sales become sold comparables, the first dealer-role record's raw
// spread becomes the bid/ask quote, and the first guide-role record's raw
// midpoint becomes the guide value.
func MarketDataFromRecords(records []domain.MarketPriceRecord, roles SourceRoles) MarketData {
	var m MarketData
	for _, r := range records {
		if r.LastSale != nil && r.LastSale.Price > 0 {
			m.SoldPrices = append(m.SoldPrices, r.LastSale.Price)
		}
		if m.Dealer == nil && roles.DealerSources[r.Source] && r.Prices.Raw != nil {
			m.Dealer = &DealerQuote{Bid: r.Prices.Raw.Low, Ask: r.Prices.Raw.High}
		}
		if m.GuideValue == nil && roles.GuideSources[r.Source] && r.Prices.Raw != nil {
			v := r.Prices.Raw.Mid
			if v > 0 {
				m.GuideValue = &v
			}
		}
	}
	return m
}
