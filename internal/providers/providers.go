package providers

import (
	"context"

	"price-desk/internal/domain"
)

// SearchOptions narrows a provider search. A zero Category means all
// categories the provider supports.
type SearchOptions struct {
	Limit    int
	Category domain.Category
}

// PriceProvider is the contract every market-data adapter implements.
// Implementations degrade to empty results on parse failure; errors are
// reserved for availability-class problems (auth, network) and never abort
// the aggregate search.
type PriceProvider interface {
	Name() string
	Categories() []domain.Category
	IsAvailable(ctx context.Context) bool
	Search(ctx context.Context, query string, opts SearchOptions) ([]domain.MarketPriceRecord, error)
	GetPrice(ctx context.Context, itemID string) (*domain.MarketPriceRecord, error)
}

// Refresher is implemented by providers that can drop their cached pages and
// re-warm them from the live source. Refresh returns the number of items the
// warm-up pulled in.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Supports reports whether p covers the category. An empty category matches
// every provider.
func Supports(p PriceProvider, cat domain.Category) bool {
	if cat == "" {
		return true
	}
	for _, c := range p.Categories() {
		if c == cat {
			return true
		}
	}
	return false
}
