// Package aggregator fans a search out across every configured market-data
// provider and merges the results into one ranked list. A provider that fails
// costs its results, never the whole search.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"price-desk/internal/concurrency"
	"price-desk/internal/domain"
	"price-desk/internal/fetch"
	"price-desk/internal/providers"
)

// DefaultLimit caps merged search results when the caller does not.
const DefaultLimit = 20

type Aggregator struct {
	providers []providers.PriceProvider
	status    *StatusStore
	logger    *slog.Logger
}

func New(status *StatusStore, logger *slog.Logger, provs ...providers.PriceProvider) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if status == nil {
		status = NewStatusStore(nil, logger)
	}
	return &Aggregator{providers: provs, status: status, logger: logger}
}

func (a *Aggregator) Providers() []providers.PriceProvider { return a.providers }

func (a *Aggregator) Status() *StatusStore { return a.status }

// Search queries every provider covering the requested category in parallel,
// waits for all of them, and merges whatever succeeded. Provider failures are
// logged and reflected in the status table but never abort the search.
func (a *Aggregator) Search(ctx context.Context, query string, opts providers.SearchOptions) []domain.MarketPriceRecord {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	subset := make([]providers.PriceProvider, 0, len(a.providers))
	for _, p := range a.providers {
		if providers.Supports(p, opts.Category) {
			subset = append(subset, p)
		}
	}
	if len(subset) == 0 {
		return nil
	}

	popts := concurrency.ParallelOptions{MaxWorkers: len(subset)}
	results, errs := concurrency.ProcessParallel(ctx, subset, popts,
		func(ctx context.Context, _ int, p providers.PriceProvider) ([]domain.MarketPriceRecord, error) {
			return p.Search(ctx, query, opts)
		})

	var merged []domain.MarketPriceRecord
	for i, p := range subset {
		if err := errs[i]; err != nil {
			a.noteFailure(p.Name(), err)
			continue
		}
		for _, rec := range results[i] {
			if rec.Usable() {
				merged = append(merged, rec)
			}
		}
	}

	rankRecords(merged, query)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// rankRecords puts records whose name contains the query first; within each
// band the provider order is preserved.
func rankRecords(records []domain.MarketPriceRecord, query string) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		mi := strings.Contains(strings.ToLower(records[i].Name), q)
		mj := strings.Contains(strings.ToLower(records[j].Name), q)
		return mi && !mj
	})
}

// GetPrice dispatches a detail lookup to the provider that produced the
// record. A nil record with nil error means the item had no usable pricing.
func (a *Aggregator) GetPrice(ctx context.Context, itemID, source string) (*domain.MarketPriceRecord, error) {
	for _, p := range a.providers {
		if p.Name() != source {
			continue
		}
		rec, err := p.GetPrice(ctx, itemID)
		if err != nil {
			a.noteFailure(source, err)
			return nil, err
		}
		return rec, nil
	}
	return nil, fmt.Errorf("unknown provider %q", source)
}

// CheckProviders probes every provider's availability and updates the status
// table. Probes run in parallel; the returned slice is sorted by name.
func (a *Aggregator) CheckProviders(ctx context.Context) []domain.ProviderStatus {
	opts := concurrency.ParallelOptions{MaxWorkers: len(a.providers)}
	concurrency.ForEach(ctx, a.providers, opts,
		func(ctx context.Context, _ int, p providers.PriceProvider) error {
			available := p.IsAvailable(ctx)
			a.status.Update(p.Name(), func(st *domain.ProviderStatus) {
				st.Available = available
				st.LastCheck = time.Now()
				if available {
					st.Error = ""
				} else if st.Error == "" {
					st.Error = "availability probe failed"
				}
			})
			return nil
		})
	return a.status.All()
}

// RefreshAll asks every refresh-capable provider to drop its cached pages and
// re-warm. Providers that cannot refresh only get an availability check.
func (a *Aggregator) RefreshAll(ctx context.Context) []domain.ProviderStatus {
	opts := concurrency.ParallelOptions{MaxWorkers: len(a.providers)}
	concurrency.ForEach(ctx, a.providers, opts,
		func(ctx context.Context, _ int, p providers.PriceProvider) error {
			r, ok := p.(providers.Refresher)
			if !ok {
				available := p.IsAvailable(ctx)
				a.status.Update(p.Name(), func(st *domain.ProviderStatus) {
					st.Available = available
					st.LastCheck = time.Now()
				})
				return nil
			}

			count, err := r.Refresh(ctx)
			now := time.Now()
			a.status.Update(p.Name(), func(st *domain.ProviderStatus) {
				st.LastCheck = now
				if err != nil {
					st.Available = false
					st.Error = err.Error()
					return
				}
				st.Available = true
				st.Error = ""
				st.LastRefresh = &now
				st.ItemCount = count
			})
			if err != nil {
				a.logger.Warn("provider refresh failed", "provider", p.Name(), "error", err)
			}
			return nil
		})
	return a.status.All()
}

// noteFailure records an operational error against the provider. Auth
// failures flip the provider unavailable so later searches skip it visibly.
func (a *Aggregator) noteFailure(name string, err error) {
	a.logger.Warn("provider error", "provider", name, "error", err)
	a.status.Update(name, func(st *domain.ProviderStatus) {
		st.Error = err.Error()
		if fetch.IsAuth(err) {
			st.Available = false
			st.LastCheck = time.Now()
		}
	})
}
