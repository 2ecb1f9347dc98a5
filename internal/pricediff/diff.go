// Package pricediff compares two sets of market price records and reports
// what appeared, moved, or vanished between them. Used to track price
// movement between export snapshots.
package pricediff

import (
	"fmt"
	"math"

	"price-desk/internal/domain"
)

// Prices that move less than this fraction of the old value are noise, not
// movement.
const moveThreshold = 0.005

// Change is one item whose price moved between snapshots.
type Change struct {
	Record   domain.MarketPriceRecord
	OldPrice float64
	NewPrice float64
}

// PercentMove is the relative move against the old price.
func (c Change) PercentMove() float64 {
	if c.OldPrice == 0 {
		return 0
	}
	return (c.NewPrice - c.OldPrice) / c.OldPrice * 100
}

// Diff compares the previous snapshot with the current one, keyed by
// source+itemId. Returns:
// - added: in current but not in previous
// - changed: in both, with a meaningful price move
// - removed: in previous but gone from current
func Diff(previous, current []domain.MarketPriceRecord) (added []domain.MarketPriceRecord, changed []Change, removed []domain.MarketPriceRecord) {
	prevByID := map[string]domain.MarketPriceRecord{}
	for _, r := range previous {
		prevByID[key(r)] = r
	}

	currByID := map[string]domain.MarketPriceRecord{}
	for _, r := range current {
		currByID[key(r)] = r

		old, ok := prevByID[key(r)]
		if !ok {
			added = append(added, r)
			continue
		}
		oldPrice, newPrice := headline(old), headline(r)
		if moved(oldPrice, newPrice) {
			changed = append(changed, Change{Record: r, OldPrice: oldPrice, NewPrice: newPrice})
		}
	}

	for _, r := range previous {
		if _, ok := currByID[key(r)]; !ok {
			removed = append(removed, r)
		}
	}
	return added, changed, removed
}

func key(r domain.MarketPriceRecord) string {
	return fmt.Sprintf("%s/%s", r.Source, r.ItemID)
}

// headline picks the one price used for movement comparison: the raw mid
// when present, otherwise the highest graded mid.
func headline(r domain.MarketPriceRecord) float64 {
	if r.Prices.Raw != nil {
		return r.Prices.Raw.Mid
	}
	best := 0.0
	for _, pr := range r.Prices.Graded {
		if pr.Mid > best {
			best = pr.Mid
		}
	}
	return best
}

func moved(oldPrice, newPrice float64) bool {
	if oldPrice == 0 {
		return newPrice != 0
	}
	return math.Abs(newPrice-oldPrice)/oldPrice > moveThreshold
}
