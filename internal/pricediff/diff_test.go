package pricediff

import (
	"math"
	"testing"

	"price-desk/internal/domain"
)

func priced(source, id string, mid float64) domain.MarketPriceRecord {
	return domain.MarketPriceRecord{
		ItemID: id,
		Source: source,
		Prices: domain.Prices{Raw: &domain.PriceRange{Low: mid, Mid: mid, High: mid}},
	}
}

func TestDiff(t *testing.T) {
	previous := []domain.MarketPriceRecord{
		priced("coinguide", "morgan-1921", 38.5),
		priced("coinguide", "peace-1922", 32),
		priced("chartprice", "charizard-4", 300),
	}
	current := []domain.MarketPriceRecord{
		priced("coinguide", "morgan-1921", 42),   // moved
		priced("chartprice", "charizard-4", 300), // unchanged
		priced("chartprice", "blastoise-2", 120), // new
	}

	added, changed, removed := Diff(previous, current)

	if len(added) != 1 || added[0].ItemID != "blastoise-2" {
		t.Errorf("Unexpected added set: %+v", added)
	}
	if len(removed) != 1 || removed[0].ItemID != "peace-1922" {
		t.Errorf("Unexpected removed set: %+v", removed)
	}
	if len(changed) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(changed))
	}
	c := changed[0]
	if c.OldPrice != 38.5 || c.NewPrice != 42 {
		t.Errorf("Unexpected change prices: %+v", c)
	}
	if math.Abs(c.PercentMove()-9.09) > 0.01 {
		t.Errorf("Expected ~9.09%% move, got %.2f", c.PercentMove())
	}
}

func TestDiffIgnoresNoise(t *testing.T) {
	previous := []domain.MarketPriceRecord{priced("coinguide", "x", 100)}
	current := []domain.MarketPriceRecord{priced("coinguide", "x", 100.3)}

	_, changed, _ := Diff(previous, current)
	if len(changed) != 0 {
		t.Errorf("Expected sub-threshold move ignored, got %+v", changed)
	}
}

func TestDiffSameSourceKeying(t *testing.T) {
	// same item id under two sources stays two entries
	previous := []domain.MarketPriceRecord{
		priced("coinguide", "morgan-1921", 38.5),
		priced("dealersheet", "morgan-1921", 36),
	}
	added, changed, removed := Diff(previous, previous)
	if len(added) != 0 || len(changed) != 0 || len(removed) != 0 {
		t.Errorf("Expected identical snapshots to diff clean, got %v %v %v", added, changed, removed)
	}
}

func TestHeadlineFallsBackToGraded(t *testing.T) {
	r := domain.MarketPriceRecord{
		Prices: domain.Prices{Graded: map[string]domain.PriceRange{
			"MS63": {Mid: 78},
			"MS65": {Mid: 180},
		}},
	}
	if got := headline(r); got != 180 {
		t.Errorf("Expected highest graded mid 180, got %v", got)
	}
}
