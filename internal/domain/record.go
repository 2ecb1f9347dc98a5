package domain

import "time"

// Category classifies what kind of collectible a record describes.
type Category string

const (
	CategoryCoin        Category = "coin"
	CategorySportsCard  Category = "sports-card"
	CategoryTradingCard Category = "trading-card"
	CategoryComic       Category = "comic"
	CategoryFunko       Category = "funko"
	CategoryOther       Category = "other"
)

// PriceRange is a low/mid/high spread for one condition tier.
// Values are in the provider's currency (USD for every current provider).
type PriceRange struct {
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
}

// Valid reports whether the range is ordered and non-negative.
func (r PriceRange) Valid() bool {
	return r.Low >= 0 && r.Low <= r.Mid && r.Mid <= r.High
}

// LastSale is the most recent recorded sale a provider knows about.
type LastSale struct {
	Price float64 `json:"price"`
	// Date keeps the provider's raw string when it could not be parsed.
	Date  string `json:"date"`
	Venue string `json:"venue"`
}

// Prices groups the raw (ungraded) spread and any graded spreads keyed by
// grade label ("MS65", "PSA 10", ...).
type Prices struct {
	Raw    *PriceRange           `json:"raw,omitempty"`
	Graded map[string]PriceRange `json:"graded,omitempty"`
}

// MarketPriceRecord is the canonical representation of one priced item inside
// this service. All providers map into this model, and everything downstream
// (aggregator, evaluation, export) consumes it.
type MarketPriceRecord struct {
	ItemID    string   `json:"itemId"` // unique within Source
	Name      string   `json:"name"`
	Category  Category `json:"category"`
	Source    string   `json:"source"`
	SourceURL string   `json:"sourceUrl,omitempty"`

	Prices     Prices    `json:"prices"`
	LastSale   *LastSale `json:"lastSale,omitempty"`
	Population int       `json:"population,omitempty"`

	LastUpdated time.Time `json:"lastUpdated"`
}

// Usable reports whether the record carries any price at all. Records without
// a raw or graded price are dropped before merging.
func (r MarketPriceRecord) Usable() bool {
	return r.Prices.Raw != nil || len(r.Prices.Graded) > 0
}

// GradeEstimate is the opaque output of the external identification/grading
// collaborator. Confidence is 0..1.
type GradeEstimate struct {
	Grade        string   `json:"grade"`
	NumericGrade *float64 `json:"numericGrade"`
	Confidence   float64  `json:"confidence"`
}
