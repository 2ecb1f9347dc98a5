// Package evaluate turns aggregated market data plus a proposed client payout
// into a deterministic, explainable buy decision.
package evaluate

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"price-desk/internal/domain"
)

// Margin bands, in percent of suggested price.
const (
	acceptMarginPct      = 15.0
	declineMarginPct     = 5.0
	thinMarginPct        = 10.0
	buyNowDiscount       = 0.9
	minCompsForAverage   = 10
	minCompsForFullTrust = 5
	gradeConfidenceFloor = 0.7
)

// DealerQuote is a dealer guide's bid/ask pair for the item.
type DealerQuote struct {
	Bid float64
	Ask float64
}

// MarketData carries every pricing signal the aggregator could gather for one
// item. Absent signals stay nil; they simply drop out of the weighted average.
type MarketData struct {
	SoldPrices     []float64
	ActiveListings int
	Dealer         *DealerQuote
	GuideValue     *float64
	BuyNowPrice    *float64
}

// Input is one evaluation request. Grade is an opaque estimate from an
// external identification step; nil means no grade was attempted.
type Input struct {
	ClientPayout float64
	Market       MarketData
	Grade        *domain.GradeEstimate
}

type Engine struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Evaluate computes the suggested price as a weighted average of whichever
// market signals are present, classifies the margin against the payout, and
// enumerates every applicable risk. Partial data never fails; it only lowers
// the confidence rating. A negative payout is a caller bug and errors hard.
func (e *Engine) Evaluate(in Input) (*domain.EvaluationResult, error) {
	if in.ClientPayout < 0 {
		return nil, fmt.Errorf("client payout must not be negative, got %.2f", in.ClientPayout)
	}

	sources, suggested := weightedPrice(in.Market)
	margin := suggested - in.ClientPayout
	marginPct := 0.0
	if suggested > 0 {
		marginPct = margin / suggested * 100
	}

	confidence := marketConfidence(in.Market)
	rec := classify(marginPct, confidence)
	if suggested == 0 {
		rec = domain.RecommendDecline
	}

	res := &domain.EvaluationResult{
		SuggestedPrice:   suggested,
		ClientPayout:     in.ClientPayout,
		Margin:           margin,
		MarginPercent:    marginPct,
		Recommendation:   rec,
		Risks:            riskFlags(in, marginPct),
		MarketConfidence: confidence,
	}
	res.Reasoning = reasoning(res, sources)

	e.logger.Debug("evaluation complete",
		"suggested", suggested, "marginPct", marginPct, "recommendation", rec)
	return res, nil
}

// QuickEvaluate applies only the margin-band classification to an externally
// estimated value. No sourcing or risk detail.
func (e *Engine) QuickEvaluate(clientPayout, estimatedValue float64) (*domain.EvaluationResult, error) {
	if clientPayout < 0 {
		return nil, fmt.Errorf("client payout must not be negative, got %.2f", clientPayout)
	}

	margin := estimatedValue - clientPayout
	marginPct := 0.0
	if estimatedValue > 0 {
		marginPct = margin / estimatedValue * 100
	}
	rec := classify(marginPct, domain.ConfidenceMedium)
	if estimatedValue <= 0 {
		rec = domain.RecommendDecline
	}
	return &domain.EvaluationResult{
		SuggestedPrice:   estimatedValue,
		ClientPayout:     clientPayout,
		Margin:           margin,
		MarginPercent:    marginPct,
		Recommendation:   rec,
		Reasoning:        fmt.Sprintf("quick evaluation: margin %.1f%% against estimated value %.2f", marginPct, estimatedValue),
		MarketConfidence: domain.ConfidenceMedium,
	}, nil
}

// weightedPrice folds the present signals into one price. Returns the names
// of the contributing sources for the reasoning string.
func weightedPrice(m MarketData) ([]string, float64) {
	var (
		sources   []string
		sum       float64
		weightSum float64
	)
	add := func(name string, value, weight float64) {
		sources = append(sources, name)
		sum += value * weight
		weightSum += weight
	}

	if len(m.SoldPrices) > 0 {
		add("sold-comparables median", median(m.SoldPrices), 3)
		if len(m.SoldPrices) >= minCompsForAverage {
			add("sold-comparables average", mean(m.SoldPrices), 2)
		}
	}
	if m.Dealer != nil {
		add("dealer bid/ask midpoint", (m.Dealer.Bid+m.Dealer.Ask)/2, 2)
	}
	if m.GuideValue != nil {
		add("price-guide value", *m.GuideValue, 1)
	}
	if m.BuyNowPrice != nil {
		add("discounted buy-now listing", *m.BuyNowPrice*buyNowDiscount, 1)
	}

	if weightSum == 0 {
		return nil, 0
	}
	return sources, sum / weightSum
}

func classify(marginPct float64, confidence domain.Confidence) domain.Recommendation {
	switch {
	case marginPct >= acceptMarginPct:
		// a fat margin on thin evidence still needs a human look
		if confidence == domain.ConfidenceLow {
			return domain.RecommendReview
		}
		return domain.RecommendAccept
	case marginPct < declineMarginPct:
		return domain.RecommendDecline
	default:
		return domain.RecommendReview
	}
}

func riskFlags(in Input, marginPct float64) []string {
	var risks []string
	m := in.Market

	if len(m.SoldPrices) < minCompsForFullTrust {
		risks = append(risks, "limited sales data")
	}
	if len(m.SoldPrices) > 0 {
		lo, hi := minMax(m.SoldPrices)
		if med := median(m.SoldPrices); med > 0 && (hi-lo)/med > 0.5 {
			risks = append(risks, "high price variance")
		}
	}
	if in.Grade != nil && in.Grade.Confidence < gradeConfidenceFloor {
		risks = append(risks, "low grade confidence")
	}
	if m.Dealer == nil && m.GuideValue == nil {
		risks = append(risks, "no dealer pricing available")
	}
	if marginPct < thinMarginPct {
		risks = append(risks, "thin margin")
	}
	if m.ActiveListings > 2*len(m.SoldPrices) {
		risks = append(risks, "high supply")
	}
	return risks
}

// marketConfidence scores the available evidence 0-7 and buckets it.
func marketConfidence(m MarketData) domain.Confidence {
	score := 0
	switch n := len(m.SoldPrices); {
	case n >= 20:
		score += 3
	case n >= 10:
		score += 2
	case n >= 5:
		score += 1
	}
	if m.Dealer != nil {
		score += 2
	}
	if m.GuideValue != nil {
		score++
	}
	if m.BuyNowPrice != nil {
		score++
	}
	switch {
	case score >= 5:
		return domain.ConfidenceHigh
	case score >= 3:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// reasoning renders an explanation that a reader can reproduce from the other
// result fields.
func reasoning(res *domain.EvaluationResult, sources []string) string {
	if res.SuggestedPrice == 0 {
		return "no market data available; declined"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "suggested price %.2f from %s; ", res.SuggestedPrice, strings.Join(sources, ", "))
	fmt.Fprintf(&b, "margin %.1f%% against payout %.2f; ", res.MarginPercent, res.ClientPayout)
	switch res.Recommendation {
	case domain.RecommendAccept:
		fmt.Fprintf(&b, "margin at or above %.0f%% threshold: accept", acceptMarginPct)
	case domain.RecommendDecline:
		fmt.Fprintf(&b, "margin below %.0f%% threshold: decline", declineMarginPct)
	default:
		if res.MarketConfidence == domain.ConfidenceLow && res.MarginPercent >= acceptMarginPct {
			b.WriteString("low market confidence on a high margin: review")
		} else {
			fmt.Fprintf(&b, "margin between %.0f%% and %.0f%%: review", declineMarginPct, acceptMarginPct)
		}
	}
	return b.String()
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
