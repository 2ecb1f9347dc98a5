package domain

// Recommendation is the final buy decision for a proposed payout.
type Recommendation string

const (
	RecommendAccept  Recommendation = "accept"
	RecommendDecline Recommendation = "decline"
	RecommendReview  Recommendation = "review"
)

// Confidence is a coarse rating of how much pricing evidence was available.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// EvaluationResult is the outcome of one evaluation call. It is built fresh
// per call and never mutated or persisted by this subsystem.
type EvaluationResult struct {
	SuggestedPrice   float64        `json:"suggestedPrice"`
	ClientPayout     float64        `json:"clientPayout"`
	Margin           float64        `json:"margin"`
	MarginPercent    float64        `json:"marginPercent"`
	Recommendation   Recommendation `json:"recommendation"`
	Reasoning        string         `json:"reasoning"`
	Risks            []string       `json:"risks"`
	MarketConfidence Confidence     `json:"marketConfidence"`
}
