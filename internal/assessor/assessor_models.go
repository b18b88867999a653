package assessor

import "math"

// Signal names one of the three independent inputs to a verdict.
type Signal string

const (
	SignalBehaviour Signal = "behaviour"
	SignalText      Signal = "text"
	SignalImage     Signal = "image"
)

// RiskTier is the discrete classification of a final trust score.
type RiskTier string

const (
	RiskLow    RiskTier = "LOW"
	RiskMedium RiskTier = "MEDIUM"
	RiskHigh   RiskTier = "HIGH"
)

// AnalysisInput is what the caller hands the engine: an absolute http(s)
// URL plus the artifacts already fetched from it.
type AnalysisInput struct {
	URL           string   `json:"url"`
	ExtractedText string   `json:"extracted_text"`
	ImageURLs     []string `json:"image_urls"`
}

// EvidenceItem records one rule or fallback that shaped a sub-score.
type EvidenceItem struct {
	// RuleID identifies the rule, e.g. "behaviour:insecure-scheme".
	RuleID string `json:"rule_id"`

	Signal Signal `json:"signal"`

	Description string `json:"description"`

	// Value is the raw observation that triggered the rule (keyword, count, ...).
	Value string `json:"value,omitempty"`

	// Contribution is the signed effect on the sub-score, or the score
	// assigned outright for table lookups and fallbacks.
	Contribution float64 `json:"contribution"`
}

// SignalResult is the outcome of one scorer.
type SignalResult struct {
	Signal Signal  `json:"signal"`
	Score  float64 `json:"score"`

	// Degraded is set when the scorer fell back to a fixed score because an
	// oracle failed or the input was unusable.
	Degraded bool `json:"degraded"`

	// MatchCount is only meaningful for the image signal.
	MatchCount int `json:"match_count"`

	// Verdict is the classifier's winning class for the text signal.
	Verdict string `json:"verdict,omitempty"`

	Evidence []EvidenceItem `json:"evidence,omitempty"`
}

// ComponentScores holds the three sub-scores that were fused.
type ComponentScores struct {
	Behaviour float64 `json:"behaviour"`
	Text      float64 `json:"text"`
	Image     float64 `json:"image"`
}

// FusionResult is the engine's verdict for one URL. It holds no timestamps
// or identifiers, so identical inputs and oracle answers produce identical
// results.
type FusionResult struct {
	FinalScore      float64         `json:"final_score"`
	RiskTier        RiskTier        `json:"risk_tier"`
	ComponentScores ComponentScores `json:"component_scores"`
	MatchCount      int             `json:"match_count"`

	TextVerdict    string         `json:"text_verdict,omitempty"`
	Degraded       []Signal       `json:"degraded,omitempty"`
	Evidence       []EvidenceItem `json:"evidence,omitempty"`
	ScoringVersion string         `json:"scoring_version,omitempty"`
}

// clampScore keeps a sub-score inside [0,100]. NaN counts as 0.
func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
