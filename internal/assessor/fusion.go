package assessor

import (
	"github.com/shopspring/decimal"
)

// Fuser combines the three sub-scores with fixed weights and classifies
// the result. Arithmetic is done in decimal so that rounding to 2 places
// and threshold comparisons are exact.
type Fuser struct {
	behaviour decimal.Decimal
	image     decimal.Decimal
	text      decimal.Decimal
	low       decimal.Decimal
	medium    decimal.Decimal
}

func NewFuser(cfg FusionConfig) *Fuser {
	return &Fuser{
		behaviour: decimal.NewFromFloat(cfg.Weights.Behaviour),
		image:     decimal.NewFromFloat(cfg.Weights.Image),
		text:      decimal.NewFromFloat(cfg.Weights.Text),
		low:       decimal.NewFromFloat(cfg.Thresholds.Low),
		medium:    decimal.NewFromFloat(cfg.Thresholds.Medium),
	}
}

// FinalScore returns round(text*wt + image*wi + behaviour*wb, 2).
func (f *Fuser) FinalScore(behaviour, text, image float64) float64 {
	return f.finalDecimal(behaviour, text, image).InexactFloat64()
}

func (f *Fuser) finalDecimal(behaviour, text, image float64) decimal.Decimal {
	sum := decimal.NewFromFloat(clampScore(text)).Mul(f.text).
		Add(decimal.NewFromFloat(clampScore(image)).Mul(f.image)).
		Add(decimal.NewFromFloat(clampScore(behaviour)).Mul(f.behaviour))
	return sum.Round(2)
}

// Classify maps a final score onto a risk tier. The score is clamped to
// [0,100] first, so NaN and -Inf are HIGH and +Inf is LOW.
func (f *Fuser) Classify(score float64) RiskTier {
	return f.classify(decimal.NewFromFloat(clampScore(score)))
}

func (f *Fuser) classify(score decimal.Decimal) RiskTier {
	switch {
	case score.GreaterThanOrEqual(f.low):
		return RiskLow
	case score.GreaterThanOrEqual(f.medium):
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Fuse produces the FusionResult for three sub-scores. Match count and the
// supplementary fields are left for the caller to fill in.
func (f *Fuser) Fuse(behaviour, text, image float64) FusionResult {
	final := f.finalDecimal(behaviour, text, image)
	return FusionResult{
		FinalScore: final.InexactFloat64(),
		RiskTier:   f.classify(final),
		ComponentScores: ComponentScores{
			Behaviour: clampScore(behaviour),
			Text:      clampScore(text),
			Image:     clampScore(image),
		},
	}
}
