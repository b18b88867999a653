package assessor

import (
	"context"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/oracle"
)

// TextScorer turns a classifier's confidence into a trust score.
//
// The score is 100 * (1 - max posterior), rounded to 2 decimals, whichever
// class won. A confident "legitimate" prediction therefore scores low, the
// same as a confident "scam" prediction. This looks backwards for scam
// detection; changing it shifts every stored score, so bump ScoringVersion
// with it.
type TextScorer struct {
	cfg    TextConfig
	oracle oracle.ClassifierOracle
	logger logging.Logger
}

func NewTextScorer(cfg TextConfig, classifier oracle.ClassifierOracle, logger logging.Logger) *TextScorer {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &TextScorer{cfg: cfg, oracle: classifier, logger: logger}
}

// Score returns the text sub-score.
func (t *TextScorer) Score(ctx context.Context, text string) float64 {
	return t.Evaluate(ctx, text).Score
}

// Evaluate classifies text and never fails: every problem yields the
// fallback score with Degraded set.
func (t *TextScorer) Evaluate(ctx context.Context, text string) SignalResult {
	if strings.TrimSpace(text) == "" {
		return t.fallback("text:empty", "no text to classify", "")
	}
	if t.oracle == nil {
		return t.fallback("text:oracle-missing", "no classifier configured", "")
	}

	probs, err := t.oracle.PredictProbabilities(ctx, text)
	if err != nil {
		t.logger.Warn("classifier unavailable, using fallback text score", logging.Err(err))
		return t.fallback("text:oracle-unavailable", "classifier failed", err.Error())
	}

	best, ok := t.winner(probs)
	if !ok {
		t.logger.Warn("classifier returned a malformed prediction, using fallback text score",
			logging.F("prediction", probs))
		return t.fallback("text:malformed-prediction", "classifier returned a malformed prediction", "")
	}

	score := decimal.NewFromInt(1).
		Sub(decimal.NewFromFloat(best.Probability)).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()

	return SignalResult{
		Signal:  SignalText,
		Score:   clampScore(score),
		Verdict: string(best.Class),
		Evidence: []EvidenceItem{{
			RuleID:       "text:classifier-confidence",
			Signal:       SignalText,
			Description:  "trust is the classifier's uncertainty about its winning class",
			Value:        decimal.NewFromFloat(best.Probability).String(),
			Contribution: clampScore(score),
		}},
	}
}

// winner returns the most probable class. Ties keep the first entry.
func (t *TextScorer) winner(probs []oracle.ClassProbability) (oracle.ClassProbability, bool) {
	if len(probs) == 0 {
		return oracle.ClassProbability{}, false
	}
	var sum float64
	best := probs[0]
	for _, p := range probs {
		if math.IsNaN(p.Probability) || p.Probability < 0 || p.Probability > 1 {
			return oracle.ClassProbability{}, false
		}
		sum += p.Probability
		if p.Probability > best.Probability {
			best = p
		}
	}
	if math.Abs(sum-1) > t.cfg.ProbabilityTolerance {
		return oracle.ClassProbability{}, false
	}
	return best, true
}

func (t *TextScorer) fallback(ruleID, desc, value string) SignalResult {
	return SignalResult{
		Signal:   SignalText,
		Score:    t.cfg.FallbackScore,
		Degraded: true,
		Evidence: []EvidenceItem{{
			RuleID:       ruleID,
			Signal:       SignalText,
			Description:  desc,
			Value:        value,
			Contribution: t.cfg.FallbackScore,
		}},
	}
}
