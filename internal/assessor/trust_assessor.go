package assessor

import (
	"context"
	"fmt"
	"strings"

	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/oracle"
)

// TrustAssessor is the multi-signal trust-scoring engine. It holds no
// mutable state after construction and is safe for concurrent use; the
// injected oracles must be too.
type TrustAssessor struct {
	cfg       *Config
	behaviour *BehaviourScorer
	text      *TextScorer
	image     *ImageScorer
	fuser     *Fuser
	logger    logging.Logger
}

// NewTrustAssessor validates cfg and wires the scorers to the given oracles.
// Either oracle may be nil; the corresponding scorer then always falls back.
func NewTrustAssessor(cfg *Config, classifier oracle.ClassifierOracle, identity oracle.IdentityOracle, logger logging.Logger) (*TrustAssessor, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}

	l := logger.With(logging.F("component", "trust-assessor"))
	a := &TrustAssessor{
		cfg:       cfg,
		behaviour: NewBehaviourScorer(cfg.Behaviour),
		text:      NewTextScorer(cfg.Text, classifier, l.With(logging.F("signal", string(SignalText)))),
		image:     NewImageScorer(cfg.Image, identity, l.With(logging.F("signal", string(SignalImage)))),
		fuser:     NewFuser(cfg.Fusion),
		logger:    l,
	}

	l.Debug("trust assessor constructed",
		logging.F("scoring_version", cfg.ScoringVersion),
		logging.F("classifier", fmt.Sprintf("%T", classifier)),
		logging.F("identity_oracle", fmt.Sprintf("%T", identity)))

	return a, nil
}

// Config returns the configuration the assessor was built with.
func (a *TrustAssessor) Config() *Config {
	return a.cfg
}

// Analyze scores in and returns the fused verdict. Oracle failures degrade
// the affected signal but never fail the call; only an input without a URL
// is rejected.
func (a *TrustAssessor) Analyze(ctx context.Context, in AnalysisInput) (*FusionResult, error) {
	if strings.TrimSpace(in.URL) == "" {
		return nil, ErrMissingURL
	}

	text := truncateRunes(in.ExtractedText, a.cfg.MaxTextLength)

	behaviour := a.behaviour.Evaluate(in.URL)
	textRes := a.text.Evaluate(ctx, text)
	image := a.image.Evaluate(ctx, in.URL, in.ImageURLs)

	res := a.fuser.Fuse(behaviour.Score, textRes.Score, image.Score)
	res.MatchCount = image.MatchCount
	res.TextVerdict = textRes.Verdict
	res.ScoringVersion = a.cfg.ScoringVersion

	for _, r := range []SignalResult{behaviour, textRes, image} {
		if r.Degraded {
			res.Degraded = append(res.Degraded, r.Signal)
		}
		res.Evidence = append(res.Evidence, r.Evidence...)
	}

	a.logger.Debug("analysis complete",
		logging.F("url", in.URL),
		logging.F("final_score", res.FinalScore),
		logging.F("risk_tier", string(res.RiskTier)),
		logging.F("degraded", len(res.Degraded)))

	return &res, nil
}

// ScoreBehaviour, ScoreText, ScoreImage and Fuse expose the individual
// components directly, for callers that want one signal without a full
// analysis.

func (a *TrustAssessor) ScoreBehaviour(rawURL string) float64 {
	return a.behaviour.Score(rawURL)
}

func (a *TrustAssessor) ScoreText(ctx context.Context, text string) float64 {
	return a.text.Score(ctx, truncateRunes(text, a.cfg.MaxTextLength))
}

func (a *TrustAssessor) ScoreImage(ctx context.Context, rawURL string, imageURLs []string) (float64, int) {
	return a.image.Score(ctx, rawURL, imageURLs)
}

func (a *TrustAssessor) Fuse(behaviour, text, image float64) FusionResult {
	res := a.fuser.Fuse(behaviour, text, image)
	res.ScoringVersion = a.cfg.ScoringVersion
	return res
}

func truncateRunes(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
