package assessor

import (
	"context"

	"github.com/trustlens/trustlens/internal/oracle"
)

// The functions below score with DefaultConfig and a no-op logger. They are
// convenient in tests and one-off tools; long-running callers should build a
// TrustAssessor once and reuse it.

// ScoreBehaviour scores a URL's structure.
func ScoreBehaviour(rawURL string) float64 {
	return NewBehaviourScorer(DefaultConfig().Behaviour).Score(rawURL)
}

// ScoreText scores extracted page text with the given classifier.
func ScoreText(ctx context.Context, text string, classifier oracle.ClassifierOracle) float64 {
	return NewTextScorer(DefaultConfig().Text, classifier, nil).Score(ctx, text)
}

// ScoreImage scores a page's images, or the identity behind a profile URL.
func ScoreImage(ctx context.Context, rawURL string, imageURLs []string, identity oracle.IdentityOracle) (float64, int) {
	return NewImageScorer(DefaultConfig().Image, identity, nil).Score(ctx, rawURL, imageURLs)
}

// Fuse combines three sub-scores with the default weights and thresholds.
func Fuse(behaviour, text, image float64) FusionResult {
	return NewFuser(DefaultConfig().Fusion).Fuse(behaviour, text, image)
}

// Classify maps a final score onto a risk tier using the default thresholds.
func Classify(score float64) RiskTier {
	return NewFuser(DefaultConfig().Fusion).Classify(score)
}
