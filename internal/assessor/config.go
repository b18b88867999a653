package assessor

import (
	"fmt"
	"math"
	"sort"
)

// Config holds every tunable constant of the engine. DefaultConfig carries
// the documented defaults; the scoring code never hardcodes them.
type Config struct {
	// ScoringVersion is stamped on every FusionResult for auditability.
	ScoringVersion string `mapstructure:"scoring_version"`

	// MaxTextLength caps extracted text (in characters) before classification.
	MaxTextLength int `mapstructure:"max_text_length"`

	Behaviour BehaviourConfig `mapstructure:"behaviour"`
	Text      TextConfig      `mapstructure:"text"`
	Image     ImageConfig     `mapstructure:"image"`
	Fusion    FusionConfig    `mapstructure:"fusion"`
}

// BehaviourConfig tunes the URL-structure heuristics.
type BehaviourConfig struct {
	Base float64 `mapstructure:"base"`

	SecureScheme          string  `mapstructure:"secure_scheme"`
	InsecureSchemePenalty float64 `mapstructure:"insecure_scheme_penalty"`

	// MaxLength is the longest URL (in characters) that is not penalised.
	MaxLength      int     `mapstructure:"max_length"`
	LongURLPenalty float64 `mapstructure:"long_url_penalty"`

	// MaxHyphens is the largest hyphen count that is not penalised.
	MaxHyphens    int     `mapstructure:"max_hyphens"`
	HyphenPenalty float64 `mapstructure:"hyphen_penalty"`

	// Keywords are matched case-insensitively as substrings; each distinct
	// hit costs KeywordPenalty.
	Keywords       []string `mapstructure:"keywords"`
	KeywordPenalty float64  `mapstructure:"keyword_penalty"`
}

// TextConfig tunes the classifier-backed text scorer.
type TextConfig struct {
	// FallbackScore is used whenever classification cannot be trusted.
	FallbackScore float64 `mapstructure:"fallback_score"`

	// ProbabilityTolerance is how far the class probabilities may drift
	// from summing to 1 before a prediction is treated as malformed.
	ProbabilityTolerance float64 `mapstructure:"probability_tolerance"`
}

// Band maps every count >= Min (up to the next band) to Score.
type Band struct {
	Min   int     `mapstructure:"min"`
	Score float64 `mapstructure:"score"`
}

// ImageConfig tunes both image scoring strategies.
type ImageConfig struct {
	// IdentityHosts are registrable domains whose profile URLs trigger the
	// identity-matching strategy.
	IdentityHosts []string `mapstructure:"identity_hosts"`

	// UnresolvedScore is returned when a profile image cannot be resolved
	// or the similarity search fails.
	UnresolvedScore float64 `mapstructure:"unresolved_score"`

	// MatchBands map reverse-search match counts to scores.
	MatchBands []Band `mapstructure:"match_bands"`

	// CountBands map on-page image counts to scores.
	CountBands []Band `mapstructure:"count_bands"`
}

// Weights are the fusion weights; they must sum to 1.
type Weights struct {
	Behaviour float64 `mapstructure:"behaviour"`
	Image     float64 `mapstructure:"image"`
	Text      float64 `mapstructure:"text"`
}

// Thresholds split the final score into tiers: score >= Low is LOW risk,
// score >= Medium is MEDIUM risk, anything below is HIGH risk.
type Thresholds struct {
	Low    float64 `mapstructure:"low"`
	Medium float64 `mapstructure:"medium"`
}

type FusionConfig struct {
	Weights    Weights    `mapstructure:"weights"`
	Thresholds Thresholds `mapstructure:"thresholds"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		ScoringVersion: "v1.0.0",
		MaxTextLength:  5000,
		Behaviour: BehaviourConfig{
			Base:                  90,
			SecureScheme:          "https",
			InsecureSchemePenalty: 25,
			MaxLength:             75,
			LongURLPenalty:        15,
			MaxHyphens:            3,
			HyphenPenalty:         10,
			Keywords:              []string{"free", "win", "offer", "cheap", "prize", "money"},
			KeywordPenalty:        10,
		},
		Text: TextConfig{
			FallbackScore:        50,
			ProbabilityTolerance: 1e-3,
		},
		Image: ImageConfig{
			IdentityHosts: []string{
				"instagram.com",
				"facebook.com",
				"twitter.com",
				"x.com",
				"tiktok.com",
				"linkedin.com",
				"threads.net",
				"youtube.com",
				"github.com",
			},
			UnresolvedScore: 30,
			MatchBands: []Band{
				{Min: 0, Score: 95},
				{Min: 1, Score: 70},
				{Min: 4, Score: 40},
				{Min: 7, Score: 15},
			},
			CountBands: []Band{
				{Min: 0, Score: 30},
				{Min: 1, Score: 60},
				{Min: 3, Score: 85},
			},
		},
		Fusion: FusionConfig{
			Weights: Weights{
				Behaviour: 0.45,
				Image:     0.30,
				Text:      0.25,
			},
			Thresholds: Thresholds{
				Low:    75,
				Medium: 40,
			},
		},
	}
}

// Validate reports the first inconsistency in c, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.MaxTextLength <= 0 {
		return fmt.Errorf("%w: max_text_length must be > 0 (got %d)", ErrInvalidConfig, c.MaxTextLength)
	}

	b := c.Behaviour
	if !inScoreRange(b.Base) {
		return fmt.Errorf("%w: behaviour.base must be within [0,100] (got %v)", ErrInvalidConfig, b.Base)
	}
	for name, p := range map[string]float64{
		"insecure_scheme_penalty": b.InsecureSchemePenalty,
		"long_url_penalty":        b.LongURLPenalty,
		"hyphen_penalty":          b.HyphenPenalty,
		"keyword_penalty":         b.KeywordPenalty,
	} {
		if p < 0 {
			return fmt.Errorf("%w: behaviour.%s must be >= 0 (got %v)", ErrInvalidConfig, name, p)
		}
	}
	if b.SecureScheme == "" {
		return fmt.Errorf("%w: behaviour.secure_scheme is empty", ErrInvalidConfig)
	}

	if !inScoreRange(c.Text.FallbackScore) {
		return fmt.Errorf("%w: text.fallback_score must be within [0,100] (got %v)", ErrInvalidConfig, c.Text.FallbackScore)
	}
	if c.Text.ProbabilityTolerance < 0 {
		return fmt.Errorf("%w: text.probability_tolerance must be >= 0", ErrInvalidConfig)
	}

	if !inScoreRange(c.Image.UnresolvedScore) {
		return fmt.Errorf("%w: image.unresolved_score must be within [0,100] (got %v)", ErrInvalidConfig, c.Image.UnresolvedScore)
	}
	if err := validateBands("image.match_bands", c.Image.MatchBands); err != nil {
		return err
	}
	if err := validateBands("image.count_bands", c.Image.CountBands); err != nil {
		return err
	}

	w := c.Fusion.Weights
	if w.Behaviour < 0 || w.Image < 0 || w.Text < 0 {
		return fmt.Errorf("%w: fusion weights must be >= 0", ErrInvalidConfig)
	}
	if sum := w.Behaviour + w.Image + w.Text; !(math.Abs(sum-1) <= 1e-9) {
		return fmt.Errorf("%w: fusion weights must sum to 1 (got %v)", ErrInvalidConfig, sum)
	}
	th := c.Fusion.Thresholds
	if !inScoreRange(th.Low) || !inScoreRange(th.Medium) || th.Medium > th.Low {
		return fmt.Errorf("%w: fusion thresholds need 0 <= medium <= low <= 100 (got low=%v medium=%v)", ErrInvalidConfig, th.Low, th.Medium)
	}
	return nil
}

func validateBands(name string, bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrInvalidConfig, name)
	}
	if bands[0].Min != 0 {
		return fmt.Errorf("%w: %s must start at 0", ErrInvalidConfig, name)
	}
	for i, band := range bands {
		if !inScoreRange(band.Score) {
			return fmt.Errorf("%w: %s[%d] score out of range", ErrInvalidConfig, name, i)
		}
		if i > 0 && band.Min <= bands[i-1].Min {
			return fmt.Errorf("%w: %s must be strictly ascending", ErrInvalidConfig, name)
		}
	}
	return nil
}

// lookupBand returns the score of the last band whose Min is <= n. Bands are
// validated to start at 0, so any n >= 0 hits a band.
func lookupBand(bands []Band, n int) float64 {
	i := sort.Search(len(bands), func(i int) bool { return bands[i].Min > n })
	if i == 0 {
		return bands[0].Score
	}
	return bands[i-1].Score
}

func inScoreRange(v float64) bool {
	return v >= 0 && v <= 100 && !math.IsNaN(v)
}
