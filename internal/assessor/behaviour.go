package assessor

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// BehaviourScorer scores a URL from its structure alone. It performs no I/O
// and has no failure mode.
type BehaviourScorer struct {
	cfg      BehaviourConfig
	keywords []string
}

// NewBehaviourScorer lower-cases and de-duplicates the keyword lexicon once.
func NewBehaviourScorer(cfg BehaviourConfig) *BehaviourScorer {
	seen := make(map[string]struct{}, len(cfg.Keywords))
	keywords := make([]string, 0, len(cfg.Keywords))
	for _, k := range cfg.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keywords = append(keywords, k)
	}
	return &BehaviourScorer{cfg: cfg, keywords: keywords}
}

// Score returns the behavioural sub-score of rawURL.
func (b *BehaviourScorer) Score(rawURL string) float64 {
	return b.Evaluate(rawURL).Score
}

// Evaluate applies every rule once and reports each penalty as evidence.
// The result never exceeds the base and never drops below 0.
func (b *BehaviourScorer) Evaluate(rawURL string) SignalResult {
	score := b.cfg.Base
	var evidence []EvidenceItem

	penalise := func(ruleID, desc, value string, penalty float64) {
		score -= penalty
		evidence = append(evidence, EvidenceItem{
			RuleID:       ruleID,
			Signal:       SignalBehaviour,
			Description:  desc,
			Value:        value,
			Contribution: -penalty,
		})
	}

	if scheme := schemeOf(rawURL); scheme != strings.ToLower(b.cfg.SecureScheme) {
		penalise("behaviour:insecure-scheme",
			fmt.Sprintf("URL does not use %s", b.cfg.SecureScheme),
			scheme, b.cfg.InsecureSchemePenalty)
	}

	if n := utf8.RuneCountInString(rawURL); n > b.cfg.MaxLength {
		penalise("behaviour:long-url",
			fmt.Sprintf("URL is longer than %d characters", b.cfg.MaxLength),
			fmt.Sprint(n), b.cfg.LongURLPenalty)
	}

	if n := strings.Count(rawURL, "-"); n > b.cfg.MaxHyphens {
		penalise("behaviour:many-hyphens",
			fmt.Sprintf("URL contains more than %d hyphens", b.cfg.MaxHyphens),
			fmt.Sprint(n), b.cfg.HyphenPenalty)
	}

	lower := strings.ToLower(rawURL)
	for _, kw := range b.keywords {
		if strings.Contains(lower, kw) {
			penalise("behaviour:suspicious-keyword",
				"URL contains a suspicious keyword",
				kw, b.cfg.KeywordPenalty)
		}
	}

	return SignalResult{
		Signal:   SignalBehaviour,
		Score:    clampScore(score),
		Evidence: evidence,
	}
}

// schemeOf returns the lower-cased scheme of rawURL, or "" when the string
// does not parse as a URL with a scheme.
func schemeOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		if i := strings.Index(rawURL, "://"); i > 0 {
			return strings.ToLower(rawURL[:i])
		}
		return ""
	}
	return strings.ToLower(u.Scheme)
}
