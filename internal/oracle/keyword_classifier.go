package oracle

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"

	"github.com/arbovm/levenshtein"
	"go.yaml.in/yaml/v3"
)

//go:embed models/default.yaml
var defaultKeywordModel []byte

// KeywordModel is a weighted lexicon scored with a logistic link. Terms of
// one word also match misspelled or obfuscated tokens within MaxDistance
// edits.
type KeywordModel struct {
	Version        string        `yaml:"version"`
	Bias           float64       `yaml:"bias"`
	MaxDistance    int           `yaml:"max_distance"`
	MinFuzzyLength int           `yaml:"min_fuzzy_length"`
	MaxHitsPerTerm int           `yaml:"max_hits_per_term"`
	Terms          []KeywordTerm `yaml:"terms"`
}

type KeywordTerm struct {
	Token  string  `yaml:"token"`
	Weight float64 `yaml:"weight"`
}

// ParseKeywordModel decodes and validates a YAML model.
func ParseKeywordModel(data []byte) (*KeywordModel, error) {
	var m KeywordModel
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode keyword model: %w", err)
	}
	if len(m.Terms) == 0 {
		return nil, errors.New("keyword model has no terms")
	}
	for i, t := range m.Terms {
		tok := strings.Join(tokenize(t.Token), " ")
		if tok == "" {
			return nil, fmt.Errorf("keyword model term %d is empty", i)
		}
		m.Terms[i].Token = tok
	}
	if m.MaxDistance < 0 {
		m.MaxDistance = 0
	}
	return &m, nil
}

// LoadKeywordModel reads a model from path, or returns the embedded default
// when path is empty.
func LoadKeywordModel(path string) (*KeywordModel, error) {
	if path == "" {
		return ParseKeywordModel(defaultKeywordModel)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword model: %w", err)
	}
	return ParseKeywordModel(data)
}

// KeywordClassifier is a local ClassifierOracle backed by a KeywordModel.
// It is stateless after construction.
type KeywordClassifier struct {
	model *KeywordModel
}

func NewKeywordClassifier(model *KeywordModel) (*KeywordClassifier, error) {
	if model == nil {
		return nil, errors.New("oracle: nil keyword model")
	}
	return &KeywordClassifier{model: model}, nil
}

func (k *KeywordClassifier) Version() string { return k.model.Version }

func (k *KeywordClassifier) PredictProbabilities(ctx context.Context, text string) ([]ClassProbability, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no tokens to classify", ErrUnavailable)
	}
	return Binary(k.scamProbability(tokens)), nil
}

func (k *KeywordClassifier) scamProbability(tokens []string) float64 {
	joined := " " + strings.Join(tokens, " ") + " "
	z := k.model.Bias
	for _, term := range k.model.Terms {
		hits := k.hits(term.Token, tokens, joined)
		if k.model.MaxHitsPerTerm > 0 && hits > k.model.MaxHitsPerTerm {
			hits = k.model.MaxHitsPerTerm
		}
		z += term.Weight * float64(hits)
	}
	return 1 / (1 + math.Exp(-z))
}

func (k *KeywordClassifier) hits(term string, tokens []string, joined string) int {
	if strings.Contains(term, " ") {
		return strings.Count(joined, " "+term+" ")
	}
	n := 0
	for _, tok := range tokens {
		if tok == term || k.fuzzyMatch(tok, term) {
			n++
		}
	}
	return n
}

func (k *KeywordClassifier) fuzzyMatch(tok, term string) bool {
	if k.model.MaxDistance == 0 {
		return false
	}
	if len(tok) < k.model.MinFuzzyLength || len(term) < k.model.MinFuzzyLength {
		return false
	}
	if d := len(tok) - len(term); d > k.model.MaxDistance || -d > k.model.MaxDistance {
		return false
	}
	return levenshtein.Distance(tok, term) <= k.model.MaxDistance
}

var leet = strings.NewReplacer("0", "o", "1", "i", "3", "e", "4", "a", "5", "s", "7", "t", "$", "s", "@", "a")

// tokenize lower-cases text and splits it into words. Words mixing letters
// with look-alike digits or symbols ("fr33", "pri$e") are de-obfuscated.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '$' && r != '@'
	})
	out := fields[:0]
	for _, f := range fields {
		if hasLetter(f) {
			f = leet.Replace(f)
		}
		f = strings.Trim(f, "$@")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
