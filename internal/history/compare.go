package history

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/shopspring/decimal"

	"github.com/trustlens/trustlens/internal/assessor"
)

// Comparison describes how a URL's verdict moved between two reports.
type Comparison struct {
	BaseID string `json:"base_id"`
	HeadID string `json:"head_id"`
	URL    string `json:"url"`

	BaseScore  float64 `json:"base_score"`
	HeadScore  float64 `json:"head_score"`
	ScoreDelta float64 `json:"score_delta"`

	BaseTier    assessor.RiskTier `json:"base_tier"`
	HeadTier    assessor.RiskTier `json:"head_tier"`
	TierChanged bool              `json:"tier_changed"`

	// ComponentDeltas are head minus base for each sub-score.
	ComponentDeltas assessor.ComponentScores `json:"component_deltas"`
	MatchCountDelta int                      `json:"match_count_delta"`
	ImageCountDelta int                      `json:"image_count_delta"`

	// TextSimilarity is 1 minus the edit distance over the longer text, in [0,1].
	TextSimilarity float64      `json:"text_similarity"`
	TextChanges    []TextChange `json:"text_changes"`

	// Rules that fired in only one of the two reports.
	RulesAdded   []string `json:"rules_added,omitempty"`
	RulesRemoved []string `json:"rules_removed,omitempty"`
}

// TextChange is one inserted or deleted run of text.
type TextChange struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content"`
}

// Compare diffs head against base. Either report may be nil; nil yields nil.
func Compare(base, head *Report) *Comparison {
	if base == nil || head == nil {
		return nil
	}
	c := &Comparison{
		BaseID:      base.ID,
		HeadID:      head.ID,
		URL:         head.URL,
		BaseScore:   base.Result.FinalScore,
		HeadScore:   head.Result.FinalScore,
		ScoreDelta:  delta(head.Result.FinalScore, base.Result.FinalScore),
		BaseTier:    base.Result.RiskTier,
		HeadTier:    head.Result.RiskTier,
		TierChanged: base.Result.RiskTier != head.Result.RiskTier,
		ComponentDeltas: assessor.ComponentScores{
			Behaviour: delta(head.Result.ComponentScores.Behaviour, base.Result.ComponentScores.Behaviour),
			Text:      delta(head.Result.ComponentScores.Text, base.Result.ComponentScores.Text),
			Image:     delta(head.Result.ComponentScores.Image, base.Result.ComponentScores.Image),
		},
		MatchCountDelta: head.Result.MatchCount - base.Result.MatchCount,
		ImageCountDelta: head.ImageCount - base.ImageCount,
	}
	c.TextSimilarity, c.TextChanges = diffText(base.TextSample, head.TextSample)
	c.RulesAdded, c.RulesRemoved = diffRules(base.Result.Evidence, head.Result.Evidence)
	return c
}

func delta(head, base float64) float64 {
	return decimal.NewFromFloat(head).Sub(decimal.NewFromFloat(base)).Round(2).InexactFloat64()
}

// diffText computes a semantic character diff of the two texts.
func diffText(base, head string) (float64, []TextChange) {
	changes := []TextChange{}
	if base == head {
		return 1, changes
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(base, head, false))

	for _, d := range diffs {
		var typ string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			typ = "added"
		case diffmatchpatch.DiffDelete:
			typ = "removed"
		default:
			continue
		}
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		changes = append(changes, TextChange{Type: typ, Content: d.Text})
	}

	longest := max(len([]rune(base)), len([]rune(head)))
	if longest == 0 {
		return 1, changes
	}
	sim := 1 - float64(dmp.DiffLevenshtein(diffs))/float64(longest)
	return decimal.NewFromFloat(sim).Round(4).InexactFloat64(), changes
}

func diffRules(base, head []assessor.EvidenceItem) (added, removed []string) {
	b := ruleSet(base)
	h := ruleSet(head)
	for id := range h {
		if _, ok := b[id]; !ok {
			added = append(added, id)
		}
	}
	for id := range b {
		if _, ok := h[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func ruleSet(items []assessor.EvidenceItem) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, e := range items {
		out[e.RuleID] = struct{}{}
	}
	return out
}
