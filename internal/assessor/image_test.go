package assessor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustlens/trustlens/internal/assessor"
	"github.com/trustlens/trustlens/internal/oracle"
	"github.com/trustlens/trustlens/internal/testutil"
)

func TestScoreImage_GenericCountTable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	imgs := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = "https://example.com/img.png"
		}
		return out
	}

	cases := []struct {
		n    int
		want float64
	}{{0, 30}, {1, 60}, {2, 60}, {3, 85}, {5, 85}, {40, 85}}

	for _, tc := range cases {
		score, matches := assessor.ScoreImage(ctx, "https://example.com/shop", imgs(tc.n), nil)
		assert.Equal(t, tc.want, score, "images=%d", tc.n)
		assert.Zero(t, matches)
	}
}

func TestScoreImage_BlankImageURLsAreNotCounted(t *testing.T) {
	t.Parallel()
	score, _ := assessor.ScoreImage(context.Background(), "https://example.com", []string{"", "  ", "https://example.com/a.png"}, nil)
	assert.Equal(t, 60.0, score)
}

func TestScoreImage_IdentityMatchTable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cases := []struct {
		matches int
		want    float64
	}{{0, 95}, {1, 70}, {2, 70}, {3, 70}, {4, 40}, {5, 40}, {6, 40}, {7, 15}, {10, 15}}

	prev := 100.0
	for _, tc := range cases {
		id := &testutil.FakeIdentityOracle{
			Images:  map[string]string{"alice": "https://cdn.example/alice.jpg"},
			Matches: map[string]int{"https://cdn.example/alice.jpg": tc.matches},
		}
		score, matches := assessor.ScoreImage(ctx, "https://instagram.com/alice", nil, id)
		assert.Equal(t, tc.want, score, "matches=%d", tc.matches)
		assert.Equal(t, tc.matches, matches)
		assert.LessOrEqual(t, score, prev)
		prev = score
	}
}

func TestImageScorer_IdentityHandle(t *testing.T) {
	t.Parallel()
	s := assessor.NewImageScorer(assessor.DefaultConfig().Image, nil, nil)

	cases := []struct {
		url    string
		handle string
		ok     bool
	}{
		{"https://instagram.com/alice", "alice", true},
		{"https://www.instagram.com/alice/", "alice", true},
		{"https://m.facebook.com/people/bob//", "bob", true},
		{"https://x.com/carol?ref=home", "carol", true},
		{"https://github.com/octo/repo", "repo", true},
		{"https://instagram.com/", "", false},
		{"https://instagram.com", "", false},
		{"https://notinstagram.com/alice", "", false},
		{"https://instagram.com.evil.io/alice", "", false},
		{"https://example.com/alice", "", false},
	}
	for _, tc := range cases {
		handle, ok := s.IdentityHandle(tc.url)
		assert.Equal(t, tc.ok, ok, tc.url)
		assert.Equal(t, tc.handle, handle, tc.url)
	}
}

func TestImageScorer_IdentityIgnoresPageImages(t *testing.T) {
	t.Parallel()
	id := &testutil.FakeIdentityOracle{
		Images:  map[string]string{"alice": "ref"},
		Matches: map[string]int{"ref": 0},
	}
	score, _ := assessor.ScoreImage(context.Background(), "https://instagram.com/alice",
		[]string{"a", "b", "c", "d"}, id)
	assert.Equal(t, 95.0, score)
}

func TestImageScorer_IdentityFallbacks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := assessor.DefaultConfig().Image

	cases := []struct {
		name     string
		oracle   oracle.IdentityOracle
		rule     string
		degraded bool
	}{
		{"nil oracle", nil, "image:identity-oracle-missing", true},
		{"handle not found", &testutil.FakeIdentityOracle{}, "image:profile-not-found", false},
		{"empty reference", &testutil.FakeIdentityOracle{Images: map[string]string{"alice": " "}}, "image:profile-not-found", false},
		{"resolve unavailable", &testutil.FakeIdentityOracle{ResolveErr: errors.New("timeout")}, "image:profile-unresolved", true},
		{"count unavailable", &testutil.FakeIdentityOracle{
			Images:   map[string]string{"alice": "ref"},
			CountErr: oracle.ErrUnavailable,
		}, "image:similarity-unavailable", true},
		{"negative count", &testutil.FakeIdentityOracle{
			Images:  map[string]string{"alice": "ref"},
			Matches: map[string]int{"ref": -1},
		}, "image:similarity-malformed", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := assessor.NewImageScorer(cfg, tc.oracle, &testutil.DummyLogger{}).
				Evaluate(ctx, "https://instagram.com/alice", []string{"x", "y", "z"})
			assert.Equal(t, 30.0, res.Score)
			assert.Zero(t, res.MatchCount)
			assert.Equal(t, tc.degraded, res.Degraded)
			require.Len(t, res.Evidence, 1)
			assert.Equal(t, tc.rule, res.Evidence[0].RuleID)
		})
	}
}

func TestImageScorer_NotFoundSkipsSimilaritySearch(t *testing.T) {
	t.Parallel()
	id := &testutil.FakeIdentityOracle{}
	_, _ = assessor.ScoreImage(context.Background(), "https://tiktok.com/@dave", nil, id)

	assert.Equal(t, []string{"@dave"}, id.Resolved)
	assert.Empty(t, id.Counted)
}
