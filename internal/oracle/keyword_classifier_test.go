package oracle_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustlens/trustlens/internal/oracle"
)

func defaultKeyword(t *testing.T) *oracle.KeywordClassifier {
	t.Helper()
	m, err := oracle.LoadKeywordModel("")
	require.NoError(t, err)
	c, err := oracle.NewKeywordClassifier(m)
	require.NoError(t, err)
	return c
}

func scamProb(t *testing.T, c oracle.ClassifierOracle, text string) float64 {
	t.Helper()
	probs, err := c.PredictProbabilities(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, probs, 2)
	assert.Equal(t, oracle.ClassScam, probs[0].Class)
	assert.Equal(t, oracle.ClassLegitimate, probs[1].Class)
	assert.InDelta(t, 1.0, probs[0].Probability+probs[1].Probability, 1e-9)
	return probs[0].Probability
}

func TestKeywordClassifier_DefaultModelLoads(t *testing.T) {
	t.Parallel()
	c := defaultKeyword(t)
	assert.NotEmpty(t, c.Version())
}

func TestKeywordClassifier_ScamOutranksOrdinaryText(t *testing.T) {
	t.Parallel()
	c := defaultKeyword(t)

	scam := scamProb(t, c, "URGENT: Congratulations winner! Claim your prize now, act now and verify your account with a gift card.")
	plain := scamProb(t, c, "About us. Read our documentation, privacy policy and terms of service, or contact our careers team.")

	assert.Greater(t, scam, 0.9)
	assert.Less(t, plain, 0.1)
}

func TestKeywordClassifier_ObfuscatedTokens(t *testing.T) {
	t.Parallel()
	c := defaultKeyword(t)

	clean := scamProb(t, c, "weather forecast for tomorrow")
	leet := scamProb(t, c, "fr33 j4ckp0t w1nner")
	typo := scamProb(t, c, "congratulatons you are a lotery winer")

	assert.Greater(t, leet, clean)
	assert.Greater(t, typo, clean)
}

func TestKeywordClassifier_EmptyTextUnavailable(t *testing.T) {
	t.Parallel()
	c := defaultKeyword(t)
	_, err := c.PredictProbabilities(context.Background(), "  ...  ")
	assert.ErrorIs(t, err, oracle.ErrUnavailable)
}

func TestKeywordClassifier_CancelledContext(t *testing.T) {
	t.Parallel()
	c := defaultKeyword(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.PredictProbabilities(ctx, "hello")
	assert.ErrorIs(t, err, oracle.ErrUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadKeywordModel_FromFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: test
bias: 0
terms:
  - {token: "Gift Card", weight: 2}
`), 0o600))

	m, err := oracle.LoadKeywordModel(path)
	require.NoError(t, err)
	assert.Equal(t, "test", m.Version)
	assert.Equal(t, "gift card", m.Terms[0].Token)

	c, err := oracle.NewKeywordClassifier(m)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, scamProb(t, c, "nothing relevant"), 1e-9)
	assert.Greater(t, scamProb(t, c, "buy a gift card"), 0.85)
}

func TestParseKeywordModel_Errors(t *testing.T) {
	t.Parallel()
	_, err := oracle.ParseKeywordModel([]byte("terms: ["))
	assert.Error(t, err)

	_, err = oracle.ParseKeywordModel([]byte("version: x\nterms: []\n"))
	assert.Error(t, err)

	_, err = oracle.ParseKeywordModel([]byte("terms:\n  - {token: '!!', weight: 1}\n"))
	assert.Error(t, err)

	_, err = oracle.LoadKeywordModel(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
