package oracle_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustlens/trustlens/internal/oracle"
	"github.com/trustlens/trustlens/internal/testutil"
)

func TestNewClassifier_Defaults(t *testing.T) {
	t.Parallel()
	c, err := oracle.NewClassifier(oracle.Config{}, oracle.Deps{})
	require.NoError(t, err)
	assert.IsType(t, &oracle.KeywordClassifier{}, c)

	c, err = oracle.NewClassifier(oracle.Config{Classifier: "NONE"}, oracle.Deps{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewClassifier_HTTPNeedsEndpoint(t *testing.T) {
	t.Parallel()
	_, err := oracle.NewClassifier(oracle.Config{Classifier: oracle.ClassifierHTTP}, oracle.Deps{Client: &testutil.DummyWebClient{}})
	assert.Error(t, err)

	c, err := oracle.NewClassifier(oracle.Config{
		Classifier:         oracle.ClassifierHTTP,
		ClassifierEndpoint: "http://model.local/predict",
	}, oracle.Deps{Client: &testutil.DummyWebClient{}})
	require.NoError(t, err)
	assert.IsType(t, &oracle.HTTPClassifier{}, c)
}

func TestNewClassifier_Unknown(t *testing.T) {
	t.Parallel()
	_, err := oracle.NewClassifier(oracle.Config{Classifier: "bert"}, oracle.Deps{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyword")
}

func TestNewIdentity_Backends(t *testing.T) {
	t.Parallel()
	deps := oracle.Deps{Client: &testutil.DummyWebClient{}}

	o, err := oracle.NewIdentity(oracle.Config{}, deps)
	require.NoError(t, err)
	assert.IsType(t, &oracle.RandomIdentityOracle{}, o)

	o, err = oracle.NewIdentity(oracle.Config{Identity: oracle.IdentityStatic}, deps)
	require.NoError(t, err)
	assert.IsType(t, &oracle.StaticIdentityOracle{}, o)

	cfg := oracle.DefaultConfig()
	cfg.Identity = oracle.IdentityWeb
	o, err = oracle.NewIdentity(cfg, deps)
	require.NoError(t, err)
	assert.IsType(t, &oracle.WebIdentityOracle{}, o)

	o, err = oracle.NewIdentity(oracle.Config{Identity: oracle.None}, deps)
	require.NoError(t, err)
	assert.Nil(t, o)

	_, err = oracle.NewIdentity(oracle.Config{Identity: "tineye"}, deps)
	assert.Error(t, err)
}

type constClassifier struct{ p float64 }

func (c constClassifier) PredictProbabilities(context.Context, string) ([]oracle.ClassProbability, error) {
	return oracle.Binary(c.p), nil
}

func TestRegisterClassifier_Custom(t *testing.T) {
	t.Parallel()
	oracle.RegisterClassifier("const-test", func(oracle.Config, oracle.Deps) (oracle.ClassifierOracle, error) {
		return constClassifier{p: 0.3}, nil
	})
	assert.Contains(t, oracle.ListClassifiers(), "const-test")

	c, err := oracle.NewClassifier(oracle.Config{Classifier: "Const-Test"}, oracle.Deps{})
	require.NoError(t, err)
	probs, err := c.PredictProbabilities(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 0.3, probs[0].Probability)
}
