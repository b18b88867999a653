package oracle_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/oracle"
	"github.com/trustlens/trustlens/internal/webclient"
)

func newNetClient(t *testing.T, ts *httptest.Server) webclient.WebClient {
	t.Helper()
	c, err := webclient.NewNetHTTPClient(webclient.DefaultConfig(), logging.NopLogger{}, ts.Client())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestHTTPClassifier_PostsTextAndParsesProbabilities(t *testing.T) {
	t.Parallel()
	var gotText, gotCT string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotCT = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		var req map[string]string
		_ = json.Unmarshal(b, &req)
		gotText = req["text"]
		_, _ = io.WriteString(w, `{"probabilities":{"legitimate":0.25,"scam":0.75},"model":"nb-v3"}`)
	}))
	defer ts.Close()

	c, err := oracle.NewHTTPClassifier(ts.URL+"/predict", newNetClient(t, ts), nil)
	require.NoError(t, err)

	probs, err := c.PredictProbabilities(context.Background(), "claim your reward")
	require.NoError(t, err)
	assert.Equal(t, "claim your reward", gotText)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, []oracle.ClassProbability{
		{Class: oracle.ClassScam, Probability: 0.75},
		{Class: oracle.ClassLegitimate, Probability: 0.25},
	}, probs)
}

func TestHTTPClassifier_FailuresAreUnavailable(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"bad json", http.StatusOK, `not json`},
		{"missing class", http.StatusOK, `{"probabilities":{"scam":1}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer ts.Close()

			c, err := oracle.NewHTTPClassifier(ts.URL, newNetClient(t, ts), nil)
			require.NoError(t, err)
			_, err = c.PredictProbabilities(context.Background(), "x")
			assert.ErrorIs(t, err, oracle.ErrUnavailable)
		})
	}
}

func TestHTTPClassifier_Unreachable(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.NotFoundHandler())
	client := newNetClient(t, ts)
	url := ts.URL
	ts.Close()

	c, err := oracle.NewHTTPClassifier(url, client, nil)
	require.NoError(t, err)
	_, err = c.PredictProbabilities(context.Background(), "x")
	assert.ErrorIs(t, err, oracle.ErrUnavailable)
}

func TestNewHTTPClassifier_Validation(t *testing.T) {
	t.Parallel()
	_, err := oracle.NewHTTPClassifier("", nil, nil)
	assert.Error(t, err)
	_, err = oracle.NewHTTPClassifier("http://localhost", nil, nil)
	assert.Error(t, err)
}
