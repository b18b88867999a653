package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustlens/trustlens/internal/assessor"
	"github.com/trustlens/trustlens/internal/fetcher"
	"github.com/trustlens/trustlens/internal/history"
	"github.com/trustlens/trustlens/internal/testutil"
)

const twoImagePage = `<html><head><title>Example</title><script>var x = 1;</script></head>
<body><p>Hello   world</p><img src="/a.png"><img src="/b.png"></body></html>`

type testEnv struct {
	svc        *Service
	web        *testutil.DummyWebClient
	classifier *testutil.FakeClassifier
	identity   *testutil.FakeIdentityOracle
	store      *history.MemoryStore
	logger     *testutil.DummyLogger
}

func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Batch.MaxConcurrency = 2
	if mutate != nil {
		mutate(cfg)
	}

	env := &testEnv{
		web: &testutil.DummyWebClient{Pages: map[string]testutil.DummyPage{
			"https://example.com": {Body: twoImagePage},
		}},
		classifier: testutil.NewFakeClassifier(0.5),
		identity:   &testutil.FakeIdentityOracle{},
		store:      history.NewMemoryStore(),
		logger:     &testutil.DummyLogger{},
	}

	f, err := fetcher.New(cfg.Fetcher, env.web, env.logger)
	require.NoError(t, err)
	engine, err := assessor.NewTrustAssessor(&cfg.Engine, env.classifier, env.identity, env.logger)
	require.NoError(t, err)

	env.svc, err = NewService(cfg, &Components{
		WebClient: env.web,
		Fetcher:   f,
		Engine:    engine,
		History:   env.store,
	}, env.logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.svc.Close() })
	return env
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(nil, nil, nil)
	assert.ErrorIs(t, err, ErrNilComponents)

	cfg := DefaultConfig()
	cfg.Batch.MaxConcurrency = 0
	_, err = NewService(cfg, &Components{}, nil)
	assert.ErrorIs(t, err, ErrInvalidAppConfig)

	cfg = DefaultConfig()
	cfg.Engine.Fusion.Weights.Text = 0.5
	_, err = NewService(cfg, &Components{}, nil)
	assert.ErrorIs(t, err, assessor.ErrInvalidConfig)
}

func TestService_Analyze_SchemeCorrectionAndPersist(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	report, err := env.svc.Analyze(ctx, "  example.com ")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", report.URL)
	assert.Equal(t, "https://example.com/", report.CanonicalURL)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, 2, report.ImageCount)
	assert.Equal(t, "Hello world", report.TextSample)

	res := report.Result
	assert.Equal(t, assessor.ComponentScores{Behaviour: 90, Text: 50, Image: 60}, res.ComponentScores)
	assert.Equal(t, 71.0, res.FinalScore)
	assert.Equal(t, assessor.RiskMedium, res.RiskTier)

	stored, err := env.svc.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Result, stored.Result)
	assert.Equal(t, []string{"Hello world"}, env.classifier.Calls)
}

func TestService_Analyze_SchemelessURLWithNestedURL(t *testing.T) {
	env := newTestEnv(t, nil)

	report, err := env.svc.Analyze(context.Background(), "example.com/login?next=https://example.com/home")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/login?next=https://example.com/home", report.URL)
	assert.Equal(t, "https://example.com/login?next=https%3A%2F%2Fexample.com%2Fhome", report.CanonicalURL)
	assert.Equal(t, 90.0, report.Result.ComponentScores.Behaviour)
}

func TestService_Analyze_InvalidURL(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, raw := range []string{"", "   ", "ftp://example.com/file", "https://"} {
		_, err := env.svc.Analyze(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidURL, "input %q", raw)
	}
	assert.Zero(t, env.web.RequestCount())
}

func TestService_Analyze_UnreachablePageDegrades(t *testing.T) {
	env := newTestEnv(t, nil)
	env.web.FailURLs = map[string]bool{"http://down.example": true}

	report, err := env.svc.Analyze(context.Background(), "http://down.example")
	require.NoError(t, err)

	// no text, no images: text falls back to 50, image count 0 scores 30
	res := report.Result
	assert.Equal(t, 65.0, res.ComponentScores.Behaviour)
	assert.Equal(t, 50.0, res.ComponentScores.Text)
	assert.Equal(t, 30.0, res.ComponentScores.Image)
	assert.Contains(t, res.Degraded, assessor.SignalText)
	assert.Positive(t, env.logger.WarnCount())
}

func TestService_AnalyzeContent_SkipsFetch(t *testing.T) {
	env := newTestEnv(t, nil)

	report, err := env.svc.AnalyzeContent(context.Background(), "example.org", "claim your prize", nil)
	require.NoError(t, err)

	assert.Zero(t, env.web.RequestCount())
	assert.Equal(t, 0, report.ImageCount)
	assert.Equal(t, "claim your prize", report.TextSample)
	assert.Equal(t, 30.0, report.Result.ComponentScores.Image)
}

func TestService_ListReports(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	for _, u := range []string{"a.example", "b.example", "c.example"} {
		_, err := env.svc.Analyze(ctx, u)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	reports, err := env.svc.ListReports(ctx, 2)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "https://c.example", reports[0].URL)
	assert.Equal(t, "https://b.example", reports[1].URL)
}

func TestService_Diff(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	first, err := env.svc.Analyze(ctx, "https://example.com")
	require.NoError(t, err)

	_, err = env.svc.Diff(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNoPrevious)

	time.Sleep(time.Millisecond)
	env.web.Pages["https://example.com"] = testutil.DummyPage{Body: `<p>Win a free prize now</p>`}
	env.classifier.Probs = nil
	env.classifier.Err = errors.New("model offline")

	// trailing slash and upper-case host share the canonical key
	second, err := env.svc.Analyze(ctx, "https://EXAMPLE.com/")
	require.NoError(t, err)

	cmp, err := env.svc.Diff(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, cmp.BaseID)
	assert.Equal(t, second.ID, cmp.HeadID)
	assert.Equal(t, -2, cmp.ImageCountDelta)
	assert.Less(t, cmp.TextSimilarity, 1.0)
	assert.NotEmpty(t, cmp.TextChanges)

	_, err = env.svc.Diff(ctx, "missing")
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestService_AnalyzeConcurrent(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := env.svc.Analyze(ctx, "example.com")
			if assert.NoError(t, err) {
				assert.Equal(t, 71.0, report.Result.FinalScore)
			}
		}()
	}
	wg.Wait()

	reports, err := env.svc.ListReports(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, reports, 16)
}
