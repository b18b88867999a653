// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/oracle"
	"github.com/trustlens/trustlens/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of warnings recorded so far.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyPage is a canned response served by DummyWebClient.
type DummyPage struct {
	Status  int
	Body    string
	Headers http.Header
}

// DummyWebClient implements webclient.WebClient.
// Pages maps a URL to its canned response; unknown URLs return body
// "ok:<url>" with status 200. Set FailURLs[url] = true to force an error.
type DummyWebClient struct {
	ResponseDelay time.Duration
	Pages         map[string]DummyPage
	FailURLs      map[string]bool
	mu            sync.Mutex
	Requests      []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, &errString{"dummy fetch fail for " + req.URL}
	}

	if page, ok := d.Pages[req.URL]; ok {
		status := page.Status
		if status == 0 {
			status = http.StatusOK
		}
		headers := page.Headers
		if headers == nil {
			headers = http.Header{"Content-Type": []string{"text/html; charset=utf-8"}}
		}
		return &webclient.Response{
			Request:    req,
			Headers:    headers,
			Body:       []byte(page.Body),
			StatusCode: status,
			FetchedAt:  time.Now(),
		}, nil
	}

	return &webclient.Response{
		Request:    req,
		Body:       []byte("ok:" + req.URL),
		StatusCode: 200,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// RequestCount returns how many requests were issued.
func (d *DummyWebClient) RequestCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Requests)
}

// ─── Oracles ───────────────────────────────────────────────────────────

// FakeClassifier implements oracle.ClassifierOracle with a canned answer.
// When Err is set every call fails with it.
type FakeClassifier struct {
	Probs []oracle.ClassProbability
	Err   error

	mu    sync.Mutex
	Calls []string
}

// NewFakeClassifier returns a classifier that always predicts scam with
// probability pScam.
func NewFakeClassifier(pScam float64) *FakeClassifier {
	return &FakeClassifier{Probs: oracle.Binary(pScam)}
}

func (f *FakeClassifier) PredictProbabilities(_ context.Context, text string) ([]oracle.ClassProbability, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, text)
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]oracle.ClassProbability(nil), f.Probs...), nil
}

// FakeIdentityOracle implements oracle.IdentityOracle from two maps.
// A handle missing from Images resolves to oracle.ErrNotFound.
type FakeIdentityOracle struct {
	Images  map[string]string
	Matches map[string]int

	ResolveErr error
	CountErr   error

	mu       sync.Mutex
	Resolved []string
	Counted  []string
}

func (f *FakeIdentityOracle) ResolveProfileImage(_ context.Context, handle string) (string, error) {
	f.mu.Lock()
	f.Resolved = append(f.Resolved, handle)
	f.mu.Unlock()
	if f.ResolveErr != nil {
		return "", f.ResolveErr
	}
	img, ok := f.Images[handle]
	if !ok {
		return "", oracle.ErrNotFound
	}
	return img, nil
}

func (f *FakeIdentityOracle) CountSimilarImages(_ context.Context, ref string) (int, error) {
	f.mu.Lock()
	f.Counted = append(f.Counted, ref)
	f.mu.Unlock()
	if f.CountErr != nil {
		return 0, f.CountErr
	}
	return f.Matches[ref], nil
}

// ─── helpers ───────────────────────────────────────────────────────────

type errString struct{ s string }

func (e *errString) Error() string { return e.s }
