package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trustlens/trustlens/internal/assessor"
	"github.com/trustlens/trustlens/internal/fetcher"
	"github.com/trustlens/trustlens/internal/history"
	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/metrics"
	"github.com/trustlens/trustlens/internal/utils"
)

var (
	// ErrInvalidURL is utils.ErrInvalidURL so callers can match either.
	ErrInvalidURL = utils.ErrInvalidURL

	// ErrNoPrevious is returned by Diff when a report has no earlier
	// analysis of the same URL.
	ErrNoPrevious = errors.New("app: no previous report for url")

	ErrNilComponents = errors.New("app: missing components")
	ErrClosed        = errors.New("app: service closed")
)

// PageFetcher retrieves the text and images of a page. Fetch never fails;
// an unreachable page yields empty content.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) fetcher.PageContent
}

// Engine scores already-fetched content.
type Engine interface {
	Analyze(ctx context.Context, in assessor.AnalysisInput) (*assessor.FusionResult, error)
}

// Service runs analyses end to end and owns the batch jobs.
type Service struct {
	cfg       *Config
	comps     *Components
	validator *utils.URLValidator
	logger    logging.Logger
	metrics   *metrics.Metrics

	jobs *jobRegistry
}

// NewService wires a Service around already-built components.
func NewService(cfg *Config, comps *Components, logger logging.Logger) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if comps == nil || comps.Fetcher == nil || comps.Engine == nil || comps.History == nil {
		return nil, ErrNilComponents
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	logger = logger.With(logging.F("component", "app"))

	m := metrics.New()
	jobs := newJobRegistry(cfg.Batch, logger)
	jobs.metrics = m

	return &Service{
		cfg:       cfg,
		comps:     comps,
		validator: utils.NewURLValidator(),
		logger:    logger,
		metrics:   m,
		jobs:      jobs,
	}, nil
}

// Open builds the components described by cfg and a Service on top of them.
func Open(ctx context.Context, cfg *Config, logger logging.Logger) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	comps, err := NewComponents(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	svc, err := NewService(cfg, comps, logger)
	if err != nil {
		_ = comps.Close()
		return nil, err
	}
	return svc, nil
}

func (s *Service) Config() *Config {
	return s.cfg
}

// Metrics returns the service's Prometheus collectors.
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}

// NormalizeURL applies scheme correction and validation. The returned
// error wraps ErrInvalidURL.
func (s *Service) NormalizeURL(rawURL string) (string, error) {
	u := utils.EnsureScheme(rawURL)
	if err := s.validator.Validate(u); err != nil {
		return "", err
	}
	return u, nil
}

// Analyze fetches rawURL, scores it and stores the report. Only an invalid
// URL fails; unreachable pages and failing oracles degrade the verdict.
func (s *Service) Analyze(ctx context.Context, rawURL string) (*history.Report, error) {
	started := time.Now()
	u, err := s.NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := withOptionalTimeout(ctx, s.cfg.FetchTimeout)
	page := s.comps.Fetcher.Fetch(fetchCtx, u)
	cancel()

	return s.analyzePage(ctx, u, page, started)
}

// AnalyzeContent scores caller-supplied text and images for rawURL without
// fetching the page.
func (s *Service) AnalyzeContent(ctx context.Context, rawURL, text string, imageURLs []string) (*history.Report, error) {
	started := time.Now()
	u, err := s.NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	if imageURLs == nil {
		imageURLs = []string{}
	}
	return s.analyzePage(ctx, u, fetcher.PageContent{URL: u, Text: text, ImageURLs: imageURLs}, started)
}

func (s *Service) analyzePage(ctx context.Context, u string, page fetcher.PageContent, started time.Time) (*history.Report, error) {
	engineCtx, cancel := withOptionalTimeout(ctx, s.cfg.OracleTimeout)
	defer cancel()

	res, err := s.comps.Engine.Analyze(engineCtx, assessor.AnalysisInput{
		URL:           u,
		ExtractedText: page.Text,
		ImageURLs:     page.ImageURLs,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", u, err)
	}

	canonical, err := utils.Canonicalize(u, s.cfg.URL)
	if err != nil {
		canonical = u
	}

	report := &history.Report{
		URL:          u,
		CanonicalURL: canonical,
		Result:       *res,
		TextSample:   page.Text,
		ImageCount:   len(page.ImageURLs),
	}
	// A storage failure must not cost the caller the verdict.
	if err := s.comps.History.Save(ctx, report); err != nil {
		s.logger.Error("failed to persist report", logging.F("url", u), logging.Err(err))
	}

	degraded := make([]string, len(res.Degraded))
	for i, sig := range res.Degraded {
		degraded[i] = string(sig)
	}
	s.metrics.ObserveAnalysis(string(res.RiskTier), res.FinalScore, degraded, time.Since(started))

	s.logger.Info("analysis complete",
		logging.F("url", u),
		logging.F("report_id", report.ID),
		logging.F("final_score", res.FinalScore),
		logging.F("risk_tier", string(res.RiskTier)),
		logging.F("degraded", res.Degraded),
	)
	return report, nil
}

// GetReport returns a stored report or history.ErrNotFound.
func (s *Service) GetReport(ctx context.Context, id string) (*history.Report, error) {
	return s.comps.History.Get(ctx, id)
}

// ListReports returns the newest reports first.
func (s *Service) ListReports(ctx context.Context, limit int) ([]*history.Report, error) {
	return s.comps.History.List(ctx, limit)
}

// Diff compares report id with the previous analysis of the same URL.
func (s *Service) Diff(ctx context.Context, id string) (*history.Comparison, error) {
	head, err := s.comps.History.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	base, err := s.comps.History.Previous(ctx, head.CanonicalURL, head.CreatedAt)
	if errors.Is(err, history.ErrNotFound) {
		return nil, ErrNoPrevious
	}
	if err != nil {
		return nil, err
	}
	return history.Compare(base, head), nil
}

// Close cancels running batches, waits for them and releases the components.
func (s *Service) Close() error {
	s.jobs.close()
	return s.comps.Close()
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
