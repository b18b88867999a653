package app

import (
	"context"
	"fmt"

	"github.com/trustlens/trustlens/internal/assessor"
	"github.com/trustlens/trustlens/internal/fetcher"
	"github.com/trustlens/trustlens/internal/history"
	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/oracle"
	"github.com/trustlens/trustlens/internal/webclient"
)

// Components are the long-lived collaborators a Service drives.
type Components struct {
	WebClient webclient.WebClient
	Fetcher   PageFetcher
	Engine    Engine
	History   history.Store
}

// NewComponents builds every component from cfg. The web client is shared
// by the fetcher and the networked oracles.
func NewComponents(ctx context.Context, cfg *Config, logger logging.Logger) (*Components, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}

	wc, err := webclient.NewWebClient(cfg.WebClient, logger)
	if err != nil {
		return nil, fmt.Errorf("new webclient: %w", err)
	}

	deps := oracle.Deps{Client: wc, Logger: logger}
	classifier, err := oracle.NewClassifier(cfg.Oracles, deps)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("new classifier: %w", err)
	}
	identity, err := oracle.NewIdentity(cfg.Oracles, deps)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("new identity oracle: %w", err)
	}

	engine, err := assessor.NewTrustAssessor(&cfg.Engine, classifier, identity, logger)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("new assessor: %w", err)
	}

	f, err := fetcher.New(cfg.Fetcher, wc, logger)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("new fetcher: %w", err)
	}

	store, err := history.Open(ctx, cfg.History, logger)
	if err != nil {
		_ = wc.Close()
		return nil, fmt.Errorf("open history: %w", err)
	}

	return &Components{
		WebClient: wc,
		Fetcher:   f,
		Engine:    engine,
		History:   store,
	}, nil
}

// Close releases the web client and the history store. Any in-flight
// analysis using them will fail.
func (c *Components) Close() error {
	var firstErr error
	if c.WebClient != nil {
		if err := c.WebClient.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close webclient: %w", err)
		}
	}
	if c.History != nil {
		if err := c.History.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close history: %w", err)
		}
	}
	return firstErr
}
