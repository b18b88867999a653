package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/trustlens/trustlens/internal/assessor"
	"github.com/trustlens/trustlens/internal/fetcher"
	"github.com/trustlens/trustlens/internal/history"
	"github.com/trustlens/trustlens/internal/oracle"
	"github.com/trustlens/trustlens/internal/utils"
	"github.com/trustlens/trustlens/internal/webclient"
)

var ErrInvalidAppConfig = errors.New("app: invalid config")

// Config aggregates the runtime configuration of every internal module. The
// CLI unmarshals trustlens.yaml and TRUSTLENS_* variables into it.
type Config struct {
	Server ServerConfig `mapstructure:"server"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `mapstructure:"log_level"`

	Engine    assessor.Config           `mapstructure:"engine"`
	Oracles   oracle.Config             `mapstructure:"oracles"`
	Fetcher   fetcher.Config            `mapstructure:"fetcher"`
	WebClient webclient.Config          `mapstructure:"webclient"`
	History   history.Config            `mapstructure:"history"`
	URL       utils.CanonicalizeOptions `mapstructure:"url"`
	Batch     BatchConfig               `mapstructure:"batch"`

	// FetchTimeout bounds page retrieval for one analysis.
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`

	// OracleTimeout bounds the engine run, including every oracle call.
	OracleTimeout time.Duration `mapstructure:"oracle_timeout"`
}

// ServerConfig lives here rather than in the server package, which imports app.
type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type BatchConfig struct {
	// MaxConcurrency is how many URLs of one batch are analysed at once.
	MaxConcurrency int `mapstructure:"max_concurrency"`

	// MaxURLs caps the size of a single batch.
	MaxURLs int `mapstructure:"max_urls"`

	// JobRetention is how long finished jobs stay visible; zero keeps them.
	JobRetention time.Duration `mapstructure:"job_retention"`
}

// DefaultConfig returns a Config populated with development defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":8080",
			AllowedOrigins:  []string{"*"},
			ReadTimeout:     15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		LogLevel:  "info",
		Engine:    *assessor.DefaultConfig(),
		Oracles:   oracle.DefaultConfig(),
		Fetcher:   fetcher.DefaultConfig(),
		WebClient: webclient.DefaultConfig(),
		History:   history.DefaultConfig(),
		URL: utils.CanonicalizeOptions{
			DropTrackingParams: true,
			StripTrailingSlash: true,
			DefaultScheme:      utils.DefaultScheme,
		},
		Batch: BatchConfig{
			MaxConcurrency: 4,
			MaxURLs:        100,
			JobRetention:   time.Hour,
		},
		FetchTimeout:  20 * time.Second,
		OracleTimeout: 10 * time.Second,
	}
}

// Validate checks the application-level settings and the engine config.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidAppConfig)
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if c.Batch.MaxConcurrency <= 0 {
		return fmt.Errorf("%w: batch.max_concurrency must be > 0 (got %d)", ErrInvalidAppConfig, c.Batch.MaxConcurrency)
	}
	if c.Batch.MaxURLs <= 0 {
		return fmt.Errorf("%w: batch.max_urls must be > 0 (got %d)", ErrInvalidAppConfig, c.Batch.MaxURLs)
	}
	if c.FetchTimeout < 0 || c.OracleTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidAppConfig)
	}
	return nil
}
