package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/trustlens/trustlens/internal/logging"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	// Driver is one of memory, sqlite or postgres.
	Driver string `mapstructure:"driver"`
	// Path is the SQLite database file.
	Path string `mapstructure:"path"`
	// DSN is the PostgreSQL connection string.
	DSN string `mapstructure:"dsn"`
}

func DefaultConfig() Config {
	return Config{
		Driver: DriverSQLite,
		Path:   ".trustlens/history.db",
	}
}

// Open constructs the configured store.
func Open(ctx context.Context, cfg Config, logger logging.Logger) (Store, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	logger = logger.With(logging.F("component", "history"))

	switch driver := strings.ToLower(strings.TrimSpace(cfg.Driver)); driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		s, err := NewSQLiteStore(cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres, "pgx":
		s, err := NewPostgresStore(ctx, cfg.DSN, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("history: unknown driver %q (want memory, sqlite or postgres)", driver)
	}
}
