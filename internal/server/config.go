package server

import (
	"time"

	"github.com/trustlens/trustlens/internal/app"
	"github.com/trustlens/trustlens/internal/logging"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string

	ReadTimeout time.Duration

	Logger logging.Logger
}

// ConfigFromApp copies the server section of the application config.
func ConfigFromApp(c app.ServerConfig, logger logging.Logger) Config {
	return Config{
		ListenAddr:     c.ListenAddr,
		AllowedOrigins: c.AllowedOrigins,
		ReadTimeout:    c.ReadTimeout,
		Logger:         logger,
	}
}
