package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

// Config selects and tunes a WebClient backend.
type Config struct {
	Client Client `mapstructure:"client"`

	// Timeout bounds a whole request, including reading the body.
	Timeout time.Duration `mapstructure:"timeout"`

	// UserAgent is sent on every request when non-empty.
	UserAgent string `mapstructure:"user_agent"`

	// MaxBodyBytes caps how much of a response body is read (nethttp only).
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`

	// IdleAfter is how long the network must stay quiet before chromedp
	// considers a page rendered.
	IdleAfter time.Duration `mapstructure:"idle_after"`

	// Headless toggles the chromedp browser window. Nil means headless.
	Headless *bool `mapstructure:"headless"`
}

// DefaultConfig returns the nethttp backend with conservative limits.
func DefaultConfig() Config {
	return Config{
		Client:       ClientNetHTTP,
		Timeout:      15 * time.Second,
		UserAgent:    "trustlens/0.1 (+https://github.com/trustlens/trustlens)",
		MaxBodyBytes: 5 << 20,
		IdleAfter:    2 * time.Second,
	}
}
