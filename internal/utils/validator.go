package utils

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ErrInvalidURL is returned (wrapped) by URLValidator for any rejected URL.
var ErrInvalidURL = errors.New("invalid url")

// URLValidator checks that a URL is an absolute web URL the fetcher and the
// scoring engine can work with.
type URLValidator struct {
	allowedSchemes []string
	allowedHosts   []string
}

// NewURLValidator accepts http and https URLs on any host.
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
	}
}

// NewURLValidatorWithOptions restricts schemes and, when hosts is non-empty, hosts.
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
	}
}

// Validate returns nil when raw is acceptable, otherwise an error wrapping ErrInvalidURL.
func (v *URLValidator) Validate(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: url cannot be empty", ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !slices.Contains(v.allowedSchemes, strings.ToLower(u.Scheme)) {
		return fmt.Errorf("%w: scheme %q not allowed", ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if len(v.allowedHosts) > 0 && !slices.Contains(v.allowedHosts, strings.ToLower(u.Hostname())) {
		return fmt.Errorf("%w: host %q not allowed", ErrInvalidURL, u.Hostname())
	}
	return nil
}
