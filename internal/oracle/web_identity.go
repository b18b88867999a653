package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/utils"
	"github.com/trustlens/trustlens/internal/webclient"
)

// WebIdentityConfig configures WebIdentityOracle.
type WebIdentityConfig struct {
	// ProfileURL is a template where "{handle}" is replaced by the escaped
	// handle, e.g. "https://www.instagram.com/{handle}/".
	ProfileURL string `mapstructure:"profile_url"`

	// SearchEndpoint is queried as GET <endpoint>?image=<url> and must answer
	// {"matches": n}. Without it CountSimilarImages is unavailable.
	SearchEndpoint string `mapstructure:"search_endpoint"`
}

// WebIdentityOracle reads the profile picture from a profile page's social
// meta tags and counts look-alikes through a reverse-search service.
type WebIdentityOracle struct {
	cfg    WebIdentityConfig
	client webclient.WebClient
	logger logging.Logger
}

var profileImageSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="og:image"]`, "content"},
	{`meta[property="og:image:url"]`, "content"},
	{`meta[name="twitter:image"]`, "content"},
	{`meta[name="twitter:image:src"]`, "content"},
	{`link[rel="image_src"]`, "href"},
}

type searchResponse struct {
	Matches *int `json:"matches"`
}

func NewWebIdentityOracle(cfg WebIdentityConfig, client webclient.WebClient, logger logging.Logger) (*WebIdentityOracle, error) {
	if !strings.Contains(cfg.ProfileURL, "{handle}") {
		return nil, errors.New(`oracle: web identity profile_url must contain "{handle}"`)
	}
	if client == nil {
		return nil, errors.New("oracle: web identity needs a web client")
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &WebIdentityOracle{
		cfg:    cfg,
		client: client,
		logger: logger.With(logging.F("oracle", "web-identity")),
	}, nil
}

func (w *WebIdentityOracle) ResolveProfileImage(ctx context.Context, handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", ErrNotFound
	}
	pageURL := strings.ReplaceAll(w.cfg.ProfileURL, "{handle}", url.PathEscape(handle))

	resp, err := w.client.Get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: fetch profile: %w", ErrUnavailable, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", ErrNotFound
	case !resp.OK():
		return "", fmt.Errorf("%w: profile page returned status %d", ErrUnavailable, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return "", fmt.Errorf("%w: parse profile page: %w", ErrUnavailable, err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	for _, s := range profileImageSelectors {
		raw, ok := doc.Find(s.selector).First().Attr(s.attr)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		if abs, ok := utils.ResolveReference(base, raw); ok {
			w.logger.Debug("resolved profile image",
				logging.F("handle", handle),
				logging.F("image", abs))
			return abs, nil
		}
	}
	return "", ErrNotFound
}

func (w *WebIdentityOracle) CountSimilarImages(ctx context.Context, ref string) (int, error) {
	if w.cfg.SearchEndpoint == "" {
		return 0, fmt.Errorf("%w: no reverse-search endpoint configured", ErrUnavailable)
	}
	u, err := url.Parse(w.cfg.SearchEndpoint)
	if err != nil {
		return 0, fmt.Errorf("%w: search endpoint: %w", ErrUnavailable, err)
	}
	q := u.Query()
	q.Set("image", ref)
	u.RawQuery = q.Encode()

	resp, err := w.client.Get(ctx, u.String())
	if err != nil {
		return 0, fmt.Errorf("%w: reverse search: %w", ErrUnavailable, err)
	}
	if !resp.OK() {
		return 0, fmt.Errorf("%w: reverse search returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var out searchResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return 0, fmt.Errorf("%w: decode reverse search: %w", ErrUnavailable, err)
	}
	if out.Matches == nil || *out.Matches < 0 {
		return 0, fmt.Errorf("%w: reverse search returned no valid match count", ErrUnavailable)
	}
	return *out.Matches, nil
}
