package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/utils"
	"github.com/trustlens/trustlens/internal/webclient"
)

// Module: fetcher
// Fetches a page and reduces it to the artifacts the trust engine scores.

// PageContent is what the engine needs from a page: visible text and the
// absolute URLs of its images, in document order.
type PageContent struct {
	URL        string   `json:"url"`
	StatusCode int      `json:"status_code,omitempty"`
	Text       string   `json:"text"`
	ImageURLs  []string `json:"image_urls"`
}

type Fetcher struct {
	cfg    Config
	wc     webclient.WebClient
	logger logging.Logger
}

// New creates a new Fetcher with the given webclient and logger.
func New(cfg Config, wc webclient.WebClient, logger logging.Logger) (*Fetcher, error) {
	if wc == nil {
		return nil, fmt.Errorf("fetcher: webclient is nil")
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = DefaultConfig().MaxTextLength
	}
	return &Fetcher{
		cfg:    cfg,
		wc:     wc,
		logger: logger.With(logging.F("component", "fetcher")),
	}, nil
}

// Fetch never fails: any fetch or parse problem yields empty content, which
// the engine scores with its fallbacks.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) PageContent {
	empty := PageContent{URL: pageURL, ImageURLs: []string{}}

	resp, err := f.HTTPGet(ctx, pageURL)
	if err != nil {
		f.logger.Warn("error while fetching page",
			logging.F("url", pageURL),
			logging.Err(err))
		return empty
	}
	empty.StatusCode = resp.StatusCode
	if !resp.OK() {
		f.logger.Warn("page returned non-success status",
			logging.F("url", pageURL),
			logging.F("status", resp.StatusCode))
		return empty
	}

	page, err := f.Extract(pageURL, resp.Body)
	if err != nil {
		f.logger.Warn("error while parsing page",
			logging.F("url", pageURL),
			logging.Err(err))
		return empty
	}
	page.StatusCode = resp.StatusCode

	f.logger.Debug("fetched page",
		logging.F("url", pageURL),
		logging.F("text_chars", len([]rune(page.Text))),
		logging.F("images", len(page.ImageURLs)))
	return page
}

// HTTPGet makes an HTTP GET request for page.
func (f *Fetcher) HTTPGet(ctx context.Context, page string) (*webclient.Response, error) {
	resp, err := f.wc.Get(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("error GETting %s: %w", page, err)
	}
	return resp, nil
}

var strippedElements = "script, style, noscript, template, iframe, svg"

// Extract parses body as HTML relative to pageURL.
func (f *Fetcher) Extract(pageURL string, body []byte) (PageContent, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return PageContent{}, fmt.Errorf("parse page url: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return PageContent{}, fmt.Errorf("parse html: %w", err)
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if b, err := base.Parse(strings.TrimSpace(href)); err == nil {
			base = b
		}
	}

	images := f.images(doc, base)

	doc.Find(strippedElements).Remove()
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	return PageContent{
		URL:       pageURL,
		Text:      truncate(collapseWhitespace(root.Text()), f.cfg.MaxTextLength),
		ImageURLs: images,
	}, nil
}

func (f *Fetcher) images(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})
	out := []string{}
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range []string{"src", "data-src"} {
			raw, ok := s.Attr(attr)
			if !ok {
				continue
			}
			abs, ok := utils.ResolveReference(base, raw)
			if !ok {
				continue
			}
			if _, dup := seen[abs]; dup {
				continue
			}
			seen[abs] = struct{}{}
			out = append(out, abs)
		}
		return f.cfg.MaxImages <= 0 || len(out) < f.cfg.MaxImages
	})
	if f.cfg.MaxImages > 0 && len(out) > f.cfg.MaxImages {
		out = out[:f.cfg.MaxImages]
	}
	return out
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
