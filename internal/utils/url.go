package utils

import (
	"errors"
	"net"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

var (
	ErrEmptyURL    = errors.New("empty url")
	ErrMissingHost = errors.New("missing host")
)

// DefaultScheme is prepended to user input that carries no scheme.
const DefaultScheme = "https"

// leadingScheme matches an RFC 3986 scheme followed by "://" at the start
// of the input. A "://" later in the string (say, in a query value) is not a
// scheme.
var leadingScheme = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

func hasScheme(raw string) bool {
	return leadingScheme.MatchString(raw)
}

// EnsureScheme prepends "https://" when raw has no leading scheme.
// Surrounding whitespace is trimmed; empty input stays empty.
//
//	"example.com/a"        → "https://example.com/a"
//	"http://example.com"   → "http://example.com"
//	"//cdn.example.com/x"  → "https://cdn.example.com/x"
func EnsureScheme(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if hasScheme(raw) {
		return raw
	}
	if strings.HasPrefix(raw, "//") {
		return DefaultScheme + ":" + raw
	}
	return DefaultScheme + "://" + raw
}

// CanonicalizeOptions controls optional canonicalization policies.
type CanonicalizeOptions struct {
	DropTrackingParams bool   `mapstructure:"drop_tracking_params"` // remove common tracking params (utm_*, gclid, fbclid, ...)
	StripTrailingSlash bool   `mapstructure:"strip_trailing_slash"` // treat /a and /a/ the same (root "/" is kept)
	DefaultScheme      string `mapstructure:"default_scheme"`       // if empty, require scheme in input
}

var defaultTrackingParams = map[string]struct{}{
	"utm_source": {}, "utm_medium": {}, "utm_campaign": {}, "utm_term": {}, "utm_content": {},
	"gclid": {}, "fbclid": {}, "mc_cid": {}, "mc_eid": {},
}

// Canonicalize returns a deterministic canonical URL string. It is used to
// key analysis history, so two spellings of the same page compare equal.
func Canonicalize(raw string, opts CanonicalizeOptions) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &url.Error{Op: "parse", URL: raw, Err: ErrEmptyURL}
	}

	if opts.DefaultScheme != "" && !hasScheme(raw) {
		raw = opts.DefaultScheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", &url.Error{Op: "parse", URL: raw, Err: ErrMissingHost}
	}

	u.Scheme = strings.ToLower(u.Scheme)

	host := strings.ToLower(u.Hostname())
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}

	port := u.Port()
	switch {
	case (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443"):
		u.Host = host
	case port != "":
		u.Host = net.JoinHostPort(host, port)
	default:
		u.Host = host
	}

	u.User = nil

	// path.Clean drops the trailing slash; put it back unless asked not to.
	cleanPath := path.Clean(u.Path)
	if cleanPath == "." {
		cleanPath = "/"
	}
	if !opts.StripTrailingSlash && cleanPath != "/" && strings.HasSuffix(u.Path, "/") {
		cleanPath += "/"
	}
	u.Path = cleanPath
	u.RawPath = ""
	u.Fragment = ""

	q := u.Query()
	if opts.DropTrackingParams {
		for k := range q {
			if _, ok := defaultTrackingParams[strings.ToLower(k)]; ok {
				q.Del(k)
			}
		}
	}

	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := url.Values{}
	for _, k := range keys {
		values := q[k]
		sort.Strings(values)
		for _, v := range values {
			ordered.Add(k, v)
		}
	}
	u.RawQuery = ordered.Encode()

	return u.String(), nil
}

// ResolveReference resolves ref against base and returns an absolute URL.
// Refs with a non-web scheme (data:, javascript:, mailto:) are rejected.
//
//	base https://example.com/app/page, ref "img/a.png" → https://example.com/app/img/a.png
//	base https://example.com/app/page, ref "//cdn.io/b.png" → https://cdn.io/b.png
func ResolveReference(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == nil {
		return "", false
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(r)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	if abs.Host == "" {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}

// RegistrableDomain returns the eTLD+1 of host ("www.instagram.com" →
// "instagram.com"). Hosts the public suffix list cannot split are returned
// lowercased as-is.
func RegistrableDomain(host string) string {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return registrable
}

// PathSegments returns the non-empty segments of a URL path in order.
func PathSegments(p string) []string {
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
