package assessor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/oracle"
	"github.com/trustlens/trustlens/internal/utils"
)

// ImageScorer picks one of two strategies by URL shape: identity matching
// for profile URLs on known social hosts, image counting for everything else.
type ImageScorer struct {
	cfg           ImageConfig
	oracle        oracle.IdentityOracle
	identityHosts map[string]struct{}
	logger        logging.Logger
}

func NewImageScorer(cfg ImageConfig, identity oracle.IdentityOracle, logger logging.Logger) *ImageScorer {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	hosts := make(map[string]struct{}, len(cfg.IdentityHosts))
	for _, h := range cfg.IdentityHosts {
		hosts[utils.RegistrableDomain(h)] = struct{}{}
	}
	return &ImageScorer{cfg: cfg, oracle: identity, identityHosts: hosts, logger: logger}
}

// Score returns the image sub-score and the reverse-search match count.
func (s *ImageScorer) Score(ctx context.Context, rawURL string, imageURLs []string) (float64, int) {
	r := s.Evaluate(ctx, rawURL, imageURLs)
	return r.Score, r.MatchCount
}

// IdentityHandle reports whether rawURL is identity-bearing and, if so, the
// handle: the last non-empty path segment.
func (s *ImageScorer) IdentityHandle(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	if _, ok := s.identityHosts[utils.RegistrableDomain(u.Hostname())]; !ok {
		return "", false
	}
	segments := utils.PathSegments(u.Path)
	if len(segments) == 0 {
		return "", false
	}
	return segments[len(segments)-1], true
}

// Evaluate never fails. Oracle problems on the identity branch yield the
// unresolved score with zero matches.
func (s *ImageScorer) Evaluate(ctx context.Context, rawURL string, imageURLs []string) SignalResult {
	if handle, ok := s.IdentityHandle(rawURL); ok {
		return s.evaluateIdentity(ctx, handle)
	}
	return s.evaluateCount(imageURLs)
}

func (s *ImageScorer) evaluateCount(imageURLs []string) SignalResult {
	n := 0
	for _, u := range imageURLs {
		if strings.TrimSpace(u) != "" {
			n++
		}
	}
	score := lookupBand(s.cfg.CountBands, n)
	return SignalResult{
		Signal: SignalImage,
		Score:  clampScore(score),
		Evidence: []EvidenceItem{{
			RuleID:       "image:page-image-count",
			Signal:       SignalImage,
			Description:  "score from the number of images on the page",
			Value:        fmt.Sprint(n),
			Contribution: score,
		}},
	}
}

func (s *ImageScorer) evaluateIdentity(ctx context.Context, handle string) SignalResult {
	log := s.logger.With(logging.F("handle", handle))

	if s.oracle == nil {
		return s.unresolved("image:identity-oracle-missing", "no identity oracle configured", handle, true)
	}

	ref, err := s.oracle.ResolveProfileImage(ctx, handle)
	switch {
	case errors.Is(err, oracle.ErrNotFound) || (err == nil && strings.TrimSpace(ref) == ""):
		return s.unresolved("image:profile-not-found", "profile has no resolvable image", handle, false)
	case err != nil:
		log.Warn("identity oracle could not resolve profile image", logging.Err(err))
		return s.unresolved("image:profile-unresolved", "profile image lookup failed", handle, true)
	}

	matches, err := s.oracle.CountSimilarImages(ctx, ref)
	if err != nil {
		log.Warn("similar-image search failed", logging.Err(err))
		return s.unresolved("image:similarity-unavailable", "similar-image search failed", ref, true)
	}
	if matches < 0 {
		log.Warn("similar-image search returned a negative count", logging.F("matches", matches))
		return s.unresolved("image:similarity-malformed", "similar-image search returned a negative count", ref, true)
	}

	score := lookupBand(s.cfg.MatchBands, matches)
	return SignalResult{
		Signal:     SignalImage,
		Score:      clampScore(score),
		MatchCount: matches,
		Evidence: []EvidenceItem{{
			RuleID:       "image:identity-matches",
			Signal:       SignalImage,
			Description:  "profile image found elsewhere on the web",
			Value:        fmt.Sprint(matches),
			Contribution: score,
		}},
	}
}

// unresolved is the low-trust (UnresolvedScore, 0) outcome. degraded marks
// oracle failures, as opposed to a profile that simply has no image.
func (s *ImageScorer) unresolved(ruleID, desc, value string, degraded bool) SignalResult {
	return SignalResult{
		Signal:     SignalImage,
		Score:      s.cfg.UnresolvedScore,
		Degraded:   degraded,
		MatchCount: 0,
		Evidence: []EvidenceItem{{
			RuleID:       ruleID,
			Signal:       SignalImage,
			Description:  desc,
			Value:        value,
			Contribution: s.cfg.UnresolvedScore,
		}},
	}
}
