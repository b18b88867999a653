package oracle

import (
	"context"
	"maps"
)

// StaticIdentityConfig maps handles to reference images and images to
// match counts.
type StaticIdentityConfig struct {
	Images  map[string]string `mapstructure:"images"`
	Matches map[string]int    `mapstructure:"matches"`
}

// StaticIdentityOracle answers from fixed tables. Unknown handles are
// ErrNotFound; unknown images have no matches.
type StaticIdentityOracle struct {
	images  map[string]string
	matches map[string]int
}

func NewStaticIdentityOracle(cfg StaticIdentityConfig) *StaticIdentityOracle {
	return &StaticIdentityOracle{
		images:  maps.Clone(cfg.Images),
		matches: maps.Clone(cfg.Matches),
	}
}

func (s *StaticIdentityOracle) ResolveProfileImage(_ context.Context, handle string) (string, error) {
	img, ok := s.images[handle]
	if !ok || img == "" {
		return "", ErrNotFound
	}
	return img, nil
}

func (s *StaticIdentityOracle) CountSimilarImages(_ context.Context, ref string) (int, error) {
	return s.matches[ref], nil
}
