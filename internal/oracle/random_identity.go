package oracle

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"
	"time"
)

// RandomIdentityOracle is the placeholder reverse-image search: every
// handle resolves to an image under ImageBaseURL and the match count is
// drawn uniformly from [0, MaxMatches]. A fixed seed makes it repeatable.
type RandomIdentityOracle struct {
	baseURL    string
	maxMatches int

	mu  sync.Mutex
	rng *rand.Rand
}

// RandomIdentityConfig configures RandomIdentityOracle.
type RandomIdentityConfig struct {
	// Seed of 0 seeds from the clock.
	Seed         uint64 `mapstructure:"seed"`
	MaxMatches   int    `mapstructure:"max_matches"`
	ImageBaseURL string `mapstructure:"image_base_url"`
}

func NewRandomIdentityOracle(cfg RandomIdentityConfig) *RandomIdentityOracle {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	maxMatches := cfg.MaxMatches
	if maxMatches <= 0 {
		maxMatches = 10
	}
	base := strings.TrimSuffix(cfg.ImageBaseURL, "/")
	if base == "" {
		base = "https://avatars.example.invalid"
	}
	return &RandomIdentityOracle{
		baseURL:    base,
		maxMatches: maxMatches,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (r *RandomIdentityOracle) ResolveProfileImage(ctx context.Context, handle string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", ErrNotFound
	}
	return fmt.Sprintf("%s/%s.jpg", r.baseURL, url.PathEscape(handle)), nil
}

func (r *RandomIdentityOracle) CountSimilarImages(ctx context.Context, _ string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(r.maxMatches + 1), nil
}
