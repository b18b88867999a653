// Package history persists analysis reports so a URL's verdicts can be
// listed, retrieved and compared over time.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/trustlens/trustlens/internal/assessor"
)

var (
	ErrNotFound  = errors.New("history: report not found")
	ErrNilReport = errors.New("history: nil report")
)

// DefaultListLimit applies when List is called with a non-positive limit.
const DefaultListLimit = 50

// Report is one stored analysis of a URL.
type Report struct {
	ID  string `json:"id"`
	URL string `json:"url"`

	// CanonicalURL keys the report for Previous lookups so that different
	// spellings of one page share a history.
	CanonicalURL string `json:"canonical_url"`

	Result assessor.FusionResult `json:"result"`

	// TextSample is the extracted text that was scored.
	TextSample string `json:"text_sample,omitempty"`
	ImageCount int    `json:"image_count"`

	CreatedAt time.Time `json:"created_at"`
}

// Store is implemented by every history backend. Implementations are safe
// for concurrent use.
type Store interface {
	// Save assigns an ID and CreatedAt when they are unset, then stores r.
	Save(ctx context.Context, r *Report) error
	Get(ctx context.Context, id string) (*Report, error)
	// List returns the newest reports first.
	List(ctx context.Context, limit int) ([]*Report, error)
	// Previous returns the newest report for canonicalURL created strictly
	// before the given time.
	Previous(ctx context.Context, canonicalURL string, before time.Time) (*Report, error)
	Close() error
}

// prepare fills the generated fields of r.
func prepare(r *Report) error {
	if r == nil {
		return ErrNilReport
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.CanonicalURL == "" {
		r.CanonicalURL = r.URL
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
