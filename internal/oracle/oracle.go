// Package oracle defines the replaceable capabilities the trust engine
// consults but does not own: a text classifier and an identity/image lookup.
// Implementations may be local, networked or fake; the engine only relies on
// the contracts below and treats every error as "oracle unavailable".
package oracle

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by IdentityOracle.ResolveProfileImage when the
	// handle has no reference image.
	ErrNotFound = errors.New("oracle: not found")

	// ErrUnavailable wraps any failure to reach or use a backing service.
	ErrUnavailable = errors.New("oracle: unavailable")
)

// Class is a text classification label.
type Class string

const (
	ClassScam       Class = "scam"
	ClassLegitimate Class = "legitimate"
)

// ClassProbability is one (class, posterior) pair.
type ClassProbability struct {
	Class       Class   `json:"class"`
	Probability float64 `json:"probability"`
}

// ClassifierOracle scores text against the scam/legitimate classes. A
// well-behaved implementation returns both classes with probabilities
// summing to 1.
type ClassifierOracle interface {
	PredictProbabilities(ctx context.Context, text string) ([]ClassProbability, error)
}

// IdentityOracle resolves a profile handle to a reference image and counts
// how often that image appears elsewhere (reverse image search).
type IdentityOracle interface {
	ResolveProfileImage(ctx context.Context, handle string) (string, error)
	CountSimilarImages(ctx context.Context, referenceImage string) (int, error)
}

// Binary builds the two-class prediction for a scam probability p.
func Binary(pScam float64) []ClassProbability {
	return []ClassProbability{
		{Class: ClassScam, Probability: pScam},
		{Class: ClassLegitimate, Probability: 1 - pScam},
	}
}
