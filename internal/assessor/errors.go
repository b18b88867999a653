package assessor

import "errors"

var (
	// ErrMissingURL is the only input error Analyze surfaces to callers.
	ErrMissingURL = errors.New("assessor: analysis input has no url")

	ErrNilConfig     = errors.New("assessor: nil config")
	ErrInvalidConfig = errors.New("assessor: invalid config")
)
