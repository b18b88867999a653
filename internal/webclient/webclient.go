package webclient

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrUnsupportedMethod is returned by backends that can only navigate (GET).
var ErrUnsupportedMethod = errors.New("webclient: method not supported by backend")

// WebClient performs HTTP requests on behalf of the fetcher and the
// networked oracles.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests
	Get(ctx context.Context, url string) (*Response, error)

	Close() error
}

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

type Response struct {
	Request    *Request
	Headers    http.Header
	Body       []byte
	StatusCode int
	FetchedAt  time.Time
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}
