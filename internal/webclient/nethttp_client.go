package webclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/trustlens/trustlens/internal/logging"
)

// NetHTTPClient is the net/http backed implementation of WebClient.
type NetHTTPClient struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	logger       logging.Logger
}

// NewNetHTTPClient wraps httpClient, or builds one from cfg.Timeout when nil.
func NewNetHTTPClient(cfg Config, logger logging.Logger, httpClient *http.Client) (*NetHTTPClient, error) {
	if logger == nil {
		return nil, errors.New("webclient: nil logger")
	}
	componentLogger := logger.With(logging.F("backend", string(ClientNetHTTP)))

	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	componentLogger.Debug("created nethttp webclient",
		logging.F("timeout", httpClient.Timeout.String()))

	return &NetHTTPClient{
		client:       httpClient,
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       componentLogger,
	}, nil
}

// Do implements the generic request execution using net/http.
func (nhc *NetHTTPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("webclient: nil request")
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	nhc.logger.Debug("sending http request",
		logging.F("method", method),
		logging.F("url", req.URL))

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if nhc.userAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", nhc.userAgent)
	}

	resp, err := nhc.client.Do(httpReq)
	if err != nil {
		nhc.logger.Warn("http request failed",
			logging.F("method", method),
			logging.F("url", req.URL),
			logging.Err(err))
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if nhc.maxBodyBytes > 0 {
		reader = io.LimitReader(resp.Body, nhc.maxBodyBytes)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	nhc.logger.Debug("received http response",
		logging.F("url", req.URL),
		logging.F("status", resp.StatusCode),
		logging.F("size_bytes", len(body)))

	return &Response{
		Request:    req,
		Headers:    resp.Header.Clone(),
		Body:       body,
		StatusCode: resp.StatusCode,
		FetchedAt:  time.Now(),
	}, nil
}

// Get is a convenience method for simple GET requests
func (nhc *NetHTTPClient) Get(ctx context.Context, url string) (*Response, error) {
	return nhc.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

func (nhc *NetHTTPClient) Close() error {
	nhc.client.CloseIdleConnections()
	nhc.logger.Debug("closing nethttp webclient")
	return nil
}
