package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/trustlens/trustlens/internal/logging"
)

// ChromedpClient renders pages in headless Chrome so script-built content and
// lazily inserted images are visible to the fetcher. Only GET is supported.
type ChromedpClient struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	idleAfter   time.Duration
	timeout     time.Duration
	logger      logging.Logger
}

// NewChromedpClient starts an exec allocator. The browser itself is launched
// lazily by chromedp on the first navigation.
func NewChromedpClient(cfg Config, logger logging.Logger) (*ChromedpClient, error) {
	if logger == nil {
		return nil, fmt.Errorf("webclient: nil logger")
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if cfg.Headless != nil && !*cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	idleAfter := cfg.IdleAfter
	if idleAfter <= 0 {
		idleAfter = 2 * time.Second
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	l := logger.With(logging.F("backend", string(ClientChromedp)))
	l.Debug("created chromedp webclient", logging.F("idle_after", idleAfter.String()))

	return &ChromedpClient{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		idleAfter:   idleAfter,
		timeout:     timeout,
		logger:      l,
	}, nil
}

// waitNetworkIdle returns a channel that fires once no request has been in
// flight for idleAfter.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) <-chan struct{} {
	idleChan := make(chan struct{})
	var activeReqs int32
	var timer *time.Timer
	var timerMu sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() { close(idleChan) })
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&activeReqs, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&activeReqs, -1) <= 0 {
				startTimer()
			}
		}
	})
	startTimer()

	return idleChan
}

func (c *ChromedpClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("webclient: nil request")
	}
	if m := strings.ToUpper(req.Method); m != "" && m != http.MethodGet {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, m)
	}

	tabCtx, cancelTab := chromedp.NewContext(c.allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.timeout)
	defer cancelTimeout()

	// Propagate caller cancellation into the tab.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var status atomic.Int64
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			status.CompareAndSwap(0, e.Response.Status)
		}
	})

	idle := waitNetworkIdle(tabCtx, c.idleAfter)
	if err := chromedp.Run(tabCtx, network.Enable(), chromedp.Navigate(req.URL)); err != nil {
		c.logger.Warn("chromedp navigate failed", logging.F("url", req.URL), logging.Err(err))
		return nil, fmt.Errorf("chromedp navigate: %w", err)
	}

	select {
	case <-idle:
	case <-tabCtx.Done():
		return nil, fmt.Errorf("chromedp wait idle: %w", tabCtx.Err())
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return nil, fmt.Errorf("chromedp outer html: %w", err)
	}

	code := int(status.Load())
	if code == 0 {
		code = http.StatusOK
	}
	return &Response{
		Request:    req,
		Headers:    http.Header{"Content-Type": {"text/html; charset=utf-8"}},
		Body:       []byte(html),
		StatusCode: code,
		FetchedAt:  time.Now(),
	}, nil
}

func (c *ChromedpClient) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

func (c *ChromedpClient) Close() error {
	c.allocCancel()
	c.logger.Debug("closing chromedp webclient")
	return nil
}
