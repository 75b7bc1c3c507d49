package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"shipdesk-hq/gateway/pkg/config"
)

// A4 paper size in inches.
const (
	a4Width  = 8.27
	a4Height = 11.69
)

// networkIdleQuiet is how long the page must have no requests in flight to
// count as idle.
const networkIdleQuiet = 500 * time.Millisecond

// Rasterizer turns an HTML document into PDF bytes.
type Rasterizer interface {
	Rasterize(ctx context.Context, html string) ([]byte, error)
}

// ChromeRasterizer prints documents with a headless Chrome launched for
// each call. The browser process is torn down before Rasterize returns.
type ChromeRasterizer struct {
	execPath    string
	noSandbox   bool
	timeout     time.Duration
	idleTimeout time.Duration
	logger      *slog.Logger
}

// NewChromeRasterizer creates a rasterizer from the render settings. An
// empty chrome_path falls back to CHROME_BIN and then to chromedp's lookup
// of the installed browser.
func NewChromeRasterizer(cfg *config.RenderConfig, logger *slog.Logger) *ChromeRasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	execPath := cfg.ChromePath
	if execPath == "" {
		execPath = os.Getenv("CHROME_BIN")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = config.DefaultRenderTimeout
	}
	idle := cfg.NetworkIdleTimeout
	if idle == 0 {
		idle = config.DefaultRenderNetworkIdleTimeout
	}
	return &ChromeRasterizer{
		execPath:    execPath,
		noSandbox:   cfg.NoSandbox,
		timeout:     timeout,
		idleTimeout: idle,
		logger:      logger.With("component", "render.chrome"),
	}
}

// Rasterize loads html into a fresh page, waits for the network to go
// idle and prints the page as an A4 PDF.
func (c *ChromeRasterizer) Rasterize(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-setuid-sandbox", true),
	)
	if c.noSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if c.execPath != "" {
		opts = append(opts, chromedp.ExecPath(c.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			c.logger.Debug("chrome: " + fmt.Sprintf(format, args...))
		}),
	)
	defer cancelBrowser()

	// The first Run starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, &RenderError{Stage: "launch", Err: err}
	}

	tracker := newIdleTracker()
	chromedp.ListenTarget(browserCtx, tracker.observe)

	err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			tracker.reset()
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
	)
	if err != nil {
		return nil, &RenderError{Stage: "load", Err: err}
	}

	if err := tracker.wait(browserCtx, c.idleTimeout); err != nil {
		if browserCtx.Err() != nil {
			return nil, &RenderError{Stage: "load", Err: browserCtx.Err()}
		}
		c.logger.Warn("network did not go idle, printing anyway", "timeout", c.idleTimeout)
	}

	var pdf []byte
	err = chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		buf, _, err := page.PrintToPDF().
			WithPaperWidth(a4Width).
			WithPaperHeight(a4Height).
			Do(ctx)
		pdf = buf
		return err
	}))
	if err != nil {
		return nil, &RenderError{Stage: "print", Err: err}
	}
	return pdf, nil
}

// idleTracker counts in-flight network requests of a page.
type idleTracker struct {
	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	last     time.Time
}

func newIdleTracker() *idleTracker {
	return &idleTracker{inflight: make(map[network.RequestID]struct{}), last: time.Now()}
}

func (t *idleTracker) observe(ev any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.inflight[e.RequestID] = struct{}{}
	case *network.EventLoadingFinished:
		delete(t.inflight, e.RequestID)
	case *network.EventLoadingFailed:
		delete(t.inflight, e.RequestID)
	default:
		return
	}
	t.last = time.Now()
}

func (t *idleTracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = time.Now()
}

func (t *idleTracker) idle(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) == 0 && now.Sub(t.last) >= networkIdleQuiet
}

var errNotIdle = errors.New("network not idle")

// wait blocks until no request has been in flight for networkIdleQuiet, or
// until timeout elapses.
func (t *idleTracker) wait(ctx context.Context, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	for {
		if t.idle(time.Now()) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return errNotIdle
		case <-tick.C:
		}
	}
}
