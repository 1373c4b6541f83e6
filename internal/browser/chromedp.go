package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
)

// Default session settings.
const (
	// defaultMaxBodyBytes limits how much rendered HTML is kept per page.
	// 5MB is ample for portal pages while bounding memory on pathological
	// responses.
	defaultMaxBodyBytes = 5 * 1024 * 1024

	// defaultUserAgent is sent when no override is configured. A common
	// desktop Chrome string; suspicious portals frequently serve different
	// content to obvious bots.
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131 Safari/537.36"

	// settleDelay is a short pause after document load so late scripts
	// (deposit-address widgets are usually injected client-side) have a
	// chance to render before capture.
	settleDelay = 500 * time.Millisecond
)

// SessionOptions configures a ChromeSession.
type SessionOptions struct {
	// Headful disables headless mode so the browser window is visible.
	Headful bool

	// UserAgent overrides the default User-Agent string.
	UserAgent string

	// NavigateTimeout bounds each navigation, including script execution.
	NavigateTimeout time.Duration

	// MaxBodyBytes truncates rendered HTML larger than this.
	MaxBodyBytes int64

	// Logger receives debug output. slog.Default() when nil.
	Logger *slog.Logger
}

// ChromeSession is the chromedp-backed Session implementation.
// It owns one browser context for its whole lifetime so cookies and login
// state persist across navigations.
//
// Design decision: We create the allocator and browser context once in
// NewChromeSession rather than per navigation because:
//  1. Session continuity (cookies, localStorage) requires a shared context
//  2. Browser startup costs seconds; per-page startup would dominate runs
//  3. Per-navigation timeouts still work via derived contexts
type ChromeSession struct {
	allocCtx     context.Context
	allocCancel  context.CancelFunc
	browserCtx   context.Context
	browserCancel context.CancelFunc

	opts   SessionOptions
	logger *slog.Logger
}

// NewChromeSession starts a browser and returns a live session.
// The caller must Close the session to release the browser.
func NewChromeSession(ctx context.Context, opts SessionOptions) (*ChromeSession, error) {
	if opts.NavigateTimeout <= 0 {
		opts.NavigateTimeout = 20 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	execOpts := []chromedp.ExecAllocatorOption{
		chromedp.Flag("headless", !opts.Headful),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(opts.UserAgent),
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, execOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so startup failures surface here instead of
	// on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &ChromeSession{
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		opts:          opts,
		logger:        logger,
	}, nil
}

// Navigate implements Session.
func (s *ChromeSession) Navigate(ctx context.Context, pageURL string) (*NavigateResult, error) {
	// Per-navigation timeout derived from the long-lived browser context;
	// cancelling it does not tear down the tab or its cookies.
	navCtx, cancel := context.WithTimeout(s.browserCtx, s.opts.NavigateTimeout)
	defer cancel()

	// Honor caller cancellation between fetches.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := chromedp.RunResponse(navCtx, chromedp.Navigate(pageURL))
	if err != nil {
		return nil, NewFetchError(pageURL, err)
	}

	var html string
	var finalURL string
	err = chromedp.Run(navCtx,
		chromedp.Sleep(settleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)
	if err != nil {
		return nil, NewFetchError(pageURL, err)
	}

	if int64(len(html)) > s.opts.MaxBodyBytes {
		html = html[:s.opts.MaxBodyBytes]
	}
	if finalURL == "" {
		finalURL = pageURL
	}

	statusCode := 0
	if resp != nil {
		statusCode = int(resp.Status)
	}

	s.logger.Debug("navigation complete",
		"url", pageURL,
		"final_url", finalURL,
		"status", statusCode,
		"html_bytes", len(html),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return &NavigateResult{
		HTML:       html,
		FinalURL:   finalURL,
		StatusCode: statusCode,
	}, nil
}

// Screenshot implements Session. It captures a full-page PNG of whatever
// page the session currently has loaded.
func (s *ChromeSession) Screenshot(ctx context.Context) ([]byte, error) {
	shotCtx, cancel := context.WithTimeout(s.browserCtx, s.opts.NavigateTimeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf []byte
	if err := chromedp.Run(shotCtx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return buf, nil
}

// CurrentURL returns the URL of the page the session currently shows.
func (s *ChromeSession) CurrentURL(ctx context.Context) (string, error) {
	navCtx, cancel := context.WithTimeout(s.browserCtx, s.opts.NavigateTimeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	var location string
	if err := chromedp.Run(navCtx, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return location, nil
}

// Close shuts down the browser and releases all resources.
func (s *ChromeSession) Close() error {
	s.browserCancel()
	s.allocCancel()
	return nil
}
