package browser

import "context"

// NavigateResult is the outcome of a successful page navigation.
type NavigateResult struct {
	// HTML is the rendered outer HTML of the document after load,
	// truncated to the configured body size limit.
	HTML string

	// FinalURL is the URL the browser ended up on after redirects.
	FinalURL string

	// StatusCode is the HTTP status of the main document response.
	// Zero when the browser could not report one.
	StatusCode int
}

// Session is the capability interface the crawler consumes.
// The concrete implementation manages cookie and login continuity across
// navigations; the crawler only navigates and captures.
//
// Design decision: We define the interface here, next to the
// implementation, rather than in the crawler because:
//  1. The contract belongs to the capability provider
//  2. The crawler accepts the interface and stays testable with a fake
//  3. Other consumers (a future probe mode) share the same contract
type Session interface {
	// Navigate loads the URL in the shared browser context, waits for the
	// document to finish loading, and returns the rendered result.
	Navigate(ctx context.Context, url string) (*NavigateResult, error)

	// Screenshot captures a full-page PNG of the current page.
	Screenshot(ctx context.Context) ([]byte, error)
}
