package browser

import (
	"errors"
	"fmt"
)

// ErrSessionInvalid indicates the authenticated session is no longer valid
// (login failed, or the portal logged us out). This is run-fatal: the crawl
// halts immediately rather than archiving logged-out pages.
var ErrSessionInvalid = errors.New("browser session is no longer valid")

// FetchError is a per-page, recoverable navigation failure: timeout,
// render failure, or an unreachable URL. The crawler records it in the
// site map and continues with the remaining frontier.
type FetchError struct {
	// URL is the target that failed to load.
	URL string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError wraps err as a per-page fetch failure for url.
func NewFetchError(url string, err error) *FetchError {
	return &FetchError{URL: url, Err: err}
}
