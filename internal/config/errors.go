package config

import "errors"

// Configuration validation errors.
// These are returned by ValidateMap/ValidateScan and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than creating
// new error instances at validation time. This allows callers to use
// errors.Is() for programmatic handling while still providing human-readable
// messages.
var (
	// ErrNoStartURL is returned when a mapping run has no start URL.
	ErrNoStartURL = errors.New("no start URL specified: pass the portal entry page as the map argument")

	// ErrInvalidMaxDepth is returned when the depth budget is negative.
	// Depth 0 (start page only) is valid.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	// A budget of zero would archive nothing.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidFetchTimeout is returned when the per-fetch timeout is not
	// positive. A zero timeout would fail every navigation immediately.
	ErrInvalidFetchTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidFailureThreshold is returned when the circuit-breaker
	// threshold is not positive.
	ErrInvalidFailureThreshold = errors.New("invalid failure threshold: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// Use 0 for no delay between navigations.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrNoArchiveDir is returned when scan-archive has no run directory.
	ErrNoArchiveDir = errors.New("no archive directory specified: provide an existing run directory")

	// ErrInvalidScanWorkers is returned when the scan worker count is not
	// positive.
	ErrInvalidScanWorkers = errors.New("invalid scan workers: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
