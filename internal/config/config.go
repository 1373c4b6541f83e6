package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These defaults mirror the behavior of typical reconnaissance runs against
// small-to-medium portals; everything here can be overridden via CLI flags.
const (
	// DefaultMaxDepth limits BFS traversal from the start URL.
	// Depth 0 means only the starting page. Suspicious portals tend to be
	// shallow, so 3 levels reach nearly all member-area pages.
	DefaultMaxDepth = 3

	// DefaultMaxPages caps the number of archived pages per run.
	// This bounds runtime and disk usage on sites with generated or
	// effectively infinite link graphs (calendars, pagination).
	DefaultMaxPages = 100

	// DefaultFetchTimeout is the per-navigation timeout. Rendering a page in
	// a headless browser includes script execution, so this is more generous
	// than a plain HTTP timeout.
	DefaultFetchTimeout = 20 * time.Second

	// DefaultMaxConsecutiveFailures is the circuit-breaker threshold.
	// A run of back-to-back fetch failures usually means the session expired
	// or the site started blocking us; continuing would burn the page budget
	// on errors.
	DefaultMaxConsecutiveFailures = 5

	// DefaultCrawlDelay is the pause between navigations. One shared browser
	// session fetches strictly sequentially, and a short delay keeps the
	// traffic pattern closer to a human operator.
	DefaultCrawlDelay = 500 * time.Millisecond

	// DefaultScanWorkers is the number of pages scanned concurrently by the
	// extraction engine. Extraction is CPU-bound regex work over local
	// files, so a small pool is enough.
	DefaultScanWorkers = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "portalscan"
)

// Config holds all options for a portalscan invocation.
// It is populated from CLI flags and passed through the application via
// dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ScanConfig) for simplicity. The number of options is
// manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// StartURL is the entry page of the target portal for a mapping run.
	StartURL string

	// Email is the account identifier used for the login step.
	Email string

	// Secret is the password or token used for the login step.
	// Never logged; the secure log handler masks it defensively as well.
	Secret string

	// MaxDepth is the maximum BFS depth from the start URL.
	// Depth 0 archives only the start page.
	MaxDepth int

	// MaxPages is the maximum number of pages to archive per run.
	MaxPages int

	// AllowExternal permits enqueueing cross-origin URLs discovered on
	// in-scope pages. Off by default: the crawl stays on the start origin.
	AllowExternal bool

	// FetchTimeout is the timeout applied to each page navigation.
	FetchTimeout time.Duration

	// MaxConsecutiveFailures is the circuit-breaker threshold. When this
	// many fetches fail back-to-back the crawl halts early.
	MaxConsecutiveFailures int

	// CrawlDelay is the pause between navigations.
	CrawlDelay time.Duration

	// ScanWorkers is the extraction engine's parallel page count.
	ScanWorkers int

	// RunID identifies the run directory. Generated when empty.
	RunID string

	// DataDir is the root under which run directories are created.
	// Defaults to the XDG data directory.
	DataDir string

	// ArchiveDir is the existing run directory for a scan-archive
	// invocation.
	ArchiveDir string

	// Headful disables headless mode so the browser window is visible.
	// Useful when diagnosing login issues against a specific portal.
	Headful bool

	// Verbose enables debug-level log output.
	Verbose bool

	// JSONReport selects JSON output for scan results.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output for scan results.
	MarkdownReport bool

	// ReportFile is an optional file path for the report output.
	ReportFile string

	// ConfigFilePath is the path to the site configuration file.
	// If empty, .portalscan is searched in the current directory and then
	// the user's home directory.
	ConfigFilePath string

	// Sites holds per-portal configuration loaded from the config file.
	Sites *File

	// DBDir is the directory of the run-history SQLite database.
	// Defaults to the XDG data directory; set SaveToDB false to skip
	// persistence entirely.
	DBDir string

	// SaveToDB enables recording run summaries and findings to the
	// history database.
	SaveToDB bool
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero values
// because most defaults are non-zero. The constructor also documents what
// the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxDepth:               DefaultMaxDepth,
		MaxPages:               DefaultMaxPages,
		FetchTimeout:           DefaultFetchTimeout,
		MaxConsecutiveFailures: DefaultMaxConsecutiveFailures,
		CrawlDelay:             DefaultCrawlDelay,
		ScanWorkers:            DefaultScanWorkers,
		DataDir:                XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for portalscan.
// On Linux: ~/.local/share/portalscan
// On macOS: ~/Library/Application Support/portalscan
// On Windows: %LOCALAPPDATA%\portalscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for portalscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ValidateMap checks the configuration for a mapping run.
// It returns the first problem found; fixing one error often makes
// later ones irrelevant.
func (c *Config) ValidateMap() error {
	if c.StartURL == "" {
		return ErrNoStartURL
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}
	if c.MaxConsecutiveFailures <= 0 {
		return ErrInvalidFailureThreshold
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	return nil
}

// ValidateScan checks the configuration for a scan-archive run.
func (c *Config) ValidateScan() error {
	if c.ArchiveDir == "" {
		return ErrNoArchiveDir
	}
	if c.ScanWorkers <= 0 {
		return ErrInvalidScanWorkers
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
