package model

import "time"

// PageStatus indicates whether a page fetch attempt succeeded.
type PageStatus string

// Page statuses recorded in the site map.
const (
	// PageStatusOK means the page was fetched and its artifacts were saved.
	PageStatusOK PageStatus = "ok"

	// PageStatusError means the fetch failed; the entry carries the error
	// text and no artifact paths.
	PageStatusError PageStatus = "error"
)

// CrawlStatus describes the overall outcome of a mapping run.
type CrawlStatus string

// Crawl statuses written to mapping.json.
const (
	// CrawlStatusComplete means the frontier was exhausted within budget.
	CrawlStatusComplete CrawlStatus = "complete"

	// CrawlStatusPartial means the run stopped at the page budget.
	CrawlStatusPartial CrawlStatus = "partial"

	// CrawlStatusAborted means the run stopped early for a run-fatal reason
	// (circuit breaker, invalid session, cancellation).
	CrawlStatusAborted CrawlStatus = "aborted"

	// CrawlStatusError means no pages were archived at all.
	CrawlStatusError CrawlStatus = "error"
)

// ArtifactPaths holds the per-page artifact locations, relative to the run
// directory so the archive stays relocatable.
type ArtifactPaths struct {
	// HTML is the relative path to the saved page HTML, e.g. "map/pages/3.html".
	HTML string `json:"html,omitempty"`

	// Screenshot is the relative path to the saved PNG screenshot.
	Screenshot string `json:"screenshot,omitempty"`
}

// SiteMapEntry records one fetch attempt, successful or not.
// Entries are immutable once appended to the site map.
type SiteMapEntry struct {
	// URL is the normalized URL that was fetched.
	URL string `json:"url"`

	// ParentURL is the page on which this URL was discovered.
	// Empty for the start URL.
	ParentURL string `json:"parent_url,omitempty"`

	// Depth is the BFS distance from the start URL.
	Depth int `json:"depth"`

	// Status is ok or error.
	Status PageStatus `json:"status"`

	// StatusCode is the HTTP status of the final response, when known.
	StatusCode int `json:"status_code,omitempty"`

	// Error holds the fetch error text when Status is error.
	Error string `json:"error,omitempty"`

	// Artifacts locates the saved HTML and screenshot for this page.
	// Zero-valued when the fetch failed.
	Artifacts ArtifactPaths `json:"artifacts"`

	// DiscoveredLinks are the normalized in-page links that survived
	// extraction filtering, in document order. Recorded for all fetched
	// pages regardless of whether they were enqueued.
	DiscoveredLinks []string `json:"discovered_links,omitempty"`

	// Timestamp is when the fetch attempt finished.
	Timestamp time.Time `json:"timestamp"`
}

// SiteMap is the durable output of one mapping run: run metadata plus the
// ordered sequence of page entries. It grows monotonically during a crawl
// and is flushed after every append, so a partially-completed crawl still
// leaves a valid, readable map on disk.
type SiteMap struct {
	// RunID identifies the run directory this map belongs to.
	RunID string `json:"run_id"`

	// StartURL is the normalized URL the crawl started from.
	StartURL string `json:"start_url"`

	// MaxDepth is the depth budget the run was configured with.
	MaxDepth int `json:"max_depth"`

	// MaxPages is the page budget the run was configured with.
	MaxPages int `json:"max_pages"`

	// AllowExternal records whether cross-origin expansion was enabled.
	AllowExternal bool `json:"allow_external"`

	// PagesVisited is the number of entries, maintained for quick reads.
	PagesVisited int `json:"pages_visited"`

	// Status summarizes how the run ended.
	Status CrawlStatus `json:"status"`

	// Notes carries free-form context about the outcome (budget hit,
	// breaker trip reason, cancellation).
	Notes string `json:"notes,omitempty"`

	// Pages is the ordered sequence of fetch records, in visit order.
	Pages []SiteMapEntry `json:"pages"`
}

// NewSiteMap creates an empty SiteMap with the given run parameters.
func NewSiteMap(runID, startURL string, maxDepth, maxPages int, allowExternal bool) *SiteMap {
	return &SiteMap{
		RunID:         runID,
		StartURL:      startURL,
		MaxDepth:      maxDepth,
		MaxPages:      maxPages,
		AllowExternal: allowExternal,
		Pages:         make([]SiteMapEntry, 0),
	}
}

// Append adds an entry and keeps PagesVisited in sync.
func (m *SiteMap) Append(entry SiteMapEntry) {
	m.Pages = append(m.Pages, entry)
	m.PagesVisited = len(m.Pages)
}

// SucceededCount returns the number of entries with status ok.
func (m *SiteMap) SucceededCount() int {
	n := 0
	for _, p := range m.Pages {
		if p.Status == PageStatusOK {
			n++
		}
	}
	return n
}

// FailedCount returns the number of entries with status error.
func (m *SiteMap) FailedCount() int {
	return len(m.Pages) - m.SucceededCount()
}
