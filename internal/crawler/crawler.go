package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/portalscan/portalscan/internal/browser"
	"github.com/portalscan/portalscan/internal/model"
)

// TerminationReason explains why a crawl stopped.
type TerminationReason string

// Termination reasons reported in the run summary.
const (
	// TerminationFrontierExhausted means every reachable, in-scope,
	// in-budget URL was fetched.
	TerminationFrontierExhausted TerminationReason = "frontier_exhausted"

	// TerminationPageBudget means the run stopped at maxPages.
	TerminationPageBudget TerminationReason = "page_budget_reached"

	// TerminationCircuitBreaker means too many consecutive fetch failures.
	TerminationCircuitBreaker TerminationReason = "circuit_breaker_tripped"

	// TerminationSessionInvalid means the browser session lost its login.
	TerminationSessionInvalid TerminationReason = "session_invalid"

	// TerminationPersistence means the run directory stopped accepting
	// writes.
	TerminationPersistence TerminationReason = "persistence_error"

	// TerminationCancelled means the run was cancelled between fetches.
	TerminationCancelled TerminationReason = "cancelled"
)

// ErrCircuitBreakerTripped is returned when consecutive fetch failures
// reach the configured threshold, suggesting session expiry or blocking.
// The site map accumulated so far is preserved.
var ErrCircuitBreakerTripped = errors.New("circuit breaker tripped: too many consecutive fetch failures")

// Summary is the final run report exposed by the crawler.
type Summary struct {
	// PagesVisited is the number of fetch attempts, successful or not.
	PagesVisited int

	// PagesSucceeded is the number of pages archived with status ok.
	PagesSucceeded int

	// PagesFailed is the number of pages recorded with status error.
	PagesFailed int

	// Reason explains why the crawl stopped.
	Reason TerminationReason
}

// Recorder persists one site-map entry per fetch attempt. The archive
// package provides the durable implementation; tests use an in-memory one.
//
// Recorder errors are run-fatal: if the run directory cannot be written,
// continuing to fetch would lose pages silently.
type Recorder interface {
	// RecordSuccess persists the page artifacts and appends an ok entry.
	RecordSuccess(task Task, res *browser.NavigateResult, screenshot []byte, links []string) error

	// RecordFailure appends an error entry with no artifacts.
	RecordFailure(task Task, fetchErr error) error

	// Finalize stamps the site map with its terminal status and flushes it.
	Finalize(status model.CrawlStatus, notes string) error
}

// Options configures a Crawler.
type Options struct {
	// MaxDepth is the BFS depth budget. 0 archives only the start page.
	MaxDepth int

	// MaxPages is the fetch-attempt budget.
	MaxPages int

	// AllowExternal permits cross-origin expansion.
	AllowExternal bool

	// MaxConsecutiveFailures is the circuit-breaker threshold.
	MaxConsecutiveFailures int

	// Delay is the pause between navigations.
	Delay time.Duration

	// IgnorePatterns are URL path globs excluded from the frontier.
	IgnorePatterns []string

	// FollowPatterns, when non-empty, restrict the frontier to matching
	// URL paths.
	FollowPatterns []string

	// Logger receives progress output. slog.Default() when nil.
	Logger *slog.Logger
}

// Crawler drives the archival loop: fetch, record, expand, repeat until a
// budget or terminal condition is hit.
type Crawler struct {
	session  browser.Session
	recorder Recorder
	opts     Options
	logger   *slog.Logger
}

// New creates a Crawler over an authenticated browser session.
func New(session browser.Session, recorder Recorder, opts Options) *Crawler {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 100
	}
	if opts.MaxConsecutiveFailures <= 0 {
		opts.MaxConsecutiveFailures = 5
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{
		session:  session,
		recorder: recorder,
		opts:     opts,
		logger:   logger,
	}
}

// Crawl runs the archival loop from startURL and returns the run summary.
//
// The summary is always valid, even when err is non-nil: run-fatal errors
// (circuit breaker, invalid session, persistence failure) stop the loop but
// everything recorded up to that point has already been flushed.
//
// Cancellation is honored between fetches, not mid-fetch; a cancelled run
// finalizes the site map before returning.
func (c *Crawler) Crawl(ctx context.Context, startURL string) (*Summary, error) {
	start := NormalizeURL(startURL)
	startOrigin := Origin(start)
	if startOrigin == "" {
		return nil, fmt.Errorf("invalid start URL: %q", startURL)
	}

	frontier := NewFrontier(c.opts.MaxDepth)
	frontier.Push(Task{URL: start, Depth: 0})

	summary := &Summary{}

	c.logger.Info("starting archival crawl",
		"start_url", start,
		"max_depth", c.opts.MaxDepth,
		"max_pages", c.opts.MaxPages,
		"allow_external", c.opts.AllowExternal,
	)

	consecutiveFailures := 0

	for summary.PagesVisited < c.opts.MaxPages {
		select {
		case <-ctx.Done():
			summary.Reason = TerminationCancelled
			return summary, c.finalize(summary, "crawl cancelled")
		default:
		}

		task, ok := frontier.Pop()
		if !ok {
			summary.Reason = TerminationFrontierExhausted
			return summary, c.finalize(summary, "")
		}

		c.logger.Info("fetching page",
			"url", task.URL,
			"depth", task.Depth,
			"pending", frontier.Pending(),
		)

		res, fetchErr := c.session.Navigate(ctx, task.URL)
		summary.PagesVisited++

		if fetchErr != nil {
			if errors.Is(fetchErr, browser.ErrSessionInvalid) {
				summary.PagesFailed++
				summary.Reason = TerminationSessionInvalid
				if err := c.recorder.RecordFailure(task, fetchErr); err != nil {
					summary.Reason = TerminationPersistence
					return summary, fmt.Errorf("failed to record page: %w", err)
				}
				_ = c.finalize(summary, "session invalidated mid-crawl")
				return summary, fetchErr
			}

			summary.PagesFailed++
			consecutiveFailures++
			c.logger.Warn("page fetch failed",
				"url", task.URL,
				"depth", task.Depth,
				"consecutive_failures", consecutiveFailures,
				"error", fetchErr,
			)

			if err := c.recorder.RecordFailure(task, fetchErr); err != nil {
				summary.Reason = TerminationPersistence
				return summary, fmt.Errorf("failed to record page: %w", err)
			}

			if consecutiveFailures >= c.opts.MaxConsecutiveFailures {
				summary.Reason = TerminationCircuitBreaker
				_ = c.finalize(summary, fmt.Sprintf("circuit breaker tripped after %d consecutive failures", consecutiveFailures))
				return summary, ErrCircuitBreakerTripped
			}

			c.pause(ctx, frontier)
			continue
		}

		consecutiveFailures = 0
		summary.PagesSucceeded++

		links := c.extractLinks(res, task)

		screenshot, shotErr := c.session.Screenshot(ctx)
		if shotErr != nil {
			// A missing screenshot degrades the snapshot but the HTML is
			// the artifact extraction depends on; keep the page.
			c.logger.Warn("screenshot failed", "url", task.URL, "error", shotErr)
			screenshot = nil
		}

		if err := c.recorder.RecordSuccess(task, res, screenshot, links); err != nil {
			summary.Reason = TerminationPersistence
			return summary, fmt.Errorf("failed to record page: %w", err)
		}

		c.expand(frontier, task, links, startOrigin)
		c.pause(ctx, frontier)
	}

	summary.Reason = TerminationPageBudget
	return summary, c.finalize(summary, "reached page budget")
}

// extractLinks parses the fetched document and returns its crawlable links.
// Parse failures degrade to an empty link set; the page itself stays
// archived.
func (c *Crawler) extractLinks(res *browser.NavigateResult, task Task) []string {
	result, err := ExtractLinks(strings.NewReader(res.HTML), res.FinalURL)
	if err != nil {
		c.logger.Warn("link extraction failed", "url", task.URL, "error", err)
		return nil
	}
	if result.Malformed > 0 {
		c.logger.Debug("dropped malformed links",
			"url", task.URL,
			"count", result.Malformed,
		)
	}
	return result.Links
}

// expand enqueues the discovered links that pass the scope policy, the
// path patterns, and the depth budget.
func (c *Crawler) expand(frontier *Frontier, task Task, links []string, startOrigin string) {
	if task.Depth >= c.opts.MaxDepth {
		return
	}
	for _, link := range links {
		if frontier.Visited(link) {
			continue
		}
		if !InScope(link, startOrigin, c.opts.AllowExternal) {
			continue
		}
		if !c.shouldCrawl(link) {
			continue
		}
		frontier.Push(Task{URL: link, Depth: task.Depth + 1, ParentURL: task.URL})
	}
}

// pause waits the configured delay between navigations, returning early on
// cancellation. No delay is taken when the frontier is empty.
func (c *Crawler) pause(ctx context.Context, frontier *Frontier) {
	if c.opts.Delay <= 0 || frontier.Pending() == 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(c.opts.Delay):
	}
}

// finalize stamps the site map with the terminal status derived from the
// summary and flushes it.
func (c *Crawler) finalize(summary *Summary, notes string) error {
	status := model.CrawlStatusComplete
	switch {
	case summary.PagesVisited == 0:
		status = model.CrawlStatusError
		if notes == "" {
			notes = "no pages were archived"
		}
	case summary.Reason == TerminationPageBudget:
		status = model.CrawlStatusPartial
	case summary.Reason != TerminationFrontierExhausted:
		status = model.CrawlStatusAborted
	}

	if err := c.recorder.Finalize(status, notes); err != nil {
		return fmt.Errorf("failed to finalize site map: %w", err)
	}
	return nil
}

// shouldCrawl checks a URL against the ignore/follow path patterns.
//
// Logic:
//  1. If the path matches any ignore pattern, skip it
//  2. If follow patterns are set and the path matches none, skip it
//  3. Otherwise crawl it
func (c *Crawler) shouldCrawl(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range c.opts.IgnorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(c.opts.FollowPatterns) > 0 {
		for _, pattern := range c.opts.FollowPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}

	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use * for any sequence of non-separator characters and ?
// for a single character.
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, path string) bool {
	// Prefix patterns like "/admin/*" should match the whole subtree, which
	// filepath.Match alone does not do.
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	// Extension patterns like "*.pdf" match anywhere in the tree.
	if strings.HasPrefix(pattern, "*.") {
		ext := strings.TrimPrefix(pattern, "*")
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Also try the bare filename for patterns without a separator.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && matched {
			return true
		}
	}

	return false
}
