package report

import (
	"io"
	"sort"
	"time"

	"github.com/portalscan/portalscan/internal/model"
)

// ScanReport bundles one run's summary with its extraction findings.
// It is assembled after a scan completes and handed to the writers.
type ScanReport struct {
	// RunID identifies the scanned run directory.
	RunID string `json:"run_id"`

	// StartURL is the portal the run mapped.
	StartURL string `json:"start_url"`

	// Status is the terminal crawl status of the run.
	Status model.CrawlStatus `json:"status"`

	// PagesVisited, PagesSucceeded, and PagesFailed are the run counters.
	PagesVisited   int `json:"pages_visited"`
	PagesSucceeded int `json:"pages_succeeded"`
	PagesFailed    int `json:"pages_failed"`

	// GeneratedAt is when the scan finished.
	GeneratedAt time.Time `json:"generated_at"`

	// Findings are the extraction results in their canonical order.
	Findings []model.Finding `json:"findings"`
}

// NewScanReport builds a ScanReport from a site map and its findings.
func NewScanReport(siteMap *model.SiteMap, findings []model.Finding) *ScanReport {
	return &ScanReport{
		RunID:          siteMap.RunID,
		StartURL:       siteMap.StartURL,
		Status:         siteMap.Status,
		PagesVisited:   siteMap.PagesVisited,
		PagesSucceeded: siteMap.SucceededCount(),
		PagesFailed:    siteMap.FailedCount(),
		GeneratedAt:    time.Now().UTC(),
		Findings:       findings,
	}
}

// Detectors returns the detector names present in the findings, sorted.
func (r *ScanReport) Detectors() []string {
	seen := make(map[string]bool)
	for _, f := range r.Findings {
		seen[f.Detector] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindingsFor returns the findings of one detector, preserving order.
func (r *ScanReport) FindingsFor(detector string) []model.Finding {
	var out []model.Finding
	for _, f := range r.Findings {
		if f.Detector == detector {
			out = append(out, f)
		}
	}
	return out
}

// HasFindings reports whether any detector matched anything.
func (r *ScanReport) HasFindings() bool {
	return len(r.Findings) > 0
}

// Writer defines the interface for report output.
// Implementations write scan results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *ScanReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *ScanReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
