package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/portalscan/portalscan/internal/archive"
	"github.com/portalscan/portalscan/internal/model"
)

// Engine runs the detector battery across every archived page of a run.
//
// Design decision: pages are scanned concurrently but results are collected
// into a slice indexed by visit position because:
//  1. Goroutine completion order is nondeterministic; visit order is not
//  2. Indexed collection needs no mutex, each goroutine owns its slot
//  3. The merged output is then reproducible across runs
type Engine struct {
	// detectors is the battery applied to each page, in canonical order.
	detectors []*Detector

	// workers caps concurrent page scans.
	workers int

	// logger receives per-page progress and absorbed detector errors.
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWorkers sets the maximum number of concurrent page scans.
// Default is 4 if not specified.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDetectors replaces the default detector battery.
func WithDetectors(detectors []*Detector) EngineOption {
	return func(e *Engine) {
		e.detectors = detectors
	}
}

// NewEngine creates an Engine with the default detector battery.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		detectors: DefaultDetectors(),
		workers:   4,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// ScanArchive applies the detector battery to every successfully archived
// page of the run and returns the merged findings.
//
// The archive is never modified. Unreadable artifacts and failing
// detectors are logged and skipped; they cost their own findings, not the
// scan. The returned error is non-nil only when the context is cancelled.
func (e *Engine) ScanArchive(ctx context.Context, runDir string, siteMap *model.SiteMap) ([]model.Finding, error) {
	e.logger.Info("scanning archive",
		"run_id", siteMap.RunID,
		"pages", len(siteMap.Pages),
		"workers", e.workers,
	)

	// One slot per page entry keeps the merge in visit order.
	perPage := make([][]model.Finding, len(siteMap.Pages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, entry := range siteMap.Pages {
		if entry.Status != model.PageStatusOK || entry.Artifacts.HTML == "" {
			continue
		}

		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			findings, err := e.scanPage(runDir, entry)
			if err != nil {
				e.logger.Warn("skipping page", "url", entry.URL, "error", err)
				return nil
			}
			perPage[i] = findings
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]model.Finding, 0)
	for _, findings := range perPage {
		merged = append(merged, findings...)
	}

	e.logger.Info("archive scan complete",
		"run_id", siteMap.RunID,
		"findings", len(merged),
	)
	return merged, nil
}

// scanPage reads one HTML artifact and applies the full battery to its
// visible text.
func (e *Engine) scanPage(runDir string, entry model.SiteMapEntry) ([]model.Finding, error) {
	path, err := archive.ArtifactPath(runDir, entry.Artifacts.HTML)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	text, err := VisibleText(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}

	findings := make([]model.Finding, 0)
	seen := make(map[string]bool)

	for _, detector := range e.detectors {
		matches, err := e.runDetector(detector, text)
		if err != nil {
			// One broken detector must not cost the other detectors'
			// findings on this page.
			e.logger.Warn("detector failed",
				"detector", detector.Name(),
				"url", entry.URL,
				"error", err,
			)
			continue
		}

		for _, m := range matches {
			key := detector.Name() + "|" + m.Value
			if seen[key] {
				continue
			}
			seen[key] = true

			findings = append(findings, model.Finding{
				SourceURL: entry.URL,
				Detector:  detector.Name(),
				Value:     m.Value,
				Context:   snippet(text, m.Start, m.End),
				PagePath:  entry.Artifacts.HTML,
			})
		}
	}
	return findings, nil
}

// runDetector isolates a single detector invocation, converting panics
// into DetectorError so a pathological pattern cannot crash the scan.
func (e *Engine) runDetector(detector *Detector, text string) (matches []Match, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &DetectorError{
				Detector: detector.Name(),
				Err:      fmt.Errorf("panic: %v", r),
			}
		}
	}()
	return detector.Detect(text), nil
}
