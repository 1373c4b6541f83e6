package archive

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/portalscan/portalscan/internal/browser"
	"github.com/portalscan/portalscan/internal/crawler"
	"github.com/portalscan/portalscan/internal/model"
)

// Writer is the durable crawler.Recorder: it saves page artifacts under the
// run directory and flushes the site map after every entry.
//
// Design decision: the site map is re-written in full after each page
// instead of being appended to, because:
//  1. A crash mid-run must still leave a valid JSON document on disk
//  2. Full rewrite plus atomic rename is the simplest way to guarantee that
//  3. Site maps are bounded by maxPages, so the rewrite cost stays trivial
type Writer struct {
	runDir  string
	siteMap *model.SiteMap
	logger  *slog.Logger
}

// NewWriter creates the run directory layout and an empty, flushed site
// map, so the run is observable on disk before the first page is fetched.
func NewWriter(runDir string, siteMap *model.SiteMap, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(PagesDir(runDir), 0o755); err != nil {
		return nil, newPersistenceError("create run directory", runDir, err)
	}
	w := &Writer{runDir: runDir, siteMap: siteMap, logger: logger}
	if err := w.flush(); err != nil {
		return nil, err
	}
	return w, nil
}

// RunDir returns the directory this writer persists into.
func (w *Writer) RunDir() string {
	return w.runDir
}

// SiteMap returns the site map being built. Callers must not mutate it.
func (w *Writer) SiteMap() *model.SiteMap {
	return w.siteMap
}

// RecordSuccess saves the page HTML and screenshot under their visit-index
// names, appends an ok entry, and flushes the site map.
func (w *Writer) RecordSuccess(task crawler.Task, res *browser.NavigateResult, screenshot []byte, links []string) error {
	index := len(w.siteMap.Pages)

	artifacts := model.ArtifactPaths{HTML: htmlArtifactRel(index)}
	htmlPath := filepath.Join(w.runDir, artifacts.HTML)
	if err := os.WriteFile(htmlPath, []byte(res.HTML), 0o644); err != nil {
		return newPersistenceError("write html", htmlPath, err)
	}

	if len(screenshot) > 0 {
		artifacts.Screenshot = screenshotArtifactRel(index)
		pngPath := filepath.Join(w.runDir, artifacts.Screenshot)
		if err := os.WriteFile(pngPath, screenshot, 0o644); err != nil {
			// The HTML is already durable; losing the screenshot degrades
			// the snapshot but does not invalidate the page.
			w.logger.Warn("failed to save screenshot", "path", pngPath, "error", err)
			artifacts.Screenshot = ""
		}
	}

	w.siteMap.Append(model.SiteMapEntry{
		URL:             task.URL,
		ParentURL:       task.ParentURL,
		Depth:           task.Depth,
		Status:          model.PageStatusOK,
		StatusCode:      res.StatusCode,
		Artifacts:       artifacts,
		DiscoveredLinks: links,
		Timestamp:       time.Now().UTC(),
	})
	return w.flush()
}

// RecordFailure appends an error entry with no artifacts and flushes the
// site map. Failed pages stay in the map so the archive shows what was
// attempted, not just what succeeded.
func (w *Writer) RecordFailure(task crawler.Task, fetchErr error) error {
	entry := model.SiteMapEntry{
		URL:       task.URL,
		ParentURL: task.ParentURL,
		Depth:     task.Depth,
		Status:    model.PageStatusError,
		Timestamp: time.Now().UTC(),
	}
	if fetchErr != nil {
		entry.Error = fetchErr.Error()
	}
	w.siteMap.Append(entry)
	return w.flush()
}

// Finalize stamps the site map with its terminal status and flushes it one
// last time.
func (w *Writer) Finalize(status model.CrawlStatus, notes string) error {
	w.siteMap.Status = status
	w.siteMap.Notes = notes
	return w.flush()
}

// flush atomically rewrites mapping.json: marshal to a temporary file in
// the same directory, then rename over the old map. Rename within one
// directory is atomic on POSIX filesystems, so readers never see a torn or
// half-written map.
func (w *Writer) flush() error {
	target := MappingPath(w.runDir)

	data, err := json.MarshalIndent(w.siteMap, "", "  ")
	if err != nil {
		return newPersistenceError("encode site map", target, err)
	}

	tmp, err := os.CreateTemp(MapDir(w.runDir), MappingFileName+".tmp-*")
	if err != nil {
		return newPersistenceError("create temp file", target, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return newPersistenceError("write site map", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return newPersistenceError("close site map", tmpName, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return newPersistenceError("flush site map", target, err)
	}
	return nil
}
