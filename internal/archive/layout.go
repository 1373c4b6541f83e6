package archive

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"
)

// File and directory names inside a run directory.
const (
	// MapDirName is the subdirectory holding the site map and artifacts.
	MapDirName = "map"

	// PagesDirName is the subdirectory holding per-page artifacts.
	PagesDirName = "pages"

	// MappingFileName is the site map file.
	MappingFileName = "mapping.json"

	// FindingsFileName is the extraction results file.
	FindingsFileName = "extraction_results.json"
)

// NewRunID generates a run identifier of the form 20260826-153012-a3f9:
// a sortable timestamp plus a short random suffix so two runs started in
// the same second do not collide.
func NewRunID() string {
	suffix := make([]byte, 2)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// fall back to a fixed suffix rather than aborting the run.
		return time.Now().Format("20060102-150405") + "-0000"
	}
	return fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), hex.EncodeToString(suffix))
}

// RunDir returns the absolute directory for a run.
func RunDir(dataDir, runID string) string {
	return filepath.Join(dataDir, runID)
}

// MapDir returns the map subdirectory of a run.
func MapDir(runDir string) string {
	return filepath.Join(runDir, MapDirName)
}

// PagesDir returns the pages subdirectory of a run.
func PagesDir(runDir string) string {
	return filepath.Join(runDir, MapDirName, PagesDirName)
}

// MappingPath returns the site map file path of a run.
func MappingPath(runDir string) string {
	return filepath.Join(runDir, MapDirName, MappingFileName)
}

// FindingsPath returns the extraction results file path of a run.
func FindingsPath(runDir string) string {
	return filepath.Join(runDir, MapDirName, FindingsFileName)
}

// htmlArtifactRel returns the run-relative HTML path for a visit index.
func htmlArtifactRel(index int) string {
	return filepath.Join(MapDirName, PagesDirName, fmt.Sprintf("%d.html", index))
}

// screenshotArtifactRel returns the run-relative PNG path for a visit index.
func screenshotArtifactRel(index int) string {
	return filepath.Join(MapDirName, PagesDirName, fmt.Sprintf("%d.png", index))
}
