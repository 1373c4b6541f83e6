package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/portalscan/portalscan/internal/model"
)

// LoadSiteMap reads and validates the site map of a run directory.
func LoadSiteMap(runDir string) (*model.SiteMap, error) {
	path := MappingPath(runDir)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read site map %s: %w", path, err)
	}

	var siteMap model.SiteMap
	if err := json.Unmarshal(data, &siteMap); err != nil {
		return nil, fmt.Errorf("failed to parse site map %s: %w", path, err)
	}
	if siteMap.StartURL == "" {
		return nil, fmt.Errorf("site map %s has no start URL", path)
	}
	return &siteMap, nil
}

// ArtifactPath resolves a run-relative artifact path against the run
// directory. Paths escaping the run directory are rejected so a tampered
// site map cannot direct reads outside the archive.
func ArtifactPath(runDir, relPath string) (string, error) {
	if relPath == "" {
		return "", fmt.Errorf("empty artifact path")
	}
	if filepath.IsAbs(relPath) {
		return "", fmt.Errorf("artifact path %q is absolute", relPath)
	}
	joined := filepath.Join(runDir, relPath)
	cleanRoot := filepath.Clean(runDir) + string(filepath.Separator)
	if !strings.HasPrefix(joined, cleanRoot) {
		return "", fmt.Errorf("artifact path %q escapes the run directory", relPath)
	}
	return joined, nil
}

// WriteFindings writes extraction results next to the site map, atomically.
// The site map itself is never touched by the scanner.
func WriteFindings(runDir string, findings []model.Finding) error {
	target := FindingsPath(runDir)

	data, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return newPersistenceError("encode findings", target, err)
	}

	tmp, err := os.CreateTemp(MapDir(runDir), FindingsFileName+".tmp-*")
	if err != nil {
		return newPersistenceError("create temp file", target, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return newPersistenceError("write findings", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return newPersistenceError("close findings", tmpName, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return newPersistenceError("flush findings", target, err)
	}
	return nil
}

// LoadFindings reads previously written extraction results.
func LoadFindings(runDir string) ([]model.Finding, error) {
	path := FindingsPath(runDir)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read findings %s: %w", path, err)
	}
	var findings []model.Finding
	if err := json.Unmarshal(data, &findings); err != nil {
		return nil, fmt.Errorf("failed to parse findings %s: %w", path, err)
	}
	return findings, nil
}
