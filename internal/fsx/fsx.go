// Package fsx implements the FilesystemSource capability interface:
// enumerate repo-relative paths under an exclusion policy, and read
// file bytes. The default implementation walks the OS filesystem.
//
// Grounded on the teacher's internal/ingestion/walker.go
// exclusion-directory and supported-extension tables; generalized from
// a channel-of-paths walker returning absolute OS paths into a
// synchronous call returning repo-relative paths, since callers here
// (the serving layer's export/persistence paths) want a materialized
// list rather than a streaming channel.
package fsx

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// excludedDirs mirrors the teacher's shouldSkipDir table.
var excludedDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, "venv": true,
	"__pycache__": true, ".next": true, ".nuxt": true, "dist": true,
	"build": true, "out": true, "target": true, ".cache": true,
	".parcel-cache": true, "coverage": true, ".nyc_output": true,
	".pytest_cache": true, ".tox": true, ".venv": true, "env": true,
	"__mocks__": true, ".idea": true, ".vscode": true,
}

// Source is the capability interface spec.md §6 names: enumerate
// paths with exclusion patterns, read bytes.
type Source interface {
	ListFiles(root string, extraIgnore []string) ([]string, error)
	ReadFile(root, relPath string) ([]byte, error)
	WriteFile(root, relPath string, data []byte) error
}

// OSSource is the default Source, backed directly by the OS
// filesystem.
type OSSource struct{}

// ListFiles walks root and returns every non-excluded file's
// repo-relative path, sorted.
func (OSSource) ListFiles(root string, extraIgnore []string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if matchesAny(rel, extraIgnore) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fsx: walk %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}

// ReadFile reads relPath relative to root.
func (OSSource) ReadFile(root, relPath string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(root, relPath))
	if err != nil {
		return nil, fmt.Errorf("fsx: read %s: %w", relPath, err)
	}
	return data, nil
}

// WriteFile writes data to relPath relative to root, creating parent
// directories as needed.
func (OSSource) WriteFile(root, relPath string, data []byte) error {
	full := filepath.Join(root, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("fsx: mkdir for %s: %w", relPath, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("fsx: write %s: %w", relPath, err)
	}
	return nil
}

func shouldSkipDir(name string) bool {
	if excludedDirs[name] {
		return true
	}
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func matchesAny(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, relPath); ok {
			return true
		}
		if strings.Contains(relPath, pattern) {
			return true
		}
	}
	return false
}
