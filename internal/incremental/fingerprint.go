// Package incremental implements the Incremental Coordinator (C7):
// content fingerprinting, three-way diff against the fingerprint table
// a prior scan stored under metadata, normative subsystem rerun mask
// rules, bounded re-analysis of only the affected files, and atomic
// GenomeDelta application.
//
// Grounded on the teacher's internal/sync/*.go family (files.go,
// commits.go, coupling_edges.go), each an idempotent "diff the current
// state against the store and sync only the delta" unit against
// Postgres/Neo4j; generalized here from cross-database sync to
// in-memory Genome delta application.
package incremental

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a stable hex digest of a file's path and content,
// used to detect content-preserving renames (different path, same
// content hashes differently because path is part of the input) versus
// in-place edits (same path, different content).
func Fingerprint(relPath string, content []byte) string {
	h := xxhash.New()
	h.Write([]byte(relPath))
	h.Write([]byte{0})
	h.Write(content)
	return fmt.Sprintf("%016x", h.Sum64())
}

// Fingerprints reads every path under repoRoot and returns its current
// fingerprint, keyed by repo-relative slash path.
func Fingerprints(repoRoot string, paths []string) (map[string]string, error) {
	out := make(map[string]string, len(paths))
	for _, rel := range paths {
		content, err := os.ReadFile(filepath.Join(repoRoot, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("incremental: reading %s: %w", rel, err)
		}
		out[rel] = Fingerprint(rel, content)
	}
	return out, nil
}
