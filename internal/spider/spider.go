// Package spider implements the Structural Extractor (RepoSpider):
// it walks a repository, classifies and analyzes each included file in
// parallel, and assembles the base graph — exactly the nodes/edges
// derivable from local per-file analysis, with no flow, concept, or
// risk data.
//
// Grounded on the teacher's internal/ingestion/orchestrator.go for the
// errgroup fan-out/collector shape (there applied to GitHub extraction
// phases; here applied to per-file analysis) and
// internal/ingestion/walker.go for the directory-walk/exclusion
// structure, generalized from a channel-of-paths walker into the
// chunked worker-pool dispatch spec.md §5 requires.
package spider

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/genomectl/repogenome/internal/analyzer"
	"github.com/genomectl/repogenome/internal/classify"
	"github.com/genomectl/repogenome/internal/genome"
	"github.com/genomectl/repogenome/internal/logging"
)

// PeekBytes bounds how much of a file is read for shebang/content-sniff
// classification before a full read.
const PeekBytes = 512

// Options configures one Run of the Structural Extractor.
type Options struct {
	RepoRoot       string
	Workers        int      // <= 0 means 4 workers
	IgnorePatterns []string // additional glob-style ignore patterns beyond classify.ExcludedDirs
	Only           []string // when non-empty, restrict the walk to exactly these repo-relative paths (incremental re-analysis)
}

// Result is the base graph plus collected diagnostics.
type Result struct {
	Nodes       map[genome.NodeId]*genome.Node
	Edges       []genome.Edge
	Diagnostics []analyzer.Diagnostic
	FilesSeen   []string // repo-relative paths included in this run, sorted
}

// BaseGraph returns the immutable-intent view Auxiliary Subsystems
// consume.
func (r *Result) BaseGraph() *genome.BaseGraph {
	return &genome.BaseGraph{Nodes: r.Nodes, Edges: r.Edges}
}

// Run walks opts.RepoRoot (or analyzes exactly opts.Only, when set) and
// produces the base graph using reg to dispatch per-file analysis.
func Run(ctx context.Context, opts Options, reg *analyzer.Registry) (*Result, error) {
	paths, err := collectPaths(opts)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	chunkSize := len(paths) / (4 * workers)
	if chunkSize < 1 {
		chunkSize = 1
	}

	chunks := chunkPaths(paths, chunkSize)

	collector := newCollector()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			return processChunk(gctx, opts.RepoRoot, chunk, reg, collector)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := collector.finalize()
	result.FilesSeen = paths
	resolveImports(result, collector.imports)
	return result, nil
}

// CollectPaths walks opts.RepoRoot (respecting exclusion and ignore
// rules) and returns the sorted repo-relative paths Run would analyze.
// Exported for the Incremental Coordinator, which needs the full
// current path set to compute fingerprints before deciding which
// subset to re-analyze.
func CollectPaths(opts Options) ([]string, error) {
	return collectPaths(opts)
}

func collectPaths(opts Options) ([]string, error) {
	if len(opts.Only) > 0 {
		out := make([]string, len(opts.Only))
		copy(out, opts.Only)
		sort.Strings(out)
		return out, nil
	}

	var paths []string
	err := filepath.WalkDir(opts.RepoRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != opts.RepoRoot && classify.ShouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(opts.RepoRoot, path)
		if relErr != nil {
			return relErr
		}
		if matchesAny(rel, opts.IgnorePatterns) {
			return nil
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func matchesAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, path); ok {
			return true
		}
	}
	return false
}

func chunkPaths(paths []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(paths); i += size {
		end := i + size
		if end > len(paths) {
			end = len(paths)
		}
		chunks = append(chunks, paths[i:end])
	}
	return chunks
}

func processChunk(ctx context.Context, root string, paths []string, reg *analyzer.Registry, c *collector) error {
	for _, rel := range paths {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		full := filepath.Join(root, rel)
		content, err := os.ReadFile(full)
		if err != nil {
			c.addDiagnostic(analyzer.Diagnostic{
				Severity: analyzer.SeverityWarn,
				Message:  "failed to read file: " + err.Error(),
				File:     rel,
			})
			continue
		}

		cls := classify.Classify(rel, peek(content))
		if cls.AnalyzerCapability == "" || cls.Generated {
			continue
		}

		extraction := reg.Run(cls.AnalyzerCapability, rel, content)
		c.merge(extraction)
	}
	return nil
}

func peek(content []byte) []byte {
	if len(content) <= PeekBytes {
		return content
	}
	return content[:PeekBytes]
}

// collector serializes all writes into the base graph at a single
// point, per spec.md §4.3 ("All writes into the base graph are
// serialized at a single collector").
type collector struct {
	mu          sync.Mutex
	nodes       map[genome.NodeId]*genome.Node
	edges       []genome.Edge
	edgeSeen    map[genome.EdgeKey]bool
	diagnostics []analyzer.Diagnostic
	imports     []analyzer.ImportDecl
}

func newCollector() *collector {
	return &collector{
		nodes:    make(map[genome.NodeId]*genome.Node),
		edgeSeen: make(map[genome.EdgeKey]bool),
	}
}

func (c *collector) merge(r analyzer.ExtractionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range r.Nodes {
		c.nodes[n.ID] = &genome.Node{
			ID: n.ID, Type: n.Type, File: n.File, Language: n.Language,
			Visibility: n.Visibility, Summary: n.Summary,
			StartLine: n.StartLine, EndLine: n.EndLine,
			Entry: n.IsEntry,
		}
	}
	for _, e := range r.Edges {
		key := genome.EdgeKey{From: e.From, To: e.To, Type: e.Type}
		if c.edgeSeen[key] {
			continue
		}
		c.edgeSeen[key] = true
		c.edges = append(c.edges, genome.Edge{From: e.From, To: e.To, Type: e.Type})
	}
	c.diagnostics = append(c.diagnostics, r.Diagnostics...)
	c.imports = append(c.imports, r.Imports...)
}

func (c *collector) addDiagnostic(d analyzer.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diagnostics = append(c.diagnostics, d)
}

func (c *collector) finalize() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &Result{
		Nodes:       c.nodes,
		Edges:       append([]genome.Edge(nil), c.edges...),
		Diagnostics: append([]analyzer.Diagnostic(nil), c.diagnostics...),
	}
}

// resolveImports maps each pending import to an in-repo file NodeId
// when one matches, or creates a virtual external node per spec.md
// §4.3 otherwise.
func resolveImports(result *Result, imports []analyzer.ImportDecl) {
	for _, imp := range imports {
		target, ok := resolveInRepo(result.Nodes, imp.ImportPath)
		if !ok {
			extID := genome.ExternalID(resolverKey(imp.ImportPath))
			if _, exists := result.Nodes[extID]; !exists {
				result.Nodes[extID] = &genome.Node{
					ID: extID, Type: genome.NodeModule, Visibility: genome.VisibilityPublic, Virtual: true,
				}
			}
			target = extID
		}
		key := genome.EdgeKey{From: imp.From, To: target, Type: genome.EdgeImports}
		result.Edges = appendUniqueEdge(result.Edges, genome.Edge{From: imp.From, To: target, Type: genome.EdgeImports}, key)
	}
	logging.Debug("structural extraction resolved imports", "count", len(imports))
}

func appendUniqueEdge(edges []genome.Edge, e genome.Edge, key genome.EdgeKey) []genome.Edge {
	for _, existing := range edges {
		if existing.From == e.From && existing.To == e.To && existing.Type == e.Type {
			return edges
		}
	}
	return append(edges, e)
}

// resolveInRepo attempts a best-effort match from a raw import string
// to an in-repo file NodeId, trying common suffix forms a source-level
// import resolver would.
func resolveInRepo(nodes map[genome.NodeId]*genome.Node, importPath string) (genome.NodeId, bool) {
	slashed := strings.ReplaceAll(importPath, ".", "/")
	candidates := []string{
		importPath, slashed,
		importPath + ".py", slashed + ".py",
		importPath + ".js", slashed + ".js",
		importPath + ".ts", slashed + ".ts",
		importPath + "/index.js", slashed + "/index.js",
		importPath + "/index.ts", slashed + "/index.ts",
		importPath + "/__init__.py", slashed + "/__init__.py",
	}
	for _, c := range candidates {
		id := genome.FileID(c)
		if _, ok := nodes[id]; ok {
			return id, true
		}
	}
	return "", false
}

func resolverKey(importPath string) string {
	return importPath
}
