// Package analyzer implements the Analyzer Registry: a map from a
// language name to an Analyzer capable of extracting nodes and edges
// from one file in isolation. The file kind is not part of the key.
//
// Grounded on the teacher's internal/treesitter package (parser.go +
// the per-language *_extractor.go files), which already does
// side-effect-free, single-file tree-sitter extraction; this package
// wraps that CodeEntity output into the closed NodeDecl/EdgeDecl
// contract spec.md §4.2 requires instead of the teacher's ad hoc
// CodeEntity/ParseResult shape, and adds the panic-recovery + severity
// tagging the teacher's ParseFile did not need (it returned a Go error
// instead of a diagnostic list).
package analyzer

import (
	"fmt"

	"github.com/genomectl/repogenome/internal/genome"
)

// DiagnosticSeverity is the closed set of diagnostic severities.
type DiagnosticSeverity string

const (
	SeverityInfo  DiagnosticSeverity = "info"
	SeverityWarn  DiagnosticSeverity = "warn"
	SeverityError DiagnosticSeverity = "error"
)

// Diagnostic reports an analyzer-local problem that never aborts the
// overall build.
type Diagnostic struct {
	Severity DiagnosticSeverity
	Message  string
	File     string
	Line     int
}

// NodeDecl is a node an Analyzer wants added to the base graph.
type NodeDecl struct {
	ID          genome.NodeId
	Type        genome.NodeType
	File        string
	Language    string
	Visibility  genome.Visibility
	Summary     string
	StartLine   int
	EndLine     int
	IsEntry     bool // tagged as an entry point (main, exported HTTP handler, CLI main)
}

// EdgeDecl is an edge an Analyzer wants added to the base graph.
type EdgeDecl struct {
	From genome.NodeId
	To   genome.NodeId
	Type genome.EdgeType
}

// ImportDecl names an unresolved import the Structural Extractor must
// resolve to either an in-repo file NodeId or a virtual external node.
type ImportDecl struct {
	From       genome.NodeId // the importing file's NodeId
	ImportPath string        // raw import path as written in source
}

// ExtractionResult is the output of one Analyzer run over one file.
type ExtractionResult struct {
	Nodes       []NodeDecl
	Edges       []EdgeDecl
	Imports     []ImportDecl
	Diagnostics []Diagnostic
}

// Analyzer extracts nodes and edges from a single file's content.
// Implementations must never read any file other than the one given
// and must be safe to call concurrently from independent goroutines.
type Analyzer interface {
	// Language is the classify.Result.AnalyzerCapability this Analyzer serves.
	Language() string
	Extract(path string, content []byte) ExtractionResult
}

// Registry dispatches to a registered Analyzer by language.
type Registry struct {
	analyzers map[string]Analyzer
}

// NewRegistry returns a Registry with no analyzers registered.
func NewRegistry() *Registry {
	return &Registry{analyzers: make(map[string]Analyzer)}
}

// Register adds or replaces the Analyzer for its declared language.
func (r *Registry) Register(a Analyzer) {
	r.analyzers[a.Language()] = a
}

// Lookup returns the Analyzer for language, or (nil, false) if none
// is registered — callers must treat this as "no analyzer capability"
// per spec.md §4.1, not an error.
func (r *Registry) Lookup(language string) (Analyzer, bool) {
	a, ok := r.analyzers[language]
	return a, ok
}

// Run invokes the Analyzer for language against path/content, recovering
// from any panic and converting it into an error-severity Diagnostic so
// a single misbehaving analyzer never aborts the overall scan.
func (r *Registry) Run(language, path string, content []byte) ExtractionResult {
	a, ok := r.Lookup(language)
	if !ok {
		return ExtractionResult{}
	}
	return runRecovered(a, path, content)
}

func runRecovered(a Analyzer, path string, content []byte) (result ExtractionResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = ExtractionResult{
				Diagnostics: []Diagnostic{{
					Severity: SeverityError,
					Message:  fmt.Sprintf("analyzer panic: %v", rec),
					File:     path,
				}},
			}
		}
	}()
	return a.Extract(path, content)
}

// NewDefaultRegistry returns a Registry with the built-in tree-sitter
// backed Python/JavaScript/TypeScript analyzers registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewTreeSitterAnalyzer("python"))
	r.Register(NewTreeSitterAnalyzer("javascript"))
	r.Register(NewTreeSitterAnalyzer("typescript"))
	return r
}
