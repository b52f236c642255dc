// Package merge implements the Merger: it reconciles the Structural
// Extractor's base graph with every enabled Auxiliary Subsystem's
// output into one validated Genome document.
//
// Grounded on the teacher's internal/risk/agents/synthesizer.go shape
// (a single named stage reconciling multiple upstream agent outputs
// into one result) — the teacher's SynthesizerAgent is an unimplemented
// stub, so only its position in the pipeline (the last stage before a
// result is returned) is reused; the merge policy itself is built
// directly from the section-ownership and invariant rules the Genome
// model defines.
package merge

import (
	"path/filepath"
	"sort"

	"github.com/genomectl/repogenome/internal/analyzer"
	"github.com/genomectl/repogenome/internal/genome"
	"github.com/genomectl/repogenome/internal/subsystems"
)

// Options configures one Merge call.
type Options struct {
	EngineVersion  string
	SchemaVersion  string
	RepoHash       string
	Languages      []string
	Frameworks     []string
	Mode           genome.Mode
	Gzip           bool
	HotspotK       int
	LegacyPatterns []string
	PathResolver   genome.KnownPathResolver
}

// Result is a merged, validated Genome plus the diagnostics carried by
// the subsystem outputs (including subsystem errors converted to
// diagnostics by subsystems.RunEnabled).
type Result struct {
	Genome      *genome.Genome
	Diagnostics []analyzer.Diagnostic
	Violations  []genome.InvariantViolation
}

// Merge unions the base graph with every subsystem output under
// single-owner section writes, compacts degree-0 orphan nodes, derives
// the summary section, and validates the result.
func Merge(base *genome.BaseGraph, outputs []subsystems.Output, opts Options) *Result {
	g := genome.New()

	for id, n := range base.Nodes {
		g.Nodes[id] = n
	}
	g.Edges = mergeEdges(base.Edges, outputs)

	var diagnostics []analyzer.Diagnostic
	entryMarkers := make(map[genome.NodeId]bool)
	for id, n := range base.Nodes {
		if n.Entry {
			entryMarkers[id] = true
		}
	}

	for _, out := range outputs {
		g.Flows = append(g.Flows, out.Flows...)
		g.Concepts = append(g.Concepts, out.Concepts...)
		for id, h := range out.History {
			g.History[id] = h
		}
		for sig, c := range out.Contracts {
			g.Contracts[sig] = c
		}
		for id, r := range out.Risk {
			g.Risk[id] = r
		}
		diagnostics = append(diagnostics, out.Diagnostics...)
	}

	g.Nodes = dropOrphans(g.Nodes, g.Edges, entryMarkers)

	var legacyMatcher func(string) bool
	if len(opts.LegacyPatterns) > 0 {
		legacyMatcher = func(file string) bool { return matchesAny(file, opts.LegacyPatterns) }
	}
	hotspotK := opts.HotspotK
	if hotspotK <= 0 {
		hotspotK = 10
	}
	g.Summary = genome.DeriveSummary(g, entryMarkers, legacyMatcher, hotspotK)

	g.Metadata = genome.Metadata{
		RepoHash:      opts.RepoHash,
		Languages:     opts.Languages,
		Frameworks:    opts.Frameworks,
		EngineVersion: opts.EngineVersion,
		SchemaVersion: schemaVersionOrDefault(opts.SchemaVersion),
		Mode:          string(modeOrDefault(opts.Mode)),
		Gzip:          opts.Gzip,
	}

	violations := g.Validate(opts.PathResolver)

	return &Result{Genome: g, Diagnostics: diagnostics, Violations: violations}
}

func schemaVersionOrDefault(v string) string {
	if v == "" {
		return genome.MaxSchemaVersion
	}
	return v
}

func modeOrDefault(m genome.Mode) genome.Mode {
	if m == "" {
		return genome.ModeStandard
	}
	return m
}

// mergeEdges unions the base graph's edges with every subsystem's
// TestEdges output, deduping on (from,to,type) per spec.md invariant 2.
func mergeEdges(baseEdges []genome.Edge, outputs []subsystems.Output) []genome.Edge {
	seen := make(map[genome.EdgeKey]bool)
	var out []genome.Edge

	add := func(e genome.Edge) {
		key := genome.EdgeKey{From: e.From, To: e.To, Type: e.Type}
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, e)
	}

	for _, e := range baseEdges {
		add(e)
	}
	for _, o := range outputs {
		for _, e := range o.TestEdges {
			add(e)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}
		return out[i].Type < out[j].Type
	})

	return out
}

// dropOrphans implements the post-merge compaction pass: a non-file,
// non-entry node with no incident edge anywhere in the merged graph
// carries no useful information and is dropped.
func dropOrphans(nodes map[genome.NodeId]*genome.Node, edges []genome.Edge, entryMarkers map[genome.NodeId]bool) map[genome.NodeId]*genome.Node {
	degree := make(map[genome.NodeId]int)
	for _, e := range edges {
		degree[e.From]++
		degree[e.To]++
	}

	out := make(map[genome.NodeId]*genome.Node, len(nodes))
	for id, n := range nodes {
		if n.Type == genome.NodeFile || entryMarkers[id] || degree[id] > 0 {
			out[id] = n
			continue
		}
	}
	return out
}

func matchesAny(file string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, file); ok {
			return true
		}
	}
	return false
}
