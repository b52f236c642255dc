package incremental

import (
	"context"
	"sort"
	"time"

	"github.com/genomectl/repogenome/internal/analyzer"
	"github.com/genomectl/repogenome/internal/genome"
	"github.com/genomectl/repogenome/internal/merge"
	"github.com/genomectl/repogenome/internal/spider"
	"github.com/genomectl/repogenome/internal/subsystems"
)

// Options configures one incremental Run.
type Options struct {
	RepoRoot string
	Workers  int
	Merge    merge.Options
}

// Run computes the three-way diff against existing's stored
// fingerprints, re-analyzes only the affected files, reruns exactly the
// subsystems spec.md §4.7's mask rules require, and applies the result
// as an atomic delta. On any validation failure existing is returned
// unmodified alongside the error — all-or-nothing, per §4.7 rule 4.
func Run(ctx context.Context, existing *genome.Genome, opts Options, reg *analyzer.Registry, subs []subsystems.Subsystem, caps subsystems.Capabilities) (*genome.Genome, error) {
	allPaths, err := spider.CollectPaths(spider.Options{RepoRoot: opts.RepoRoot})
	if err != nil {
		return existing, err
	}

	current, err := Fingerprints(opts.RepoRoot, allPaths)
	if err != nil {
		return existing, err
	}

	old := existing.Metadata.Fingerprints
	changes := ComputeChangeSet(old, current)

	hasNewCommits, err := commitsSinceLastRun(ctx, existing, opts.RepoRoot, caps)
	if err != nil {
		return existing, err
	}
	if changes.Empty() && !hasNewCommits {
		return existing, nil
	}

	changedFiles := changes.Changed()

	var partial *spider.Result
	if len(changedFiles) > 0 {
		partial, err = spider.Run(ctx, spider.Options{RepoRoot: opts.RepoRoot, Workers: opts.Workers, Only: changedFiles}, reg)
		if err != nil {
			return existing, err
		}
	} else {
		partial = &spider.Result{Nodes: map[genome.NodeId]*genome.Node{}}
	}

	newBase := rebuildBase(existing, changes, partial)
	structuralEdgesChanged := edgeSetOfInterestChanged(existing, newBase)
	mask := ComputeMask(changes, structuralEdgesChanged, hasNewCommits)

	outputs := make([]subsystems.Output, 0, len(subs))
	for _, s := range subs {
		if shouldRerun(s.Name(), mask) {
			out, runErr := s.Run(ctx, newBase, caps)
			if runErr != nil {
				out.Diagnostics = append(out.Diagnostics, analyzer.Diagnostic{
					Severity: analyzer.SeverityError,
					Message:  s.Name() + ": " + runErr.Error(),
				})
			}
			outputs = append(outputs, out)
			continue
		}
		outputs = append(outputs, carryForward(existing, newBase))
	}

	mergeOpts := opts.Merge
	if mergeOpts.RepoHash == "" {
		mergeOpts.RepoHash = existing.Metadata.RepoHash
	}
	if len(mergeOpts.Languages) == 0 {
		mergeOpts.Languages = existing.Metadata.Languages
	}

	result := merge.Merge(newBase, outputs, mergeOpts)
	if len(result.Violations) > 0 {
		return existing, genomeIncrementalError(result.Violations)
	}

	result.Genome.Metadata.Fingerprints = current
	return result.Genome, nil
}

// rebuildBase constructs the new base graph: nodes/edges belonging to
// removed or re-analyzed files are dropped from the prior graph, the
// partial re-analysis result is unioned in, and import edges wholly
// within unchanged files are preserved untouched (§4.7 rule 3).
func rebuildBase(existing *genome.Genome, changes ChangeSet, partial *spider.Result) *genome.BaseGraph {
	touched := make(map[string]bool, len(changes.Added)+len(changes.Modified)+len(changes.Removed))
	for _, f := range changes.Added {
		touched[f] = true
	}
	for _, f := range changes.Modified {
		touched[f] = true
	}
	for _, f := range changes.Removed {
		touched[f] = true
	}

	nodes := make(map[genome.NodeId]*genome.Node, len(existing.Nodes))
	for id, n := range existing.Nodes {
		if n.File != "" && touched[n.File] {
			continue
		}
		if owner := genome.OwningFile(id); owner != "" && touched[owner] {
			continue
		}
		nodes[id] = n
	}
	for id, n := range partial.Nodes {
		nodes[id] = n
	}

	var edges []genome.Edge
	seen := make(map[genome.EdgeKey]bool)
	add := func(e genome.Edge) {
		key := genome.EdgeKey{From: e.From, To: e.To, Type: e.Type}
		if seen[key] {
			return
		}
		if _, ok := nodes[e.From]; !ok {
			return
		}
		if _, ok := nodes[e.To]; !ok {
			return
		}
		seen[key] = true
		edges = append(edges, e)
	}

	for _, e := range existing.Edges {
		fromFile := fileOf(existing, e.From)
		toFile := fileOf(existing, e.To)
		if touched[fromFile] || touched[toFile] {
			continue
		}
		add(e)
	}
	for _, e := range partial.Edges {
		add(e)
	}

	return &genome.BaseGraph{Nodes: nodes, Edges: edges}
}

// commitsSinceLastRun reports whether any commit landed after the
// existing Genome's generation timestamp, the trigger for rerunning
// ChronoMap per §4.7 rule 2.
func commitsSinceLastRun(ctx context.Context, existing *genome.Genome, repoRoot string, caps subsystems.Capabilities) (bool, error) {
	if caps.HistorySource == nil || existing.Metadata.GeneratedAt.IsZero() {
		return caps.HistorySource != nil, nil
	}

	days := int(time.Since(existing.Metadata.GeneratedAt).Hours()/24) + 1
	commits, err := caps.HistorySource.CommitsSince(ctx, repoRoot, days)
	if err != nil {
		return false, err
	}
	for _, c := range commits {
		if c.Timestamp.After(existing.Metadata.GeneratedAt) {
			return true, nil
		}
	}
	return false, nil
}

func fileOf(g *genome.Genome, id genome.NodeId) string {
	if n, ok := g.Nodes[id]; ok {
		return n.File
	}
	if owner := genome.OwningFile(id); owner != "" {
		return owner
	}
	return ""
}

// edgeSetOfInterestChanged reports whether the defines/imports/calls
// edges differ between the prior and rebuilt base graphs.
func edgeSetOfInterestChanged(existing *genome.Genome, newBase *genome.BaseGraph) bool {
	before := edgeOfInterestKeys(existing.Edges)
	after := edgeOfInterestKeys(newBase.Edges)
	if len(before) != len(after) {
		return true
	}
	for k := range before {
		if !after[k] {
			return true
		}
	}
	return false
}

func edgeOfInterestKeys(edges []genome.Edge) map[genome.EdgeKey]bool {
	out := make(map[genome.EdgeKey]bool)
	for _, e := range edges {
		if AnyEdgeOfInterest(e.Type) {
			out[genome.EdgeKey{From: e.From, To: e.To, Type: e.Type}] = true
		}
	}
	return out
}

func shouldRerun(name string, mask SubsystemMask) bool {
	switch name {
	case "flowweaver":
		return mask.FlowWeaver
	case "intentatlas":
		return mask.IntentAtlas
	case "chronomap":
		return mask.ChronoMap
	case "contractlens":
		return mask.ContractLens
	case "testgalaxy":
		return mask.TestGalaxy
	case "risklens":
		return mask.RiskLens
	default:
		return true
	}
}

// carryForward reconstructs an Output from a not-rerun subsystem's
// existing sections, filtered to nodes still present in newBase, so
// merge.Merge's union still has something to write for that section.
func carryForward(existing *genome.Genome, newBase *genome.BaseGraph) subsystems.Output {
	out := subsystems.Output{
		History:   make(map[genome.NodeId]genome.HistoryEntry),
		Contracts: make(map[string]genome.ContractEntry),
		Risk:      make(map[genome.NodeId]genome.RiskEntry),
	}

	for _, f := range existing.Flows {
		if allPresent(newBase, f.Path) {
			out.Flows = append(out.Flows, f)
		}
	}
	for _, c := range existing.Concepts {
		if allPresent(newBase, c.Nodes) {
			out.Concepts = append(out.Concepts, c)
		}
	}
	for id, h := range existing.History {
		if _, ok := newBase.Nodes[id]; ok {
			out.History[id] = h
		}
	}
	for sig, c := range existing.Contracts {
		if allPresent(newBase, c.DependsOn) {
			out.Contracts[sig] = c
		}
	}
	for id, r := range existing.Risk {
		if _, ok := newBase.Nodes[id]; ok {
			out.Risk[id] = r
		}
	}
	for _, id := range existing.Summary.CoreDomains {
		if _, ok := newBase.Nodes[id]; ok {
			out.CoreDomains = append(out.CoreDomains, id)
		}
	}
	for _, id := range existing.Summary.Hotspots {
		if _, ok := newBase.Nodes[id]; ok {
			out.Hotspots = append(out.Hotspots, id)
		}
	}

	sort.Slice(out.Flows, func(i, j int) bool { return out.Flows[i].Entry < out.Flows[j].Entry })
	return out
}

func allPresent(base *genome.BaseGraph, ids []genome.NodeId) bool {
	for _, id := range ids {
		if _, ok := base.Nodes[id]; !ok {
			return false
		}
	}
	return true
}

// genomeIncrementalError wraps a failed incremental validation in the
// same structured shape a full merge failure would carry, naming the
// first offending invariant.
func genomeIncrementalError(violations []genome.InvariantViolation) error {
	return genomeInvariantErr{violations: violations}
}

type genomeInvariantErr struct {
	violations []genome.InvariantViolation
}

func (e genomeInvariantErr) Error() string {
	if len(e.violations) == 0 {
		return "incremental: validation failed"
	}
	first := e.violations[0]
	return "incremental: validation failed: " + first.String()
}
