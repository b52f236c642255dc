// Package subsystems implements the five Auxiliary Subsystems
// (FlowWeaver, IntentAtlas, ChronoMap, ContractLens, TestGalaxy), each
// consuming an immutable base-graph snapshot and emitting a typed
// sub-result merged by the Merger under single-owner section writes.
package subsystems

import (
	"context"

	"github.com/genomectl/repogenome/internal/analyzer"
	"github.com/genomectl/repogenome/internal/genome"
	"github.com/genomectl/repogenome/internal/history"
)

// LLMClient is the optional capability IntentAtlas may use to phrase
// concept descriptions. Nil means "no LLM configured" — IntentAtlas's
// lexical-pattern default path still runs.
type LLMClient interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Capabilities bundles everything a Subsystem.Run may need beyond the
// base graph itself.
type Capabilities struct {
	HistorySource  history.Source
	LLM            LLMClient
	RepoRoot       string
	HistoryDays    int
	HotspotK       int
	LegacyPatterns []string
}

// Output is the union of every section a Subsystem might write. The
// Merger trusts each Subsystem to populate only the fields it owns.
type Output struct {
	Flows       []genome.Flow
	Concepts    []genome.Concept
	CoreDomains []genome.NodeId
	History     map[genome.NodeId]genome.HistoryEntry
	Hotspots    []genome.NodeId
	Contracts   map[string]genome.ContractEntry
	Risk        map[genome.NodeId]genome.RiskEntry
	TestEdges   []genome.Edge
	Diagnostics []analyzer.Diagnostic
}

// Subsystem is the uniform contract every auxiliary subsystem
// implements.
type Subsystem interface {
	Name() string
	Disabled() bool
	Run(ctx context.Context, base *genome.BaseGraph, caps Capabilities) (Output, error)
}

// RunEnabled runs every non-disabled subsystem in subs, in order,
// collecting their outputs. A subsystem error is recorded as a
// diagnostic (per spec.md's "subsystems individually disableable;
// remaining invariants still hold") rather than aborting the others.
func RunEnabled(ctx context.Context, subs []Subsystem, base *genome.BaseGraph, caps Capabilities) []Output {
	outputs := make([]Output, 0, len(subs))
	for _, s := range subs {
		if s.Disabled() {
			continue
		}
		out, err := s.Run(ctx, base, caps)
		if err != nil {
			out.Diagnostics = append(out.Diagnostics, analyzer.Diagnostic{
				Severity: analyzer.SeverityError,
				Message:  s.Name() + ": " + err.Error(),
			})
		}
		outputs = append(outputs, out)
	}
	return outputs
}
