package subsystems

import (
	"context"
	"strings"

	"github.com/genomectl/repogenome/internal/genome"
)

// ContractLens derives a genome.ContractEntry per public-visibility
// symbol node, keyed by a normalized signature, with
// breaking_change_risk computed as a pure function of incoming
// reference/call edge count and visibility.
//
// Grounded on the teacher's internal/atomizer/signature_normalizer.go
// (NormalizeSignature's whitespace/alias-collapsing approach, reused
// here to build a stable contract key) and
// internal/diffanalyzer/graph_matcher.go's confidence-tiering idiom
// (there used for block identity matching; here repurposed to grade
// breaking-change risk instead of match confidence).
type ContractLens struct {
	disabled bool
}

func NewContractLens(disabled bool) *ContractLens { return &ContractLens{disabled: disabled} }

func (c *ContractLens) Name() string   { return "contractlens" }
func (c *ContractLens) Disabled() bool { return c.disabled }

func (c *ContractLens) Run(ctx context.Context, base *genome.BaseGraph, caps Capabilities) (Output, error) {
	incoming := make(map[genome.NodeId]int)
	for _, e := range base.Edges {
		switch e.Type {
		case genome.EdgeCalls, genome.EdgeReferences, genome.EdgeDependsOn:
			incoming[e.To]++
		}
	}

	contracts := make(map[string]genome.ContractEntry)
	for id, n := range base.Nodes {
		if n.Virtual || n.Visibility != genome.VisibilityPublic {
			continue
		}
		if n.Type != genome.NodeFunction && n.Type != genome.NodeClass {
			continue
		}

		sig := normalizeSignature(signatureOf(id, n))
		var dependents []genome.NodeId
		for _, e := range base.Edges {
			if e.To == id && (e.Type == genome.EdgeCalls || e.Type == genome.EdgeReferences || e.Type == genome.EdgeDependsOn) {
				dependents = append(dependents, e.From)
			}
		}

		existing, ok := contracts[sig]
		if ok {
			existing.DependsOn = append(existing.DependsOn, dependents...)
			existing.BreakingChangeRisk = breakingChangeRisk(len(existing.DependsOn))
			contracts[sig] = existing
			continue
		}

		contracts[sig] = genome.ContractEntry{
			Signature:          sig,
			DependsOn:          dependents,
			BreakingChangeRisk: breakingChangeRisk(incoming[id]),
		}
	}

	return Output{Contracts: contracts}, nil
}

// signatureOf builds a best-effort textual signature from what the
// base graph actually carries: id carries the qualified name, Summary
// may carry a parameter list an analyzer extracted.
func signatureOf(id genome.NodeId, n *genome.Node) string {
	name := string(id)
	if idx := strings.IndexByte(name, '#'); idx >= 0 {
		name = name[idx+1:]
	}
	if n.Summary != "" {
		return name + n.Summary
	}
	return name + "()"
}

// normalizeSignature collapses whitespace and common type aliases so
// equivalent signatures across minor edits hash to the same contract
// key instead of silently forking into two entries.
func normalizeSignature(sig string) string {
	fields := strings.Fields(sig)
	joined := strings.Join(fields, "")
	joined = strings.ReplaceAll(joined, "int64", "int")
	joined = strings.ReplaceAll(joined, "int32", "int")
	return joined
}

// breakingChangeRisk grows with dependent count but saturates well
// below 1.0, since even a heavily depended-upon symbol might change in
// an additive, non-breaking way.
func breakingChangeRisk(dependents int) float64 {
	if dependents <= 0 {
		return 0
	}
	risk := 1 - 1/(1+float64(dependents)*0.2)
	if risk > 0.95 {
		risk = 0.95
	}
	return risk
}
