package subsystems

import (
	"context"
	"path"

	"github.com/genomectl/repogenome/internal/genome"
)

// RiskLens derives a genome.RiskEntry per symbol node from base-graph
// signals alone: incoming-edge centrality (a blast-radius proxy) and
// whether any test node shares the symbol's directory (a coverage
// proxy, in absence of real coverage instrumentation).
//
// Not one of spec.md §4.4's five named subsystems, but spec.md §4.5's
// merge policy names "risk" as one of the single-owner sections the
// Merger reconciles — this subsystem supplies it. Grounded on the
// teacher's internal/risk/calculator.go weighted-factor composition
// (blast radius + test coverage + centrality, there combined across six
// weighted factors for a single change-set score; reduced here to the
// two signals derivable from a static base graph alone, each weighted
// the way the teacher weights BlastRadiusWeight/TestCoverageWeight).
type RiskLens struct {
	disabled bool
}

func NewRiskLens(disabled bool) *RiskLens { return &RiskLens{disabled: disabled} }

func (r *RiskLens) Name() string   { return "risklens" }
func (r *RiskLens) Disabled() bool { return r.disabled }

const (
	blastRadiusWeight  = 0.6
	testCoverageWeight = 0.4
)

func (r *RiskLens) Run(ctx context.Context, base *genome.BaseGraph, caps Capabilities) (Output, error) {
	incoming := make(map[genome.NodeId]int)
	maxIncoming := 0
	for _, e := range base.Edges {
		switch e.Type {
		case genome.EdgeCalls, genome.EdgeReferences, genome.EdgeDependsOn, genome.EdgeImports:
			incoming[e.To]++
			if incoming[e.To] > maxIncoming {
				maxIncoming = incoming[e.To]
			}
		}
	}

	testedDirs := make(map[string]bool)
	for _, n := range base.Nodes {
		if n.Type == genome.NodeTest && n.File != "" {
			testedDirs[path.Dir(n.File)] = true
		}
	}

	risk := make(map[genome.NodeId]genome.RiskEntry)
	for id, n := range base.Nodes {
		if n.Virtual || (n.Type != genome.NodeFunction && n.Type != genome.NodeClass) {
			continue
		}

		blastRadius := 0.0
		if maxIncoming > 0 {
			blastRadius = float64(incoming[id]) / float64(maxIncoming)
		}

		tested := n.File != "" && testedDirs[path.Dir(n.File)]
		testCoverageGap := 1.0
		if tested {
			testCoverageGap = 0.0
		}

		score := blastRadius*blastRadiusWeight + testCoverageGap*testCoverageWeight
		if score > 1 {
			score = 1
		}

		var reasons []string
		if blastRadius > 0.5 {
			reasons = append(reasons, "high incoming reference count")
		}
		if !tested {
			reasons = append(reasons, "no test found in owning directory")
		}

		if score == 0 && len(reasons) == 0 {
			continue
		}

		risk[id] = genome.RiskEntry{NodeID: id, RiskScore: score, Reasons: reasons}
	}

	return Output{Risk: risk}, nil
}
