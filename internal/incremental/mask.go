package incremental

import "github.com/genomectl/repogenome/internal/genome"

// SubsystemMask reports which subsystems must re-run for one
// incremental update, per spec.md §4.7's normative rules.
type SubsystemMask struct {
	Spider        bool // C3: any file change
	FlowWeaver    bool // any defines/imports/calls edge change
	ContractLens  bool // any defines/imports/calls edge change
	IntentAtlas   bool // any file add/remove
	ChronoMap     bool // any commit since last run
	TestGalaxy    bool // any file add/remove (test/production pairing may shift)
	RiskLens      bool // depends on edges ContractLens/FlowWeaver also key off
}

// ComputeMask implements spec.md §4.7 rule 2. structuralEdgesChanged
// reports whether the re-analysis of the changed file set produced any
// defines/imports/calls edge the prior base graph didn't have, or
// dropped one it did — the caller determines this by comparing the
// partial re-analysis result against the prior Genome's edges for the
// same file set. hasNewCommits reports whether the HistorySource has
// any commit since the Genome's last generation.
func ComputeMask(changes ChangeSet, structuralEdgesChanged, hasNewCommits bool) SubsystemMask {
	anyFileChange := !changes.Empty()
	anyAddRemove := len(changes.Added) > 0 || len(changes.Removed) > 0

	return SubsystemMask{
		Spider:       anyFileChange,
		FlowWeaver:   structuralEdgesChanged,
		ContractLens: structuralEdgesChanged,
		IntentAtlas:  anyAddRemove,
		ChronoMap:    hasNewCommits,
		TestGalaxy:   anyAddRemove,
		RiskLens:     structuralEdgesChanged || anyAddRemove,
	}
}

// AnyEdgeOfInterest reports whether e is one of the edge types that,
// when changed, forces FlowWeaver/ContractLens to re-run.
func AnyEdgeOfInterest(t genome.EdgeType) bool {
	return t == genome.EdgeDefines || t == genome.EdgeImports || t == genome.EdgeCalls
}
