package genome

import (
	"fmt"
	"sort"

	genomeerrors "github.com/genomectl/repogenome/internal/errors"
)

// MinSchemaVersion and MaxSchemaVersion bound the schema_version this
// engine build accepts on load.
const (
	MinSchemaVersion = "1.0"
	MaxSchemaVersion = "1.0"
)

// InvariantViolation names one failing §3 invariant and the offending id.
type InvariantViolation struct {
	Invariant string
	NodeID    NodeId
	Detail    string
}

func (v InvariantViolation) String() string {
	return fmt.Sprintf("%s: %s (%s)", v.Invariant, v.NodeID, v.Detail)
}

// KnownPathResolver reports whether a file path is one the Classifier
// recognizes. The genome package doesn't import classify to avoid a
// cycle; callers of Validate that care about invariant 4 pass it in.
type KnownPathResolver func(path string) bool

// Validate enforces the six global invariants from the Genome data
// model. It never mutates g. If resolver is nil, invariant 4 (file
// resolves to a path the Classifier recognizes) is skipped.
func (g *Genome) Validate(resolver KnownPathResolver) []InvariantViolation {
	var violations []InvariantViolation

	violations = append(violations, g.checkEdgeClosure()...)
	violations = append(violations, g.checkEdgeUniqueness()...)
	violations = append(violations, g.checkBoundedScalars()...)
	if resolver != nil {
		violations = append(violations, g.checkFileResolution(resolver)...)
	}
	violations = append(violations, g.checkSchemaVersion()...)
	violations = append(violations, g.checkDefinesConsistency()...)

	return violations
}

// ValidateOrError is a convenience wrapper returning the engine's
// structured InvariantViolation error for the first violation found,
// or nil if the Genome is well-formed.
func ValidateOrError(g *Genome, resolver KnownPathResolver) error {
	violations := g.Validate(resolver)
	if len(violations) == 0 {
		return nil
	}
	first := violations[0]
	return genomeerrors.InvariantViolation(first.Invariant, string(first.NodeID)).
		WithContext("violation_count", len(violations)).
		WithContext("detail", first.Detail)
}

func (g *Genome) knownOrVirtual(id NodeId) bool {
	if _, ok := g.Nodes[id]; ok {
		return true
	}
	return IsExternal(id) || IsConcept(id)
}

// checkEdgeClosure implements invariant 1.
func (g *Genome) checkEdgeClosure() []InvariantViolation {
	var out []InvariantViolation
	for _, e := range g.Edges {
		if !g.knownOrVirtual(e.From) {
			out = append(out, InvariantViolation{"edge_closure", e.From, "edge references unknown from-node"})
		}
		if !g.knownOrVirtual(e.To) {
			out = append(out, InvariantViolation{"edge_closure", e.To, "edge references unknown to-node"})
		}
	}
	for _, f := range g.Flows {
		if !g.knownOrVirtual(f.Entry) {
			out = append(out, InvariantViolation{"edge_closure", f.Entry, "flow entry references unknown node"})
		}
		for _, id := range f.Path {
			if !g.knownOrVirtual(id) {
				out = append(out, InvariantViolation{"edge_closure", id, "flow path references unknown node"})
			}
		}
	}
	for _, c := range g.Concepts {
		for _, id := range c.Nodes {
			if !g.knownOrVirtual(id) {
				out = append(out, InvariantViolation{"edge_closure", id, "concept references unknown node"})
			}
		}
	}
	for id := range g.History {
		if !g.knownOrVirtual(id) {
			out = append(out, InvariantViolation{"edge_closure", id, "history references unknown node"})
		}
	}
	for id := range g.Risk {
		if !g.knownOrVirtual(id) {
			out = append(out, InvariantViolation{"edge_closure", id, "risk references unknown node"})
		}
	}
	for sig, c := range g.Contracts {
		for _, id := range c.DependsOn {
			if !g.knownOrVirtual(id) {
				out = append(out, InvariantViolation{"edge_closure", id, fmt.Sprintf("contract %q references unknown node", sig)})
			}
		}
	}
	return out
}

// checkEdgeUniqueness implements invariant 2.
func (g *Genome) checkEdgeUniqueness() []InvariantViolation {
	var out []InvariantViolation
	seen := make(map[EdgeKey]bool, len(g.Edges))
	for _, e := range g.Edges {
		k := keyOf(e)
		if seen[k] {
			out = append(out, InvariantViolation{"edge_uniqueness", e.From,
				fmt.Sprintf("duplicate edge (%s,%s,%s)", e.From, e.To, e.Type)})
			continue
		}
		seen[k] = true
	}
	return out
}

func inUnitInterval(f float64) bool { return f >= 0.0 && f <= 1.0 }

// checkBoundedScalars implements invariant 3.
func (g *Genome) checkBoundedScalars() []InvariantViolation {
	var out []InvariantViolation
	for id, n := range g.Nodes {
		if !inUnitInterval(n.Criticality) {
			out = append(out, InvariantViolation{"bounded_scalars", id, "criticality out of [0,1]"})
		}
	}
	for id, h := range g.History {
		if !inUnitInterval(h.ChurnScore) {
			out = append(out, InvariantViolation{"bounded_scalars", id, "churn_score out of [0,1]"})
		}
	}
	for id, r := range g.Risk {
		if !inUnitInterval(r.RiskScore) {
			out = append(out, InvariantViolation{"bounded_scalars", id, "risk_score out of [0,1]"})
		}
	}
	for sig, c := range g.Contracts {
		if !inUnitInterval(c.BreakingChangeRisk) {
			out = append(out, InvariantViolation{"bounded_scalars", NodeId(sig), "breaking_change_risk out of [0,1]"})
		}
	}
	for _, f := range g.Flows {
		if !inUnitInterval(f.Confidence) {
			out = append(out, InvariantViolation{"bounded_scalars", f.Entry, "confidence out of [0,1]"})
		}
	}
	return out
}

// checkFileResolution implements invariant 4.
func (g *Genome) checkFileResolution(resolver KnownPathResolver) []InvariantViolation {
	var out []InvariantViolation
	for id, n := range g.Nodes {
		if n.Type == NodeConcept || n.Virtual {
			continue
		}
		if n.File == "" {
			out = append(out, InvariantViolation{"file_resolution", id, "non-concept node has no file"})
			continue
		}
		if !resolver(n.File) {
			out = append(out, InvariantViolation{"file_resolution", id, fmt.Sprintf("file %q not recognized by classifier", n.File)})
		}
	}
	return out
}

// checkSchemaVersion implements invariant 5.
func (g *Genome) checkSchemaVersion() []InvariantViolation {
	v := g.Metadata.SchemaVersion
	if v == "" || v < MinSchemaVersion || v > MaxSchemaVersion {
		return []InvariantViolation{{"schema_version", "", fmt.Sprintf("schema_version %q outside supported range [%s,%s]", v, MinSchemaVersion, MaxSchemaVersion)}}
	}
	return nil
}

// checkDefinesConsistency implements invariant 6: a file node that
// defines a symbol node S must have an edge (file, S, defines).
func (g *Genome) checkDefinesConsistency() []InvariantViolation {
	defines := make(map[NodeId]map[NodeId]bool)
	for _, e := range g.Edges {
		if e.Type != EdgeDefines {
			continue
		}
		if defines[e.From] == nil {
			defines[e.From] = make(map[NodeId]bool)
		}
		defines[e.From][e.To] = true
	}

	var out []InvariantViolation
	ids := make([]NodeId, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		n := g.Nodes[id]
		if n.Type == NodeFile || n.Type == NodeConcept {
			continue
		}
		owner := OwningFile(id)
		if owner == "" {
			continue
		}
		ownerID := FileID(owner)
		ownerNode, ok := g.Nodes[ownerID]
		if !ok || ownerNode.Type != NodeFile {
			continue
		}
		if !defines[ownerID][id] {
			out = append(out, InvariantViolation{"defines_consistency", id,
				fmt.Sprintf("file %s defines symbol but has no defines edge", ownerID)})
		}
	}
	return out
}
