package query

import (
	"fmt"
	"sort"

	"github.com/genomectl/repogenome/internal/genome"
)

// Side identifies one operand of a Compare call: a node in a Genome. If
// Genome is nil the current Genome passed to Compare is used, letting
// callers diff two nodes in the same snapshot or one node across two
// Genome generations (current vs. a prior one).
type Side struct {
	ID     genome.NodeId
	Genome *genome.Genome
}

// FieldDiff records one differing field between the two sides.
type FieldDiff struct {
	Field string      `json:"field"`
	A     interface{} `json:"a"`
	B     interface{} `json:"b"`
}

// RelationshipDiff records edges present on one side but not the other.
type RelationshipDiff struct {
	OnlyInA []genome.Edge `json:"only_in_a,omitempty"`
	OnlyInB []genome.Edge `json:"only_in_b,omitempty"`
}

// Diff is the Compare result: field-by-field differences plus a
// relationship (edge-set) diff.
type Diff struct {
	Fields       []FieldDiff       `json:"fields"`
	Relationships RelationshipDiff `json:"relationships"`
}

// Compare field-by-field diffs the nodes named by a and b, plus their
// incident edge sets within their respective Genomes.
func Compare(current *genome.Genome, a, b Side) (Diff, error) {
	ga := a.Genome
	if ga == nil {
		ga = current
	}
	gb := b.Genome
	if gb == nil {
		gb = current
	}

	na, ok := ga.Nodes[a.ID]
	if !ok {
		return Diff{}, fmt.Errorf("query: node %q not found", a.ID)
	}
	nb, ok := gb.Nodes[b.ID]
	if !ok {
		return Diff{}, fmt.Errorf("query: node %q not found", b.ID)
	}

	fa := project(na, Options{})
	fb := project(nb, Options{})

	var fields []FieldDiff
	for _, key := range sortedKeys(fa) {
		if fmt.Sprint(fa[key]) != fmt.Sprint(fb[key]) {
			fields = append(fields, FieldDiff{Field: key, A: fa[key], B: fb[key]})
		}
	}

	rel := RelationshipDiff{
		OnlyInA: edgeSetDifference(incidentEdges(ga, a.ID), incidentEdges(gb, b.ID)),
		OnlyInB: edgeSetDifference(incidentEdges(gb, b.ID), incidentEdges(ga, a.ID)),
	}

	return Diff{Fields: fields, Relationships: rel}, nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func incidentEdges(g *genome.Genome, id genome.NodeId) []genome.Edge {
	var out []genome.Edge
	for _, e := range g.Edges {
		if e.From == id || e.To == id {
			out = append(out, e)
		}
	}
	return out
}

// edgeSetDifference returns the edges in a with no exact (type, from, to)
// match in b. a and b hold both incoming and outgoing edges of their
// nodes, so for two different nodes only an edge incident to both (such
// as one between them) matches; edges are not paired by type and other
// end alone.
func edgeSetDifference(a, b []genome.Edge) []genome.Edge {
	present := make(map[string]bool, len(b))
	for _, e := range b {
		present[relationshipKey(e)] = true
	}
	var out []genome.Edge
	for _, e := range a {
		if !present[relationshipKey(e)] {
			out = append(out, e)
		}
	}
	return out
}

func relationshipKey(e genome.Edge) string {
	return string(e.Type) + "|" + string(e.From) + "|" + string(e.To)
}
