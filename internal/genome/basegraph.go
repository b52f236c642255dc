package genome

// BaseGraph is exactly what the Structural Extractor can derive from
// local per-file analysis: nodes and edges, with no flow, concept, or
// risk data. Auxiliary Subsystems consume an immutable BaseGraph
// snapshot and never mutate it.
type BaseGraph struct {
	Nodes map[NodeId]*Node
	Edges []Edge
}

// EdgesFrom returns every edge with the given From id and Type.
func (b *BaseGraph) EdgesFrom(id NodeId, t EdgeType) []Edge {
	var out []Edge
	for _, e := range b.Edges {
		if e.From == id && e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns every edge with the given To id and Type.
func (b *BaseGraph) EdgesTo(id NodeId, t EdgeType) []Edge {
	var out []Edge
	for _, e := range b.Edges {
		if e.To == id && e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// HasEdge reports whether (from,to,t) exists in the graph.
func (b *BaseGraph) HasEdge(from, to NodeId, t EdgeType) bool {
	for _, e := range b.Edges {
		if e.From == from && e.To == to && e.Type == t {
			return true
		}
	}
	return false
}
