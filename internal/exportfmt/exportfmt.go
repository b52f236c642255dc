// Package exportfmt projects a Genome into lossy, external-tool-facing
// representations: a graph-visualization XML, a Graphviz textual
// graph, paired node/edge CSVs, a Cypher import script, and a PlantUML
// component listing. Each is a pure function over a Genome — no file
// I/O, so the caller (the export tool) decides where the bytes land.
package exportfmt

import (
	"sort"

	"github.com/genomectl/repogenome/internal/genome"
)

// Format names a supported export projection.
type Format string

const (
	FormatGraphML  Format = "graphml"
	FormatDot      Format = "dot"
	FormatCSV      Format = "csv"
	FormatCypher   Format = "cypher"
	FormatPlantUML Format = "plantuml"
)

// Func is the shape every projection implements.
type Func func(*genome.Genome) ([]byte, error)

// Registry maps every supported Format to its Func, for the export
// tool's dispatch.
var Registry = map[Format]Func{
	FormatGraphML:  GraphML,
	FormatDot:      Dot,
	FormatCSV:      CSV,
	FormatCypher:   Cypher,
	FormatPlantUML: PlantUML,
}

// sortedNodeIDs returns every node id in g, in stable order, for
// deterministic output across every projection.
func sortedNodeIDs(g *genome.Genome) []genome.NodeId {
	ids := make([]genome.NodeId, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedEdges(g *genome.Genome) []genome.Edge {
	edges := make([]genome.Edge, len(g.Edges))
	copy(edges, g.Edges)
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].Type < edges[j].Type
	})
	return edges
}
