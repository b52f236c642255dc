package query

import (
	"fmt"
	"sort"

	"github.com/genomectl/repogenome/internal/genome"
)

// Direction constrains which edge ends Dependencies follows.
type Direction string

const (
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
	DirectionBoth Direction = "both"
)

// Subgraph is a BFS-expanded neighborhood view: the visited node ids,
// sorted by id, and the edges connecting them.
type Subgraph struct {
	Nodes []genome.NodeId `json:"nodes"`
	Edges []genome.Edge   `json:"edges"`
}

// Dependencies BFS-expands from id following direction, up to depth
// hops, with a visited set guarding against cycles. Depth 0 returns an
// empty subgraph.
func Dependencies(g *genome.Genome, id genome.NodeId, direction Direction, depth int) (Subgraph, error) {
	if _, ok := g.Nodes[id]; !ok {
		return Subgraph{}, fmt.Errorf("query: node %q not found", id)
	}
	if depth <= 0 {
		return Subgraph{}, nil
	}

	visited := map[genome.NodeId]bool{id: true}
	edgeSeen := map[genome.EdgeKey]bool{}
	var nodes []genome.NodeId
	var edges []genome.Edge

	frontier := []genome.NodeId{id}
	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []genome.NodeId
		for _, cur := range frontier {
			for _, e := range g.Edges {
				var neighbor genome.NodeId
				var matches bool
				switch direction {
				case DirectionOut:
					matches = e.From == cur
					neighbor = e.To
				case DirectionIn:
					matches = e.To == cur
					neighbor = e.From
				default:
					if e.From == cur {
						matches, neighbor = true, e.To
					} else if e.To == cur {
						matches, neighbor = true, e.From
					}
				}
				if !matches {
					continue
				}
				key := genome.EdgeKey{From: e.From, To: e.To, Type: e.Type}
				if !edgeSeen[key] {
					edgeSeen[key] = true
					edges = append(edges, e)
				}
				if !visited[neighbor] {
					visited[neighbor] = true
					nodes = append(nodes, neighbor)
					next = append(next, neighbor)
				}
			}
		}
		frontier = next
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		return edges[i].Type < edges[j].Type
	})
	return Subgraph{Nodes: nodes, Edges: edges}, nil
}
