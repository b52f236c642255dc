package query

import (
	"errors"
	"sort"

	"github.com/genomectl/repogenome/internal/genome"
)

// ErrNotReachable is returned when no path exists within max_len hops.
var ErrNotReachable = errors.New("query: not reachable")

// FindPath returns the shortest directed path from -> to over edges
// whose type is in allowedTypes (empty means all types are traversable),
// failing with ErrNotReachable when none exists within maxLen hops.
func FindPath(g *genome.Genome, from, to genome.NodeId, allowedTypes []genome.EdgeType, maxLen int) ([]genome.NodeId, error) {
	if from == to {
		return []genome.NodeId{from}, nil
	}
	if _, ok := g.Nodes[from]; !ok {
		return nil, ErrNotReachable
	}
	if _, ok := g.Nodes[to]; !ok {
		return nil, ErrNotReachable
	}

	typeAllowed := edgeTypeFilter(allowedTypes)
	adjacency := make(map[genome.NodeId][]genome.NodeId)
	for _, e := range g.Edges {
		if !typeAllowed(e.Type) {
			continue
		}
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}
	for id := range adjacency {
		sort.Slice(adjacency[id], func(i, j int) bool { return adjacency[id][i] < adjacency[id][j] })
	}

	prev := map[genome.NodeId]genome.NodeId{from: from}
	frontier := []genome.NodeId{from}

	for depth := 0; depth < maxLen && len(frontier) > 0; depth++ {
		var next []genome.NodeId
		for _, cur := range frontier {
			for _, neighbor := range adjacency[cur] {
				if _, seen := prev[neighbor]; seen {
					continue
				}
				prev[neighbor] = cur
				if neighbor == to {
					return reconstruct(prev, from, to), nil
				}
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	return nil, ErrNotReachable
}

func reconstruct(prev map[genome.NodeId]genome.NodeId, from, to genome.NodeId) []genome.NodeId {
	var path []genome.NodeId
	for cur := to; ; {
		path = append(path, cur)
		if cur == from {
			break
		}
		cur = prev[cur]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
