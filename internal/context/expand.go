package context

import (
	"sort"

	"github.com/genomectl/repogenome/internal/genome"
)

// edgeWeight assigns each edge type its BFS expansion weight per
// spec.md §4.9 step 2: defines/calls/imports carry structural intent
// and get high weight; tests/mutates are lower-signal for "what do I
// need to read to accomplish this goal".
func edgeWeight(t genome.EdgeType) float64 {
	switch t {
	case genome.EdgeDefines, genome.EdgeCalls, genome.EdgeImports:
		return 1.0
	case genome.EdgeDependsOn, genome.EdgeReferences:
		return 0.7
	case genome.EdgeTests, genome.EdgeMutates, genome.EdgeEmits:
		return 0.4
	default:
		return 0.5
	}
}

// candidate is one node reached during expansion, carrying the decayed
// relevance it inherited from its seed.
type candidate struct {
	ID        genome.NodeId
	Relevance float64
	FromSeed  genome.NodeId
}

// expand runs a weighted BFS outward from every seed, decaying
// relevance by the traversed edge's weight at each hop, and keeps the
// highest relevance seen for any node reached by more than one path.
func expand(g *genome.Genome, seedScores map[genome.NodeId]float64, maxHops int) map[genome.NodeId]candidate {
	adjacency := make(map[genome.NodeId][]weightedEdge)
	for _, e := range g.Edges {
		w := edgeWeight(e.Type)
		adjacency[e.From] = append(adjacency[e.From], weightedEdge{to: e.To, weight: w})
		adjacency[e.To] = append(adjacency[e.To], weightedEdge{to: e.From, weight: w})
	}

	best := make(map[genome.NodeId]candidate, len(seedScores))
	type frontierEntry struct {
		id        genome.NodeId
		relevance float64
		seed      genome.NodeId
	}
	var frontier []frontierEntry
	for id, score := range seedScores {
		best[id] = candidate{ID: id, Relevance: score, FromSeed: id}
		frontier = append(frontier, frontierEntry{id: id, relevance: score, seed: id})
	}

	for hop := 0; hop < maxHops && len(frontier) > 0; hop++ {
		var next []frontierEntry
		for _, f := range frontier {
			for _, edge := range adjacency[f.id] {
				relevance := f.relevance * edge.weight
				if relevance <= 0 {
					continue
				}
				if existing, ok := best[edge.to]; ok && existing.Relevance >= relevance {
					continue
				}
				best[edge.to] = candidate{ID: edge.to, Relevance: relevance, FromSeed: f.seed}
				next = append(next, frontierEntry{id: edge.to, relevance: relevance, seed: f.seed})
			}
		}
		frontier = next
	}
	return best
}

type weightedEdge struct {
	to     genome.NodeId
	weight float64
}

func sortedCandidates(candidates map[genome.NodeId]candidate) []candidate {
	out := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Relevance != out[j].Relevance {
			return out[i].Relevance > out[j].Relevance
		}
		return out[i].ID < out[j].ID
	})
	return out
}
