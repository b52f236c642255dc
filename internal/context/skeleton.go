package context

import (
	"sort"

	"github.com/genomectl/repogenome/internal/genome"
)

const skeletonTopConcepts = 5

// Skeleton is the first-page, low-latency response: entry points, the
// top concepts touched by the selection, and the folded clusters.
// get_context_skeleton returns only this; build_context returns it
// alongside the full Selection.
type Skeleton struct {
	EntryPoints []genome.NodeId `json:"entry_points"`
	TopConcepts []genome.NodeId `json:"top_concepts"`
	Folded      []Folded        `json:"folded"`
}

func buildSkeleton(g *genome.Genome, selectedIDs map[genome.NodeId]bool, folded []Folded) Skeleton {
	var entryPoints []genome.NodeId
	for id := range selectedIDs {
		if n, ok := g.Nodes[id]; ok && n.Entry {
			entryPoints = append(entryPoints, id)
		}
	}
	sort.Slice(entryPoints, func(i, j int) bool { return entryPoints[i] < entryPoints[j] })

	var topConcepts []genome.NodeId
	for _, c := range g.Concepts {
		overlap := 0
		for _, id := range c.Nodes {
			if selectedIDs[id] {
				overlap++
			}
		}
		if overlap > 0 {
			topConcepts = append(topConcepts, c.ID)
		}
	}
	sort.Slice(topConcepts, func(i, j int) bool { return topConcepts[i] < topConcepts[j] })
	if len(topConcepts) > skeletonTopConcepts {
		topConcepts = topConcepts[:skeletonTopConcepts]
	}

	return Skeleton{EntryPoints: entryPoints, TopConcepts: topConcepts, Folded: folded}
}
