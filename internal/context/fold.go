package context

import (
	"sort"

	"github.com/genomectl/repogenome/internal/genome"
)

// relevanceFloor is the threshold below which sibling nodes sharing a
// parent file or concept are folded into one summary entry instead of
// being listed individually.
const relevanceFloor = 0.15

// Folded groups low-relevance sibling nodes under one entry so the
// packing stage can treat an entire cluster as a single cheaper item.
type Folded struct {
	Key       string          `json:"key"`
	Nodes     []genome.NodeId `json:"nodes"`
	Relevance float64         `json:"relevance"` // max of the folded members
}

// fold partitions candidates into individually-kept high-relevance
// nodes and folded low-relevance clusters grouped by parent file, then
// by concept membership for any node not attached to a file.
func fold(g *genome.Genome, candidates []candidate) (kept []candidate, folded []Folded) {
	groupOf := make(map[string][]candidate)

	for _, c := range candidates {
		if c.Relevance >= relevanceFloor {
			kept = append(kept, c)
			continue
		}
		key := foldKey(g, c.ID)
		groupOf[key] = append(groupOf[key], c)
	}

	for key, members := range groupOf {
		f := Folded{Key: key}
		max := 0.0
		for _, m := range members {
			f.Nodes = append(f.Nodes, m.ID)
			if m.Relevance > max {
				max = m.Relevance
			}
		}
		f.Relevance = max
		sort.Slice(f.Nodes, func(i, j int) bool { return f.Nodes[i] < f.Nodes[j] })
		folded = append(folded, f)
	}

	sort.Slice(folded, func(i, j int) bool {
		if folded[i].Relevance != folded[j].Relevance {
			return folded[i].Relevance > folded[j].Relevance
		}
		return folded[i].Key < folded[j].Key
	})
	return kept, folded
}

func foldKey(g *genome.Genome, id genome.NodeId) string {
	if n, ok := g.Nodes[id]; ok && n.File != "" {
		return "file:" + n.File
	}
	for _, c := range g.Concepts {
		for _, member := range c.Nodes {
			if member == id {
				return "concept:" + string(c.ID)
			}
		}
	}
	return "ungrouped"
}
