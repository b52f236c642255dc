package context

import (
	"sort"

	"github.com/genomectl/repogenome/internal/genome"
)

// item is one packable unit: either a single kept node or a folded
// cluster, with an estimated token cost and the relevance it carries.
type item struct {
	Relevance   float64
	TokenCost   int
	Criticality float64
	NodeIDs     []genome.NodeId
	FoldKey     string // empty for a single kept node
}

const (
	baseNodeTokens    = 20  // id, type, file, edges overhead
	tokensPerSummChar = 0.3 // rough token-per-character estimate for English prose
	foldedBaseTokens  = 15  // a folded cluster renders as one compact line
)

func estimateNodeTokens(n *genome.Node) int {
	cost := baseNodeTokens + int(float64(len(n.Summary))*tokensPerSummChar)
	if cost < 1 {
		cost = 1
	}
	return cost
}

func buildItems(g *genome.Genome, kept []candidate, folded []Folded) []item {
	items := make([]item, 0, len(kept)+len(folded))
	for _, c := range kept {
		n := g.Nodes[c.ID]
		crit := 0.0
		if n != nil {
			crit = n.Criticality
		}
		cost := baseNodeTokens
		if n != nil {
			cost = estimateNodeTokens(n)
		}
		items = append(items, item{
			Relevance:   c.Relevance,
			TokenCost:   cost,
			Criticality: crit,
			NodeIDs:     []genome.NodeId{c.ID},
		})
	}
	for _, f := range folded {
		cost := foldedBaseTokens + len(f.Nodes)*4
		maxCrit := 0.0
		for _, id := range f.Nodes {
			if n, ok := g.Nodes[id]; ok && n.Criticality > maxCrit {
				maxCrit = n.Criticality
			}
		}
		items = append(items, item{
			Relevance:   f.Relevance,
			TokenCost:   cost,
			Criticality: maxCrit,
			NodeIDs:     f.Nodes,
			FoldKey:     f.Key,
		})
	}
	return items
}

// pack greedily selects items by descending relevance/token-cost
// density until budgetTokens is exhausted, ties broken by criticality
// then the item's lowest NodeId. Standard density-greedy 0/1 knapsack
// approximation: an item that does not fit the remaining budget is
// skipped and later, cheaper items may still be taken, so a rejected
// item can have a higher density than a selected one and the result is
// not guaranteed to maximize total relevance.
func pack(items []item, budgetTokens int) []item {
	sort.Slice(items, func(i, j int) bool {
		di, dj := density(items[i]), density(items[j])
		if di != dj {
			return di > dj
		}
		if items[i].Criticality != items[j].Criticality {
			return items[i].Criticality > items[j].Criticality
		}
		return items[i].NodeIDs[0] < items[j].NodeIDs[0]
	})

	var selected []item
	remaining := budgetTokens
	for _, it := range items {
		if it.TokenCost <= remaining {
			selected = append(selected, it)
			remaining -= it.TokenCost
		}
	}
	return selected
}

func density(it item) float64 {
	if it.TokenCost == 0 {
		return it.Relevance
	}
	return it.Relevance / float64(it.TokenCost)
}
