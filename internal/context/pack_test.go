package context

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomectl/repogenome/internal/genome"
)

func TestBuildItemsOneItemPerKeptNode(t *testing.T) {
	g := sampleGenome()
	kept := []candidate{{ID: "payments.py#charge", Relevance: 0.9}}
	items := buildItems(g, kept, nil)
	require.Len(t, items, 1)
	assert.Equal(t, 0.9, items[0].Relevance)
	assert.Equal(t, 0.9, items[0].Criticality)
	assert.Empty(t, items[0].FoldKey)
}

func TestBuildItemsOneItemPerFoldedCluster(t *testing.T) {
	g := sampleGenome()
	folded := []Folded{{Key: "file:unrelated.py", Nodes: []genome.NodeId{"unrelated.py#report"}, Relevance: 0.05}}
	items := buildItems(g, nil, folded)
	require.Len(t, items, 1)
	assert.Equal(t, "file:unrelated.py", items[0].FoldKey)
}

func TestPackSelectsWithinBudget(t *testing.T) {
	items := []item{
		{Relevance: 0.9, TokenCost: 50, NodeIDs: []genome.NodeId{"a"}},
		{Relevance: 0.8, TokenCost: 50, NodeIDs: []genome.NodeId{"b"}},
		{Relevance: 0.1, TokenCost: 50, NodeIDs: []genome.NodeId{"c"}},
	}
	selected := pack(items, 100)
	var total int
	for _, it := range selected {
		total += it.TokenCost
	}
	assert.LessOrEqual(t, total, 100)
	assert.Len(t, selected, 2)
}

func TestPackPrefersHigherDensityOverHigherRawRelevance(t *testing.T) {
	items := []item{
		{Relevance: 1.0, TokenCost: 1000, NodeIDs: []genome.NodeId{"expensive"}},
		{Relevance: 0.5, TokenCost: 10, NodeIDs: []genome.NodeId{"cheap"}},
	}
	selected := pack(items, 10)
	require.Len(t, selected, 1)
	assert.Equal(t, genome.NodeId("cheap"), selected[0].NodeIDs[0])
}

func TestPackTieBreaksByCriticalityThenNodeID(t *testing.T) {
	items := []item{
		{Relevance: 0.5, TokenCost: 10, Criticality: 0.2, NodeIDs: []genome.NodeId{"b"}},
		{Relevance: 0.5, TokenCost: 10, Criticality: 0.9, NodeIDs: []genome.NodeId{"a"}},
	}
	selected := pack(items, 10)
	require.Len(t, selected, 1)
	assert.Equal(t, genome.NodeId("a"), selected[0].NodeIDs[0])
}

func TestEstimateNodeTokensGrowsWithSummaryLength(t *testing.T) {
	short := &genome.Node{Summary: "x"}
	long := &genome.Node{Summary: "a very long summary describing many things in detail"}
	assert.Less(t, estimateNodeTokens(short), estimateNodeTokens(long))
}
