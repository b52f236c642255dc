package context

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomectl/repogenome/internal/genome"
)

func TestExpandSeedKeepsOwnRelevance(t *testing.T) {
	g := sampleGenome()
	seeds := map[genome.NodeId]float64{"payments.py#charge": 1.0}
	result := expand(g, seeds, 2)
	require.Contains(t, result, genome.NodeId("payments.py#charge"))
	assert.Equal(t, 1.0, result["payments.py#charge"].Relevance)
}

func TestExpandDecaysByEdgeWeightPerHop(t *testing.T) {
	g := sampleGenome()
	seeds := map[genome.NodeId]float64{"main.py#main": 1.0}
	result := expand(g, seeds, 1)
	// main.py#main --calls--> payments.py#charge, weight 1.0
	assert.InDelta(t, 1.0, result["payments.py#charge"].Relevance, 1e-9)
}

func TestExpandRespectsMaxHops(t *testing.T) {
	g := sampleGenome()
	seeds := map[genome.NodeId]float64{"main.py#main": 1.0}
	result := expand(g, seeds, 0)
	assert.Len(t, result, 1)
	_, reached := result["payments.py#charge"]
	assert.False(t, reached)
}

func TestExpandKeepsHighestRelevanceOnMultiplePaths(t *testing.T) {
	g := sampleGenome()
	seeds := map[genome.NodeId]float64{
		"main.py#main":        1.0,
		"payments.py#charge":  1.0,
	}
	result := expand(g, seeds, 2)
	// payments.py#charge reached both as its own seed and via main.py#main;
	// the direct seed score must win.
	assert.Equal(t, 1.0, result["payments.py#charge"].Relevance)
}

func TestExpandLowWeightEdgeDecaysMoreThanHighWeight(t *testing.T) {
	g := sampleGenome()
	seeds := map[genome.NodeId]float64{"payments.py#charge": 1.0}
	result := expand(g, seeds, 1)
	// payments.py#charge --tests(0.4)--> test_payments.py#test_charge (reverse edge)
	testRelevance, ok := result["test_payments.py#test_charge"]
	require.True(t, ok)
	assert.Less(t, testRelevance.Relevance, 1.0)
}

func TestSortedCandidatesOrdersByRelevanceThenID(t *testing.T) {
	candidates := map[genome.NodeId]candidate{
		"b": {ID: "b", Relevance: 0.5},
		"a": {ID: "a", Relevance: 0.5},
		"c": {ID: "c", Relevance: 0.9},
	}
	sorted := sortedCandidates(candidates)
	assert.Equal(t, genome.NodeId("c"), sorted[0].ID)
	assert.Equal(t, genome.NodeId("a"), sorted[1].ID)
	assert.Equal(t, genome.NodeId("b"), sorted[2].ID)
}
