package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomectl/repogenome/internal/genome"
)

func TestDependenciesZeroDepthEmpty(t *testing.T) {
	g := sampleGenome()
	sub, err := Dependencies(g, "a.py#f", DirectionOut, 0)
	require.NoError(t, err)
	assert.Empty(t, sub.Nodes)
}

func TestDependenciesOutDirection(t *testing.T) {
	g := sampleGenome()
	sub, err := Dependencies(g, "a.py#f", DirectionOut, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []genome.NodeId{"a.py#g", "b.py#h"}, sub.Nodes)
}

func TestDependenciesInDirection(t *testing.T) {
	g := sampleGenome()
	sub, err := Dependencies(g, "a.py#g", DirectionIn, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []genome.NodeId{"a.py", "a.py#f"}, sub.Nodes)
}

func TestDependenciesBothDirectionsNoDuplicateVisit(t *testing.T) {
	g := sampleGenome()
	sub, err := Dependencies(g, "a.py#f", DirectionBoth, 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, []genome.NodeId{"a.py", "a.py#g", "b.py#h", "b.py"}, sub.Nodes)
}

func TestDependenciesUnknownNodeErrors(t *testing.T) {
	g := sampleGenome()
	_, err := Dependencies(g, "missing", DirectionOut, 1)
	assert.Error(t, err)
}
