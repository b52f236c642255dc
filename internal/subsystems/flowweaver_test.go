package subsystems

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomectl/repogenome/internal/genome"
)

func sampleBaseGraph() *genome.BaseGraph {
	nodes := map[genome.NodeId]*genome.Node{
		"main.go#main": {ID: "main.go#main", Type: genome.NodeFunction, File: "main.go", Visibility: genome.VisibilityPublic, Entry: true},
		"svc.go#Handle": {ID: "svc.go#Handle", Type: genome.NodeFunction, File: "svc.go", Visibility: genome.VisibilityPublic},
		"db.go#Query": {ID: "db.go#Query", Type: genome.NodeFunction, File: "db.go", Visibility: genome.VisibilityPublic, Summary: "runs a select query"},
	}
	edges := []genome.Edge{
		{From: "main.go#main", To: "svc.go#Handle", Type: genome.EdgeCalls},
		{From: "svc.go#Handle", To: "db.go#Query", Type: genome.EdgeCalls},
	}
	return &genome.BaseGraph{Nodes: nodes, Edges: edges}
}

func TestFlowWeaverBuildsPathFromEntry(t *testing.T) {
	fw := NewFlowWeaver(false)
	out, err := fw.Run(context.Background(), sampleBaseGraph(), Capabilities{})
	require.NoError(t, err)
	require.Len(t, out.Flows, 1)

	flow := out.Flows[0]
	assert.Equal(t, genome.NodeId("main.go#main"), flow.Entry)
	assert.Equal(t, []genome.NodeId{"main.go#main", "svc.go#Handle", "db.go#Query"}, flow.Path)
	assert.Contains(t, flow.SideEffects, genome.SideEffectDBRead)
	assert.Less(t, flow.Confidence, 1.0)
}

func TestFlowWeaverSkipsWhenDisabled(t *testing.T) {
	fw := NewFlowWeaver(true)
	assert.True(t, fw.Disabled())
}

func TestFlowWeaverNoEntriesYieldsNoFlows(t *testing.T) {
	base := sampleBaseGraph()
	base.Nodes["main.go#main"].Entry = false

	fw := NewFlowWeaver(false)
	out, err := fw.Run(context.Background(), base, Capabilities{})
	require.NoError(t, err)
	assert.Empty(t, out.Flows)
}
