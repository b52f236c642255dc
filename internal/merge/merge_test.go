package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomectl/repogenome/internal/genome"
	"github.com/genomectl/repogenome/internal/subsystems"
)

func sampleBase() *genome.BaseGraph {
	return &genome.BaseGraph{
		Nodes: map[genome.NodeId]*genome.Node{
			"main.go":      {ID: "main.go", Type: genome.NodeFile, File: "main.go"},
			"main.go#main": {ID: "main.go#main", Type: genome.NodeFunction, File: "main.go", Entry: true, Visibility: genome.VisibilityPublic},
			"orphan.go#unused": {ID: "orphan.go#unused", Type: genome.NodeFunction, File: "orphan.go", Visibility: genome.VisibilityPrivate},
		},
		Edges: []genome.Edge{
			{From: "main.go", To: "main.go#main", Type: genome.EdgeDefines},
		},
	}
}

func TestMergeDropsDegreeZeroOrphans(t *testing.T) {
	base := sampleBase()
	result := Merge(base, nil, Options{RepoHash: "abc", EngineVersion: "v1"})

	_, stillPresent := result.Genome.Nodes["orphan.go#unused"]
	assert.False(t, stillPresent)
	assert.Contains(t, result.Genome.Nodes, genome.NodeId("main.go"))
	assert.Contains(t, result.Genome.Nodes, genome.NodeId("main.go#main"))
}

func TestMergeKeepsEntryNodesEvenWithoutEdges(t *testing.T) {
	base := &genome.BaseGraph{
		Nodes: map[genome.NodeId]*genome.Node{
			"cmd.go#main": {ID: "cmd.go#main", Type: genome.NodeFunction, File: "cmd.go", Entry: true},
		},
	}
	result := Merge(base, nil, Options{})
	assert.Contains(t, result.Genome.Nodes, genome.NodeId("cmd.go#main"))
	assert.Contains(t, result.Genome.Summary.EntryPoints, genome.NodeId("cmd.go#main"))
}

func TestMergeUnionsSubsystemSections(t *testing.T) {
	base := sampleBase()
	outputs := []subsystems.Output{
		{
			Flows: []genome.Flow{{Entry: "main.go#main", Path: []genome.NodeId{"main.go#main"}, Confidence: 1}},
		},
		{
			History: map[genome.NodeId]genome.HistoryEntry{"main.go": {FileID: "main.go", ChurnScore: 0.5}},
		},
	}
	result := Merge(base, outputs, Options{})
	require.Len(t, result.Genome.Flows, 1)
	require.Contains(t, result.Genome.History, genome.NodeId("main.go"))
	assert.Empty(t, result.Violations)
}

func TestMergeDedupsTestEdgesAgainstBase(t *testing.T) {
	base := sampleBase()
	base.Edges = append(base.Edges, genome.Edge{From: "main.go#main", To: "main.go", Type: genome.EdgeReferences})
	outputs := []subsystems.Output{
		{TestEdges: []genome.Edge{{From: "main.go#main", To: "main.go", Type: genome.EdgeReferences}}},
	}
	result := Merge(base, outputs, Options{})

	count := 0
	for _, e := range result.Genome.Edges {
		if e.From == "main.go#main" && e.To == "main.go" && e.Type == genome.EdgeReferences {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestMergeProducesValidGenome(t *testing.T) {
	base := sampleBase()
	result := Merge(base, nil, Options{EngineVersion: "v1", SchemaVersion: genome.MaxSchemaVersion})
	assert.Empty(t, result.Violations)
	assert.Equal(t, genome.MaxSchemaVersion, result.Genome.Metadata.SchemaVersion)
}
