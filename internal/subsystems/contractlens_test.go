package subsystems

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomectl/repogenome/internal/genome"
)

func TestContractLensScoresRiskByDependentCount(t *testing.T) {
	base := &genome.BaseGraph{
		Nodes: map[genome.NodeId]*genome.Node{
			"api.go#Serve":    {ID: "api.go#Serve", Type: genome.NodeFunction, Visibility: genome.VisibilityPublic, File: "api.go"},
			"caller1.go#A":    {ID: "caller1.go#A", Type: genome.NodeFunction, Visibility: genome.VisibilityPublic, File: "caller1.go"},
			"caller2.go#B":    {ID: "caller2.go#B", Type: genome.NodeFunction, Visibility: genome.VisibilityPublic, File: "caller2.go"},
			"internal.go#Priv": {ID: "internal.go#Priv", Type: genome.NodeFunction, Visibility: genome.VisibilityPrivate, File: "internal.go"},
		},
		Edges: []genome.Edge{
			{From: "caller1.go#A", To: "api.go#Serve", Type: genome.EdgeCalls},
			{From: "caller2.go#B", To: "api.go#Serve", Type: genome.EdgeCalls},
		},
	}

	cl := NewContractLens(false)
	out, err := cl.Run(context.Background(), base, Capabilities{})
	require.NoError(t, err)

	var found *genome.ContractEntry
	for _, c := range out.Contracts {
		if c.Signature == "Serve()" {
			cc := c
			found = &cc
		}
	}
	require.NotNil(t, found)
	assert.Len(t, found.DependsOn, 2)
	assert.Greater(t, found.BreakingChangeRisk, 0.0)

	for _, c := range out.Contracts {
		assert.NotEqual(t, "Priv()", c.Signature)
	}
}

func TestContractLensZeroDependentsHasZeroRisk(t *testing.T) {
	base := &genome.BaseGraph{
		Nodes: map[genome.NodeId]*genome.Node{
			"api.go#Lonely": {ID: "api.go#Lonely", Type: genome.NodeFunction, Visibility: genome.VisibilityPublic, File: "api.go"},
		},
	}
	cl := NewContractLens(false)
	out, err := cl.Run(context.Background(), base, Capabilities{})
	require.NoError(t, err)
	require.Len(t, out.Contracts, 1)
	for _, c := range out.Contracts {
		assert.Equal(t, 0.0, c.BreakingChangeRisk)
	}
}
