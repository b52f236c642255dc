package subsystems

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomectl/repogenome/internal/genome"
)

func TestRiskLensScoresByCentralityAndCoverage(t *testing.T) {
	base := &genome.BaseGraph{
		Nodes: map[genome.NodeId]*genome.Node{
			"core/core.go#Core":             {ID: "core/core.go#Core", Type: genome.NodeFunction, File: "core/core.go"},
			"util/util.go#Helper":           {ID: "util/util.go#Helper", Type: genome.NodeFunction, File: "util/util.go"},
			"util/util_test.go#TestHelper": {ID: "util/util_test.go#TestHelper", Type: genome.NodeTest, File: "util/util_test.go"},
		},
		Edges: []genome.Edge{
			{From: "util/util.go#Helper", To: "core/core.go#Core", Type: genome.EdgeCalls},
			{From: "util/util_test.go#TestHelper", To: "util/util.go#Helper", Type: genome.EdgeCalls},
		},
	}

	rl := NewRiskLens(false)
	out, err := rl.Run(context.Background(), base, Capabilities{})
	require.NoError(t, err)

	core := out.Risk["core/core.go#Core"]
	assert.Greater(t, core.RiskScore, 0.0)
	assert.Contains(t, core.Reasons, "no test found in owning directory")

	helper := out.Risk["util/util.go#Helper"]
	assert.Less(t, helper.RiskScore, core.RiskScore)
}

func TestRiskLensBoundedToUnitInterval(t *testing.T) {
	base := &genome.BaseGraph{
		Nodes: map[genome.NodeId]*genome.Node{
			"a.go#A": {ID: "a.go#A", Type: genome.NodeFunction, File: "a.go"},
		},
	}
	rl := NewRiskLens(false)
	out, err := rl.Run(context.Background(), base, Capabilities{})
	require.NoError(t, err)
	for _, r := range out.Risk {
		assert.GreaterOrEqual(t, r.RiskScore, 0.0)
		assert.LessOrEqual(t, r.RiskScore, 1.0)
	}
}
