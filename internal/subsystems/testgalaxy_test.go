package subsystems

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomectl/repogenome/internal/genome"
)

func TestTestGalaxyLinksByNamingConvention(t *testing.T) {
	base := &genome.BaseGraph{
		Nodes: map[genome.NodeId]*genome.Node{
			"pkg/foo.go#Foo":           {ID: "pkg/foo.go#Foo", Type: genome.NodeFunction, File: "pkg/foo.go"},
			"pkg/foo_test.go#TestFoo":  {ID: "pkg/foo_test.go#TestFoo", Type: genome.NodeTest, File: "pkg/foo_test.go"},
			"pkg/bar.go#Bar":           {ID: "pkg/bar.go#Bar", Type: genome.NodeFunction, File: "pkg/bar.go"},
		},
	}

	tg := NewTestGalaxy(false)
	out, err := tg.Run(context.Background(), base, Capabilities{})
	require.NoError(t, err)

	require.Len(t, out.TestEdges, 1)
	assert.Equal(t, genome.NodeId("pkg/foo_test.go#TestFoo"), out.TestEdges[0].From)
	assert.Equal(t, genome.NodeId("pkg/foo.go#Foo"), out.TestEdges[0].To)
	assert.Equal(t, genome.EdgeTests, out.TestEdges[0].Type)
}

func TestTestGalaxyHandlesPythonStyleNames(t *testing.T) {
	base := &genome.BaseGraph{
		Nodes: map[genome.NodeId]*genome.Node{
			"pkg/svc.py#run":          {ID: "pkg/svc.py#run", Type: genome.NodeFunction, File: "pkg/svc.py"},
			"pkg/test_svc.py#test_run": {ID: "pkg/test_svc.py#test_run", Type: genome.NodeTest, File: "pkg/test_svc.py"},
		},
	}

	tg := NewTestGalaxy(false)
	out, err := tg.Run(context.Background(), base, Capabilities{})
	require.NoError(t, err)
	require.Len(t, out.TestEdges, 1)
	assert.Equal(t, genome.NodeId("pkg/svc.py#run"), out.TestEdges[0].To)
}
