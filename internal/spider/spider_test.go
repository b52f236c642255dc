package spider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomectl/repogenome/internal/analyzer"
	"github.com/genomectl/repogenome/internal/genome"
)

func TestRunProducesFileAndFunctionNodes(t *testing.T) {
	reg := analyzer.NewDefaultRegistry()
	result, err := Run(context.Background(), Options{
		RepoRoot: "testdata/simplerepo",
		Workers:  2,
	}, reg)
	require.NoError(t, err)

	mainID := genome.FileID("pkg/main.py")
	helperID := genome.FileID("pkg/helper.py")
	require.Contains(t, result.Nodes, mainID)
	require.Contains(t, result.Nodes, helperID)

	mainFn := genome.SymbolID("pkg/main.py", "main")
	assert.Contains(t, result.Nodes, mainFn)
}

func TestRunResolvesInRepoImports(t *testing.T) {
	reg := analyzer.NewDefaultRegistry()
	result, err := Run(context.Background(), Options{
		RepoRoot: "testdata/simplerepo",
		Workers:  2,
	}, reg)
	require.NoError(t, err)

	mainID := genome.FileID("pkg/main.py")
	helperID := genome.FileID("pkg/helper.py")

	var found bool
	for _, e := range result.Edges {
		if e.From == mainID && e.To == helperID && e.Type == genome.EdgeImports {
			found = true
		}
	}
	assert.True(t, found, "expected resolved import edge from main.py to helper.py")
}

func TestRunOnlyRestrictsWalk(t *testing.T) {
	reg := analyzer.NewDefaultRegistry()
	result, err := Run(context.Background(), Options{
		RepoRoot: "testdata/simplerepo",
		Workers:  1,
		Only:     []string{"pkg/helper.py"},
	}, reg)
	require.NoError(t, err)

	assert.Contains(t, result.Nodes, genome.FileID("pkg/helper.py"))
	assert.NotContains(t, result.Nodes, genome.FileID("pkg/main.py"))
}

func TestRunIsDeterministicAcrossRuns(t *testing.T) {
	reg := analyzer.NewDefaultRegistry()
	opts := Options{RepoRoot: "testdata/simplerepo", Workers: 3}

	r1, err := Run(context.Background(), opts, reg)
	require.NoError(t, err)
	r2, err := Run(context.Background(), opts, reg)
	require.NoError(t, err)

	assert.Equal(t, len(r1.Nodes), len(r2.Nodes))
	assert.Equal(t, len(r1.Edges), len(r2.Edges))
}
