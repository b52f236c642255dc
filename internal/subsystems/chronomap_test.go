package subsystems

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomectl/repogenome/internal/genome"
	"github.com/genomectl/repogenome/internal/history"
)

type stubHistorySource struct {
	commits []history.Commit
	err     error
}

func (s *stubHistorySource) CommitsSince(ctx context.Context, repoRoot string, days int) ([]history.Commit, error) {
	return s.commits, s.err
}

func TestChronoMapPopulatesHistoryAndHotspots(t *testing.T) {
	base := &genome.BaseGraph{
		Nodes: map[genome.NodeId]*genome.Node{
			genome.FileID("hot.go"):  {ID: genome.FileID("hot.go"), Type: genome.NodeFile, File: "hot.go"},
			genome.FileID("cold.go"): {ID: genome.FileID("cold.go"), Type: genome.NodeFile, File: "cold.go"},
		},
	}
	t1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	src := &stubHistorySource{commits: []history.Commit{
		{Timestamp: t1, FilesChanged: []history.FileChange{{Path: "hot.go"}, {Path: "hot.go"}, {Path: "cold.go"}}},
	}}

	cm := NewChronoMap(false)
	out, err := cm.Run(context.Background(), base, Capabilities{HistorySource: src, RepoRoot: "/repo", HotspotK: 1})
	require.NoError(t, err)

	require.Contains(t, out.History, genome.FileID("hot.go"))
	assert.Equal(t, 1.0, out.History[genome.FileID("hot.go")].ChurnScore)
	require.Len(t, out.Hotspots, 1)
	assert.Equal(t, genome.FileID("hot.go"), out.Hotspots[0])
}

func TestChronoMapNoSourceIsNoop(t *testing.T) {
	cm := NewChronoMap(false)
	out, err := cm.Run(context.Background(), &genome.BaseGraph{}, Capabilities{})
	require.NoError(t, err)
	assert.Empty(t, out.History)
}
