package serving

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomectl/repogenome/internal/genome"
	"github.com/genomectl/repogenome/internal/query"
)

func TestCurrentResourceEncodesStandardMode(t *testing.T) {
	e := testEngine(t)
	r := &currentResource{e, genome.ModeStandard}
	result, err := r.Read(context.Background(), "")
	require.NoError(t, err)

	var g genome.Genome
	require.NoError(t, json.Unmarshal(result.(json.RawMessage), &g))
	assert.Len(t, g.Nodes, 2)
}

func TestCurrentBriefResourceUsesLiteMode(t *testing.T) {
	e := testEngine(t)
	r := &currentResource{e, genome.ModeLite}
	result, err := r.Read(context.Background(), "")
	require.NoError(t, err)

	_, mode, err := genome.Unmarshal(result.(json.RawMessage))
	require.NoError(t, err)
	assert.Equal(t, genome.ModeLite, mode)
}

func TestSummaryResourceDefaultsToStandardMode(t *testing.T) {
	e := testEngine(t)
	r := &summaryResource{e}
	result, err := r.Read(context.Background(), "summary")
	require.NoError(t, err)
	out := result.(map[string]interface{})
	assert.Equal(t, "standard", out["mode"])
}

func TestSummaryResourceHonorsModeQueryParam(t *testing.T) {
	e := testEngine(t)
	r := &summaryResource{e}
	result, err := r.Read(context.Background(), "summary?mode=detailed")
	require.NoError(t, err)
	out := result.(map[string]interface{})
	assert.Equal(t, "detailed", out["mode"])
}

func TestSummaryResourceRejectsUnknownMode(t *testing.T) {
	e := testEngine(t)
	r := &summaryResource{e}
	_, err := r.Read(context.Background(), "summary?mode=bogus")
	assert.Error(t, err)
}

func TestStatsResourceMatchesEngineStats(t *testing.T) {
	e := testEngine(t)
	r := &statsResource{e}
	result, err := r.Read(context.Background(), "stats")
	require.NoError(t, err)
	assert.Equal(t, 2, result.(StatsView).NodeCount)
}

func TestNodesResourceAppliesFieldsProjection(t *testing.T) {
	e := testEngine(t)
	r := &nodesResource{e}
	result, err := r.Read(context.Background(), "nodes/main.py#main?fields=type,summary")
	require.NoError(t, err)
	view := result.(query.NodeView)
	assert.Equal(t, genome.NodeId("main.py#main"), view.Node.ID)
}

func TestNodesResourceUnknownIDErrors(t *testing.T) {
	e := testEngine(t)
	r := &nodesResource{e}
	_, err := r.Read(context.Background(), "nodes/ghost.py")
	assert.Error(t, err)
}

func TestDiffResourceDelegatesToEngine(t *testing.T) {
	e := testEngine(t)
	r := &diffResource{e}
	result, err := r.Read(context.Background(), "diff")
	require.NoError(t, err)
	added := result.(map[string][]genome.NodeId)["added"]
	assert.Len(t, added, 2)
}

func TestCurrentDetailedResourceIncludesMetrics(t *testing.T) {
	e := testEngine(t)
	r := &currentDetailedResource{e}
	result, err := r.Read(context.Background(), "current/detailed")
	require.NoError(t, err)
	out := result.(map[string]interface{})
	metrics := out["metrics"].(StatsView)
	assert.Equal(t, 2, metrics.NodeCount)
}
