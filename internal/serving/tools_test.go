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

func TestQueryToolFiltersByType(t *testing.T) {
	e := testEngine(t)
	tool := &queryTool{e}
	payload, _ := json.Marshal(queryPayload{Predicate: query.Leaf("type", query.OpEq, "function")})

	result, err := tool.Execute(context.Background(), payload)
	require.NoError(t, err)
	page := result.(query.Page)
	assert.Equal(t, 1, page.TotalCount)
}

func TestFilterToolDelegatesToQuery(t *testing.T) {
	e := testEngine(t)
	tool := &filterTool{e}
	payload, _ := json.Marshal(queryPayload{Predicate: query.Leaf("type", query.OpEq, "file")})

	result, err := tool.Execute(context.Background(), payload)
	require.NoError(t, err)
	page := result.(query.Page)
	assert.Equal(t, 1, page.TotalCount)
}

func TestGetNodeToolReturnsEdges(t *testing.T) {
	e := testEngine(t)
	tool := &getNodeTool{e}
	payload, _ := json.Marshal(getNodePayload{ID: "main.py", Options: query.GetNodeOptions{MaxDepth: 1, IncludeEdges: true}})

	result, err := tool.Execute(context.Background(), payload)
	require.NoError(t, err)
	view := result.(query.NodeView)
	assert.Len(t, view.OutgoingEdges, 1)
}

func TestGetNodeToolUnknownIDErrors(t *testing.T) {
	e := testEngine(t)
	tool := &getNodeTool{e}
	payload, _ := json.Marshal(getNodePayload{ID: "ghost.py"})
	_, err := tool.Execute(context.Background(), payload)
	assert.Error(t, err)
}

func TestSearchToolAppliesAllFilters(t *testing.T) {
	e := testEngine(t)
	tool := &searchTool{e}
	payload, _ := json.Marshal(searchPayload{NodeType: "function", Language: "python", Limit: 10})

	result, err := tool.Execute(context.Background(), payload)
	require.NoError(t, err)
	items := result.([]map[string]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "main.py#main", items[0]["id"])
}

func TestDependenciesToolExpandsOutgoing(t *testing.T) {
	e := testEngine(t)
	tool := &dependenciesTool{e}
	payload, _ := json.Marshal(dependenciesPayload{ID: "main.py", Direction: query.DirectionOut, Depth: 1})

	result, err := tool.Execute(context.Background(), payload)
	require.NoError(t, err)
	sub := result.(query.Subgraph)
	assert.Contains(t, sub.Nodes, genome.NodeId("main.py#main"))
}

func TestStatsToolMatchesEngineStats(t *testing.T) {
	e := testEngine(t)
	tool := &statsTool{e}
	result, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	view := result.(StatsView)
	assert.Equal(t, 2, view.NodeCount)
}

func TestImpactToolFlagsHighCriticalityRisk(t *testing.T) {
	e := testEngine(t)
	g := e.Snapshot()
	g.Risk["main.py#main"] = genome.RiskEntry{NodeID: "main.py#main", RiskScore: 0.9}

	tool := &impactTool{e}
	payload, _ := json.Marshal(impactPayload{AffectedNodes: []genome.NodeId{"main.py#main"}, Operation: "rename"})
	result, err := tool.Execute(context.Background(), payload)
	require.NoError(t, err)
	out := result.(map[string]interface{})
	assert.Equal(t, 0.9, out["risk"])
	assert.True(t, out["requires_approval"].(bool))
}

func TestImpactToolLowRiskNoApprovalNoFlows(t *testing.T) {
	e := testEngine(t)
	tool := &impactTool{e}
	payload, _ := json.Marshal(impactPayload{AffectedNodes: []genome.NodeId{"main.py"}})
	result, err := tool.Execute(context.Background(), payload)
	require.NoError(t, err)
	out := result.(map[string]interface{})
	assert.False(t, out["requires_approval"].(bool))
}

func TestUpdateToolRequiresReason(t *testing.T) {
	e := testEngine(t)
	tool := &updateTool{e}
	payload, _ := json.Marshal(updatePayload{})
	_, err := tool.Execute(context.Background(), payload)
	assert.Error(t, err)
}

func TestValidateToolReportsOk(t *testing.T) {
	e := testEngine(t)
	tool := &validateTool{e}
	result, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	out := result.(map[string]interface{})
	assert.True(t, out["ok"].(bool))
}

func TestCompareToolDiffsTwoNodes(t *testing.T) {
	e := testEngine(t)
	tool := &compareTool{e}
	payload, _ := json.Marshal(comparePayload{A: compareRefPayload{ID: "main.py"}, B: compareRefPayload{ID: "main.py#main"}})
	result, err := tool.Execute(context.Background(), payload)
	require.NoError(t, err)
	diff := result.(query.Diff)
	assert.NotEmpty(t, diff.Fields)
}

func TestFindPathToolFindsDirectEdge(t *testing.T) {
	e := testEngine(t)
	tool := &findPathTool{e}
	payload, _ := json.Marshal(findPathPayload{From: "main.py", To: "main.py#main", MaxLen: 3})
	result, err := tool.Execute(context.Background(), payload)
	require.NoError(t, err)
	out := result.(map[string]interface{})
	path := out["path"].([]genome.NodeId)
	assert.Equal(t, []genome.NodeId{"main.py", "main.py#main"}, path)
}

func TestFindPathToolUnreachableErrors(t *testing.T) {
	e := testEngine(t)
	tool := &findPathTool{e}
	payload, _ := json.Marshal(findPathPayload{From: "main.py#main", To: "main.py", MaxLen: 3})
	_, err := tool.Execute(context.Background(), payload)
	assert.Error(t, err)
}

func TestSetContextSessionToolPersists(t *testing.T) {
	e := testEngine(t)
	tool := &setContextSessionTool{e}
	var payload setContextSessionPayload
	payload.SessionID = "sess-1"
	payload.State.PinnedIDs = []genome.NodeId{"main.py#main"}
	data, _ := json.Marshal(payload)

	result, err := tool.Execute(context.Background(), data)
	require.NoError(t, err)
	out := result.(map[string]interface{})
	assert.True(t, out["ok"].(bool))
}

func TestScanToolRejectsWhenRepoEmpty(t *testing.T) {
	// An incremental scan with no prior snapshot falls through to a
	// full scan of an empty repo root — zero files is a valid, if
	// trivial, outcome, not an error.
	root := t.TempDir()
	cfg := Config{RepoRoot: root}
	e := NewEngine(cfg, nil, testAssembler(t))
	tool := &scanTool{e}

	result, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	out := result.(map[string]interface{})
	stats := out["stats"].(ScanStats)
	assert.Equal(t, 0, stats.NodeCount)
}
