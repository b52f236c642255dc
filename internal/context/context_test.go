package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomectl/repogenome/internal/genome"
)

// memStore is a minimal in-process Store for tests that don't need
// durability, avoiding bbolt file setup in pure pipeline tests.
type memStore struct {
	sessions map[string]Session
	traces   map[string]DecisionTrace
	feedback map[string]Feedback
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[string]Session),
		traces:   make(map[string]DecisionTrace),
		feedback: make(map[string]Feedback),
	}
}

func (m *memStore) GetSession(_ context.Context, id string) (Session, bool, error) {
	s, ok := m.sessions[id]
	return s, ok, nil
}

func (m *memStore) SaveSession(_ context.Context, sess Session) error {
	m.sessions[sess.ID] = sess
	return nil
}

func (m *memStore) GetTrace(_ context.Context, contextID string) (DecisionTrace, bool, error) {
	tr, ok := m.traces[contextID]
	return tr, ok, nil
}

func (m *memStore) SaveTrace(_ context.Context, trace DecisionTrace) error {
	m.traces[trace.ContextID] = trace
	return nil
}

func (m *memStore) GetFeedback(_ context.Context, contextID string) (Feedback, error) {
	return m.feedback[contextID], nil
}

func (m *memStore) RecordFeedback(_ context.Context, contextID string, hit bool) error {
	fb := m.feedback[contextID]
	fb.ContextID = contextID
	if hit {
		fb.Hits++
	} else {
		fb.Misses++
	}
	m.feedback[contextID] = fb
	return nil
}

func TestBuildContextReturnsNonEmptySelectionWithinBudget(t *testing.T) {
	g := sampleGenome()
	a := NewAssembler(newMemStore())
	sel, err := a.BuildContext(context.Background(), g, Input{Goal: "payment charge", BudgetTokens: 500})
	require.NoError(t, err)
	assert.NotEmpty(t, sel.ContextID)
	assert.LessOrEqual(t, sel.TokenCost, 500)
	assert.Contains(t, sel.Items, genome.NodeId("payments.py#charge"))
}

func TestBuildContextPersistsExplainableTrace(t *testing.T) {
	g := sampleGenome()
	a := NewAssembler(newMemStore())
	sel, err := a.BuildContext(context.Background(), g, Input{Goal: "refund", BudgetTokens: 500})
	require.NoError(t, err)

	trace, ok, err := a.ExplainContext(context.Background(), sel.ContextID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "refund", trace.Goal)
	assert.Equal(t, sel.Items, trace.Selected)
}

func TestBuildContextSessionPinsCarryForward(t *testing.T) {
	g := sampleGenome()
	a := NewAssembler(newMemStore())
	require.NoError(t, a.SetContextSession(context.Background(), "sess-1", []genome.NodeId{"payments.py#charge"}))

	sel, err := a.BuildContext(context.Background(), g, Input{Goal: "unrelated reporting", BudgetTokens: 500, SessionID: "sess-1"})
	require.NoError(t, err)
	assert.Contains(t, sel.Items, genome.NodeId("payments.py#charge"))
}

func TestBuildContextDistinctCallsGetDistinctIDs(t *testing.T) {
	g := sampleGenome()
	a := NewAssembler(newMemStore())
	sel1, err := a.BuildContext(context.Background(), g, Input{Goal: "payment", BudgetTokens: 500})
	require.NoError(t, err)
	sel2, err := a.BuildContext(context.Background(), g, Input{Goal: "payment", BudgetTokens: 500})
	require.NoError(t, err)
	assert.NotEqual(t, sel1.ContextID, sel2.ContextID)
}

func TestGetContextSkeletonMatchesEntryPointsWithoutPersisting(t *testing.T) {
	g := sampleGenome()
	store := newMemStore()
	a := NewAssembler(store)
	skel := a.GetContextSkeleton(g, Input{Goal: "payment", BudgetTokens: 500})
	assert.Contains(t, skel.EntryPoints, genome.NodeId("main.py#main"))
	assert.Empty(t, store.traces)
}

func TestRecordAndGetContextFeedback(t *testing.T) {
	a := NewAssembler(newMemStore())
	ctx := context.Background()
	require.NoError(t, a.RecordContextFeedback(ctx, "ctx-1", true))
	require.NoError(t, a.RecordContextFeedback(ctx, "ctx-1", false))
	fb, err := a.GetContextFeedback(ctx, "ctx-1")
	require.NoError(t, err)
	assert.Equal(t, 1, fb.Hits)
	assert.Equal(t, 1, fb.Misses)
}

func TestExplainContextUnknownIDReturnsNotFound(t *testing.T) {
	a := NewAssembler(newMemStore())
	_, ok, err := a.ExplainContext(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
}
