package context

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomectl/repogenome/internal/genome"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "context.db")
	store, err := OpenBoltStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreSessionRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, ok, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveSession(ctx, Session{ID: "sess-1", PinnedIDs: []genome.NodeId{"a.py#f"}}))
	sess, ok, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []genome.NodeId{"a.py#f"}, sess.PinnedIDs)
	assert.False(t, sess.UpdatedAt.IsZero())
}

func TestBoltStoreTraceRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	trace := DecisionTrace{ContextID: "ctx-1", Goal: "fix payments", BudgetTokens: 1000}
	require.NoError(t, store.SaveTrace(ctx, trace))

	got, ok, err := store.GetTrace(ctx, "ctx-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, trace.Goal, got.Goal)
	assert.Equal(t, trace.BudgetTokens, got.BudgetTokens)
}

func TestBoltStoreFeedbackAccumulates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordFeedback(ctx, "ctx-1", true))
	require.NoError(t, store.RecordFeedback(ctx, "ctx-1", true))
	require.NoError(t, store.RecordFeedback(ctx, "ctx-1", false))

	fb, err := store.GetFeedback(ctx, "ctx-1")
	require.NoError(t, err)
	assert.Equal(t, 2, fb.Hits)
	assert.Equal(t, 1, fb.Misses)
}

func TestBoltStoreFeedbackUnknownContextIsZero(t *testing.T) {
	store := openTestStore(t)
	fb, err := store.GetFeedback(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, 0, fb.Hits)
	assert.Equal(t, 0, fb.Misses)
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "context.db")
	store, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveSession(context.Background(), Session{ID: "sess-1", PinnedIDs: []genome.NodeId{"x"}}))
	require.NoError(t, store.Close())

	reopened, err := OpenBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	sess, ok, err := reopened.GetSession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []genome.NodeId{"x"}, sess.PinnedIDs)
}
