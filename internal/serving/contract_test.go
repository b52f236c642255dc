package serving

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeforeToolAllowsReadersWithoutLoad(t *testing.T) {
	s := NewSessionState()
	assert.NoError(t, s.BeforeTool("query", EffectReader))
	assert.NoError(t, s.BeforeTool("stats", EffectReader))
}

func TestBeforeToolBlocksWriterBeforeLoad(t *testing.T) {
	s := NewSessionState()
	err := s.BeforeTool("update", EffectWriter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must load")
}

func TestBeforeToolAllowsScanBeforeLoad(t *testing.T) {
	s := NewSessionState()
	assert.NoError(t, s.BeforeTool("scan", EffectWriter))
}

func TestBeforeToolAllowsWriterAfterLoad(t *testing.T) {
	s := NewSessionState()
	s.AfterLoad()
	assert.NoError(t, s.BeforeTool("update", EffectWriter))
	assert.NoError(t, s.BeforeTool("set_context_session", EffectWriter))
}

func TestAfterImpactBlocksOtherReadersUntilUpdate(t *testing.T) {
	s := NewSessionState()
	s.AfterLoad()
	s.AfterImpact()

	err := s.BeforeTool("query", EffectReader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update")

	assert.NoError(t, s.BeforeTool("update", EffectWriter))
	assert.NoError(t, s.BeforeTool("validate", EffectReader))
	assert.NoError(t, s.BeforeTool("scan", EffectWriter))
}

func TestAfterUpdateClearsPendingBlock(t *testing.T) {
	s := NewSessionState()
	s.AfterLoad()
	s.AfterImpact()
	s.AfterUpdate()

	assert.NoError(t, s.BeforeTool("query", EffectReader))
}

func TestAfterValidateCleanClearsPendingUpdate(t *testing.T) {
	s := NewSessionState()
	s.AfterLoad()
	s.AfterImpact()
	s.AfterValidate(true)

	assert.NoError(t, s.BeforeTool("query", EffectReader))
	_, pending, failed := s.Snapshot()
	assert.False(t, pending)
	assert.False(t, failed)
}

func TestAfterValidateFailureBlocksEverythingButScanAndValidate(t *testing.T) {
	s := NewSessionState()
	s.AfterLoad()
	s.AfterValidate(false)

	for _, tool := range []string{"query", "update", "impact", "stats", "export"} {
		err := s.BeforeTool(tool, EffectReader)
		require.Error(t, err, "tool %s should be blocked", tool)
		assert.Contains(t, err.Error(), "invariant violations")
	}

	assert.NoError(t, s.BeforeTool("scan", EffectWriter))
	assert.NoError(t, s.BeforeTool("validate", EffectReader))
}

func TestValidationFailureTakesPriorityOverMissingLoad(t *testing.T) {
	s := NewSessionState()
	s.AfterValidate(false)

	err := s.BeforeTool("update", EffectWriter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invariant violations")
}

func TestSnapshotReflectsState(t *testing.T) {
	s := NewSessionState()
	loaded, pending, failed := s.Snapshot()
	assert.False(t, loaded)
	assert.False(t, pending)
	assert.False(t, failed)

	s.AfterLoad()
	s.AfterImpact()
	loaded, pending, failed = s.Snapshot()
	assert.True(t, loaded)
	assert.True(t, pending)
	assert.False(t, failed)
}
