package incremental

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeChangeSetClassifiesAddedModifiedRemoved(t *testing.T) {
	old := map[string]string{"a.go": "h1", "b.go": "h2"}
	current := map[string]string{"a.go": "h1", "b.go": "h2-changed", "c.go": "h3"}

	cs := ComputeChangeSet(old, current)
	assert.Equal(t, []string{"c.go"}, cs.Added)
	assert.Equal(t, []string{"b.go"}, cs.Modified)
	assert.Empty(t, cs.Removed)
}

func TestComputeChangeSetDetectsRemoval(t *testing.T) {
	old := map[string]string{"a.go": "h1", "gone.go": "h9"}
	current := map[string]string{"a.go": "h1"}

	cs := ComputeChangeSet(old, current)
	assert.Equal(t, []string{"gone.go"}, cs.Removed)
	assert.True(t, cs.Empty() == false)
}

func TestChangeSetEmpty(t *testing.T) {
	cs := ComputeChangeSet(map[string]string{"a.go": "h1"}, map[string]string{"a.go": "h1"})
	assert.True(t, cs.Empty())
}

func TestChangedUnionsAddedAndModified(t *testing.T) {
	cs := ChangeSet{Added: []string{"b.go"}, Modified: []string{"a.go"}}
	assert.Equal(t, []string{"a.go", "b.go"}, cs.Changed())
}
