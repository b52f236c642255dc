package incremental

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/genomectl/repogenome/internal/genome"
)

func TestComputeMaskNoChangesNoCommitsSkipsEverything(t *testing.T) {
	mask := ComputeMask(ChangeSet{}, false, false)
	assert.False(t, mask.Spider)
	assert.False(t, mask.FlowWeaver)
	assert.False(t, mask.ChronoMap)
}

func TestComputeMaskFileChangeRerunsSpiderOnly(t *testing.T) {
	mask := ComputeMask(ChangeSet{Modified: []string{"a.go"}}, false, false)
	assert.True(t, mask.Spider)
	assert.False(t, mask.FlowWeaver)
	assert.False(t, mask.IntentAtlas)
}

func TestComputeMaskAddRerunsIntentAtlasAndTestGalaxy(t *testing.T) {
	mask := ComputeMask(ChangeSet{Added: []string{"new.go"}}, false, false)
	assert.True(t, mask.IntentAtlas)
	assert.True(t, mask.TestGalaxy)
}

func TestComputeMaskStructuralEdgeChangeRerunsFlowWeaverAndContractLens(t *testing.T) {
	mask := ComputeMask(ChangeSet{Modified: []string{"a.go"}}, true, false)
	assert.True(t, mask.FlowWeaver)
	assert.True(t, mask.ContractLens)
}

func TestComputeMaskNewCommitsRerunsChronoMap(t *testing.T) {
	mask := ComputeMask(ChangeSet{}, false, true)
	assert.True(t, mask.ChronoMap)
	assert.False(t, mask.Spider)
}

func TestAnyEdgeOfInterest(t *testing.T) {
	assert.True(t, AnyEdgeOfInterest(genome.EdgeDefines))
	assert.True(t, AnyEdgeOfInterest(genome.EdgeImports))
	assert.True(t, AnyEdgeOfInterest(genome.EdgeCalls))
	assert.False(t, AnyEdgeOfInterest(genome.EdgeTests))
}
