package context

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/genomectl/repogenome/internal/genome"
)

func TestScoreSeedsLexicalMatchRanksHigher(t *testing.T) {
	g := sampleGenome()
	scores := scoreSeeds(g, Input{Goal: "payment charge"})
	assert.Greater(t, scores["payments.py#charge"], scores["unrelated.py#report"])
}

func TestScoreSeedsExcludesListedNodes(t *testing.T) {
	g := sampleGenome()
	scores := scoreSeeds(g, Input{Goal: "payment", Exclude: []genome.NodeId{"payments.py#charge"}})
	_, ok := scores["payments.py#charge"]
	assert.False(t, ok)
}

func TestScoreSeedsProximityToMustInclude(t *testing.T) {
	g := sampleGenome()
	scores := scoreSeeds(g, Input{Goal: "", MustInclude: []genome.NodeId{"payments.py#charge"}})
	assert.Greater(t, scores["payments.py"], scores["unrelated.py"])
}

func TestScoreSeedsConceptOverlapContributes(t *testing.T) {
	g := sampleGenome()
	scores := scoreSeeds(g, Input{Goal: "refund processing"})
	assert.Greater(t, scores["payments.py#refund"], 0.0)
}

func TestScoreSeedsCriticalityMonotonic(t *testing.T) {
	g := sampleGenome()
	scores := scoreSeeds(g, Input{Goal: "customer"})
	// charge (0.9) and refund (0.6) share the same lexical/concept profile
	// relative to "customer"; higher criticality must not score lower.
	assert.GreaterOrEqual(t, scores["payments.py#charge"], scores["payments.py#refund"])
}

func TestTopSeedsOrdersByScoreThenID(t *testing.T) {
	scores := map[genome.NodeId]float64{
		"b": 0.5,
		"a": 0.5,
		"c": 0.9,
	}
	top := topSeeds(scores, 2)
	assert.Equal(t, []genome.NodeId{"c", "a"}, top)
}

func TestExtractKeywordsDropsStopWordsAndShortTokens(t *testing.T) {
	kw := extractKeywords("How do I fix the payment bug for refunds?")
	assert.Contains(t, kw, "fix")
	assert.Contains(t, kw, "payment")
	assert.Contains(t, kw, "refunds")
	assert.NotContains(t, kw, "the")
	assert.NotContains(t, kw, "for")
	assert.NotContains(t, kw, "how")
}
