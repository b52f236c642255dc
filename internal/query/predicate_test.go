package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomectl/repogenome/internal/genome"
)

func sampleNode() *genome.Node {
	return &genome.Node{
		ID:          "a.py#f",
		Type:        genome.NodeFunction,
		File:        "a.py",
		Language:    "python",
		Visibility:  genome.VisibilityPublic,
		Summary:     "reads from the database",
		Criticality: 0.7,
	}
}

func TestEvalLeafEq(t *testing.T) {
	n := sampleNode()
	ok, err := Leaf("type", OpEq, "function").Eval(n)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Leaf("type", OpEq, "class").Eval(n)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvalLeafShortAlias(t *testing.T) {
	n := sampleNode()
	ok, err := Leaf("t", OpEq, "function").Eval(n)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Leaf("lang", OpEq, "python").Eval(n)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalLeafRegex(t *testing.T) {
	n := sampleNode()
	ok, err := Leaf("summary", OpRegex, "data.*se").Eval(n)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalLeafIn(t *testing.T) {
	n := sampleNode()
	ok, err := Leaf("language", OpIn, []interface{}{"go", "python"}).Eval(n)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalLeafBetween(t *testing.T) {
	n := sampleNode()
	ok, err := Leaf("criticality", OpBetween, []interface{}{0.5, 0.9}).Eval(n)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Leaf("criticality", OpBetween, []interface{}{0.8, 0.9}).Eval(n)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvalCompoundAndOrNot(t *testing.T) {
	n := sampleNode()

	ok, err := And(Leaf("type", OpEq, "function"), Leaf("visibility", OpEq, "public")).Eval(n)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Or(Leaf("type", OpEq, "class"), Leaf("visibility", OpEq, "public")).Eval(n)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Not(Leaf("type", OpEq, "function")).Eval(n)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvalUnknownFieldErrors(t *testing.T) {
	n := sampleNode()
	_, err := Leaf("bogus", OpEq, "x").Eval(n)
	assert.Error(t, err)
}

func TestEvalInvalidRegexErrors(t *testing.T) {
	n := sampleNode()
	_, err := Leaf("summary", OpRegex, "(unterminated").Eval(n)
	assert.Error(t, err)
}
