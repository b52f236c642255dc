package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genomectl/repogenome/internal/genome"
)

func TestTranslateSingleKeyword(t *testing.T) {
	pred, ok := Translate("show me all functions")
	require.True(t, ok)
	assert.Equal(t, "type", pred.Field)
	assert.Equal(t, "function", pred.Value)
}

func TestTranslateMultipleKeywordsCompounds(t *testing.T) {
	pred, ok := Translate("public classes in python")
	require.True(t, ok)
	require.NotNil(t, pred.And)
	assert.Len(t, pred.And, 3)
}

func TestTranslateUnrecognizedReturnsFalse(t *testing.T) {
	_, ok := Translate("something completely unrelated")
	assert.False(t, ok)
}

func TestTranslateFirstStatedLanguageWins(t *testing.T) {
	pred, ok := Translate("go functions not python")
	require.True(t, ok)

	n := &genome.Node{Type: genome.NodeFunction, Language: "go"}
	matched, err := pred.Eval(n)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestTranslateFilePatternToken(t *testing.T) {
	pred, ok := Translate("files matching cmd/*.go")
	require.True(t, ok)

	n := &genome.Node{Type: genome.NodeFile, File: "cmd/main.go"}
	matched, err := pred.Eval(n)
	require.NoError(t, err)
	assert.True(t, matched)
}
