package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	lang  string
	panic bool
}

func (s *stubAnalyzer) Language() string { return s.lang }

func (s *stubAnalyzer) Extract(path string, content []byte) ExtractionResult {
	if s.panic {
		panic("boom")
	}
	return ExtractionResult{Nodes: []NodeDecl{{File: path}}}
}

func TestRegistryLookupMissingLanguage(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup("cobol")
	assert.False(t, ok)
}

func TestRegistryRunRecoversFromPanic(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubAnalyzer{lang: "x", panic: true})

	result := r.Run("x", "foo.x", nil)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, SeverityError, result.Diagnostics[0].Severity)
}

func TestRegistryRunDispatchesToRegisteredAnalyzer(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubAnalyzer{lang: "x"})

	result := r.Run("x", "foo.x", []byte("content"))
	require.Len(t, result.Nodes, 1)
	assert.Equal(t, "foo.x", result.Nodes[0].File)
}

func TestRegistryRunUnknownLanguageIsNoAnalyzer(t *testing.T) {
	r := NewRegistry()
	result := r.Run("cobol", "foo.cob", nil)
	assert.Empty(t, result.Nodes)
	assert.Empty(t, result.Diagnostics)
}

func TestNewDefaultRegistryRegistersBuiltins(t *testing.T) {
	r := NewDefaultRegistry()
	for _, lang := range []string{"python", "javascript", "typescript"} {
		_, ok := r.Lookup(lang)
		assert.True(t, ok, lang)
	}
}
