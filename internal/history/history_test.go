package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitLogOutput(t *testing.T) {
	raw := "abc123|Jane Doe|jane@example.com|2024-01-02T10:00:00Z|fix bug\n" +
		"3\t1\tpkg/foo.go\n" +
		"\n" +
		"def456|Jane Doe|jane@example.com|2024-01-03T10:00:00Z|add feature\n" +
		"10\t0\tpkg/foo.go\n" +
		"5\t0\tpkg/bar.go\n"

	commits, err := parseGitLogOutput(raw)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "abc123", commits[0].SHA)
	require.Len(t, commits[0].FilesChanged, 1)
	assert.Equal(t, "pkg/foo.go", commits[0].FilesChanged[0].Path)
	assert.Equal(t, 3, commits[0].FilesChanged[0].Additions)
}

func TestParseGitLogOutputSkipsBinaryFiles(t *testing.T) {
	raw := "abc123|Jane Doe|jane@example.com|2024-01-02T10:00:00Z|binary update\n" +
		"-\t-\tassets/logo.png\n"

	commits, err := parseGitLogOutput(raw)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Empty(t, commits[0].FilesChanged)
}

func TestChurnAggregatesChangeCounts(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	commits := []Commit{
		{Timestamp: t1, FilesChanged: []FileChange{{Path: "pkg/foo.go"}}},
		{Timestamp: t2, FilesChanged: []FileChange{{Path: "pkg/foo.go"}, {Path: "pkg/bar.go"}}},
	}

	churn := Churn(commits)
	require.Contains(t, churn, "pkg/foo.go")
	assert.Equal(t, 2, churn["pkg/foo.go"].ChangeCount)
	assert.Equal(t, t2, churn["pkg/foo.go"].LastMajorChange)
	assert.Equal(t, 1, churn["pkg/bar.go"].ChangeCount)
}

func TestNormalizeChurnBounds(t *testing.T) {
	churn := map[string]ChurnEntry{
		"a": {Path: "a", ChangeCount: 100},
		"b": {Path: "b", ChangeCount: 1},
	}
	normalized := NormalizeChurn(churn)
	assert.Equal(t, 1.0, normalized["a"])
	assert.True(t, normalized["b"] > 0 && normalized["b"] < 1)
}

func TestNormalizeChurnEmpty(t *testing.T) {
	assert.Nil(t, NormalizeChurn(nil))
}

func TestCoChangeFindsFrequentPartners(t *testing.T) {
	commits := []Commit{
		{FilesChanged: []FileChange{{Path: "a.go"}, {Path: "b.go"}}},
		{FilesChanged: []FileChange{{Path: "a.go"}, {Path: "b.go"}}},
		{FilesChanged: []FileChange{{Path: "a.go"}, {Path: "c.go"}}},
	}

	result := CoChange(commits, 0.3, 3)
	require.Contains(t, result, "a.go")
	partners := result["a.go"]
	require.NotEmpty(t, partners)
	assert.Equal(t, "b.go", partners[0].Path)
	assert.InDelta(t, 2.0/3.0, partners[0].Frequency, 0.001)
}

func TestCoChangeRespectsMinFrequency(t *testing.T) {
	commits := []Commit{
		{FilesChanged: []FileChange{{Path: "a.go"}, {Path: "b.go"}}},
		{FilesChanged: []FileChange{{Path: "a.go"}}},
		{FilesChanged: []FileChange{{Path: "a.go"}}},
		{FilesChanged: []FileChange{{Path: "a.go"}}},
	}

	result := CoChange(commits, 0.5, 3)
	assert.Empty(t, result["a.go"])
}
