package fsx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "dep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"), []byte("print(1)"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "helper.py"), []byte("x = 1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "dep", "index.js"), []byte("1"), 0o644))
}

func TestListFilesExcludesVendorDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root)

	files, err := OSSource{}.ListFiles(root, nil)
	require.NoError(t, err)
	assert.Contains(t, files, "main.py")
	assert.Contains(t, files, "pkg/helper.py")
	for _, f := range files {
		assert.NotContains(t, f, "node_modules")
	}
}

func TestListFilesHonorsExtraIgnore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root)

	files, err := OSSource{}.ListFiles(root, []string{"pkg/helper.py"})
	require.NoError(t, err)
	assert.NotContains(t, files, "pkg/helper.py")
	assert.Contains(t, files, "main.py")
}

func TestReadFileRoundTrip(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root)

	data, err := OSSource{}.ReadFile(root, "main.py")
	require.NoError(t, err)
	assert.Equal(t, "print(1)", string(data))
}

func TestWriteFileCreatesParentDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, OSSource{}.WriteFile(root, "out/report.json", []byte("{}")))

	data, err := os.ReadFile(filepath.Join(root, "out", "report.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestReadFileMissingReturnsError(t *testing.T) {
	root := t.TempDir()
	_, err := OSSource{}.ReadFile(root, "missing.py")
	assert.Error(t, err)
}
