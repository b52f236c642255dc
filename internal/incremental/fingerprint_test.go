package incremental

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDiffersOnContentChange(t *testing.T) {
	f1 := Fingerprint("a.go", []byte("package a"))
	f2 := Fingerprint("a.go", []byte("package a\nfunc F() {}"))
	assert.NotEqual(t, f1, f2)
}

func TestFingerprintDiffersOnPathWithSameContent(t *testing.T) {
	f1 := Fingerprint("a.go", []byte("same"))
	f2 := Fingerprint("b.go", []byte("same"))
	assert.NotEqual(t, f1, f2)
}

func TestFingerprintStableAcrossCalls(t *testing.T) {
	a := Fingerprint("x.go", []byte("hello"))
	b := Fingerprint("x.go", []byte("hello"))
	assert.Equal(t, a, b)
}

func TestFingerprintsReadsFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a"), 0o644))

	fps, err := Fingerprints(dir, []string{"a.go"})
	require.NoError(t, err)
	assert.Equal(t, Fingerprint("a.go", []byte("package a")), fps["a.go"])
}
