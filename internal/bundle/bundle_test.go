package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndList(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "perf-data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "energy-data.csv"), []byte("HASH,AVERAGE,TOTAL_NUMBERS,YEAR\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "perf-data", "aaaaaaaa-perf-data.json"), []byte("[]"), 0o644))

	dest := filepath.Join(root, "results.tar.zst")
	// a stale bundle must not be archived into the new one
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	n, err := Write(root, dest)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	names, err := List(dest)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"energy-data.csv", "perf-data/aaaaaaaa-perf-data.json"}, names)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".results.tar.zst.", "temporary file left behind")
	}
}

func TestWrite_OutsideRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.csv"), []byte("x"), 0o644))
	dest := filepath.Join(t.TempDir(), "out.tar.zst")

	n, err := Write(root, dest)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWrite_MissingRoot(t *testing.T) {
	_, err := Write(filepath.Join(t.TempDir(), "absent"), filepath.Join(t.TempDir(), "b.tar.zst"))
	assert.Error(t, err)
}

func TestList_NotABundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(path, []byte("definitely not zstd"), 0o644))
	_, err := List(path)
	assert.Error(t, err)
}
