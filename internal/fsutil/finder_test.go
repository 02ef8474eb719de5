package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
}

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b.hcl", "a.yaml", "nested/c.hcl", "notes.txt")

	files, err := FindFilesByExtension(root, ".hcl", ".yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.yaml"),
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "nested", "c.hcl"),
	}, files)

	assert.Panics(t, func() { _, _ = FindFilesByExtension(root) })
}

func TestCollectFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "plans/a.hcl", "plans/b.hcl", "single.hcl", "other.yaml")

	files, err := CollectFiles([]string{
		filepath.Join(root, "single.hcl"),
		filepath.Join(root, "plans"),
		filepath.Join(root, "plans", "a.hcl"),
		filepath.Join(root, "other.yaml"),
		filepath.Join(root, "missing"),
	}, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "single.hcl"),
		filepath.Join(root, "plans", "a.hcl"),
		filepath.Join(root, "plans", "b.hcl"),
	}, files)
}
