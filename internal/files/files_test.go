package files

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUploadStoreSaveAndRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewUploadStore(dir, testLogger())
	require.NoError(t, err)
	assert.DirExists(t, dir)

	path, err := store.Save(strings.NewReader("%PDF-1.7"), ".PDF")
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	name := filepath.Base(path)
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	assert.Len(t, strings.TrimSuffix(name, ".pdf"), 32)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))

	require.NoError(t, store.Remove(path))
	assert.NoFileExists(t, path)

	// Removing twice is not an error.
	assert.NoError(t, store.Remove(path))
}

func TestUploadStoreUniqueNames(t *testing.T) {
	store, err := NewUploadStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	a, err := store.Save(strings.NewReader("a"), "pdf")
	require.NoError(t, err)
	b, err := store.Save(strings.NewReader("b"), "pdf")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestUploadStoreSaveFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	store, err := NewUploadStore(dir, testLogger())
	require.NoError(t, err)

	_, err = store.Save(failingReader{}, ".pdf")
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadStoreIgnoresForeignPaths(t *testing.T) {
	store, err := NewUploadStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	outside := filepath.Join(t.TempDir(), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	assert.NoError(t, store.Remove(outside))
	assert.FileExists(t, outside)
}

func TestNewUploadStoreRequiresDir(t *testing.T) {
	_, err := NewUploadStore("", testLogger())
	assert.Error(t, err)
}

func TestDiscoveryExpand(t *testing.T) {
	base := t.TempDir()
	for _, name := range []string{"b.md", "a.txt", "c.MARKDOWN", "skip.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(base, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(base, "nested"), 0o755))
	explicit := filepath.Join(base, "skip.pdf")

	d := NewDiscovery("")
	got, err := d.Expand([]string{base, explicit, filepath.Join(base, "a.txt")})
	require.NoError(t, err)

	var names []string
	for _, fi := range got {
		names = append(names, fi.Name)
	}
	assert.Equal(t, []string{"a.txt", "b.md", "c.MARKDOWN", "skip.pdf"}, names)
}

func TestDiscoveryRelativeToBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "report.md"), []byte("x"), 0o644))

	docs, err := NewDiscovery(base).FindDocuments(".")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, filepath.Join(base, "report.md"), docs[0].Path)

	_, err = NewDiscovery(base).Expand([]string{"missing.md"})
	assert.Error(t, err)
}
