package media

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return store
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := New(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFilenameShape(t *testing.T) {
	store := newTestStore(t)

	name := store.Filename(".JPG")
	// timestamp, dash, random component, lowercased extension
	assert.Regexp(t, regexp.MustCompile(`^\d+-[0-9a-f-]+\.jpg$`), name)

	other := store.Filename(".jpg")
	assert.NotEqual(t, name, other)
}

func TestURLPath(t *testing.T) {
	store := newTestStore(t)
	assert.Equal(t, "/uploads/abc.png", store.URLPath("abc.png"))
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)

	name := store.Filename(".png")
	require.NoError(t, os.WriteFile(store.DiskPath(name), []byte("img"), 0644))

	require.NoError(t, store.Remove(store.URLPath(name)))
	_, err := os.Stat(store.DiskPath(name))
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveMissingFileIsNotAnError(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Remove("/uploads/never-existed.jpg"))
}
