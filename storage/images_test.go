package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marketplace-service/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewDiskStore(dir, "http://localhost:8080/images")
	require.NoError(t, err)

	saved, err := store.Save("bike.jpg", strings.NewReader("image-bytes"))
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.True(t, strings.HasPrefix(saved.URL, "http://localhost:8080/images/"), "url: %s", saved.URL)
	assert.True(t, strings.HasSuffix(saved.URL, ".jpg"), "extension must be kept: %s", saved.URL)

	name := saved.URL[strings.LastIndex(saved.URL, "/")+1:]
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestDiskStoreDistinctNames(t *testing.T) {
	store, err := storage.NewDiskStore(t.TempDir(), "http://localhost:8080/images")
	require.NoError(t, err)

	first, err := store.Save("a.png", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := store.Save("a.png", strings.NewReader("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.URL, second.URL)
}

func TestDiskStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := storage.NewDiskStore(dir, "http://localhost:8080/images")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
