package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSave(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	path, size, err := store.Save(context.Background(), DirAvatars, "../me photo.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.EqualValues(t, 9, size)
	assert.True(t, strings.HasPrefix(path, "avatars/"))
	assert.True(t, strings.HasSuffix(path, "_me_photo.png"))

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Remove(path))
	require.NoError(t, store.Remove(path))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(path)))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStoreSaveCancelled(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = store.Save(ctx, DirTasks, "a.txt", strings.NewReader("x"))
	assert.Error(t, err)
}
