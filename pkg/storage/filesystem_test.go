package storage

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("task-1/abc_brief.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "task-1/abc_brief.pdf", rel)

	file, err := store.Open(rel)
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../outside.txt", []byte("x"))
	assert.Error(t, err)

	_, err = store.Open("/etc/passwd")
	assert.Error(t, err)
}

func TestLocalStorageOpenMissing(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("missing.txt")
	assert.Error(t, err)
}

func TestLocalStorageStreamMoveDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	written, err := store.SaveStream(".staging/abc", strings.NewReader("artwork"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), written)

	require.NoError(t, store.Move(".staging/abc", "ads/b1/abc_banner.png"))
	_, err = store.Open(".staging/abc")
	assert.Error(t, err)

	file, err := store.Open("ads/b1/abc_banner.png")
	require.NoError(t, err)
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.Equal(t, "artwork", string(data))

	require.NoError(t, store.Delete("ads/b1/abc_banner.png"))
	require.NoError(t, store.Delete("ads/b1/abc_banner.png"))
	assert.Error(t, store.Move("ads/b1/abc_banner.png", "elsewhere"))
	assert.Error(t, store.Move("ads/b1/x", "../escape"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestLocalStorageSaveStreamLeavesNothingOnFailure(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.SaveStream("tasks/t1/broken.pdf", io.MultiReader(strings.NewReader("%PDF"), failingReader{}))
	require.Error(t, err)

	_, err = store.Open("tasks/t1/broken.pdf")
	assert.Error(t, err)
	_, err = store.Open("tasks/t1/broken.pdf.part")
	assert.Error(t, err)
}
