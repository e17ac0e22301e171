// Package storagetest is a conformance suite for storage.Backend
// implementations.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/storage"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

// Factory returns a fresh, empty backend. The suite closes it.
type Factory func(t *testing.T) storage.Backend

// Run executes the suite against backends produced by newBackend.
func Run(t *testing.T, newBackend Factory) {
	t.Run("CreateDir", func(t *testing.T) { testCreateDir(t, newBackend) })
	t.Run("WriteFile", func(t *testing.T) { testWriteFile(t, newBackend) })
	t.Run("RemoveFile", func(t *testing.T) { testRemoveFile(t, newBackend) })
	t.Run("RemoveDirTree", func(t *testing.T) { testRemoveDirTree(t, newBackend) })
	t.Run("MoveOrRename", func(t *testing.T) { testMove(t, newBackend) })
	t.Run("PathValidation", func(t *testing.T) { testPathValidation(t, newBackend) })
	t.Run("Closed", func(t *testing.T) { testClosed(t, newBackend) })
}

func open(t *testing.T, f Factory) (storage.Backend, context.Context) {
	t.Helper()
	b := f(t)
	t.Cleanup(func() { _ = b.Close() })
	return b, context.Background()
}

func testCreateDir(t *testing.T, f Factory) {
	b, ctx := open(t, f)

	require.NoError(t, b.CreateDir(ctx, "docs"))
	require.NoError(t, b.CreateDir(ctx, "docs/reports"))

	info, err := b.Stat(ctx, "docs/reports")
	require.NoError(t, err)
	assert.True(t, info.IsDir)

	err = b.CreateDir(ctx, "docs")
	assert.True(t, treeerrors.HasCode(err, treeerrors.ErrDestinationExists), "got %v", err)

	err = b.CreateDir(ctx, "missing/child")
	assert.True(t, treeerrors.IsNotFoundError(err), "got %v", err)
}

func testWriteFile(t *testing.T, f Factory) {
	b, ctx := open(t, f)
	require.NoError(t, b.CreateDir(ctx, "docs"))

	require.NoError(t, b.WriteFile(ctx, "docs/a.txt", []byte("hello")))

	info, err := b.Stat(ctx, "docs/a.txt")
	require.NoError(t, err)
	assert.False(t, info.IsDir)
	assert.EqualValues(t, 5, info.Size)

	ok, err := b.Exists(ctx, "docs/a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	err = b.WriteFile(ctx, "docs/a.txt", []byte("other"))
	assert.True(t, treeerrors.HasCode(err, treeerrors.ErrDestinationExists), "got %v", err)

	info, err = b.Stat(ctx, "docs/a.txt")
	require.NoError(t, err)
	assert.EqualValues(t, 5, info.Size, "existing content must not be replaced")

	err = b.WriteFile(ctx, "nowhere/a.txt", nil)
	assert.True(t, treeerrors.IsNotFoundError(err), "got %v", err)

	require.NoError(t, b.WriteFile(ctx, "empty", nil))
	info, err = b.Stat(ctx, "empty")
	require.NoError(t, err)
	assert.Zero(t, info.Size)
}

func testRemoveFile(t *testing.T, f Factory) {
	b, ctx := open(t, f)
	require.NoError(t, b.WriteFile(ctx, "a.txt", []byte("x")))

	require.NoError(t, b.RemoveFile(ctx, "a.txt"))

	ok, err := b.Exists(ctx, "a.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	err = b.RemoveFile(ctx, "a.txt")
	assert.True(t, treeerrors.IsNotFoundError(err), "got %v", err)

	_, err = b.Stat(ctx, "a.txt")
	assert.True(t, treeerrors.IsNotFoundError(err), "got %v", err)
}

func testRemoveDirTree(t *testing.T, f Factory) {
	b, ctx := open(t, f)
	require.NoError(t, b.CreateDir(ctx, "top"))
	require.NoError(t, b.CreateDir(ctx, "top/mid"))
	require.NoError(t, b.WriteFile(ctx, "top/mid/leaf.bin", []byte{1, 2, 3}))
	require.NoError(t, b.WriteFile(ctx, "top/f.txt", []byte("f")))
	require.NoError(t, b.CreateDir(ctx, "topper"))

	require.NoError(t, b.RemoveDirTree(ctx, "top"))

	for _, p := range []string{"top", "top/mid", "top/mid/leaf.bin", "top/f.txt"} {
		ok, err := b.Exists(ctx, p)
		require.NoError(t, err)
		assert.False(t, ok, p)
	}

	ok, err := b.Exists(ctx, "topper")
	require.NoError(t, err)
	assert.True(t, ok, "sibling sharing a name prefix must survive")

	err = b.RemoveDirTree(ctx, "top")
	assert.True(t, treeerrors.IsNotFoundError(err), "got %v", err)
}

func testMove(t *testing.T, f Factory) {
	t.Run("File", func(t *testing.T) {
		b, ctx := open(t, f)
		require.NoError(t, b.CreateDir(ctx, "src"))
		require.NoError(t, b.CreateDir(ctx, "dst"))
		require.NoError(t, b.WriteFile(ctx, "src/a.txt", []byte("abc")))

		require.NoError(t, b.MoveOrRename(ctx, "src/a.txt", "dst/b.txt"))

		ok, _ := b.Exists(ctx, "src/a.txt")
		assert.False(t, ok)
		info, err := b.Stat(ctx, "dst/b.txt")
		require.NoError(t, err)
		assert.EqualValues(t, 3, info.Size)
	})

	t.Run("DirectoryTree", func(t *testing.T) {
		b, ctx := open(t, f)
		require.NoError(t, b.CreateDir(ctx, "a"))
		require.NoError(t, b.CreateDir(ctx, "a/b"))
		require.NoError(t, b.WriteFile(ctx, "a/b/c.txt", []byte("c")))
		require.NoError(t, b.CreateDir(ctx, "z"))

		require.NoError(t, b.MoveOrRename(ctx, "a", "z/a2"))

		info, err := b.Stat(ctx, "z/a2/b")
		require.NoError(t, err)
		assert.True(t, info.IsDir)
		ok, _ := b.Exists(ctx, "z/a2/b/c.txt")
		assert.True(t, ok)
		ok, _ = b.Exists(ctx, "a")
		assert.False(t, ok)
	})

	t.Run("DestinationExists", func(t *testing.T) {
		b, ctx := open(t, f)
		require.NoError(t, b.WriteFile(ctx, "a", []byte("a")))
		require.NoError(t, b.WriteFile(ctx, "b", []byte("bb")))

		err := b.MoveOrRename(ctx, "a", "b")
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrDestinationExists), "got %v", err)

		info, err := b.Stat(ctx, "b")
		require.NoError(t, err)
		assert.EqualValues(t, 2, info.Size)
	})

	t.Run("MissingSource", func(t *testing.T) {
		b, ctx := open(t, f)
		err := b.MoveOrRename(ctx, "ghost", "b")
		assert.True(t, treeerrors.IsNotFoundError(err), "got %v", err)
	})
}

func testPathValidation(t *testing.T, f Factory) {
	b, ctx := open(t, f)
	for _, p := range []string{"", "/abs", "../escape", "a/../../b", "."} {
		err := b.CreateDir(ctx, p)
		assert.True(t, treeerrors.IsValidationError(err), "path %q: got %v", p, err)
	}
}

func testClosed(t *testing.T, f Factory) {
	b := f(t)
	ctx := context.Background()
	require.NoError(t, b.Close())

	err := b.CreateDir(ctx, "x")
	assert.True(t, treeerrors.IsStorageError(err), "got %v", err)
	assert.Error(t, b.Healthcheck(ctx))
}
