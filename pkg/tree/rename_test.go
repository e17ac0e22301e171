package tree_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree/lock"
)

func TestRenameItem(t *testing.T) {
	ctx := context.Background()

	t.Run("FileKeepsExtension", func(t *testing.T) {
		clock := newFakeClock()
		h := newHarness(t, tree.WithClock(clock.Now))
		docs := h.folder("Docs", nil)
		a := h.file(docs, "a", "hello")
		clock.Advance(time.Minute)

		got, err := h.coord.RenameItem(ctx, a.ID, "b")
		require.NoError(t, err)

		assert.Equal(t, "b.txt", got.Name)
		assert.Equal(t, "Docs/b.txt", got.StoredPath)
		assert.Equal(t, a.CreatedAt, got.CreatedAt)
		assert.True(t, got.UpdatedAt.After(a.UpdatedAt))
		assert.Equal(t, []string{"Docs/", "Docs/b.txt"}, h.tree())
	})

	t.Run("FileNewExtension", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)
		a := h.file(docs, "a", "hello")

		got, err := h.coord.RenameItem(ctx, a.ID, "a.md")
		require.NoError(t, err)
		assert.Equal(t, "a.md", got.Name)
		assert.Equal(t, []string{"Docs/", "Docs/a.md"}, h.tree())
	})

	t.Run("FolderRefreshesDescendants", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)
		sub := h.folder("Sub", docs)
		c := h.file(sub, "c", "deep")

		_, err := h.coord.RenameItem(ctx, docs.ID, "Papers")
		require.NoError(t, err)

		got, err := h.coord.GetItem(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Papers/Sub/c.txt", got.StoredPath)
		assert.Equal(t, []string{"Papers/", "Papers/Sub/", "Papers/Sub/c.txt"}, h.tree())
	})

	t.Run("SameNameIsNoop", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)
		a := h.file(docs, "a", "hello")

		got, err := h.coord.RenameItem(ctx, a.ID, "a")
		require.NoError(t, err)
		assert.Equal(t, a.UpdatedAt, got.UpdatedAt)
		assert.Equal(t, "a.txt", got.Name)
	})

	t.Run("CollisionChangesNothing", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)
		h.file(docs, "a", "first")
		b := h.file(docs, "b", "second")

		_, err := h.coord.RenameItem(ctx, b.ID, "a.txt")
		require.Error(t, err)
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrNameCollision))

		got, err := h.coord.GetItem(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "b.txt", got.Name)
		assert.Equal(t, []string{"Docs/", "Docs/a.txt", "Docs/b.txt"}, h.tree())
	})

	t.Run("InvalidName", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)

		_, err := h.coord.RenameItem(ctx, docs.ID, "a/b")
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrInvalidArgument))
	})

	t.Run("MissingItem", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.coord.RenameItem(ctx, "nope", "x")
		assert.True(t, treeerrors.IsNotFoundError(err))
	})

	t.Run("BackendFailureRollsBackRow", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)
		a := h.file(docs, "a", "hello")
		h.backend.set("MoveOrRename", errInjected)

		_, err := h.coord.RenameItem(ctx, a.ID, "b")
		require.Error(t, err)
		assert.True(t, treeerrors.IsStorageError(err))

		got, err := h.coord.GetItem(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "a.txt", got.Name)
		assert.Equal(t, "Docs/a.txt", got.StoredPath)
		assert.Empty(t, h.metrics.compensations)
	})

	t.Run("BackendTimeoutRevertsName", func(t *testing.T) {
		cfg := tree.DefaultConfig()
		cfg.StorageTimeout = 20 * time.Millisecond
		h := newHarnessWithConfig(t, cfg)
		docs := h.folder("Docs", nil)
		a := h.file(docs, "a", "hello")
		h.backend.set("block", errInjected)

		_, err := h.coord.RenameItem(ctx, a.ID, "b")
		require.Error(t, err)
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrTimeout))

		got, err := h.coord.GetItem(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "a.txt", got.Name)
		assert.Equal(t, "Docs/a.txt", got.StoredPath)
		assert.Equal(t, []string{"Docs/", "Docs/a.txt"}, h.tree())
	})

	t.Run("RootLevelWaitsForRootCreates", func(t *testing.T) {
		cfg := tree.DefaultConfig()
		cfg.LockTimeout = 30 * time.Millisecond
		locks := lock.NewManager()
		h := newHarnessWithConfig(t, cfg, tree.WithLockManager(locks))
		docs := h.folder("Docs", nil)
		sub := h.folder("Sub", docs)

		held, ok := locks.TryAcquire(lock.RootKey)
		require.True(t, ok)
		defer held.Release()

		_, err := h.coord.RenameItem(ctx, docs.ID, "Papers")
		require.Error(t, err)
		assert.True(t, treeerrors.IsConflictError(err))

		// Nested items do not share the root scope.
		_, err = h.coord.RenameItem(ctx, sub.ID, "Inner")
		require.NoError(t, err)
		assert.Equal(t, []string{"Docs/", "Docs/Inner/"}, h.tree())
	})

	t.Run("CommitFailureMovesBack", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)
		a := h.file(docs, "a", "hello")
		h.store.set("commit", errInjected)

		_, err := h.coord.RenameItem(ctx, a.ID, "b")
		require.ErrorIs(t, err, errInjected)

		assert.Equal(t, []string{"Docs/", "Docs/a.txt"}, h.tree())
		assert.Equal(t, []string{"rename/move_back/ok"}, h.metrics.compensations)
	})

	t.Run("FailedMoveBackIsInconsistency", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)
		a := h.file(docs, "a", "hello")
		h.store.set("commit", errInjected)
		h.backend.setAfter("MoveOrRename", 1, errInjected)

		_, err := h.coord.RenameItem(ctx, a.ID, "b")
		require.Error(t, err)
		assert.True(t, treeerrors.IsInconsistencyError(err))
		assert.Equal(t, 1, h.metrics.inconsistencies)

		got, err := h.coord.GetItem(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "a.txt", got.Name)
		assert.Equal(t, []string{"Docs/", "Docs/b.txt"}, h.tree())
	})

	t.Run("LineageChangedWhileWaiting", func(t *testing.T) {
		locks := lock.NewManager()
		h := newHarness(t, tree.WithLockManager(locks))
		docs := h.folder("Docs", nil)
		archive := h.folder("Archive", nil)
		a := h.file(docs, "a", "hello")

		held, ok := locks.TryAcquire([]string{docs.ID})
		require.True(t, ok)

		errc := make(chan error, 1)
		go func() {
			_, err := h.coord.RenameItem(ctx, a.ID, "b")
			errc <- err
		}()
		time.Sleep(50 * time.Millisecond)

		// Re-parent the row behind the coordinator's back.
		require.NoError(t, h.store.Store.WithTransaction(ctx, func(tx tree.Transaction) error {
			moved := a.Clone()
			moved.ParentID = tree.ParentRef(archive.ID)
			return tx.UpdateItem(ctx, moved)
		}))
		held.Release()

		err := <-errc
		require.Error(t, err)
		assert.True(t, treeerrors.IsConflictError(err))
	})
}
