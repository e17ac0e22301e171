package tree_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree/lock"
)

func TestCreateFolder(t *testing.T) {
	t.Run("RootLevel", func(t *testing.T) {
		h := newHarness(t)

		docs := h.folder("Docs", nil)

		assert.Equal(t, tree.TypeFolder, docs.Type)
		assert.Nil(t, docs.ParentID)
		assert.NotEmpty(t, docs.ID)
		assert.Equal(t, []string{"Docs/"}, h.tree())

		got, err := h.coord.GetItem(context.Background(), docs.ID)
		require.NoError(t, err)
		assert.Equal(t, "Docs", got.Name)
	})

	t.Run("Nested", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)

		sub := h.folder("Reports", docs)

		require.NotNil(t, sub.ParentID)
		assert.Equal(t, docs.ID, *sub.ParentID)
		assert.Equal(t, []string{"Docs/", "Docs/Reports/"}, h.tree())

		p, err := h.coord.Resolve(context.Background(), sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "Docs/Reports", p)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		h := newHarness(t)
		h.folder("Docs", nil)

		_, err := h.coord.CreateItem(context.Background(), "Docs", tree.TypeFolder, nil)
		require.Error(t, err)
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrNameCollision))
		assert.Equal(t, int64(1), h.count())
	})

	t.Run("InvalidNames", func(t *testing.T) {
		h := newHarness(t)
		for _, name := range []string{"", "   ", ".", "..", "a/b", tree.StagingDirName} {
			_, err := h.coord.CreateItem(context.Background(), name, tree.TypeFolder, nil)
			assert.True(t, treeerrors.HasCode(err, treeerrors.ErrInvalidArgument), "name %q: %v", name, err)
		}
		assert.Equal(t, int64(0), h.count())
		assert.Empty(t, h.tree())
	})

	t.Run("MissingParent", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.coord.CreateItem(context.Background(), "x", tree.TypeFolder, tree.ParentRef("nope"))
		assert.True(t, treeerrors.IsNotFoundError(err))
	})

	t.Run("ParentIsFile", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)
		f := h.file(docs, "a", "hello")

		_, err := h.coord.CreateItem(context.Background(), "x", tree.TypeFolder, &f.ID)
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrInvalidParent))
	})

	t.Run("BackendFailureRemovesRow", func(t *testing.T) {
		h := newHarness(t)
		h.backend.set("CreateDir", errInjected)

		_, err := h.coord.CreateItem(context.Background(), "Docs", tree.TypeFolder, nil)
		require.Error(t, err)
		assert.True(t, treeerrors.IsStorageError(err))
		assert.Equal(t, int64(0), h.count())
		assert.Equal(t, []string{"create/delete_row/ok"}, h.metrics.compensations)
	})

	t.Run("FailedCompensationIsInconsistency", func(t *testing.T) {
		h := newHarness(t)
		h.backend.set("CreateDir", errInjected)
		h.store.set("DeleteItem", errInjected)

		_, err := h.coord.CreateItem(context.Background(), "Docs", tree.TypeFolder, nil)
		require.Error(t, err)
		assert.True(t, treeerrors.IsInconsistencyError(err))
		assert.Equal(t, 1, h.metrics.inconsistencies)
		// The orphaned row is left for an operator.
		assert.Equal(t, int64(1), h.count())
	})

	t.Run("BackendTimeoutDeletesRow", func(t *testing.T) {
		cfg := tree.DefaultConfig()
		cfg.StorageTimeout = 20 * time.Millisecond
		h := newHarnessWithConfig(t, cfg)
		docs := h.folder("Docs", nil)
		h.backend.set("block", errInjected)

		_, err := h.coord.CreateItem(context.Background(), "Sub", tree.TypeFolder, &docs.ID)
		require.Error(t, err)
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrTimeout))
		assert.Equal(t, int64(1), h.count())
		assert.Equal(t, []string{"Docs/"}, h.tree())
		assert.Equal(t, []string{"create/delete_row/ok"}, h.metrics.compensations)
	})

	t.Run("StoreFailureTouchesNothing", func(t *testing.T) {
		h := newHarness(t)
		h.store.set("CreateItem", errInjected)

		_, err := h.coord.CreateItem(context.Background(), "Docs", tree.TypeFolder, nil)
		require.ErrorIs(t, err, errInjected)
		assert.Empty(t, h.tree())
		assert.Empty(t, h.metrics.compensations)
	})
}

func TestCreateFile(t *testing.T) {
	t.Run("ExtensionFromHint", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)

		f, err := h.coord.CreateFile(context.Background(), docs.ID, "a", []byte("hello world"), ".txt")
		require.NoError(t, err)

		assert.Equal(t, "a.txt", f.Name)
		assert.Equal(t, tree.TypeFile, f.Type)
		assert.Equal(t, "Docs/a.txt", f.StoredPath)
		assert.Equal(t, int64(11), f.Size)
		assert.Contains(t, f.ContentType, "text/plain")

		data, err := os.ReadFile(h.abs("Docs/a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))
	})

	t.Run("ExtensionDetected", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)
		png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

		f, err := h.coord.CreateFile(context.Background(), docs.ID, "logo", png, "")
		require.NoError(t, err)
		assert.Equal(t, "logo.png", f.Name)
		assert.Equal(t, "image/png", f.ContentType)
	})

	t.Run("ExistingExtensionKept", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)

		f, err := h.coord.CreateFile(context.Background(), docs.ID, "notes.md", []byte("# hi"), ".txt")
		require.NoError(t, err)
		assert.Equal(t, "notes.md", f.Name)
	})

	t.Run("EmptyViaCreateItem", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)

		f, err := h.coord.CreateItem(context.Background(), "empty", tree.TypeFile, &docs.ID)
		require.NoError(t, err)
		assert.Equal(t, "empty", f.Name)
		assert.Equal(t, int64(0), f.Size)
		assert.Equal(t, []string{"Docs/", "Docs/empty"}, h.tree())
	})

	t.Run("RequiresParent", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.coord.CreateItem(context.Background(), "a.txt", tree.TypeFile, nil)
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrInvalidParent))

		_, err = h.coord.CreateFile(context.Background(), "", "a.txt", []byte("x"), "")
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrInvalidParent))
	})

	t.Run("DuplicateNameWritesNothing", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)
		h.file(docs, "a", "first")

		_, err := h.coord.CreateFile(context.Background(), docs.ID, "a", []byte("second"), ".txt")
		require.Error(t, err)
		assert.True(t, treeerrors.IsValidationError(err))
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrNameCollision))

		assert.Equal(t, []string{"Docs/", "Docs/a.txt"}, h.tree())
		data, err := os.ReadFile(h.abs("Docs/a.txt"))
		require.NoError(t, err)
		assert.Equal(t, "first", string(data))
	})

	t.Run("TooLarge", func(t *testing.T) {
		cfg := tree.DefaultConfig()
		cfg.MaxUploadSize = 4
		h := newHarnessWithConfig(t, cfg)
		docs := h.folder("Docs", nil)

		_, err := h.coord.CreateFile(context.Background(), docs.ID, "a.txt", []byte("12345"), "")
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrTooLarge))
		assert.Equal(t, []string{"Docs/"}, h.tree())
	})

	t.Run("InsertFailureRemovesFile", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)
		h.store.set("CreateItem", errInjected)

		_, err := h.coord.CreateFile(context.Background(), docs.ID, "a.txt", []byte("x"), "")
		require.ErrorIs(t, err, errInjected)
		assert.Equal(t, []string{"Docs/"}, h.tree())
		assert.Equal(t, []string{"upload/remove_file/ok"}, h.metrics.compensations)
	})

	t.Run("InsertAndRemoveFailureIsInconsistency", func(t *testing.T) {
		h := newHarness(t)
		docs := h.folder("Docs", nil)
		h.store.set("CreateItem", errInjected)
		h.backend.set("RemoveFile", errInjected)

		_, err := h.coord.CreateFile(context.Background(), docs.ID, "a.txt", []byte("x"), "")
		require.Error(t, err)
		assert.True(t, treeerrors.IsInconsistencyError(err))
		assert.ErrorIs(t, err, errInjected)
		assert.Equal(t, []string{"Docs/", "Docs/a.txt"}, h.tree())
	})

	t.Run("BackendTimeout", func(t *testing.T) {
		cfg := tree.DefaultConfig()
		cfg.StorageTimeout = 20 * time.Millisecond
		h := newHarnessWithConfig(t, cfg)
		docs := h.folder("Docs", nil)
		h.backend.set("block", errInjected)

		_, err := h.coord.CreateFile(context.Background(), docs.ID, "a.txt", []byte("x"), "")
		require.Error(t, err)
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrTimeout))
		assert.Equal(t, int64(1), h.count())
	})
}

func TestConcurrentCreatesInDisjointFolders(t *testing.T) {
	h := newHarness(t)
	a := h.folder("A", nil)
	b := h.folder("B", nil)

	const perFolder = 10
	var wg sync.WaitGroup
	errs := make(chan error, 2*perFolder)
	for i := 0; i < perFolder; i++ {
		for _, parent := range []*tree.Item{a, b} {
			wg.Add(1)
			go func(parent *tree.Item, i int) {
				defer wg.Done()
				name := string(rune('a'+i)) + ".txt"
				_, err := h.coord.CreateFile(context.Background(), parent.ID, name, []byte(name), "")
				errs <- err
			}(parent, i)
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(2+2*perFolder), h.count())
}

func TestConcurrentCreatesOfSameName(t *testing.T) {
	h := newHarness(t)
	docs := h.folder("Docs", nil)

	const n = 8
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.coord.CreateFile(context.Background(), docs.ID, "same.txt", []byte("x"), "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrNameCollision), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, []string{"Docs/", "Docs/same.txt"}, h.tree())
}

func TestLockTimeoutIsConflict(t *testing.T) {
	cfg := tree.DefaultConfig()
	cfg.LockTimeout = 30 * time.Millisecond
	locks := lock.NewManager()
	h := newHarnessWithConfig(t, cfg, tree.WithLockManager(locks))
	docs := h.folder("Docs", nil)

	held, ok := locks.TryAcquire([]string{docs.ID})
	require.True(t, ok)
	defer held.Release()

	_, err := h.coord.CreateFile(context.Background(), docs.ID, "a.txt", []byte("x"), "")
	require.Error(t, err)
	assert.True(t, treeerrors.IsConflictError(err))
	assert.Equal(t, []string{"Docs/"}, h.tree())
}
