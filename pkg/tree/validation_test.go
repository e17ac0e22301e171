package tree_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree/store/memory"
)

func TestValidateName(t *testing.T) {
	valid := []string{"a", "Docs", "report.final.pdf", ".env", "ünïcödé", "with space"}
	for _, name := range valid {
		assert.NoError(t, tree.ValidateName(name), name)
	}

	invalid := []string{"", " ", ".", "..", "a/b", `a\b`, "a\x00b", "\xff", tree.StagingDirName,
		strings.Repeat("x", tree.MaxNameLength+1)}
	for _, name := range invalid {
		err := tree.ValidateName(name)
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrInvalidArgument), "%q: %v", name, err)
	}
}

func TestExt(t *testing.T) {
	assert.Equal(t, ".txt", tree.Ext("a.txt"))
	assert.Equal(t, ".gz", tree.Ext("a.tar.gz"))
	assert.Equal(t, "", tree.Ext("a"))
	assert.Equal(t, "", tree.Ext(".env"))
}

func TestLineage(t *testing.T) {
	l := tree.Lineage{IDs: []string{"1", "2"}, Names: []string{"Docs", "a.txt"}}

	assert.Equal(t, "Docs/a.txt", l.Path())
	assert.True(t, l.Contains("1"))
	assert.False(t, l.Contains("3"))
	assert.True(t, l.Equal(tree.Lineage{IDs: []string{"1", "2"}, Names: []string{"Docs", "a.txt"}}))
	assert.False(t, l.Equal(tree.Lineage{IDs: []string{"1", "2"}, Names: []string{"Docs", "b.txt"}}))
	assert.False(t, l.Equal(tree.Lineage{IDs: []string{"1"}, Names: []string{"Docs"}}))

	assert.Equal(t, "a", tree.ChildPath("", "a"))
	assert.Equal(t, "Docs/a", tree.ChildPath("Docs", "a"))
}

func TestPathResolver(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	docs := &tree.Item{ID: "d", Name: "Docs", Type: tree.TypeFolder}
	sub := &tree.Item{ID: "s", Name: "Sub", Type: tree.TypeFolder, ParentID: tree.ParentRef("d")}
	file := &tree.Item{ID: "f", Name: "c.txt", Type: tree.TypeFile, ParentID: tree.ParentRef("s"), StoredPath: "Docs/Sub/c.txt"}
	require.NoError(t, s.WithTransaction(ctx, func(tx tree.Transaction) error {
		for _, it := range []*tree.Item{docs, sub, file} {
			if err := tx.CreateItem(ctx, it); err != nil {
				return err
			}
		}
		return nil
	}))

	t.Run("Resolve", func(t *testing.T) {
		r := tree.NewPathResolver(0)
		item, l, err := r.ResolveID(ctx, s, "f")
		require.NoError(t, err)
		assert.Equal(t, "c.txt", item.Name)
		assert.Equal(t, []string{"d", "s", "f"}, l.IDs)
		assert.Equal(t, "Docs/Sub/c.txt", l.Path())
	})

	t.Run("DepthLimit", func(t *testing.T) {
		r := tree.NewPathResolver(2)
		_, err := r.Resolve(ctx, s, file)
		assert.True(t, treeerrors.IsInconsistencyError(err))
	})

	t.Run("TransactionSeesOwnRename", func(t *testing.T) {
		r := tree.NewPathResolver(0)
		err := s.WithTransaction(ctx, func(tx tree.Transaction) error {
			renamed := docs.Clone()
			renamed.Name = "Papers"
			require.NoError(t, tx.UpdateItem(ctx, renamed))

			p, err := r.Resolve(ctx, tx, file)
			require.NoError(t, err)
			assert.Equal(t, "Papers/Sub/c.txt", p)
			return errInjected
		})
		require.ErrorIs(t, err, errInjected)

		p, err := r.Resolve(ctx, s, file)
		require.NoError(t, err)
		assert.Equal(t, "Docs/Sub/c.txt", p)
	})
}

func TestValidator(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	docs := h.folder("Docs", nil)
	sub := h.folder("Sub", docs)
	a := h.file(docs, "a", "x")
	v := tree.NewValidator(tree.NewPathResolver(0))

	t.Run("CreateReturnsParent", func(t *testing.T) {
		parent, err := v.ValidateCreate(ctx, h.store, "b.txt", tree.TypeFile, &docs.ID)
		require.NoError(t, err)
		assert.Equal(t, docs.ID, parent.ID)

		parent, err = v.ValidateCreate(ctx, h.store, "Root", tree.TypeFolder, nil)
		require.NoError(t, err)
		assert.Nil(t, parent)
	})

	t.Run("CreateRejects", func(t *testing.T) {
		_, err := v.ValidateCreate(ctx, h.store, "x", tree.ItemType("link"), nil)
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrInvalidArgument))

		_, err = v.ValidateCreate(ctx, h.store, "a.txt", tree.TypeFile, &docs.ID)
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrNameCollision))

		// Same name with a different type is allowed.
		_, err = v.ValidateCreate(ctx, h.store, "a.txt", tree.TypeFolder, &docs.ID)
		assert.NoError(t, err)
	})

	t.Run("RenameToSelfIsAllowed", func(t *testing.T) {
		assert.NoError(t, v.ValidateRename(ctx, h.store, a, "a.txt"))
	})

	t.Run("MoveIntoDescendant", func(t *testing.T) {
		_, err := v.ValidateMove(ctx, h.store, docs, sub.ID)
		assert.True(t, treeerrors.HasCode(err, treeerrors.ErrCycle))
	})

	t.Run("MoveFileIntoSubfolder", func(t *testing.T) {
		dest, err := v.ValidateMove(ctx, h.store, a, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, sub.ID, dest.ID)
	})
}
