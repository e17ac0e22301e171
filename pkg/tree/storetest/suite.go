// Package storetest is a conformance suite for tree.Store implementations.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

// StoreFactory returns a fresh, empty store. The suite closes it.
type StoreFactory func(t *testing.T) tree.Store

// RunConformanceSuite runs every conformance test against factory.
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, factory) })
	t.Run("SiblingUniqueness", func(t *testing.T) { testSiblingUniqueness(t, factory) })
	t.Run("ParentMustExist", func(t *testing.T) { testParentMustExist(t, factory) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, factory) })
	t.Run("DeleteItem", func(t *testing.T) { testDeleteItem(t, factory) })
	t.Run("DeleteSubtree", func(t *testing.T) { testDeleteSubtree(t, factory) })
	t.Run("FindChild", func(t *testing.T) { testFindChild(t, factory) })
	t.Run("ListItems", func(t *testing.T) { testListItems(t, factory) })
	t.Run("TransactionRollback", func(t *testing.T) { testTransactionRollback(t, factory) })
	t.Run("TransactionSeesOwnWrites", func(t *testing.T) { testTransactionSeesOwnWrites(t, factory) })
}

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func open(t *testing.T, factory StoreFactory) (tree.Store, context.Context) {
	t.Helper()
	s := factory(t)
	t.Cleanup(func() { _ = s.Close() })
	return s, context.Background()
}

// mk inserts an item and returns it. offset orders timestamps.
func mk(t *testing.T, s tree.Store, name string, typ tree.ItemType, parent *tree.Item, offset int) *tree.Item {
	t.Helper()
	it := &tree.Item{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      typ,
		CreatedAt: base.Add(time.Duration(offset) * time.Minute),
		UpdatedAt: base.Add(time.Duration(offset) * time.Minute),
	}
	if parent != nil {
		it.ParentID = tree.ParentRef(parent.ID)
	}
	if typ == tree.TypeFile {
		it.StoredPath = name
		it.Size = int64(len(name))
		it.ContentType = "text/plain"
	}
	require.NoError(t, s.CreateItem(context.Background(), it))
	return it
}

func testCreateAndGet(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)

	root := mk(t, s, "docs", tree.TypeFolder, nil, 0)
	file := mk(t, s, "a.txt", tree.TypeFile, root, 1)

	got, err := s.GetItem(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", got.Name)
	assert.Equal(t, tree.TypeFile, got.Type)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, root.ID, *got.ParentID)
	assert.Equal(t, "a.txt", got.StoredPath)
	assert.EqualValues(t, 5, got.Size)
	assert.Equal(t, "text/plain", got.ContentType)
	assert.True(t, got.CreatedAt.Equal(file.CreatedAt), "created_at %v != %v", got.CreatedAt, file.CreatedAt)

	gotRoot, err := s.GetItem(ctx, root.ID)
	require.NoError(t, err)
	assert.Nil(t, gotRoot.ParentID)

	_, err = s.GetItem(ctx, uuid.NewString())
	assert.True(t, treeerrors.IsNotFoundError(err), "got %v", err)

	require.NoError(t, s.Healthcheck(ctx))
}

func testSiblingUniqueness(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)

	root := mk(t, s, "docs", tree.TypeFolder, nil, 0)
	mk(t, s, "x", tree.TypeFile, root, 1)

	// Same name, other type: allowed.
	mk(t, s, "x", tree.TypeFolder, root, 2)

	// Same name and type under another parent: allowed.
	other := mk(t, s, "other", tree.TypeFolder, nil, 3)
	mk(t, s, "x", tree.TypeFile, other, 4)

	dup := &tree.Item{ID: uuid.NewString(), Name: "x", Type: tree.TypeFile, ParentID: tree.ParentRef(root.ID), CreatedAt: base, UpdatedAt: base}
	err := s.CreateItem(ctx, dup)
	assert.True(t, treeerrors.HasCode(err, treeerrors.ErrNameCollision), "got %v", err)

	// Root level is a namespace of its own.
	rootDup := &tree.Item{ID: uuid.NewString(), Name: "docs", Type: tree.TypeFolder, CreatedAt: base, UpdatedAt: base}
	err = s.CreateItem(ctx, rootDup)
	assert.True(t, treeerrors.HasCode(err, treeerrors.ErrNameCollision), "got %v", err)
}

func testParentMustExist(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)

	orphan := &tree.Item{ID: uuid.NewString(), Name: "o", Type: tree.TypeFolder, ParentID: tree.ParentRef(uuid.NewString()), CreatedAt: base, UpdatedAt: base}
	err := s.CreateItem(ctx, orphan)
	require.Error(t, err)

	_, err = s.GetItem(ctx, orphan.ID)
	assert.True(t, treeerrors.IsNotFoundError(err))
}

func testUpdate(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)

	a := mk(t, s, "a", tree.TypeFolder, nil, 0)
	b := mk(t, s, "b", tree.TypeFolder, nil, 1)
	f := mk(t, s, "f.txt", tree.TypeFile, a, 2)
	mk(t, s, "taken.txt", tree.TypeFile, b, 3)

	f.Name = "g.txt"
	f.ParentID = tree.ParentRef(b.ID)
	f.StoredPath = "b/g.txt"
	f.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, s.UpdateItem(ctx, f))

	got, err := s.GetItem(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, "g.txt", got.Name)
	assert.Equal(t, b.ID, got.Parent())
	assert.Equal(t, "b/g.txt", got.StoredPath)
	assert.True(t, got.UpdatedAt.Equal(f.UpdatedAt))
	assert.True(t, got.CreatedAt.Equal(base.Add(2*time.Minute)))

	f.Name = "taken.txt"
	err = s.UpdateItem(ctx, f)
	assert.True(t, treeerrors.HasCode(err, treeerrors.ErrNameCollision), "got %v", err)

	ghost := &tree.Item{ID: uuid.NewString(), Name: "g", Type: tree.TypeFolder}
	err = s.UpdateItem(ctx, ghost)
	assert.True(t, treeerrors.IsNotFoundError(err), "got %v", err)
}

func testDeleteItem(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)

	root := mk(t, s, "root", tree.TypeFolder, nil, 0)
	f := mk(t, s, "f", tree.TypeFile, root, 1)

	assert.Error(t, s.DeleteItem(ctx, root.ID), "folder with children must not be deleted singly")

	require.NoError(t, s.DeleteItem(ctx, f.ID))
	_, err := s.GetItem(ctx, f.ID)
	assert.True(t, treeerrors.IsNotFoundError(err))

	err = s.DeleteItem(ctx, f.ID)
	assert.True(t, treeerrors.IsNotFoundError(err), "got %v", err)

	require.NoError(t, s.DeleteItem(ctx, root.ID))
}

func testDeleteSubtree(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)

	top := mk(t, s, "top", tree.TypeFolder, nil, 0)
	mid := mk(t, s, "mid", tree.TypeFolder, top, 1)
	mk(t, s, "leaf1", tree.TypeFile, mid, 2)
	mk(t, s, "leaf2", tree.TypeFile, mid, 3)
	mk(t, s, "f", tree.TypeFile, top, 4)
	keep := mk(t, s, "keep", tree.TypeFolder, nil, 5)

	n, err := s.DeleteSubtree(ctx, top.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	items, total, err := s.ListItems(ctx, tree.Query{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].ID)

	_, err = s.DeleteSubtree(ctx, top.ID)
	assert.True(t, treeerrors.IsNotFoundError(err), "got %v", err)
}

func testFindChild(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)

	root := mk(t, s, "r", tree.TypeFolder, nil, 0)
	f := mk(t, s, "same", tree.TypeFile, root, 1)
	d := mk(t, s, "same", tree.TypeFolder, root, 2)

	got, err := s.FindChild(ctx, &root.ID, "same", tree.TypeFile)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)

	got, err = s.FindChild(ctx, &root.ID, "same", tree.TypeFolder)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)

	got, err = s.FindChild(ctx, nil, "r", tree.TypeFolder)
	require.NoError(t, err)
	assert.Equal(t, root.ID, got.ID)

	_, err = s.FindChild(ctx, nil, "same", tree.TypeFile)
	assert.True(t, treeerrors.IsNotFoundError(err))

	children, err := s.ListChildren(ctx, &root.ID)
	require.NoError(t, err)
	assert.Len(t, children, 2)

	rootLevel, err := s.ListChildren(ctx, nil)
	require.NoError(t, err)
	require.Len(t, rootLevel, 1)
	assert.Equal(t, root.ID, rootLevel[0].ID)
}

func names(items []*tree.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func testListItems(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)

	docs := mk(t, s, "Docs", tree.TypeFolder, nil, 0)
	mk(t, s, "beta.txt", tree.TypeFile, docs, 3)
	mk(t, s, "Alpha.txt", tree.TypeFile, docs, 1)
	mk(t, s, "gamma_report.pdf", tree.TypeFile, docs, 2)
	mk(t, s, "music", tree.TypeFolder, nil, 4)
	mk(t, s, "100%.txt", tree.TypeFile, docs, 5)

	t.Run("ByParentOrderedByName", func(t *testing.T) {
		items, total, err := s.ListItems(ctx, tree.Query{ParentID: &docs.ID, OrderBy: tree.OrderByName})
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		assert.Equal(t, []string{"100%.txt", "Alpha.txt", "beta.txt", "gamma_report.pdf"}, names(items))
	})

	t.Run("RootOnly", func(t *testing.T) {
		items, total, err := s.ListItems(ctx, tree.Query{RootOnly: true, OrderBy: tree.OrderByName})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Equal(t, []string{"Docs", "music"}, names(items))
	})

	t.Run("AllItems", func(t *testing.T) {
		_, total, err := s.ListItems(ctx, tree.Query{})
		require.NoError(t, err)
		assert.EqualValues(t, 6, total)
	})

	t.Run("SearchIsCaseInsensitive", func(t *testing.T) {
		items, _, err := s.ListItems(ctx, tree.Query{Search: "ALPHA", OrderBy: tree.OrderByName})
		require.NoError(t, err)
		assert.Equal(t, []string{"Alpha.txt"}, names(items))
	})

	t.Run("SearchTreatsWildcardsLiterally", func(t *testing.T) {
		items, _, err := s.ListItems(ctx, tree.Query{Search: "%", OrderBy: tree.OrderByName})
		require.NoError(t, err)
		assert.Equal(t, []string{"100%.txt"}, names(items))

		items, _, err = s.ListItems(ctx, tree.Query{Search: "_r", OrderBy: tree.OrderByName})
		require.NoError(t, err)
		assert.Equal(t, []string{"gamma_report.pdf"}, names(items))
	})

	t.Run("OrderByCreatedDesc", func(t *testing.T) {
		items, _, err := s.ListItems(ctx, tree.Query{ParentID: &docs.ID, OrderBy: tree.OrderByCreatedAt, Desc: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"100%.txt", "beta.txt", "gamma_report.pdf", "Alpha.txt"}, names(items))
	})

	t.Run("Pagination", func(t *testing.T) {
		q := tree.Query{ParentID: &docs.ID, OrderBy: tree.OrderByCreatedAt, Limit: 3}
		first, total, err := s.ListItems(ctx, q)
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		assert.Equal(t, []string{"Alpha.txt", "gamma_report.pdf", "beta.txt"}, names(first))

		q.Offset = 3
		second, total, err := s.ListItems(ctx, q)
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		assert.Equal(t, []string{"100%.txt"}, names(second))

		q.Offset = 10
		past, total, err := s.ListItems(ctx, q)
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		assert.Empty(t, past)
	})
}

func testTransactionRollback(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)
	root := mk(t, s, "root", tree.TypeFolder, nil, 0)

	boom := errors.New("boom")
	err := s.WithTransaction(ctx, func(tx tree.Transaction) error {
		child := &tree.Item{ID: uuid.NewString(), Name: "c", Type: tree.TypeFolder, ParentID: &root.ID, CreatedAt: base, UpdatedAt: base}
		if err := tx.CreateItem(ctx, child); err != nil {
			return err
		}
		root.Name = "renamed"
		if err := tx.UpdateItem(ctx, root); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetItem(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, "root", got.Name)

	children, err := s.ListChildren(ctx, &root.ID)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func testTransactionSeesOwnWrites(t *testing.T, factory StoreFactory) {
	s, ctx := open(t, factory)
	root := mk(t, s, "root", tree.TypeFolder, nil, 0)

	err := s.WithTransaction(ctx, func(tx tree.Transaction) error {
		root.Name = "renamed"
		root.UpdatedAt = base.Add(time.Hour)
		if err := tx.UpdateItem(ctx, root); err != nil {
			return err
		}
		got, err := tx.GetItem(ctx, root.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, "renamed", got.Name)
		return nil
	})
	require.NoError(t, err)

	got, err := s.GetItem(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
}
