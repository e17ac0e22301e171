// Package memory provides an in-memory tree.Store for tests and ephemeral
// deployments. Transactions run against a copy of the item map that replaces
// the live map on commit, so a failed transaction leaves no trace.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

var errClosed = errors.New("memory store is closed")

// Store is a map-backed tree.Store.
type Store struct {
	// writeMu serializes writers so a transaction's snapshot cannot be
	// invalidated by a concurrent commit.
	writeMu sync.Mutex

	mu     sync.RWMutex
	items  map[string]*tree.Item
	closed bool
}

// New returns an empty store.
func New() *Store {
	return &Store{items: make(map[string]*tree.Item)}
}

// snapshot returns a read-only view of the committed items. Published maps
// are never mutated, so the view needs no further locking.
func (s *Store) snapshot() (*state, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed
	}
	return &state{items: s.items}, nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*tree.Item, error) {
	st, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return st.GetItem(ctx, id)
}

func (s *Store) FindChild(ctx context.Context, parentID *string, name string, typ tree.ItemType) (*tree.Item, error) {
	st, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return st.FindChild(ctx, parentID, name, typ)
}

func (s *Store) ListChildren(ctx context.Context, parentID *string) ([]*tree.Item, error) {
	st, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return st.ListChildren(ctx, parentID)
}

func (s *Store) ListItems(ctx context.Context, q tree.Query) ([]*tree.Item, int64, error) {
	st, err := s.snapshot()
	if err != nil {
		return nil, 0, err
	}
	return st.ListItems(ctx, q)
}

func (s *Store) CreateItem(ctx context.Context, item *tree.Item) error {
	return s.WithTransaction(ctx, func(tx tree.Transaction) error {
		return tx.CreateItem(ctx, item)
	})
}

func (s *Store) UpdateItem(ctx context.Context, item *tree.Item) error {
	return s.WithTransaction(ctx, func(tx tree.Transaction) error {
		return tx.UpdateItem(ctx, item)
	})
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	return s.WithTransaction(ctx, func(tx tree.Transaction) error {
		return tx.DeleteItem(ctx, id)
	})
}

func (s *Store) DeleteSubtree(ctx context.Context, id string) (int, error) {
	var n int
	err := s.WithTransaction(ctx, func(tx tree.Transaction) error {
		var err error
		n, err = tx.DeleteSubtree(ctx, id)
		return err
	})
	return n, err
}

// WithTransaction runs fn on a private copy of the items and publishes the
// copy only when fn returns nil.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx tree.Transaction) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return errClosed
	}
	work := make(map[string]*tree.Item, len(s.items))
	for id, it := range s.items {
		work[id] = it
	}
	s.mu.RUnlock()

	if err := fn(&state{items: work, writable: true}); err != nil {
		return err
	}

	s.mu.Lock()
	s.items = work
	s.mu.Unlock()
	return nil
}

func (s *Store) Healthcheck(ctx context.Context) error {
	_, err := s.snapshot()
	return err
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// state implements tree.Transaction over a map. Stored items are never
// mutated in place; writers replace map entries with fresh clones so that
// the map captured by an older snapshot stays unchanged.
type state struct {
	items    map[string]*tree.Item
	writable bool
}

func (st *state) GetItem(_ context.Context, id string) (*tree.Item, error) {
	it, ok := st.items[id]
	if !ok {
		return nil, treeerrors.NewNotFoundError("item", id)
	}
	return it.Clone(), nil
}

func (st *state) FindChild(_ context.Context, parentID *string, name string, typ tree.ItemType) (*tree.Item, error) {
	for _, it := range st.items {
		if it.Name == name && it.Type == typ && tree.SameParent(it.ParentID, parentID) {
			return it.Clone(), nil
		}
	}
	return nil, treeerrors.NewNotFoundError("item", name)
}

func (st *state) ListChildren(_ context.Context, parentID *string) ([]*tree.Item, error) {
	var out []*tree.Item
	for _, it := range st.items {
		if tree.SameParent(it.ParentID, parentID) {
			out = append(out, it.Clone())
		}
	}
	sortItems(out, tree.OrderByName, false)
	return out, nil
}

func (st *state) ListItems(_ context.Context, q tree.Query) ([]*tree.Item, int64, error) {
	search := strings.ToLower(q.Search)

	var matched []*tree.Item
	for _, it := range st.items {
		switch {
		case q.ParentID != nil:
			if !tree.SameParent(it.ParentID, q.ParentID) {
				continue
			}
		case q.RootOnly:
			if it.ParentID != nil {
				continue
			}
		}
		if search != "" && !strings.Contains(strings.ToLower(it.Name), search) {
			continue
		}
		matched = append(matched, it)
	}

	sortItems(matched, q.OrderBy, q.Desc)

	total := int64(len(matched))
	start := min(q.Offset, len(matched))
	end := len(matched)
	if q.Limit > 0 {
		end = min(start+q.Limit, len(matched))
	}

	out := make([]*tree.Item, 0, end-start)
	for _, it := range matched[start:end] {
		out = append(out, it.Clone())
	}
	return out, total, nil
}

func (st *state) CreateItem(_ context.Context, item *tree.Item) error {
	if !st.writable {
		return errors.New("read-only view")
	}
	if item.ID == "" {
		return treeerrors.NewInvalidArgumentError("item id is required")
	}
	if _, ok := st.items[item.ID]; ok {
		return treeerrors.NewInvalidArgumentError("item %s already exists", item.ID)
	}
	if err := st.checkParent(item); err != nil {
		return err
	}
	if err := st.checkUnique(item); err != nil {
		return err
	}
	st.items[item.ID] = item.Clone()
	return nil
}

func (st *state) UpdateItem(_ context.Context, item *tree.Item) error {
	if !st.writable {
		return errors.New("read-only view")
	}
	cur, ok := st.items[item.ID]
	if !ok {
		return treeerrors.NewNotFoundError("item", item.ID)
	}
	if cur.Type != item.Type {
		return treeerrors.NewInvalidArgumentError("item type is immutable")
	}
	if err := st.checkParent(item); err != nil {
		return err
	}
	if err := st.checkUnique(item); err != nil {
		return err
	}
	next := item.Clone()
	next.CreatedAt = cur.CreatedAt
	st.items[item.ID] = next
	return nil
}

func (st *state) DeleteItem(_ context.Context, id string) error {
	if !st.writable {
		return errors.New("read-only view")
	}
	if _, ok := st.items[id]; !ok {
		return treeerrors.NewNotFoundError("item", id)
	}
	for _, it := range st.items {
		if it.ParentID != nil && *it.ParentID == id {
			return treeerrors.NewInvalidArgumentError("item %s has children", id)
		}
	}
	delete(st.items, id)
	return nil
}

func (st *state) DeleteSubtree(_ context.Context, id string) (int, error) {
	if !st.writable {
		return 0, errors.New("read-only view")
	}
	if _, ok := st.items[id]; !ok {
		return 0, treeerrors.NewNotFoundError("item", id)
	}

	children := make(map[string][]string)
	for _, it := range st.items {
		if it.ParentID != nil {
			children[*it.ParentID] = append(children[*it.ParentID], it.ID)
		}
	}

	var doomed []string
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		doomed = append(doomed, cur)
		queue = append(queue, children[cur]...)
	}
	for _, d := range doomed {
		delete(st.items, d)
	}
	return len(doomed), nil
}

// checkParent mirrors the foreign key of the SQL schema.
func (st *state) checkParent(item *tree.Item) error {
	if item.ParentID == nil {
		return nil
	}
	if _, ok := st.items[*item.ParentID]; !ok {
		return treeerrors.NewNotFoundError("parent folder", *item.ParentID)
	}
	return nil
}

// checkUnique mirrors the (parent, type, name) unique index of the SQL schema.
func (st *state) checkUnique(item *tree.Item) error {
	for _, it := range st.items {
		if it.ID != item.ID && it.Name == item.Name && it.Type == item.Type && tree.SameParent(it.ParentID, item.ParentID) {
			return treeerrors.NewNameCollisionError(item.Name, string(item.Type))
		}
	}
	return nil
}

func sortItems(items []*tree.Item, by tree.OrderField, desc bool) {
	less := func(a, b *tree.Item) int {
		switch by {
		case tree.OrderByCreatedAt:
			return a.CreatedAt.Compare(b.CreatedAt)
		case tree.OrderByUpdatedAt:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			return strings.Compare(a.Name, b.Name)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		c := less(items[i], items[j])
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return items[i].ID < items[j].ID
	})
}

var _ tree.Store = (*Store)(nil)
