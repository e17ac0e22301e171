package tree

import (
	"context"
	"strings"

	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

// DefaultMaxDepth bounds parent-chain walks. A longer chain can only come
// from a cycle in stored data.
const DefaultMaxDepth = 1024

// Lineage is the ancestor chain of an item, ordered root to item.
type Lineage struct {
	IDs   []string
	Names []string
}

// Path joins the names into a backend-relative path.
func (l Lineage) Path() string { return strings.Join(l.Names, "/") }

// Contains reports whether id appears in the chain.
func (l Lineage) Contains(id string) bool {
	for _, x := range l.IDs {
		if x == id {
			return true
		}
	}
	return false
}

// Equal reports whether both chains name the same items in the same order.
func (l Lineage) Equal(o Lineage) bool {
	if len(l.IDs) != len(o.IDs) {
		return false
	}
	for i := range l.IDs {
		if l.IDs[i] != o.IDs[i] || l.Names[i] != o.Names[i] {
			return false
		}
	}
	return true
}

// PathResolver derives backend paths from the parent chain. It never caches,
// so results always reflect the Reader it is given (a transaction sees its
// own uncommitted renames).
type PathResolver struct {
	maxDepth int
}

// NewPathResolver returns a resolver refusing chains deeper than maxDepth.
func NewPathResolver(maxDepth int) *PathResolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &PathResolver{maxDepth: maxDepth}
}

// Lineage walks from item to the root. A missing ancestor or an over-long
// chain is an Inconsistency: the store violated the tree invariants.
func (r *PathResolver) Lineage(ctx context.Context, rd Reader, item *Item) (Lineage, error) {
	var (
		ids   []string
		names []string
		seen  = make(map[string]struct{})
		cur   = item
	)
	for {
		if _, dup := seen[cur.ID]; dup {
			return Lineage{}, treeerrors.NewInternalInconsistencyError(item.ID, "cycle in parent chain")
		}
		seen[cur.ID] = struct{}{}
		ids = append(ids, cur.ID)
		names = append(names, cur.Name)

		if cur.ParentID == nil {
			break
		}
		if len(ids) >= r.maxDepth {
			return Lineage{}, treeerrors.NewInternalInconsistencyError(item.ID, "parent chain exceeds maximum depth")
		}

		parent, err := rd.GetItem(ctx, *cur.ParentID)
		if err != nil {
			if treeerrors.IsNotFoundError(err) {
				return Lineage{}, treeerrors.NewInternalInconsistencyError(cur.ID, "dangling parent reference "+*cur.ParentID)
			}
			return Lineage{}, err
		}
		if !parent.IsFolder() {
			return Lineage{}, treeerrors.NewInternalInconsistencyError(cur.ID, "parent is not a folder")
		}
		cur = parent
	}

	reverse(ids)
	reverse(names)
	return Lineage{IDs: ids, Names: names}, nil
}

// Resolve returns the derived backend path of item.
func (r *PathResolver) Resolve(ctx context.Context, rd Reader, item *Item) (string, error) {
	l, err := r.Lineage(ctx, rd, item)
	if err != nil {
		return "", err
	}
	return l.Path(), nil
}

// ResolveID loads id and resolves its lineage.
func (r *PathResolver) ResolveID(ctx context.Context, rd Reader, id string) (*Item, Lineage, error) {
	item, err := rd.GetItem(ctx, id)
	if err != nil {
		return nil, Lineage{}, err
	}
	l, err := r.Lineage(ctx, rd, item)
	if err != nil {
		return nil, Lineage{}, err
	}
	return item, l, nil
}

// ChildPath returns the path of name inside parentPath ("" is the root).
func ChildPath(parentPath, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + "/" + name
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
