package tree

import "context"

// OrderField is a sortable item column.
type OrderField string

const (
	OrderByName      OrderField = "name"
	OrderByCreatedAt OrderField = "created_at"
	OrderByUpdatedAt OrderField = "updated_at"
)

// Query is a store-level listing request. Ties are broken by id so that
// pagination is stable.
type Query struct {
	ParentID *string
	RootOnly bool
	Search   string
	OrderBy  OrderField
	Desc     bool
	Offset   int
	Limit    int // 0 means unlimited
}

// Reader is the read side of a Store.
type Reader interface {
	// GetItem returns the item with id, or a NotFound error.
	GetItem(ctx context.Context, id string) (*Item, error)

	// FindChild returns the child of parentID (nil for root level) with the
	// given name and type, or a NotFound error.
	FindChild(ctx context.Context, parentID *string, name string, typ ItemType) (*Item, error)

	// ListChildren returns the direct children of parentID (nil for root level).
	ListChildren(ctx context.Context, parentID *string) ([]*Item, error)

	// ListItems returns one page of items matching q and the total match count.
	ListItems(ctx context.Context, q Query) ([]*Item, int64, error)
}

// Writer is the write side of a Store.
type Writer interface {
	// CreateItem inserts item. A sibling with the same name and type
	// yields a NameCollision error.
	CreateItem(ctx context.Context, item *Item) error

	// UpdateItem persists the mutable fields of item (name, parent, stored
	// path, size, content type, updated time).
	UpdateItem(ctx context.Context, item *Item) error

	// DeleteItem removes a single item without children.
	DeleteItem(ctx context.Context, id string) error

	// DeleteSubtree removes id and all of its descendants and returns the
	// number of rows removed.
	DeleteSubtree(ctx context.Context, id string) (int, error)
}

// Transaction is the view of a Store inside WithTransaction.
// It is not safe for concurrent use.
type Transaction interface {
	Reader
	Writer
}

// Transactor runs fn atomically: fn's writes are committed when it returns
// nil and rolled back otherwise. Nested transactions are not supported.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(tx Transaction) error) error
}

// Store persists the item tree. Implementations must be safe for concurrent
// use and must enforce sibling name uniqueness per type.
type Store interface {
	Reader
	Writer
	Transactor

	Healthcheck(ctx context.Context) error
	Close() error
}
