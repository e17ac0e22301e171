package tree

import (
	"context"
	"strings"

	"github.com/SankareshwaranS/FileManagementSystem/internal/telemetry"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

// GetItem returns the item with the given id.
func (c *Coordinator) GetItem(ctx context.Context, id string) (item *Item, err error) {
	ctx, done := c.begin(ctx, OpGet, telemetry.ItemID(id))
	defer func() { done(err) }()

	return c.store.GetItem(ctx, id)
}

// ListContents returns one page of items. With ParentID set the page holds
// the folder's direct children, and a ParentID that is not a folder is
// NotFound. Without it the page holds root-level items when RootOnly is set,
// and every item otherwise.
func (c *Coordinator) ListContents(ctx context.Context, opts ListOptions) (page *Page, err error) {
	ctx, done := c.begin(ctx, OpList)
	defer func() { done(err) }()

	orderBy, desc, err := ParseOrdering(opts.Ordering)
	if err != nil {
		return nil, err
	}

	pageNum := opts.Page
	switch {
	case pageNum < 0:
		return nil, treeerrors.NewInvalidArgumentError("page must be at least 1")
	case pageNum == 0:
		pageNum = 1
	}

	size := opts.PageSize
	switch {
	case size < 0:
		return nil, treeerrors.NewInvalidArgumentError("page size must be positive")
	case size == 0:
		size = c.cfg.DefaultPageSize
	case size > c.cfg.MaxPageSize:
		size = c.cfg.MaxPageSize
	}

	if opts.ParentID != nil {
		parent, err := c.store.GetItem(ctx, *opts.ParentID)
		if err != nil || !parent.IsFolder() {
			if err == nil || treeerrors.IsNotFoundError(err) {
				return nil, treeerrors.NewNotFoundError("folder", *opts.ParentID)
			}
			return nil, err
		}
	}

	items, total, err := c.store.ListItems(ctx, Query{
		ParentID: opts.ParentID,
		RootOnly: opts.RootOnly,
		Search:   strings.TrimSpace(opts.Search),
		OrderBy:  orderBy,
		Desc:     desc,
		Offset:   (pageNum - 1) * size,
		Limit:    size,
	})
	if err != nil {
		return nil, err
	}

	return &Page{Items: items, Total: total, Page: pageNum, PageSize: size}, nil
}

// ParseOrdering parses "name", "created_at" or "updated_at", optionally
// prefixed with "-" for descending order. Empty means ascending by name.
func ParseOrdering(s string) (OrderField, bool, error) {
	s = strings.TrimSpace(s)
	desc := strings.HasPrefix(s, "-")
	field := strings.TrimPrefix(s, "-")

	switch OrderField(field) {
	case "":
		if desc {
			break
		}
		return OrderByName, false, nil
	case OrderByName, OrderByCreatedAt, OrderByUpdatedAt:
		return OrderField(field), desc, nil
	}
	return "", false, treeerrors.NewInvalidArgumentError("invalid ordering %q: use name, created_at or updated_at", s)
}
