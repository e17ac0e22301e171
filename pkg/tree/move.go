package tree

import (
	"context"

	"github.com/SankareshwaranS/FileManagementSystem/internal/logger"
	"github.com/SankareshwaranS/FileManagementSystem/internal/telemetry"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

// MoveItem re-parents the item under the folder newParentID.
//
// The backend object moves first. The row follows in a transaction; if that
// fails the object is moved back, and a failed move-back is an Inconsistency.
func (c *Coordinator) MoveItem(ctx context.Context, id, newParentID string) (item *Item, err error) {
	ctx, done := c.begin(ctx, OpMove, telemetry.ItemID(id), telemetry.ParentID(newParentID))
	defer func() { done(err) }()

	item, lineage, err := c.resolver.ResolveID(ctx, c.store, id)
	if err != nil {
		return nil, err
	}
	if newParentID == "" {
		return nil, treeerrors.NewInvalidParentError("", "destination folder is required")
	}
	if item.ParentID != nil && *item.ParentID == newParentID {
		return item, nil
	}

	dest, err := c.validator.ValidateMove(ctx, c.store, item, newParentID)
	if err != nil {
		return nil, err
	}
	destLineage, err := c.resolver.Lineage(ctx, c.store, dest)
	if err != nil {
		return nil, err
	}

	h, err := c.acquire(ctx, OpMove, lineage.IDs, destLineage.IDs)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	item, lineage, err = c.relineage(ctx, lineage)
	if err != nil {
		return nil, err
	}
	if _, destLineage, err = c.relineage(ctx, destLineage); err != nil {
		return nil, err
	}
	if _, err := c.validator.ValidateMove(ctx, c.store, item, newParentID); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	oldPath := lineage.Path()
	newPath := ChildPath(destLineage.Path(), item.Name)

	step(ctx, "move", logger.OldPath(oldPath), logger.NewPath(newPath))
	if err := c.move(ctx, oldPath, newPath); err != nil {
		return nil, err
	}

	err = c.store.WithTransaction(ctx, func(tx Transaction) error {
		item.ParentID = ParentRef(newParentID)
		item.UpdatedAt = c.now()
		if item.IsFile() {
			item.StoredPath = newPath
		}

		step(ctx, "update_row", logger.ItemID(item.ID), logger.ParentID(newParentID))
		if err := tx.UpdateItem(ctx, item); err != nil {
			return err
		}
		if item.IsFolder() {
			return refreshDescendants(ctx, tx, item, newPath)
		}
		return nil
	})
	if err != nil {
		return nil, c.compensate(ctx, OpMove, "move_back", id, newPath, err, func(ctx context.Context) error {
			return c.move(ctx, newPath, oldPath)
		})
	}

	logger.InfoCtx(ctx, "item moved", logger.ItemID(id), logger.OldPath(oldPath), logger.NewPath(newPath))
	return item, nil
}
