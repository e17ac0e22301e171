package tree

import (
	"context"

	"github.com/SankareshwaranS/FileManagementSystem/internal/logger"
	"github.com/SankareshwaranS/FileManagementSystem/internal/telemetry"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree/lock"
)

// RenameItem gives the item a new name within its current parent.
//
// The row is updated first inside a transaction, the backend object is moved
// while that transaction is still open, and the commit follows. A failed move
// rolls the transaction back; a failed commit moves the object back.
// A file renamed without an extension keeps its previous one.
func (c *Coordinator) RenameItem(ctx context.Context, id, newName string) (item *Item, err error) {
	ctx, done := c.begin(ctx, OpRename, telemetry.ItemID(id), telemetry.ItemName(newName))
	defer func() { done(err) }()

	if err := ValidateName(newName); err != nil {
		return nil, err
	}

	item, lineage, err := c.resolver.ResolveID(ctx, c.store, id)
	if err != nil {
		return nil, err
	}
	if item.IsFile() && Ext(newName) == "" {
		newName += Ext(item.Name)
	}
	if newName == item.Name {
		return item, nil
	}
	if err := c.validator.ValidateRename(ctx, c.store, item, newName); err != nil {
		return nil, err
	}

	scope := [][]string{lineage.IDs}
	if item.ParentID == nil {
		// Root-level names are claimed under lock.RootKey by creates too.
		scope = append(scope, lock.RootKey)
	}
	h, err := c.acquire(ctx, OpRename, scope...)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	item, lineage, err = c.relineage(ctx, lineage)
	if err != nil {
		return nil, err
	}
	if err := c.validator.ValidateRename(ctx, c.store, item, newName); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	oldPath := lineage.Path()
	moved := false
	var newPath string

	err = c.store.WithTransaction(ctx, func(tx Transaction) error {
		item.Name = newName
		item.UpdatedAt = c.now()

		p, err := c.resolver.Resolve(ctx, tx, item)
		if err != nil {
			return err
		}
		newPath = p
		if item.IsFile() {
			item.StoredPath = newPath
		}

		step(ctx, "update_row", logger.ItemID(item.ID), logger.Name(newName))
		if err := tx.UpdateItem(ctx, item); err != nil {
			return err
		}
		if item.IsFolder() {
			if err := refreshDescendants(ctx, tx, item, newPath); err != nil {
				return err
			}
		}

		step(ctx, "move", logger.OldPath(oldPath), logger.NewPath(newPath))
		if err := c.move(ctx, oldPath, newPath); err != nil {
			return err
		}
		moved = true
		return nil
	})
	if err != nil {
		if !moved {
			return nil, err
		}
		return nil, c.compensate(ctx, OpRename, "move_back", id, newPath, err, func(ctx context.Context) error {
			return c.move(ctx, newPath, oldPath)
		})
	}

	logger.InfoCtx(ctx, "item renamed", logger.ItemID(id), logger.OldPath(oldPath), logger.NewPath(newPath))
	return item, nil
}
