package tree

import (
	"context"

	"github.com/SankareshwaranS/FileManagementSystem/internal/logger"
	"github.com/SankareshwaranS/FileManagementSystem/internal/telemetry"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

// DeleteItem removes a file, or a folder with its entire subtree.
//
// The backend object is first moved into the staging area, which takes it out
// of the tree's namespace while keeping it recoverable. The rows are deleted
// next; if that fails the object is moved back. Only then is the staged copy
// purged. A purge failure is logged and counted but not returned, since the
// tree is already consistent.
//
// A file missing on the backend is NotFound and its row is kept. A folder
// missing on the backend counts as removed.
func (c *Coordinator) DeleteItem(ctx context.Context, id string) (err error) {
	ctx, done := c.begin(ctx, OpDelete, telemetry.ItemID(id))
	defer func() { done(err) }()

	_, lineage, err := c.resolver.ResolveID(ctx, c.store, id)
	if err != nil {
		return err
	}

	h, err := c.acquire(ctx, OpDelete, lineage.IDs)
	if err != nil {
		return err
	}
	defer h.Release()

	item, lineage, err := c.relineage(ctx, lineage)
	if err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	path := lineage.Path()
	staged := StagingDirName + "/" + item.ID + "-" + c.newID()

	if err := c.ensureStaging(ctx); err != nil {
		return err
	}

	step(ctx, "stage", logger.OldPath(path), logger.NewPath(staged))
	err = c.move(ctx, path, staged)
	switch {
	case err == nil:
	case treeerrors.IsNotFoundError(err) && item.IsFolder():
		logger.WarnCtx(ctx, "folder already absent from backend, removing metadata only",
			logger.ItemID(item.ID), logger.Path(path))
		staged = ""
	case treeerrors.IsNotFoundError(err):
		return treeerrors.NewPathNotFoundError(path, err)
	default:
		return err
	}

	removed := 0
	err = c.store.WithTransaction(ctx, func(tx Transaction) error {
		step(ctx, "delete_rows", logger.ItemID(item.ID))
		if item.IsFile() {
			removed = 1
			return tx.DeleteItem(ctx, item.ID)
		}
		n, err := tx.DeleteSubtree(ctx, item.ID)
		removed = n
		return err
	})
	if err != nil {
		if staged == "" {
			return err
		}
		return c.compensate(ctx, OpDelete, "unstage", item.ID, path, err, func(ctx context.Context) error {
			return c.move(ctx, staged, path)
		})
	}

	if staged != "" {
		c.purge(ctx, item, staged)
	}

	logger.InfoCtx(ctx, "item deleted", logger.ItemID(item.ID), logger.Path(path), logger.Count(removed))
	return nil
}

// ensureStaging creates the staging directory if it is missing.
func (c *Coordinator) ensureStaging(ctx context.Context) error {
	err := c.storageCall(ctx, "create_dir", StagingDirName, func(ctx context.Context) error {
		return c.backend.CreateDir(ctx, StagingDirName)
	})
	if err == nil || treeerrors.HasCode(err, treeerrors.ErrDestinationExists) {
		return nil
	}
	return err
}

func (c *Coordinator) purge(ctx context.Context, item *Item, staged string) {
	step(ctx, "purge", logger.Path(staged))
	err := c.storageCall(ctx, "purge", staged, func(ctx context.Context) error {
		if item.IsFile() {
			return c.backend.RemoveFile(ctx, staged)
		}
		return c.backend.RemoveDirTree(ctx, staged)
	})
	if err == nil {
		return
	}
	if c.metrics != nil {
		c.metrics.RecordPurgeFailure(item.Type)
	}
	logger.WarnCtx(ctx, "staged object could not be purged",
		logger.ItemID(item.ID), logger.Path(staged), logger.Err(err))
}
