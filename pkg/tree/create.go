package tree

import (
	"context"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/SankareshwaranS/FileManagementSystem/internal/logger"
	"github.com/SankareshwaranS/FileManagementSystem/internal/telemetry"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree/lock"
)

// CreateItem creates a folder, or an empty file, named name under parentID.
// A nil parentID creates a root-level folder; files always need a parent.
func (c *Coordinator) CreateItem(ctx context.Context, name string, typ ItemType, parentID *string) (*Item, error) {
	if typ == TypeFile {
		if parentID == nil {
			return nil, treeerrors.NewInvalidParentError("", "a file must be created inside a folder")
		}
		return c.createFile(ctx, OpCreate, *parentID, name, nil, "")
	}
	return c.createFolder(ctx, name, typ, parentID)
}

func (c *Coordinator) createFolder(ctx context.Context, name string, typ ItemType, parentID *string) (item *Item, err error) {
	ctx, done := c.begin(ctx, OpCreate, telemetry.ItemName(name), telemetry.ItemType(string(typ)))
	defer func() { done(err) }()

	// Validation first so that bad input never waits for a lock.
	if _, err := c.validator.ValidateCreate(ctx, c.store, name, typ, parentID); err != nil {
		return nil, err
	}

	lineage, parentLineage, err := c.parentScope(ctx, parentID)
	if err != nil {
		return nil, err
	}
	h, err := c.acquire(ctx, OpCreate, lineage)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	if parentID != nil {
		if _, _, err := c.relineage(ctx, parentLineage); err != nil {
			return nil, err
		}
	}
	if _, err := c.validator.ValidateCreate(ctx, c.store, name, typ, parentID); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	now := c.now()
	item = &Item{
		ID:        c.newID(),
		Name:      name,
		Type:      TypeFolder,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	path := ChildPath(parentLineage.Path(), name)

	step(ctx, "insert_row", logger.ItemID(item.ID), logger.Path(path))
	if err := c.store.WithTransaction(ctx, func(tx Transaction) error {
		return tx.CreateItem(ctx, item)
	}); err != nil {
		return nil, err
	}

	step(ctx, "create_dir", logger.ItemID(item.ID), logger.Path(path))
	err = c.storageCall(ctx, "create_dir", path, func(ctx context.Context) error {
		return c.backend.CreateDir(ctx, path)
	})
	if err != nil {
		return nil, c.compensate(ctx, OpCreate, "delete_row", item.ID, path, err, func(ctx context.Context) error {
			return c.store.WithTransaction(ctx, func(tx Transaction) error {
				return tx.DeleteItem(ctx, item.ID)
			})
		})
	}

	logger.InfoCtx(ctx, "folder created", logger.ItemID(item.ID), logger.Path(path))
	return item, nil
}

// CreateFile writes content as a new file named name inside the folder
// parentID. When name has no extension, extHint is appended, or failing that
// an extension detected from content. The file is written before its row is
// inserted, and removed again if the insert fails.
func (c *Coordinator) CreateFile(ctx context.Context, parentID, name string, content []byte, extHint string) (*Item, error) {
	return c.createFile(ctx, OpUpload, parentID, name, content, extHint)
}

func (c *Coordinator) createFile(ctx context.Context, op, parentID, name string, content []byte, extHint string) (item *Item, err error) {
	ctx, done := c.begin(ctx, op,
		telemetry.ParentID(parentID), telemetry.ItemName(name), telemetry.Size(int64(len(content))))
	defer func() { done(err) }()

	if parentID == "" {
		return nil, treeerrors.NewInvalidParentError("", "a file must be created inside a folder")
	}
	if c.cfg.MaxUploadSize > 0 && int64(len(content)) > c.cfg.MaxUploadSize {
		return nil, treeerrors.NewTooLargeError(int64(len(content)), c.cfg.MaxUploadSize)
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	contentType := ""
	if len(content) > 0 {
		mt := mimetype.Detect(content)
		contentType = mt.String()
		name = withExtension(name, extHint, mt.Extension())
	} else {
		name = withExtension(name, extHint, "")
	}

	pid := ParentRef(parentID)
	if _, err := c.validator.ValidateCreate(ctx, c.store, name, TypeFile, pid); err != nil {
		return nil, err
	}

	lineage, parentLineage, err := c.parentScope(ctx, pid)
	if err != nil {
		return nil, err
	}
	h, err := c.acquire(ctx, op, lineage)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	if _, _, err := c.relineage(ctx, parentLineage); err != nil {
		return nil, err
	}
	if _, err := c.validator.ValidateCreate(ctx, c.store, name, TypeFile, pid); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	path := ChildPath(parentLineage.Path(), name)

	step(ctx, "write_file", logger.Path(path), logger.Size(int64(len(content))))
	if err := c.storageCall(ctx, "write_file", path, func(ctx context.Context) error {
		return c.backend.WriteFile(ctx, path, content)
	}); err != nil {
		return nil, err
	}

	now := c.now()
	item = &Item{
		ID:          c.newID(),
		Name:        name,
		Type:        TypeFile,
		ParentID:    pid,
		StoredPath:  path,
		Size:        int64(len(content)),
		ContentType: contentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	step(ctx, "insert_row", logger.ItemID(item.ID), logger.Path(path))
	if err := c.store.WithTransaction(ctx, func(tx Transaction) error {
		return tx.CreateItem(ctx, item)
	}); err != nil {
		return nil, c.compensate(ctx, op, "remove_file", item.ID, path, err, func(ctx context.Context) error {
			return c.storageCall(ctx, "remove_file", path, func(ctx context.Context) error {
				return c.backend.RemoveFile(ctx, path)
			})
		})
	}

	logger.InfoCtx(ctx, "file created", logger.ItemID(item.ID), logger.Path(path), logger.Size(item.Size))
	return item, nil
}

// parentScope returns the lock lineage of a create under parentID and the
// parent's own lineage (empty at root level).
func (c *Coordinator) parentScope(ctx context.Context, parentID *string) ([]string, Lineage, error) {
	if parentID == nil {
		return lock.RootKey, Lineage{}, nil
	}
	_, l, err := c.resolver.ResolveID(ctx, c.store, *parentID)
	if err != nil {
		if treeerrors.IsNotFoundError(err) {
			return nil, Lineage{}, treeerrors.NewNotFoundError("parent folder", *parentID)
		}
		return nil, Lineage{}, err
	}
	return l.IDs, l, nil
}

// withExtension appends an extension to a name that has none. The caller's
// hint wins over the detected one; both may be empty.
func withExtension(name, hint, detected string) string {
	if Ext(name) != "" {
		return name
	}
	ext := hint
	if ext == "" {
		ext = detected
	}
	if ext == "" {
		return name
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return name + ext
}
