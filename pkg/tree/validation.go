package tree

import (
	"context"
	"path"
	"strings"
	"unicode/utf8"

	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

const (
	// MaxNameLength is the longest accepted item name in bytes.
	MaxNameLength = 255

	// StagingDirName is the backend directory holding objects between their
	// removal from the tree and their purge. It is reserved at the root.
	StagingDirName = ".fms-staging"
)

// ValidateName checks the name rules shared by folders and files.
func ValidateName(name string) error {
	switch {
	case name == "":
		return treeerrors.NewInvalidArgumentError("name must not be empty")
	case strings.TrimSpace(name) == "":
		return treeerrors.NewInvalidArgumentError("name must not be blank")
	case name == "." || name == "..":
		return treeerrors.NewInvalidArgumentError("name %q is reserved", name)
	case name == StagingDirName:
		return treeerrors.NewInvalidArgumentError("name %q is reserved", name)
	case len(name) > MaxNameLength:
		return treeerrors.NewInvalidArgumentError("name exceeds %d bytes", MaxNameLength)
	case !utf8.ValidString(name):
		return treeerrors.NewInvalidArgumentError("name is not valid UTF-8")
	case strings.ContainsAny(name, "/\\\x00"):
		return treeerrors.NewInvalidArgumentError("name %q contains a path separator or NUL", name)
	}
	return nil
}

// Ext returns the extension of name including the dot, or "".
// Leading-dot names such as ".env" have no extension.
func Ext(name string) string {
	ext := path.Ext(name)
	if ext == name {
		return ""
	}
	return ext
}

// Validator enforces the tree invariants before any mutation. It only reads.
type Validator struct {
	resolver *PathResolver
}

// NewValidator returns a Validator using r for cycle detection.
func NewValidator(r *PathResolver) *Validator {
	return &Validator{resolver: r}
}

// ValidateCreate checks a new item and returns its parent (nil at root level).
// A referenced parent that does not exist is NotFound; one that is not a
// folder, or a missing parent for a file, is InvalidParent.
func (v *Validator) ValidateCreate(ctx context.Context, rd Reader, name string, typ ItemType, parentID *string) (*Item, error) {
	if !typ.Valid() {
		return nil, treeerrors.NewInvalidArgumentError("invalid item type %q", typ)
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	var parent *Item
	if parentID == nil {
		if typ == TypeFile {
			return nil, treeerrors.NewInvalidParentError("", "a file must be created inside a folder")
		}
	} else {
		p, err := v.parentFolder(ctx, rd, *parentID)
		if err != nil {
			return nil, err
		}
		parent = p
	}

	if err := v.checkCollision(ctx, rd, parentID, name, typ, ""); err != nil {
		return nil, err
	}
	return parent, nil
}

// ValidateRename checks that item can be renamed to newName.
func (v *Validator) ValidateRename(ctx context.Context, rd Reader, item *Item, newName string) error {
	if err := ValidateName(newName); err != nil {
		return err
	}
	return v.checkCollision(ctx, rd, item.ParentID, newName, item.Type, item.ID)
}

// ValidateMove checks that item can be moved under destID and returns the
// destination folder.
func (v *Validator) ValidateMove(ctx context.Context, rd Reader, item *Item, destID string) (*Item, error) {
	if destID == "" {
		return nil, treeerrors.NewInvalidParentError("", "destination folder is required")
	}
	dest, err := v.parentFolder(ctx, rd, destID)
	if err != nil {
		return nil, err
	}

	if item.IsFolder() {
		if dest.ID == item.ID {
			return nil, treeerrors.NewCycleError(item.ID, dest.ID)
		}
		l, err := v.resolver.Lineage(ctx, rd, dest)
		if err != nil {
			return nil, err
		}
		if l.Contains(item.ID) {
			return nil, treeerrors.NewCycleError(item.ID, dest.ID)
		}
	}

	if err := v.checkCollision(ctx, rd, &dest.ID, item.Name, item.Type, item.ID); err != nil {
		return nil, err
	}
	return dest, nil
}

func (v *Validator) parentFolder(ctx context.Context, rd Reader, id string) (*Item, error) {
	p, err := rd.GetItem(ctx, id)
	if err != nil {
		if treeerrors.IsNotFoundError(err) {
			return nil, treeerrors.NewNotFoundError("parent folder", id)
		}
		return nil, err
	}
	if !p.IsFolder() {
		return nil, treeerrors.NewInvalidParentError(id, "parent must be a folder")
	}
	return p, nil
}

// checkCollision fails when a sibling other than selfID has name and typ.
func (v *Validator) checkCollision(ctx context.Context, rd Reader, parentID *string, name string, typ ItemType, selfID string) error {
	existing, err := rd.FindChild(ctx, parentID, name, typ)
	if err != nil {
		if treeerrors.IsNotFoundError(err) {
			return nil
		}
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return treeerrors.NewNameCollisionError(name, string(typ))
}
