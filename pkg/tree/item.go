// Package tree implements the folder/file hierarchy whose metadata lives in a
// Store and whose content lives in a storage.Backend, and keeps the two
// consistent across create, rename, move and delete.
package tree

import (
	"fmt"
	"strings"
	"time"
)

// ItemType distinguishes folders from files. It is immutable after creation.
type ItemType string

const (
	TypeFolder ItemType = "folder"
	TypeFile   ItemType = "file"
)

// ParseItemType accepts "folder" or "file" in any case.
func ParseItemType(s string) (ItemType, error) {
	switch ItemType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeFolder:
		return TypeFolder, nil
	case TypeFile:
		return TypeFile, nil
	}
	return "", fmt.Errorf("unknown item type %q", s)
}

func (t ItemType) Valid() bool { return t == TypeFolder || t == TypeFile }

// Item is a node of the tree.
//
// ParentID is nil for root-level items. Files always have a folder parent.
// StoredPath is the backend path last written for a file; it is a cache of
// the path derived from the ancestor chain and is refreshed by every
// operation that changes that chain.
type Item struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Type        ItemType  `json:"type" yaml:"type"`
	ParentID    *string   `json:"parent_id" yaml:"parent_id"`
	StoredPath  string    `json:"stored_path,omitempty" yaml:"stored_path,omitempty"`
	Size        int64     `json:"size" yaml:"size"`
	ContentType string    `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

func (i *Item) IsFolder() bool { return i.Type == TypeFolder }
func (i *Item) IsFile() bool { return i.Type == TypeFile }

// Parent returns the parent id, or "" for root-level items.
func (i *Item) Parent() string {
	if i.ParentID == nil {
		return ""
	}
	return *i.ParentID
}

// Clone returns a deep copy.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	if i.ParentID != nil {
		p := *i.ParentID
		c.ParentID = &p
	}
	return &c
}

// ParentRef converts "" to nil and anything else to a pointer.
func ParentRef(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// SameParent reports whether a and b reference the same parent.
func SameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Page is one page of a listing.
type Page struct {
	Items    []*Item `json:"results"`
	Total    int64   `json:"count"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// HasNext reports whether later pages exist.
func (p *Page) HasNext() bool {
	return int64(p.Page)*int64(p.PageSize) < p.Total
}

// ListOptions selects and orders items for ListContents.
type ListOptions struct {
	// ParentID restricts results to the children of a folder.
	ParentID *string
	// RootOnly restricts results to root-level items. Ignored with ParentID.
	RootOnly bool
	// Search is a case-insensitive substring matched against names.
	Search string
	// Ordering is one of name, created_at, updated_at, optionally prefixed
	// with "-" for descending order. Empty means "name".
	Ordering string
	// Page is 1-based. Zero means the first page.
	Page int
	// PageSize of zero means the configured default. Larger than the
	// configured maximum is clamped.
	PageSize int
}
