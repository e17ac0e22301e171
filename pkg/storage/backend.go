// Package storage defines the physical storage backend that mirrors the item
// tree: folders are directories and files are regular objects, both addressed
// by slash-separated paths relative to the backend root.
//
// Backends perform exactly the operation requested. They never create missing
// parents implicitly and never overwrite existing objects, so the coordinator
// can rely on DestinationExists and NotFound to detect drift.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

// ErrClosed is returned (wrapped in a storage error) by a closed backend.
var ErrClosed = errors.New("storage backend is closed")

// ObjectInfo describes an object found at a backend path.
type ObjectInfo struct {
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Backend is the physical storage contract.
//
// Every method returns nil or a *treeerrors.TreeError in the Storage or
// NotFound category. Paths are validated with CleanPath.
type Backend interface {
	// Type returns the backend kind ("fs", "s3").
	Type() string

	// CreateDir creates a single directory. The parent must exist.
	// Fails with DestinationExists if anything already occupies path.
	CreateDir(ctx context.Context, path string) error

	// WriteFile creates a regular file with content. The parent must exist.
	// Fails with DestinationExists if anything already occupies path.
	WriteFile(ctx context.Context, path string, content []byte) error

	// RemoveFile removes a regular file. NotFound if absent.
	RemoveFile(ctx context.Context, path string) error

	// RemoveDirTree removes a directory and everything beneath it.
	// NotFound if absent.
	RemoveDirTree(ctx context.Context, path string) error

	// MoveOrRename relocates a file or directory tree. NotFound if the
	// source is absent, DestinationExists if the target is occupied.
	MoveOrRename(ctx context.Context, oldPath, newPath string) error

	// Exists reports whether any object occupies path.
	Exists(ctx context.Context, path string) (bool, error)

	// Stat describes the object at path. NotFound if absent.
	Stat(ctx context.Context, path string) (*ObjectInfo, error)

	// Healthcheck verifies the backend is reachable.
	Healthcheck(ctx context.Context) error

	Close() error
}

// CleanPath normalises a backend-relative path. Empty paths, absolute paths
// and paths escaping the root are rejected.
func CleanPath(p string) (string, error) {
	if p == "" {
		return "", treeerrors.NewInvalidArgumentError("empty backend path")
	}
	if strings.ContainsRune(p, 0) || strings.Contains(p, "\\") {
		return "", treeerrors.NewInvalidArgumentError("invalid character in backend path %q", p)
	}
	if strings.HasPrefix(p, "/") {
		return "", treeerrors.NewInvalidArgumentError("backend path %q must be relative", p)
	}
	c := path.Clean(p)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", treeerrors.NewInvalidArgumentError("backend path %q escapes the root", p)
	}
	return c, nil
}

// Join builds a backend path from tree names.
func Join(elem ...string) string {
	return path.Join(elem...)
}

// Wrap converts a raw backend failure into the storage error taxonomy.
// Context deadline expiry becomes a Timeout error. Errors that are already
// classified pass through unchanged.
func Wrap(op, p string, err error) error {
	if err == nil {
		return nil
	}
	var te *treeerrors.TreeError
	if errors.As(err, &te) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return treeerrors.NewTimeoutError(op, p, err)
	}
	return treeerrors.NewStorageError(op, p, err)
}
