// Package fs provides the local filesystem storage backend.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/storage"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

const tempPrefix = ".fms-tmp-"

// Config holds configuration for the filesystem backend.
type Config struct {
	// Root is the directory mirrored by the item tree.
	Root string `mapstructure:"root" yaml:"root" validate:"required"`

	// CreateRoot creates Root if it doesn't exist.
	CreateRoot bool `mapstructure:"create_root" yaml:"create_root"`

	// DirMode is the permission mode for created directories.
	// Default: 0755
	DirMode os.FileMode `mapstructure:"dir_mode" yaml:"dir_mode"`

	// FileMode is the permission mode for created files.
	// Default: 0644
	FileMode os.FileMode `mapstructure:"file_mode" yaml:"file_mode"`
}

// DefaultConfig returns the default configuration rooted at root.
func DefaultConfig(root string) Config {
	return Config{
		Root:       root,
		CreateRoot: true,
		DirMode:    0o755,
		FileMode:   0o644,
	}
}

// Backend is a storage.Backend over a local directory.
type Backend struct {
	mu       sync.RWMutex
	root     string
	dirMode  os.FileMode
	fileMode os.FileMode
	closed   bool
}

// New opens the backend described by cfg.
func New(cfg Config) (*Backend, error) {
	if cfg.Root == "" {
		return nil, errors.New("root is required")
	}
	if cfg.DirMode == 0 {
		cfg.DirMode = 0o755
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0o644
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	if cfg.CreateRoot {
		if err := os.MkdirAll(root, cfg.DirMode); err != nil {
			return nil, fmt.Errorf("create root: %w", err)
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	return &Backend{root: root, dirMode: cfg.DirMode, fileMode: cfg.FileMode}, nil
}

// NewWithRoot opens a backend with default configuration.
func NewWithRoot(root string) (*Backend, error) {
	return New(DefaultConfig(root))
}

// Root returns the absolute root directory.
func (b *Backend) Root() string { return b.root }

func (b *Backend) Type() string { return "fs" }

// enter validates state and path for op and returns the absolute path.
// The caller must call b.mu.RUnlock when err is nil.
func (b *Backend) enter(ctx context.Context, op, p string) (rel, abs string, err error) {
	rel, err = storage.CleanPath(p)
	if err != nil {
		return "", "", err
	}
	if err := ctx.Err(); err != nil {
		return "", "", storage.Wrap(op, rel, err)
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return "", "", storage.Wrap(op, rel, storage.ErrClosed)
	}
	return rel, filepath.Join(b.root, filepath.FromSlash(rel)), nil
}

func (b *Backend) CreateDir(ctx context.Context, p string) error {
	rel, abs, err := b.enter(ctx, "create_dir", p)
	if err != nil {
		return err
	}
	defer b.mu.RUnlock()

	if err := os.Mkdir(abs, b.dirMode); err != nil {
		switch {
		case errors.Is(err, fs.ErrExist):
			return treeerrors.NewDestinationExistsError(rel)
		case errors.Is(err, fs.ErrNotExist):
			return treeerrors.NewPathNotFoundError(path.Dir(rel), err)
		}
		return storage.Wrap("create_dir", rel, err)
	}
	return nil
}

// WriteFile writes content to a temporary sibling and links it into place,
// so the target never exists with partial content and is never overwritten.
func (b *Backend) WriteFile(ctx context.Context, p string, content []byte) error {
	rel, abs, err := b.enter(ctx, "write_file", p)
	if err != nil {
		return err
	}
	defer b.mu.RUnlock()

	tmp, err := os.CreateTemp(filepath.Dir(abs), tempPrefix+"*")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return treeerrors.NewPathNotFoundError(path.Dir(rel), err)
		}
		return storage.Wrap("write_file", rel, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return storage.Wrap("write_file", rel, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return storage.Wrap("write_file", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return storage.Wrap("write_file", rel, err)
	}
	if err := os.Chmod(tmpPath, b.fileMode); err != nil {
		return storage.Wrap("write_file", rel, err)
	}
	if err := ctx.Err(); err != nil {
		return storage.Wrap("write_file", rel, err)
	}

	if err := os.Link(tmpPath, abs); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return treeerrors.NewDestinationExistsError(rel)
		}
		return storage.Wrap("write_file", rel, err)
	}
	return nil
}

func (b *Backend) RemoveFile(ctx context.Context, p string) error {
	rel, abs, err := b.enter(ctx, "remove_file", p)
	if err != nil {
		return err
	}
	defer b.mu.RUnlock()

	info, err := os.Lstat(abs)
	if err != nil {
		return b.statError("remove_file", rel, err)
	}
	if info.IsDir() {
		return treeerrors.NewStorageError("remove_file", rel, errors.New("is a directory"))
	}
	if err := os.Remove(abs); err != nil {
		return b.statError("remove_file", rel, err)
	}
	return nil
}

func (b *Backend) RemoveDirTree(ctx context.Context, p string) error {
	rel, abs, err := b.enter(ctx, "remove_dir_tree", p)
	if err != nil {
		return err
	}
	defer b.mu.RUnlock()

	info, err := os.Lstat(abs)
	if err != nil {
		return b.statError("remove_dir_tree", rel, err)
	}
	if !info.IsDir() {
		return treeerrors.NewStorageError("remove_dir_tree", rel, errors.New("not a directory"))
	}
	if err := os.RemoveAll(abs); err != nil {
		return storage.Wrap("remove_dir_tree", rel, err)
	}
	return nil
}

func (b *Backend) MoveOrRename(ctx context.Context, oldPath, newPath string) error {
	newRel, err := storage.CleanPath(newPath)
	if err != nil {
		return err
	}
	oldRel, oldAbs, err := b.enter(ctx, "move", oldPath)
	if err != nil {
		return err
	}
	defer b.mu.RUnlock()

	if oldRel == newRel {
		return treeerrors.NewDestinationExistsError(newRel)
	}
	newAbs := filepath.Join(b.root, filepath.FromSlash(newRel))

	if _, err := os.Lstat(oldAbs); err != nil {
		return b.statError("move", oldRel, err)
	}

	if err := renameNoReplace(oldAbs, newAbs); err != nil {
		switch {
		case errors.Is(err, fs.ErrExist):
			return treeerrors.NewDestinationExistsError(newRel)
		case errors.Is(err, fs.ErrNotExist):
			return treeerrors.NewPathNotFoundError(path.Dir(newRel), err)
		}
		return storage.Wrap("move", oldRel, err)
	}
	return nil
}

func (b *Backend) Exists(ctx context.Context, p string) (bool, error) {
	rel, abs, err := b.enter(ctx, "exists", p)
	if err != nil {
		return false, err
	}
	defer b.mu.RUnlock()

	if _, err := os.Lstat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, storage.Wrap("exists", rel, err)
	}
	return true, nil
}

func (b *Backend) Stat(ctx context.Context, p string) (*storage.ObjectInfo, error) {
	rel, abs, err := b.enter(ctx, "stat", p)
	if err != nil {
		return nil, err
	}
	defer b.mu.RUnlock()

	info, err := os.Lstat(abs)
	if err != nil {
		return nil, b.statError("stat", rel, err)
	}
	size := info.Size()
	if info.IsDir() {
		size = 0
	}
	return &storage.ObjectInfo{Path: rel, IsDir: info.IsDir(), Size: size, ModTime: info.ModTime()}, nil
}

func (b *Backend) Healthcheck(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return storage.Wrap("healthcheck", "", storage.ErrClosed)
	}
	info, err := os.Stat(b.root)
	if err != nil {
		return storage.Wrap("healthcheck", "", err)
	}
	if !info.IsDir() {
		return treeerrors.NewStorageError("healthcheck", "", errors.New("root is not a directory"))
	}
	return nil
}

// Close marks the backend closed. Subsequent calls fail.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *Backend) statError(op, rel string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return treeerrors.NewPathNotFoundError(rel, err)
	}
	return storage.Wrap(op, rel, err)
}

var _ storage.Backend = (*Backend)(nil)
