package fs

import (
	"io/fs"
	"os"
)

// renameChecked refuses to replace an existing target. The check and the
// rename are not atomic; callers serialize conflicting moves with subtree locks.
func renameChecked(oldPath, newPath string) error {
	if _, err := os.Lstat(newPath); err == nil {
		return &os.LinkError{Op: "rename", Old: oldPath, New: newPath, Err: fs.ErrExist}
	}
	return os.Rename(oldPath, newPath)
}
