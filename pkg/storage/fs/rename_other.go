//go:build !linux

package fs

func renameNoReplace(oldPath, newPath string) error {
	return renameChecked(oldPath, newPath)
}
