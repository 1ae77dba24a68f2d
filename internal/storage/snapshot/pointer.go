package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// errNotSymlink is returned by ReadPointer when the pointer path exists but
// is not a symbolic link.
var errNotSymlink = errors.New("snapshot: pointer is not a symlink")

// ReadPointer resolves a latest-style symlink to an absolute target path.
// ok is false (with a nil error) when no pointer exists. The target itself
// is not checked for existence.
func ReadPointer(link string) (target string, ok bool, err error) {
	fi, err := os.Lstat(link)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		return "", true, errNotSymlink
	}

	dest, err := os.Readlink(link)
	if err != nil {
		return "", true, err
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(link), dest)
	}
	return filepath.Clean(dest), true, nil
}

// Repoint makes link refer to target, a name relative to link's directory.
//
// The new link is created under a temporary name and renamed over the old
// one, so readers observe either the previous or the new target.
func Repoint(link, target string) error {
	tmp := filepath.Join(filepath.Dir(link), "."+filepath.Base(link)+".tmp")
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("snapshot: remove stale pointer: %w", err)
	}
	if err := os.Symlink(target, tmp); err != nil {
		return fmt.Errorf("snapshot: create pointer: %w", err)
	}
	if err := os.Rename(tmp, link); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("snapshot: replace pointer: %w", err)
	}
	return nil
}
