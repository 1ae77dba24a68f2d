package mover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/yndnr/genback/internal/telemetry/logger"
)

// Linker is a LinkCopier implemented in Go. Regular files are hardlinked,
// directories are created with the source mode, symlinks are recreated and
// special files are skipped. When src and dst are on different
// filesystems the file content is copied instead.
type Linker struct{}

// LinkCopy implements LinkCopier.
func (Linker) LinkCopy(ctx context.Context, src, dst string) error {
	log := logger.L(ctx)

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("link source: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("link source %s is not a directory", src)
	}
	if err := os.MkdirAll(dst, fi.Mode().Perm()); err != nil {
		return err
	}

	var linked, copied, skipped int
	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return syncDir(target, info)
		case d.Type()&fs.ModeSymlink != 0:
			return syncSymlink(path, target)
		case d.Type().IsRegular():
			didCopy, err := syncFile(path, target, info)
			if err != nil {
				return err
			}
			if didCopy {
				copied++
			} else {
				linked++
			}
			return nil
		default:
			skipped++
			log.Debug("skipping special file", "path", path, "mode", info.Mode().String())
			return nil
		}
	})
	if err != nil {
		return err
	}

	removed, err := pruneExtra(ctx, src, dst)
	if err != nil {
		return err
	}

	log.Debug("link copy finished", "src", src, "dst", dst,
		"linked", linked, "copied", copied, "skipped", skipped, "removed", removed)
	return nil
}

func syncDir(target string, info fs.FileInfo) error {
	ti, err := os.Lstat(target)
	if err == nil && !ti.IsDir() {
		if err := os.RemoveAll(target); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(target, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chmod(target, info.Mode().Perm())
}

func syncSymlink(path, target string) error {
	want, err := os.Readlink(path)
	if err != nil {
		return err
	}
	if got, err := os.Readlink(target); err == nil && got == want {
		return nil
	}
	if err := os.RemoveAll(target); err != nil {
		return err
	}
	return os.Symlink(want, target)
}

// syncFile makes target a hardlink of path. It reports whether the
// content had to be copied.
func syncFile(path, target string, info fs.FileInfo) (bool, error) {
	if ti, err := os.Lstat(target); err == nil {
		if os.SameFile(info, ti) {
			return false, nil
		}
		if err := os.RemoveAll(target); err != nil {
			return false, err
		}
	}

	err := os.Link(path, target)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return false, err
	}
	return true, copyFile(path, target, info)
}

func copyFile(path, target string, info fs.FileInfo) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(target, info.ModTime(), info.ModTime())
}

// pruneExtra removes entries of dst that do not exist in src.
func pruneExtra(ctx context.Context, src, dst string) (int, error) {
	var removed int
	err := filepath.WalkDir(dst, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(dst, path)
		if err != nil || rel == "." {
			return err
		}
		if _, err := os.Lstat(filepath.Join(src, rel)); err == nil {
			return nil
		} else if !os.IsNotExist(err) {
			return err
		}

		if err := os.RemoveAll(path); err != nil {
			return err
		}
		removed++
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
	return removed, err
}
