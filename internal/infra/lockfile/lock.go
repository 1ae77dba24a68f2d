package lockfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/yndnr/genback/internal/core/domain"
)

// Lock is a held exclusive lock.
type Lock struct {
	path string
	file *os.File
}

// Acquire takes the exclusive lock at path without waiting. If another
// process holds it, the returned error matches domain.ErrLockHeld.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, domain.ErrFilesystem.WithPath(path).WithCause(err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			holder, _ := ReadHolder(path)
			e := domain.ErrLockHeld.WithPath(path)
			if holder > 0 {
				e = e.WithDetails("held by pid %d", holder)
			}
			return nil, e
		}
		return nil, domain.ErrFilesystem.WithPath(path).WithCause(fmt.Errorf("flock: %w", err))
	}

	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}
	return &Lock{path: path, file: f}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release drops the lock. The file itself is left in place. Release on a
// nil or already released lock is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = l.file.Truncate(0)
	err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.file = nil
	return err
}

// ReadHolder returns the PID recorded in the lock file, or 0.
func ReadHolder(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(b))
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
