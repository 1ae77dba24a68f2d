package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yndnr/genback/internal/core/domain"
)

func TestAcquire_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".genback.lock")

	first, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer first.Release()

	if pid, err := ReadHolder(path); err != nil || pid != os.Getpid() {
		t.Errorf("ReadHolder() = %d, %v; want %d", pid, err, os.Getpid())
	}

	// flock locks belong to the open file description, so a second open
	// in the same process conflicts.
	_, err = Acquire(path)
	if !errors.Is(err, domain.ErrLockHeld) {
		t.Fatalf("second Acquire() error = %v, want ErrLockHeld", err)
	}
}

func TestRelease_AllowsReacquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".genback.lock")

	l, err := Acquire(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}

	again, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	again.Release()
}

func TestAcquire_MissingDirectory(t *testing.T) {
	_, err := Acquire(filepath.Join(t.TempDir(), "missing", "lock"))
	if !errors.Is(err, domain.ErrFilesystem) {
		t.Errorf("error = %v, want ErrFilesystem", err)
	}
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Errorf("Release() on nil = %v", err)
	}
}
