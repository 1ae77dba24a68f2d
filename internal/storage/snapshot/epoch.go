package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/yndnr/genback/internal/core/domain"
)

// RootConfig describes the backup root and its full-backup epochs.
type RootConfig struct {
	// Root is the backup target directory. It must already exist.
	Root string
	// LatestName is the name of the epoch pointer inside Root.
	LatestName string
	// Period is the full-backup cycle. Zero disables re-initialisation.
	Period time.Duration
	// Intervals are the interval directory names created in the epoch.
	Intervals []string
}

// Epoch is a full-backup epoch directory.
type Epoch struct {
	Name  string    `json:"name" yaml:"name"`
	Path  string    `json:"path" yaml:"path"`
	Start time.Time `json:"start" yaml:"start"`
	// Created is true when the epoch was (or, for PeekRoot, would be)
	// created by this call.
	Created bool `json:"created" yaml:"created"`
}

func (c RootConfig) latestName() string {
	if c.LatestName == "" {
		return domain.DefaultLatestName
	}
	return c.LatestName
}

// resolveEpoch returns the epoch the root pointer refers to, or nil when
// a new epoch must be started at now.
func resolveEpoch(cfg RootConfig, now time.Time) (*Epoch, error) {
	fi, err := os.Stat(cfg.Root)
	if err != nil || !fi.IsDir() {
		return nil, domain.ErrFilesystem.WithPath(cfg.Root).
			WithDetails("backup destination cannot be found, please create it")
	}

	link := filepath.Join(cfg.Root, cfg.latestName())
	target, ok, err := ReadPointer(link)
	if err != nil {
		if errors.Is(err, errNotSymlink) {
			return nil, domain.ErrIntegrityFault.WithPath(link).WithDetails("epoch pointer is not a symlink")
		}
		return nil, domain.ErrFilesystem.WithPath(link).WithCause(err)
	}
	if !ok {
		return nil, nil
	}
	if fi, err := os.Stat(target); err != nil || !fi.IsDir() {
		return nil, nil
	}

	name := filepath.Base(target)
	start, err := domain.ParseTimestamp(name)
	if err != nil {
		return nil, domain.ErrIntegrityFault.WithPath(link).
			WithDetails("epoch pointer targets %q which is not a timestamp", name)
	}
	if cfg.Period > 0 && now.Sub(start) > cfg.Period {
		return nil, nil
	}
	return &Epoch{Name: name, Path: target, Start: start}, nil
}

// PeekRoot reports the epoch InitRoot would use at now without changing
// anything on disk.
func PeekRoot(cfg RootConfig, now time.Time) (*Epoch, error) {
	ep, err := resolveEpoch(cfg, now)
	if err != nil {
		return nil, err
	}
	if ep != nil {
		return ep, nil
	}
	name := domain.FormatTimestamp(now)
	return &Epoch{
		Name:    name,
		Path:    filepath.Join(cfg.Root, name),
		Start:   now.Truncate(time.Second),
		Created: true,
	}, nil
}

// InitRoot prepares the backup root for a run at now.
//
// When the epoch pointer does not resolve, or the current epoch is older
// than the configured period, a new timestamped epoch directory is created
// and the pointer is moved to it. Older epochs are left alone. Every
// configured interval directory is created inside the resulting epoch.
// Calling InitRoot again within the same period changes nothing.
func InitRoot(cfg RootConfig, now time.Time) (*Epoch, error) {
	ep, err := PeekRoot(cfg, now)
	if err != nil {
		return nil, err
	}

	if ep.Created {
		if err := os.Mkdir(ep.Path, 0o755); err != nil && !os.IsExist(err) {
			return nil, domain.ErrFilesystem.WithPath(ep.Path).WithCause(err)
		}
		link := filepath.Join(cfg.Root, cfg.latestName())
		if err := Repoint(link, ep.Name); err != nil {
			return nil, domain.ErrFilesystem.WithPath(link).WithCause(err)
		}
	}

	for _, name := range cfg.Intervals {
		dir := filepath.Join(ep.Path, name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, domain.ErrFilesystem.WithInterval(name).WithPath(dir).WithCause(err)
		}
	}
	return ep, nil
}

// ListEpochs returns every epoch directory under root, oldest first.
func ListEpochs(root string) ([]Epoch, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, domain.ErrFilesystem.WithPath(root).WithCause(err)
	}

	var epochs []Epoch
	for _, e := range entries {
		if !e.IsDir() || !domain.IsTimestampName(e.Name()) {
			continue
		}
		start, _ := domain.ParseTimestamp(e.Name())
		epochs = append(epochs, Epoch{
			Name:  e.Name(),
			Path:  filepath.Join(root, e.Name()),
			Start: start,
		})
	}
	sort.Slice(epochs, func(i, j int) bool { return epochs[i].Name < epochs[j].Name })
	return epochs, nil
}
