package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/yndnr/genback/internal/core/domain"
)

// StagingSuffix marks provisional directories. A staged name never parses
// as a timestamp, so it is never listed as a snapshot nor accepted as a
// latest target.
const StagingSuffix = ".partial"

// Store manages the snapshots of one interval inside one epoch directory.
type Store struct {
	interval domain.Interval
	dir      string
	latest   string
}

// NewStore returns the store for interval iv under epochDir.
func NewStore(epochDir string, iv domain.Interval, latestName string) *Store {
	if latestName == "" {
		latestName = domain.DefaultLatestName
	}
	return &Store{
		interval: iv,
		dir:      filepath.Join(epochDir, iv.Name),
		latest:   latestName,
	}
}

// Interval returns the interval this store serves.
func (s *Store) Interval() domain.Interval { return s.interval }

// Dir returns the interval directory.
func (s *Store) Dir() string { return s.dir }

// LatestPath returns the path of the interval's latest pointer.
func (s *Store) LatestPath() string { return filepath.Join(s.dir, s.latest) }

// StagingPath returns the provisional path used while building name.
func (s *Store) StagingPath(name string) string {
	return filepath.Join(s.dir, name+StagingSuffix)
}

// List returns the real snapshots of the interval, oldest first. The latest
// pointer, staging slots and foreign entries are ignored.
func (s *Store) List() ([]domain.Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, domain.ErrFilesystem.WithInterval(s.interval.Name).WithPath(s.dir).WithCause(err)
	}

	var snaps []domain.Snapshot
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		created, err := domain.ParseTimestamp(name)
		if err != nil || len(name) != len(domain.TimestampLayout) {
			continue
		}
		snaps = append(snaps, domain.Snapshot{
			Interval:  s.interval.Name,
			Name:      name,
			Path:      filepath.Join(s.dir, name),
			CreatedAt: created,
		})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Name < snaps[j].Name })
	return snaps, nil
}

// Latest returns the snapshot the latest pointer refers to, or nil when the
// interval has no pointer yet. A pointer that exists but does not resolve to
// a real snapshot of this interval is an integrity fault.
func (s *Store) Latest() (*domain.Snapshot, error) {
	link := s.LatestPath()
	fault := domain.ErrIntegrityFault.WithInterval(s.interval.Name).WithPath(link)

	target, ok, err := ReadPointer(link)
	if err != nil {
		if errors.Is(err, errNotSymlink) {
			return nil, fault.WithDetails("pointer is not a symlink")
		}
		return nil, domain.ErrFilesystem.WithInterval(s.interval.Name).WithPath(link).WithCause(err)
	}
	if !ok {
		return nil, nil
	}

	if filepath.Dir(target) != filepath.Clean(s.dir) {
		return nil, fault.WithDetails("pointer targets %s outside the interval directory", target)
	}
	name := filepath.Base(target)
	if !domain.IsTimestampName(name) {
		return nil, fault.WithDetails("pointer targets %q which is not a snapshot name", name)
	}
	fi, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fault.WithDetails("pointer target %s is missing", name)
		}
		return nil, fault.WithCause(err)
	}
	if !fi.IsDir() {
		return nil, fault.WithDetails("pointer target %s is not a directory", name)
	}

	created, _ := domain.ParseTimestamp(name)
	return &domain.Snapshot{
		Interval:  s.interval.Name,
		Name:      name,
		Path:      target,
		CreatedAt: created,
	}, nil
}

// Due reports whether an interval with the given cycle must rotate at now
// when its newest snapshot was taken at last. The boundary is inclusive.
func Due(cycle time.Duration, now, last time.Time) bool {
	return now.Sub(last) >= cycle
}

// IsDue decides whether the interval must rotate at now. An interval that
// was never backed up is always due. The current latest snapshot is
// returned alongside.
func (s *Store) IsDue(now time.Time) (bool, *domain.Snapshot, error) {
	last, err := s.Latest()
	if err != nil {
		return false, nil, err
	}
	if last == nil {
		return true, nil, nil
	}
	return Due(s.interval.Cycle, now, last.CreatedAt), last, nil
}

// Allocation is the outcome of Allocate: how and where the next snapshot
// of an interval is built.
type Allocation struct {
	Interval string           `json:"interval" yaml:"interval"`
	Mode     domain.Mode      `json:"mode" yaml:"mode"`
	Name     string           `json:"name" yaml:"name"`
	Target   string           `json:"target" yaml:"target"`
	Recycle  *domain.Snapshot `json:"recycle,omitempty" yaml:"recycle,omitempty"`
}

// Allocate chooses the allocation mode and target name for a rotation at
// now. It does not touch the filesystem.
//
// The target name is always strictly greater than every existing snapshot
// name; anything else is reported as a name collision.
func (s *Store) Allocate(now time.Time) (*Allocation, error) {
	snaps, err := s.List()
	if err != nil {
		return nil, err
	}

	name := domain.FormatTimestamp(now)
	alloc := &Allocation{
		Interval: s.interval.Name,
		Name:     name,
		Target:   filepath.Join(s.dir, name),
	}

	if n := len(snaps); n > 0 && snaps[n-1].Name >= name {
		return nil, domain.ErrNameCollision.
			WithInterval(s.interval.Name).
			WithPath(alloc.Target).
			WithDetails("%s is not newer than existing snapshot %s", name, snaps[n-1].Name)
	}

	switch {
	case len(snaps) == 0:
		alloc.Mode = domain.ModeFirst
	case len(snaps) < s.interval.Retention:
		alloc.Mode = domain.ModeReuse
	default:
		alloc.Mode = domain.ModeRecycle
		latest, err := s.Latest()
		if err != nil {
			return nil, err
		}
		for i := range snaps {
			if latest != nil && snaps[i].Name == latest.Name {
				continue
			}
			oldest := snaps[i]
			alloc.Recycle = &oldest
			break
		}
	}
	return alloc, nil
}

// removeAll is replaced in tests.
var removeAll = os.RemoveAll

// Prune removes the oldest snapshots beyond the retention count. The
// latest target is never removed. It returns the removed paths.
func (s *Store) Prune() ([]string, error) {
	snaps, err := s.List()
	if err != nil {
		return nil, err
	}
	excess := len(snaps) - s.interval.Retention
	if excess <= 0 {
		return nil, nil
	}

	latest, err := s.Latest()
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, snap := range snaps {
		if excess == 0 {
			break
		}
		if latest != nil && snap.Name == latest.Name {
			continue
		}
		if err := removeAll(snap.Path); err != nil {
			return removed, domain.ErrFilesystem.WithInterval(s.interval.Name).WithPath(snap.Path).WithCause(err)
		}
		removed = append(removed, snap.Path)
		excess--
	}
	return removed, nil
}
