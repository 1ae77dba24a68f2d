package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/yndnr/genback/internal/core/domain"
	"github.com/yndnr/genback/internal/telemetry/logger"
)

// Populator fills dst with the content of the snapshot being built. The
// source is bound by the caller.
type Populator func(ctx context.Context, dst string) error

// Tracker records the single in-flight directory so it can be removed if
// the process is interrupted.
type Tracker interface {
	Track(path string)
	Clear()
}

type nopTracker struct{}

func (nopTracker) Track(string) {}
func (nopTracker) Clear()       {}

// SweepStaging removes provisional directories left behind by a run that
// was killed without a chance to clean up. It returns the removed paths.
func (s *Store) SweepStaging() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, domain.ErrFilesystem.WithInterval(s.interval.Name).WithPath(s.dir).WithCause(err)
	}

	var removed []string
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), StagingSuffix) {
			continue
		}
		p := filepath.Join(s.dir, e.Name())
		if err := os.RemoveAll(p); err != nil {
			return removed, domain.ErrFilesystem.WithInterval(s.interval.Name).WithPath(p).WithCause(err)
		}
		removed = append(removed, p)
	}
	return removed, nil
}

// Publish builds the allocated snapshot under a provisional name, lets
// populate fill it and then publishes it:
//
//  1. the provisional directory is created, or in recycle mode the
//     recycled snapshot is renamed to it
//  2. populate runs against the provisional directory
//  3. the provisional directory is renamed to its final name
//  4. the latest pointer is replaced
//  5. snapshots beyond the retention count are pruned
//
// If populate fails the provisional directory is removed and the latest
// pointer is left untouched. In recycle mode that directory held the
// oldest generation, so the interval ends up one snapshot short until the
// next successful run. A prune failure is logged and does not fail the
// publish. tracker may be nil.
func (s *Store) Publish(ctx context.Context, alloc *Allocation, populate Populator, tracker Tracker) (*domain.Snapshot, error) {
	if tracker == nil {
		tracker = nopTracker{}
	}
	log := logger.L(ctx).With("interval", s.interval.Name, "mode", alloc.Mode.String())

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, domain.ErrFilesystem.WithInterval(s.interval.Name).WithPath(s.dir).WithCause(err)
	}

	stale, err := s.SweepStaging()
	if err != nil {
		return nil, err
	}
	for _, p := range stale {
		log.Warn("removed stale staging directory", "path", p)
	}

	staging := s.StagingPath(alloc.Name)
	tracker.Track(staging)

	if alloc.Recycle != nil {
		log.Debug("recycling snapshot", "from", alloc.Recycle.Path, "staging", staging)
		if err := os.Rename(alloc.Recycle.Path, staging); err != nil {
			tracker.Clear()
			return nil, domain.ErrFilesystem.WithInterval(s.interval.Name).WithPath(alloc.Recycle.Path).WithCause(err)
		}
	} else if err := os.Mkdir(staging, 0o755); err != nil {
		tracker.Clear()
		return nil, domain.ErrFilesystem.WithInterval(s.interval.Name).WithPath(staging).WithCause(err)
	}

	log.Info("populating snapshot", "staging", staging)
	if err := populate(ctx, staging); err != nil {
		if rmErr := os.RemoveAll(staging); rmErr != nil {
			log.Error("failed to remove staging directory", "path", staging, "error", rmErr)
		}
		tracker.Clear()
		return nil, domain.ErrPopulationFailure.WithInterval(s.interval.Name).WithPath(staging).WithCause(err)
	}

	if _, err := os.Lstat(alloc.Target); err == nil {
		log.Warn("displacing existing entry at target", "path", alloc.Target)
		if err := os.RemoveAll(alloc.Target); err != nil {
			tracker.Clear()
			return nil, domain.ErrFilesystem.WithInterval(s.interval.Name).WithPath(alloc.Target).WithCause(err)
		}
	}
	if err := os.Rename(staging, alloc.Target); err != nil {
		_ = os.RemoveAll(staging)
		tracker.Clear()
		return nil, domain.ErrFilesystem.WithInterval(s.interval.Name).WithPath(staging).WithCause(err)
	}
	tracker.Track(alloc.Target)

	// The snapshot is complete from here on; a failed repoint leaves it in
	// place and the previous pointer intact.
	if err := Repoint(s.LatestPath(), alloc.Name); err != nil {
		tracker.Clear()
		return nil, domain.ErrFilesystem.WithInterval(s.interval.Name).WithPath(s.LatestPath()).WithCause(err)
	}
	tracker.Clear()

	// The snapshot is published; a prune failure only delays retention
	// until the next run.
	removed, err := s.Prune()
	for _, p := range removed {
		log.Info("pruned snapshot beyond retention", "path", p)
	}
	if err != nil {
		log.Error("failed to prune snapshots beyond retention", "error", err)
	}

	created, _ := domain.ParseTimestamp(alloc.Name)
	return &domain.Snapshot{
		Interval:  s.interval.Name,
		Name:      alloc.Name,
		Path:      alloc.Target,
		CreatedAt: created,
	}, nil
}
