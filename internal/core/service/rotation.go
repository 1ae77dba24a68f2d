package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/genback/internal/core/domain"
	"github.com/yndnr/genback/internal/mover"
	"github.com/yndnr/genback/internal/storage/snapshot"
	"github.com/yndnr/genback/internal/telemetry/logger"
	"github.com/yndnr/genback/internal/telemetry/metric"
)

// RotationConfig is the engine's view of the configuration.
type RotationConfig struct {
	Root       string
	LatestName string
	// FullCycle is the epoch period. Zero never starts a new epoch.
	FullCycle time.Duration
	// Intervals in configuration order.
	Intervals []domain.Interval
	// ContinueOnPrimaryFailure lets lower intervals rotate from the top
	// interval's previous snapshot when the top interval fails.
	ContinueOnPrimaryFailure bool
}

func (c RotationConfig) rootConfig(intervals []domain.Interval) snapshot.RootConfig {
	names := make([]string, len(intervals))
	for i, iv := range intervals {
		names[i] = iv.Name
	}
	return snapshot.RootConfig{
		Root:       c.Root,
		LatestName: c.LatestName,
		Period:     c.FullCycle,
		Intervals:  names,
	}
}

// Rotation is the retention engine.
type Rotation struct {
	cfg     RotationConfig
	mover   mover.DataMover
	linker  mover.LinkCopier
	tracker snapshot.Tracker
	metrics *metric.Registry
	clock   func() time.Time
}

// Option configures a Rotation.
type Option func(*Rotation)

// WithTracker sets the tracker told about every in-flight directory.
func WithTracker(t snapshot.Tracker) Option {
	return func(r *Rotation) { r.tracker = t }
}

// WithMetrics records rotation metrics in reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(r *Rotation) { r.metrics = reg }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Rotation) { r.clock = now }
}

// NewRotation creates the engine. dm fills the top interval, lc every
// other one.
func NewRotation(cfg RotationConfig, dm mover.DataMover, lc mover.LinkCopier, opts ...Option) *Rotation {
	r := &Rotation{
		cfg:    cfg,
		mover:  dm,
		linker: lc,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one rotation run.
//
// A configuration or root error stops the run before any interval is
// touched. A failure of the top interval stops the run unless
// ContinueOnPrimaryFailure is set. Failures of lower intervals are
// recorded and the run goes on; they are returned joined.
func (r *Rotation) Run(ctx context.Context) (*Report, error) {
	started := r.clock()
	report := &Report{
		RunID:   ulid.MustNew(ulid.Timestamp(started), rand.Reader).String(),
		Started: started,
	}
	ctx = logger.WithRunID(ctx, report.RunID)
	log := logger.L(ctx)
	defer func() {
		report.Duration = r.clock().Sub(started)
		if r.metrics != nil {
			r.metrics.RunFinished(report.Duration)
		}
		log.Info("run finished", "execution_time", formatElapsed(report.Duration))
	}()

	intervals, err := domain.SortIntervals(r.cfg.Intervals)
	if err != nil {
		return report, err
	}

	epoch, err := snapshot.InitRoot(r.cfg.rootConfig(intervals), started)
	if err != nil {
		return report, err
	}
	report.Epoch = epoch
	if epoch.Created {
		log.Info("started new full-backup epoch", "epoch", epoch.Path)
		if r.metrics != nil {
			r.metrics.EpochsTotal.Inc()
		}
	}

	var (
		errs []error
		prev *snapshot.Store
	)
	for i, iv := range intervals {
		if err := ctx.Err(); err != nil {
			for _, rest := range intervals[i:] {
				report.Results = append(report.Results, IntervalResult{Interval: rest.Name, Outcome: OutcomeAborted})
			}
			errs = append(errs, domain.ErrInterrupted.WithInterval(iv.Name).WithCause(err))
			return report, errors.Join(errs...)
		}
		store := snapshot.NewStore(epoch.Path, iv, r.cfg.LatestName)
		res := r.rotate(ctx, store, prev, started)
		report.Results = append(report.Results, res)
		prev = store

		if res.Err == nil {
			continue
		}
		if i == 0 && !r.cfg.ContinueOnPrimaryFailure {
			for _, rest := range intervals[1:] {
				report.Results = append(report.Results, IntervalResult{Interval: rest.Name, Outcome: OutcomeAborted})
			}
			log.Error("top interval failed, aborting run", "interval", iv.Name, "error", res.Err)
			return report, res.Err
		}
		errs = append(errs, res.Err)
	}
	return report, errors.Join(errs...)
}

// rotate runs one interval. upper is the store of the next higher
// interval, nil for the top one.
func (r *Rotation) rotate(ctx context.Context, store *snapshot.Store, upper *snapshot.Store, now time.Time) IntervalResult {
	iv := store.Interval()
	log := logger.L(ctx).With("interval", iv.Name)
	res := IntervalResult{Interval: iv.Name}
	begin := r.clock()

	fail := func(err error) IntervalResult {
		res.Outcome = OutcomeFailed
		res.Err = err
		res.Error = err.Error()
		res.Duration = r.clock().Sub(begin)
		log.Error("rotation failed", "error", err)
		if r.metrics != nil {
			r.metrics.RotationFailed(iv.Name, domain.GetErrorCode(err), res.Duration)
		}
		return res
	}

	due, last, err := store.IsDue(now)
	if err != nil {
		return fail(err)
	}
	if !due {
		res.Outcome = OutcomeSkipped
		res.Snapshot = last
		log.Info("not due", "last", last.Name, "cycle", iv.Cycle.String())
		if r.metrics != nil {
			r.metrics.RotationSkipped(iv.Name, snapshotCount(store, log))
		}
		return res
	}

	alloc, err := store.Allocate(now)
	if err != nil {
		return fail(err)
	}
	res.Mode = alloc.Mode

	var populate snapshot.Populator
	if upper == nil {
		req := mover.MirrorRequest{}
		if last != nil {
			req.LinkDest = last.Path
		}
		res.Source = req.LinkDest
		populate = func(ctx context.Context, dst string) error {
			req.Dest = dst
			return r.mover.Mirror(ctx, req)
		}
	} else {
		src, err := upper.Latest()
		if err != nil {
			return fail(err)
		}
		if src == nil {
			return fail(domain.ErrPopulationFailure.WithInterval(iv.Name).
				WithDetails("interval %q has no snapshot to link from", upper.Interval().Name))
		}
		res.Source = src.Path
		populate = func(ctx context.Context, dst string) error {
			return r.linker.LinkCopy(ctx, src.Path, dst)
		}
	}

	log.Info("rotating", "mode", alloc.Mode.String(), "target", alloc.Target, "source", res.Source)
	snap, err := store.Publish(ctx, alloc, populate, r.tracker)
	if err != nil {
		return fail(err)
	}

	res.Outcome = OutcomePublished
	res.Snapshot = snap
	res.Duration = r.clock().Sub(begin)
	log.Info("snapshot published", "path", snap.Path, "duration", res.Duration.String())
	if r.metrics != nil {
		r.metrics.RotationSucceeded(iv.Name, alloc.Mode.String(), snapshotCount(store, log), res.Duration)
	}
	return res
}

// snapshotCount returns the number of snapshots of store. A listing error
// is logged and counts as zero.
func snapshotCount(store *snapshot.Store, log logger.Logger) int {
	snaps, err := store.List()
	if err != nil {
		log.Warn("failed to count snapshots", "dir", store.Dir(), "error", err)
	}
	return len(snaps)
}

// formatElapsed renders d as "1 hrs 2 mins 3.5 secs".
func formatElapsed(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := (d - time.Duration(h)*time.Hour - time.Duration(m)*time.Minute).Seconds()
	return fmt.Sprintf("%d hrs %d mins %.1f secs", h, m, s)
}
