package service

import (
	"context"

	"github.com/yndnr/genback/internal/core/domain"
	"github.com/yndnr/genback/internal/storage/snapshot"
)

// PlanStep is what a run would do for one interval.
type PlanStep struct {
	Interval  string               `json:"interval" yaml:"interval"`
	Priority  int                  `json:"priority" yaml:"priority"`
	Retention int                  `json:"keep" yaml:"keep"`
	Due       bool                 `json:"due" yaml:"due"`
	Last      *domain.Snapshot     `json:"last,omitempty" yaml:"last,omitempty"`
	Alloc     *snapshot.Allocation `json:"allocation,omitempty" yaml:"allocation,omitempty"`
	// Source is where the content would come from: the link-dest of the
	// top interval, or the snapshot of the interval above.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Plan is the dry-run view of a rotation.
type Plan struct {
	Epoch *snapshot.Epoch `json:"epoch" yaml:"epoch"`
	Steps []PlanStep      `json:"steps" yaml:"steps"`
}

// Plan reports what Run would do now without touching the disk.
//
// When the interval above is due, its source for the interval below is
// the directory it would publish.
func (r *Rotation) Plan(ctx context.Context) (*Plan, error) {
	now := r.clock()
	intervals, err := domain.SortIntervals(r.cfg.Intervals)
	if err != nil {
		return nil, err
	}
	epoch, err := snapshot.PeekRoot(r.cfg.rootConfig(intervals), now)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Epoch: epoch}
	var upper string
	for i, iv := range intervals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step := PlanStep{Interval: iv.Name, Priority: iv.Priority, Retention: iv.Retention}
		store := snapshot.NewStore(epoch.Path, iv, r.cfg.LatestName)

		due, last, err := store.IsDue(now)
		step.Due, step.Last = due, last
		if err != nil {
			step.Error = err.Error()
			plan.Steps = append(plan.Steps, step)
			upper = ""
			continue
		}

		if i == 0 {
			if last != nil {
				step.Source = last.Path
			}
		} else {
			step.Source = upper
		}

		if due {
			alloc, err := store.Allocate(now)
			if err != nil {
				step.Error = err.Error()
			} else {
				step.Alloc = alloc
			}
		}

		switch {
		case step.Alloc != nil:
			upper = step.Alloc.Target
		case last != nil:
			upper = last.Path
		default:
			upper = ""
		}
		plan.Steps = append(plan.Steps, step)
	}
	return plan, nil
}
