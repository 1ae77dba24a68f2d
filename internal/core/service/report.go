package service

import (
	"time"

	"github.com/yndnr/genback/internal/core/domain"
	"github.com/yndnr/genback/internal/storage/snapshot"
)

// Outcome is what happened to one interval during a run.
type Outcome string

// Interval outcomes.
const (
	OutcomePublished Outcome = "published"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	OutcomeAborted   Outcome = "aborted"
)

// IntervalResult is the result of one interval in a run.
type IntervalResult struct {
	Interval string  `json:"interval" yaml:"interval"`
	Outcome  Outcome `json:"outcome" yaml:"outcome"`
	// Mode is set when a snapshot was allocated.
	Mode domain.Mode `json:"mode,omitempty" yaml:"mode,omitempty"`
	// Snapshot is the published snapshot, or the current one when skipped.
	Snapshot *domain.Snapshot `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
	// Source is the snapshot the content was linked from.
	Source   string        `json:"source,omitempty" yaml:"source,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Err      error         `json:"-" yaml:"-"`
}

// Report summarises a run.
type Report struct {
	RunID    string           `json:"run_id" yaml:"run_id"`
	Started  time.Time        `json:"started" yaml:"started"`
	Duration time.Duration    `json:"duration" yaml:"duration"`
	Epoch    *snapshot.Epoch  `json:"epoch,omitempty" yaml:"epoch,omitempty"`
	Results  []IntervalResult `json:"results" yaml:"results"`
}

// Published returns the number of intervals that published a snapshot.
func (r *Report) Published() int {
	var n int
	for _, res := range r.Results {
		if res.Outcome == OutcomePublished {
			n++
		}
	}
	return n
}
