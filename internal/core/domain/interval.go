package domain

import (
	"cmp"
	"slices"
	"time"
)

// Cycle is a period expressed in calendar-free components, the way it is
// written in configuration files.
type Cycle struct {
	Days    int `koanf:"days" yaml:"days"`
	Hours   int `koanf:"hours" yaml:"hours"`
	Minutes int `koanf:"minutes" yaml:"minutes"`
	Seconds int `koanf:"seconds" yaml:"seconds"`
}

// Duration returns the cycle as a time.Duration.
func (c Cycle) Duration() time.Duration {
	return time.Duration(c.Days)*24*time.Hour +
		time.Duration(c.Hours)*time.Hour +
		time.Duration(c.Minutes)*time.Minute +
		time.Duration(c.Seconds)*time.Second
}

// Valid reports whether every component is non-negative.
func (c Cycle) Valid() bool {
	return c.Days >= 0 && c.Hours >= 0 && c.Minutes >= 0 && c.Seconds >= 0
}

// Interval is a named retention tier.
type Interval struct {
	Name      string        `json:"name" yaml:"name"`
	Priority  int           `json:"priority" yaml:"priority"`
	Retention int           `json:"keep" yaml:"keep"`
	Cycle     time.Duration `json:"cycle" yaml:"cycle"`
}

// SortIntervals returns the intervals ordered by descending priority.
//
// Duplicate priorities are rejected before anything touches the disk. The
// input slice is not modified.
func SortIntervals(in []Interval) ([]Interval, error) {
	seen := make(map[int]string, len(in))
	for _, iv := range in {
		if other, ok := seen[iv.Priority]; ok {
			return nil, ErrDuplicatePriority.
				WithInterval(iv.Name).
				WithDetails("priority %d is also used by %q", iv.Priority, other)
		}
		seen[iv.Priority] = iv.Name
	}

	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b Interval) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	return out, nil
}
