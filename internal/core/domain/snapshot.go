package domain

import (
	"fmt"
	"time"
)

// TimestampLayout names every epoch and snapshot directory. It is fixed
// width, so lexical order of names equals chronological order.
const TimestampLayout = "2006-01-02_15-04-05"

// DefaultLatestName is the default name of the movable latest pointers.
const DefaultLatestName = "latest"

// FormatTimestamp renders t as a directory name.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a directory name produced by FormatTimestamp.
// Names are interpreted in the local time zone, like they were written.
func ParseTimestamp(name string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, name, time.Local)
}

// IsTimestampName reports whether name is a well-formed snapshot name.
func IsTimestampName(name string) bool {
	if len(name) != len(TimestampLayout) {
		return false
	}
	_, err := ParseTimestamp(name)
	return err == nil
}

// Snapshot is a name bound to a directory. Recycling rebinds an old
// directory to a new name, so the name is the identity.
type Snapshot struct {
	Interval  string    `json:"interval" yaml:"interval"`
	Name      string    `json:"name" yaml:"name"`
	Path      string    `json:"path" yaml:"path" table:"wide"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Mode is the allocation outcome for a due interval.
type Mode int

const (
	// ModeFirst allocates the first snapshot of an interval.
	ModeFirst Mode = iota + 1
	// ModeReuse allocates a new directory; the retention bound is not reached.
	ModeReuse
	// ModeRecycle renames the oldest snapshot to the new name and refreshes it.
	ModeRecycle
)

// String returns the mode name used in logs and metrics.
func (m Mode) String() string {
	switch m {
	case ModeFirst:
		return "first"
	case ModeReuse:
		return "reuse"
	case ModeRecycle:
		return "recycle"
	default:
		return "unknown"
	}
}

// MarshalText renders the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses a mode name produced by MarshalText.
func (m *Mode) UnmarshalText(b []byte) error {
	for _, c := range []Mode{ModeFirst, ModeReuse, ModeRecycle} {
		if string(b) == c.String() {
			*m = c
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", b)
}
