package service

import (
	"os"
	"path/filepath"

	"github.com/yndnr/genback/internal/core/domain"
	"github.com/yndnr/genback/internal/storage/snapshot"
)

// IntervalInventory lists one interval directory.
type IntervalInventory struct {
	Interval  string            `json:"interval" yaml:"interval"`
	Latest    string            `json:"latest,omitempty" yaml:"latest,omitempty"`
	Snapshots []domain.Snapshot `json:"snapshots" yaml:"snapshots"`
	Fault     string            `json:"fault,omitempty" yaml:"fault,omitempty"`
}

// EpochInventory lists one epoch.
type EpochInventory struct {
	snapshot.Epoch `yaml:",inline"`
	Current        bool                `json:"current" yaml:"current"`
	Intervals      []IntervalInventory `json:"intervals" yaml:"intervals"`
}

// Inventory lists every epoch under root with the snapshots of each
// interval directory found in it. Configured intervals are not required;
// whatever is on disk is reported.
func Inventory(root, latestName string) ([]EpochInventory, error) {
	if latestName == "" {
		latestName = domain.DefaultLatestName
	}
	epochs, err := snapshot.ListEpochs(root)
	if err != nil {
		return nil, err
	}
	current, _, _ := snapshot.ReadPointer(filepath.Join(root, latestName))

	out := make([]EpochInventory, 0, len(epochs))
	for _, ep := range epochs {
		inv := EpochInventory{Epoch: ep, Current: ep.Path == current}
		entries, err := os.ReadDir(ep.Path)
		if err != nil {
			return nil, domain.ErrFilesystem.WithPath(ep.Path).WithCause(err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			inv.Intervals = append(inv.Intervals, listInterval(ep.Path, e.Name(), latestName))
		}
		out = append(out, inv)
	}
	return out, nil
}

func listInterval(epochDir, name, latestName string) IntervalInventory {
	store := snapshot.NewStore(epochDir, domain.Interval{Name: name}, latestName)
	res := IntervalInventory{Interval: name}

	snaps, err := store.List()
	if err != nil {
		res.Fault = err.Error()
		return res
	}
	res.Snapshots = snaps
	last, err := store.Latest()
	switch {
	case err != nil:
		res.Fault = err.Error()
	case last != nil:
		res.Latest = last.Name
	}
	return res
}
