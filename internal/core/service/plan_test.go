package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/genback/internal/core/domain"
	"github.com/yndnr/genback/internal/mover"
)

func TestPlan_FreshRoot(t *testing.T) {
	f := newFixture(t, daily, hourly)

	plan, err := f.rotation(mover.Linker{}).Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !plan.Epoch.Created {
		t.Error("plan should report a new epoch")
	}
	if len(plan.Steps) != 2 || plan.Steps[0].Interval != "hourly" {
		t.Fatalf("steps = %+v", plan.Steps)
	}
	for _, st := range plan.Steps {
		if !st.Due || st.Alloc == nil || st.Alloc.Mode != domain.ModeFirst {
			t.Errorf("step %s = %+v, want due first", st.Interval, st)
		}
	}
	if plan.Steps[1].Source != plan.Steps[0].Alloc.Target {
		t.Errorf("daily source = %q, want hourly target", plan.Steps[1].Source)
	}

	entries, _ := os.ReadDir(f.root)
	if len(entries) != 0 {
		t.Errorf("Plan modified root: %d entries", len(entries))
	}
}

func TestPlan_MatchesRun(t *testing.T) {
	f := newFixture(t, hourly, daily)
	if _, err := f.runAt(t, t0); err != nil {
		t.Fatal(err)
	}

	f.clock.now = t0.Add(30 * time.Minute)
	plan, err := f.rotation(mover.Linker{}).Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for _, st := range plan.Steps {
		if st.Due {
			t.Errorf("%s should not be due", st.Interval)
		}
	}
	if want := filepath.Join(f.store(t, hourly).Dir(), domain.FormatTimestamp(t0)); plan.Steps[1].Source != want {
		t.Errorf("daily source = %q, want hourly latest %q", plan.Steps[1].Source, want)
	}

	f.clock.now = t0.Add(25 * time.Hour)
	plan, err = f.rotation(mover.Linker{}).Plan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	report, err := f.rotation(mover.Linker{}).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i, st := range plan.Steps {
		res := report.Results[i]
		if st.Alloc == nil || res.Snapshot == nil || st.Alloc.Target != res.Snapshot.Path {
			t.Errorf("%s: plan %+v does not match run %+v", st.Interval, st.Alloc, res)
		}
	}
}

func TestPlan_ReportsFaultPerInterval(t *testing.T) {
	f := newFixture(t, hourly, daily)
	if _, err := f.runAt(t, t0); err != nil {
		t.Fatal(err)
	}
	s := f.store(t, daily)
	if err := os.RemoveAll(filepath.Join(s.Dir(), domain.FormatTimestamp(t0))); err != nil {
		t.Fatal(err)
	}

	plan, err := f.rotation(mover.Linker{}).Plan(context.Background())
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Steps[0].Error != "" {
		t.Errorf("hourly error = %q", plan.Steps[0].Error)
	}
	if plan.Steps[1].Error == "" {
		t.Error("daily should report the dangling pointer")
	}
}
