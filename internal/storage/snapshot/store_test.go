package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/genback/internal/core/domain"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)

func daily(keep int) domain.Interval {
	return domain.Interval{Name: "daily", Priority: 5, Retention: keep, Cycle: 24 * time.Hour}
}

// seed creates real snapshot directories (each holding one marker file)
// and points latest at the last one.
func seed(t *testing.T, s *Store, times ...time.Time) []string {
	t.Helper()
	var names []string
	for _, ts := range times {
		name := domain.FormatTimestamp(ts)
		dir := filepath.Join(s.Dir(), name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
		if err := os.WriteFile(filepath.Join(dir, "marker"), []byte(name), 0o644); err != nil {
			t.Fatalf("write marker: %v", err)
		}
		names = append(names, name)
	}
	if len(names) > 0 {
		if err := Repoint(s.LatestPath(), names[len(names)-1]); err != nil {
			t.Fatalf("Repoint: %v", err)
		}
	}
	return names
}

func snapshotNames(t *testing.T, s *Store) []string {
	t.Helper()
	snaps, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	names := make([]string, len(snaps))
	for i, sn := range snaps {
		names[i] = sn.Name
	}
	return names
}

func TestStore_ListIgnoresPointerStagingAndForeign(t *testing.T) {
	s := NewStore(t.TempDir(), daily(3), "latest")
	seed(t, s, t0.Add(24*time.Hour), t0)

	if err := os.Mkdir(s.StagingPath(domain.FormatTimestamp(t0.Add(48*time.Hour))), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(s.Dir(), "lost+found"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), domain.FormatTimestamp(t0.Add(time.Hour))), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got := snapshotNames(t, s)
	want := []string{domain.FormatTimestamp(t0), domain.FormatTimestamp(t0.Add(24 * time.Hour))}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestStore_ListMissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope"), daily(3), "latest")
	snaps, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(snaps) != 0 {
		t.Errorf("len = %d, want 0", len(snaps))
	}
}

func TestStore_LatestNoPointer(t *testing.T) {
	s := NewStore(t.TempDir(), daily(3), "latest")
	last, err := s.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if last != nil {
		t.Errorf("Latest() = %+v, want nil", last)
	}
}

func TestStore_LatestResolves(t *testing.T) {
	s := NewStore(t.TempDir(), daily(3), "latest")
	names := seed(t, s, t0, t0.Add(24*time.Hour))

	last, err := s.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if last.Name != names[1] {
		t.Errorf("Latest().Name = %q, want %q", last.Name, names[1])
	}
	if !last.CreatedAt.Equal(t0.Add(24 * time.Hour)) {
		t.Errorf("CreatedAt = %v", last.CreatedAt)
	}
}

func TestStore_LatestIntegrityFaults(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, s *Store)
	}{
		{
			name: "dangling pointer",
			setup: func(t *testing.T, s *Store) {
				names := seed(t, s, t0)
				if err := os.RemoveAll(filepath.Join(s.Dir(), names[0])); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "pointer is a directory",
			setup: func(t *testing.T, s *Store) {
				if err := os.MkdirAll(s.LatestPath(), 0o755); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "pointer targets staging",
			setup: func(t *testing.T, s *Store) {
				name := domain.FormatTimestamp(t0)
				if err := os.MkdirAll(s.StagingPath(name), 0o755); err != nil {
					t.Fatal(err)
				}
				if err := Repoint(s.LatestPath(), name+StagingSuffix); err != nil {
					t.Fatal(err)
				}
			},
		},
		{
			name: "pointer targets a file",
			setup: func(t *testing.T, s *Store) {
				if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
					t.Fatal(err)
				}
				name := domain.FormatTimestamp(t0)
				if err := os.WriteFile(filepath.Join(s.Dir(), name), nil, 0o644); err != nil {
					t.Fatal(err)
				}
				if err := Repoint(s.LatestPath(), name); err != nil {
					t.Fatal(err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(t.TempDir(), daily(3), "latest")
			tt.setup(t, s)

			_, err := s.Latest()
			if !errors.Is(err, domain.ErrIntegrityFault) {
				t.Fatalf("Latest() err = %v, want ErrIntegrityFault", err)
			}

			// Never reinterpreted as "not backed up yet".
			due, _, err := s.IsDue(t0.Add(time.Hour))
			if due || !errors.Is(err, domain.ErrIntegrityFault) {
				t.Errorf("IsDue() = %v, %v; want false, ErrIntegrityFault", due, err)
			}
		})
	}
}

func TestDue_Boundary(t *testing.T) {
	cycle := 24 * time.Hour
	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"one hour later", t0.Add(time.Hour), false},
		{"one second early", t0.Add(cycle - time.Second), false},
		{"exactly at boundary", t0.Add(cycle), true},
		{"25 hours later", t0.Add(25 * time.Hour), true},
		{"clock went backwards", t0.Add(-time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Due(cycle, tt.now, t0); got != tt.want {
				t.Errorf("Due() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore_IsDue(t *testing.T) {
	s := NewStore(t.TempDir(), daily(3), "latest")

	due, last, err := s.IsDue(t0)
	if err != nil || !due || last != nil {
		t.Fatalf("IsDue() without pointer = %v, %v, %v; want true, nil, nil", due, last, err)
	}

	seed(t, s, t0)
	due, last, err = s.IsDue(t0.Add(time.Hour))
	if err != nil || due {
		t.Errorf("IsDue(+1h) = %v, %v; want false", due, err)
	}
	if last == nil || last.Name != domain.FormatTimestamp(t0) {
		t.Errorf("last = %+v", last)
	}

	due, _, err = s.IsDue(t0.Add(25 * time.Hour))
	if err != nil || !due {
		t.Errorf("IsDue(+25h) = %v, %v; want true", due, err)
	}
}

func TestStore_Allocate(t *testing.T) {
	t.Run("first", func(t *testing.T) {
		s := NewStore(t.TempDir(), daily(3), "latest")
		a, err := s.Allocate(t0)
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		if a.Mode != domain.ModeFirst || a.Recycle != nil {
			t.Errorf("Allocate() = %+v, want first", a)
		}
		if a.Name != domain.FormatTimestamp(t0) || a.Target != filepath.Join(s.Dir(), a.Name) {
			t.Errorf("unexpected target %q / %q", a.Name, a.Target)
		}
	})

	t.Run("reuse below retention", func(t *testing.T) {
		s := NewStore(t.TempDir(), daily(3), "latest")
		seed(t, s, t0)
		a, err := s.Allocate(t0.Add(25 * time.Hour))
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		if a.Mode != domain.ModeReuse || a.Recycle != nil {
			t.Errorf("Allocate() = %+v, want reuse", a)
		}
	})

	t.Run("recycle oldest at retention", func(t *testing.T) {
		s := NewStore(t.TempDir(), daily(3), "latest")
		names := seed(t, s, t0, t0.Add(24*time.Hour), t0.Add(48*time.Hour))
		a, err := s.Allocate(t0.Add(72 * time.Hour))
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		if a.Mode != domain.ModeRecycle {
			t.Fatalf("Mode = %v, want recycle", a.Mode)
		}
		if a.Recycle == nil || a.Recycle.Name != names[0] {
			t.Errorf("Recycle = %+v, want %s", a.Recycle, names[0])
		}
	})

	t.Run("recycle with keep one never takes latest", func(t *testing.T) {
		s := NewStore(t.TempDir(), daily(1), "latest")
		seed(t, s, t0)
		a, err := s.Allocate(t0.Add(25 * time.Hour))
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		if a.Mode != domain.ModeRecycle || a.Recycle != nil {
			t.Errorf("Allocate() = %+v, want recycle without candidate", a)
		}
	})

	t.Run("collision on same tick", func(t *testing.T) {
		s := NewStore(t.TempDir(), daily(3), "latest")
		seed(t, s, t0)
		_, err := s.Allocate(t0.Add(500 * time.Millisecond))
		if !errors.Is(err, domain.ErrNameCollision) {
			t.Errorf("err = %v, want ErrNameCollision", err)
		}
	})

	t.Run("name never older than existing", func(t *testing.T) {
		s := NewStore(t.TempDir(), daily(3), "latest")
		seed(t, s, t0)
		_, err := s.Allocate(t0.Add(-time.Hour))
		if !errors.Is(err, domain.ErrNameCollision) {
			t.Errorf("err = %v, want ErrNameCollision", err)
		}
	})
}

func TestStore_Prune(t *testing.T) {
	s := NewStore(t.TempDir(), daily(2), "latest")
	names := seed(t, s, t0, t0.Add(24*time.Hour), t0.Add(48*time.Hour), t0.Add(72*time.Hour))

	removed, err := s.Prune()
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("removed %v, want 2 entries", removed)
	}

	got := snapshotNames(t, s)
	if len(got) != 2 || got[0] != names[2] || got[1] != names[3] {
		t.Errorf("remaining = %v, want %v", got, names[2:])
	}
}

func TestStore_PruneKeepsLatest(t *testing.T) {
	s := NewStore(t.TempDir(), daily(1), "latest")
	names := seed(t, s, t0, t0.Add(24*time.Hour))
	// Point latest at the older one.
	if err := Repoint(s.LatestPath(), names[0]); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Prune(); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	got := snapshotNames(t, s)
	if len(got) != 1 || got[0] != names[0] {
		t.Errorf("remaining = %v, want [%s]", got, names[0])
	}
}
