package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func TestCheck_PrintsExecutionOrder(t *testing.T) {
	e := newEnv(t)

	out, err := runApp(t, "-c", e.config, "check")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("output:\n%s", out)
	}
	if !strings.HasPrefix(lines[1], "1") || !strings.Contains(lines[1], "hourly") {
		t.Errorf("first interval = %q, want hourly", lines[1])
	}
	if !strings.Contains(lines[2], "daily") || !strings.Contains(lines[2], "24h0m0s") {
		t.Errorf("second interval = %q, want daily", lines[2])
	}
}

func TestCheck_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, e *env) []string
		want  int
	}{
		{
			name: "missing config file",
			setup: func(t *testing.T, e *env) []string {
				return []string{"-c", filepath.Join(e.dir, "nope.yaml"), "check"}
			},
			want: ExitConfig,
		},
		{
			name: "duplicate priority",
			setup: func(t *testing.T, e *env) []string {
				cfg := `backup:
  target_dir: ` + e.root + `
  intervals:
    - {name: hourly, prio: 5, keep: 2, cycle: {hours: 1}}
    - {name: daily, prio: 5, keep: 2, cycle: {days: 1}}
source:
  paths: [/etc]
`
				if err := os.WriteFile(e.config, []byte(cfg), 0o644); err != nil {
					t.Fatal(err)
				}
				return []string{"-c", e.config, "check"}
			},
			want: ExitDuplicatePriority,
		},
		{
			name: "missing target dir",
			setup: func(t *testing.T, e *env) []string {
				if err := os.Remove(e.root); err != nil {
					t.Fatal(err)
				}
				return []string{"-c", e.config, "check"}
			},
			want: ExitConfig,
		},
		{
			name: "bad log level flag",
			setup: func(t *testing.T, e *env) []string {
				return []string{"-c", e.config, "--log-level", "loud", "check"}
			},
			want: ExitConfig,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			_, err := runApp(t, tt.setup(t, e)...)
			if got := ExitCode(err); got != tt.want {
				t.Errorf("exit = %d (%v), want %d", got, err, tt.want)
			}
		})
	}
}

func TestCheck_EnvironmentOverride(t *testing.T) {
	e := newEnv(t)
	other := filepath.Join(e.dir, "elsewhere")
	t.Setenv("GENBACK_BACKUP_TARGET_DIR", other)

	// The override points at a directory that does not exist yet.
	if _, err := runApp(t, "-c", e.config, "check"); ExitCode(err) != ExitConfig {
		t.Fatalf("err = %v, want config error", err)
	}
	if err := os.Mkdir(other, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := runApp(t, "-c", e.config, "check"); err != nil {
		t.Errorf("check: %v", err)
	}
}
