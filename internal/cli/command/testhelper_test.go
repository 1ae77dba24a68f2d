package command

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// env is a throwaway backup setup: a source tree, a backup root and a
// configuration file pointing at a scripted rsync.
type env struct {
	dir    string
	root   string
	source string
	rsync  string
	config string
}

// fakeRsync writes "data" into the destination (the last argument) or
// fails with the given status.
const fakeRsync = `#!/bin/sh
for last; do :; done
if [ -n "$FAKE_RSYNC_EXIT" ]; then
	echo "rsync: connection unexpectedly closed" >&2
	exit "$FAKE_RSYNC_EXIT"
fi
echo snapshot > "${last%%/}/data"
`

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	e := &env{
		dir:    dir,
		root:   filepath.Join(dir, "backup"),
		source: filepath.Join(dir, "src"),
		rsync:  filepath.Join(dir, "rsync.sh"),
		config: filepath.Join(dir, "genback.yaml"),
	}
	for _, d := range []string{e.root, e.source} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(e.rsync, []byte(fakeRsync), 0o755); err != nil {
		t.Fatal(err)
	}
	e.writeConfig(t, "")
	return e
}

// writeConfig writes the configuration; extra is appended verbatim.
func (e *env) writeConfig(t *testing.T, extra string) {
	t.Helper()
	cfg := fmt.Sprintf(`backup:
  target_dir: %s
  intervals:
    - {name: hourly, prio: 10, keep: 2, cycle: {hours: 1}}
    - {name: daily, prio: 5, keep: 2, cycle: {days: 1}}
source:
  paths: [%s]
mover:
  rsync_path: %s
log:
  level: error
%s`, e.root, e.source, e.rsync, extra)
	if err := os.WriteFile(e.config, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
}

// runApp runs the application with args and returns stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"genback"}, args...))
	if testing.Verbose() && stderr.Len() > 0 {
		t.Logf("stderr:\n%s", strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), err
}
