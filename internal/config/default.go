package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/genback/internal/core/domain"
)

// Default configuration values.
const (
	DefaultLatest   = domain.DefaultLatestName
	DefaultLockName = ".genback.lock"

	DefaultRemoteHost = "127.0.0.1"
	DefaultRemotePort = 22
	DefaultRemoteUser = "root"

	DefaultRsyncPath = "rsync"
	DefaultSSHPath   = "ssh"
	DefaultLinker    = "native"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default configuration. TargetDir and the source
// paths are left empty and must be supplied.
func Default() *Config {
	return &Config{
		Backup: BackupSection{
			Latest: DefaultLatest,
			Intervals: []IntervalConfig{
				{Name: "hourly", Prio: 40, Keep: 24, Cycle: domain.Cycle{Hours: 1}},
				{Name: "daily", Prio: 30, Keep: 7, Cycle: domain.Cycle{Days: 1}},
				{Name: "weekly", Prio: 20, Keep: 4, Cycle: domain.Cycle{Days: 7}},
				{Name: "monthly", Prio: 10, Keep: 12, Cycle: domain.Cycle{Days: 30}},
			},
		},
		Source: SourceSection{
			Relative: true,
		},
		Remote: RemoteSection{
			Host: DefaultRemoteHost,
			Port: DefaultRemotePort,
			User: DefaultRemoteUser,
		},
		Mover: MoverSection{
			RsyncPath: DefaultRsyncPath,
			SSHPath:   DefaultSSHPath,
			Linker:    DefaultLinker,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

const templateHeader = `# genback configuration
#
# backup.target_dir must exist before the first run.
# backup.full_backup_cycle starts a new epoch directory when exceeded;
# all zero disables it.
# Interval priorities must be unique; the highest one is fetched with
# rsync, every other interval is hardlinked from the one above it.
`

// Template renders cfg as a commented YAML document.
func Template(cfg *Config) ([]byte, error) {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return append([]byte(templateHeader+"---\n"), b...), nil
}

// DefaultMap returns Default as a nested map suitable for the loader.
func DefaultMap() (map[string]any, error) {
	b, err := yaml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("marshal defaults: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal defaults: %w", err)
	}
	return m, nil
}
