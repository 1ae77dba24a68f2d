package config

import (
	"path/filepath"
	"time"

	"github.com/yndnr/genback/internal/core/domain"
)

// Config is the root configuration for genback.
type Config struct {
	Backup  BackupSection  `koanf:"backup" yaml:"backup"`
	Source  SourceSection  `koanf:"source" yaml:"source"`
	Remote  RemoteSection  `koanf:"remote" yaml:"remote"`
	Mover   MoverSection   `koanf:"mover" yaml:"mover"`
	Log     LogSection     `koanf:"log" yaml:"log"`
	Metrics MetricsSection `koanf:"metrics" yaml:"metrics"`
}

// BackupSection configures the backup root and its intervals.
type BackupSection struct {
	TargetDir string `koanf:"target_dir" yaml:"target_dir" validate:"required"`
	// Latest is the name of every latest pointer, at root and interval level.
	Latest string `koanf:"latest" yaml:"latest" validate:"required"`
	// FullBackupCycle is the epoch period. Zero never starts a new epoch.
	FullBackupCycle domain.Cycle     `koanf:"full_backup_cycle" yaml:"full_backup_cycle"`
	Intervals       []IntervalConfig `koanf:"intervals" yaml:"intervals" validate:"required,min=1,dive"`
	// ContinueOnPrimaryFailure keeps rotating lower intervals when the top
	// interval fails; they link from its previous snapshot.
	ContinueOnPrimaryFailure bool `koanf:"continue_on_primary_failure" yaml:"continue_on_primary_failure"`
	// LockFile defaults to <target_dir>/.genback.lock.
	LockFile string `koanf:"lock_file" yaml:"lock_file,omitempty"`
}

// IntervalConfig is one configured interval.
type IntervalConfig struct {
	Name  string       `koanf:"name" yaml:"name" validate:"required"`
	Prio  int          `koanf:"prio" yaml:"prio"`
	Keep  int          `koanf:"keep" yaml:"keep" validate:"min=1"`
	Cycle domain.Cycle `koanf:"cycle" yaml:"cycle"`
}

// SourceSection lists what is backed up.
type SourceSection struct {
	Paths    []string `koanf:"paths" yaml:"paths" validate:"required,min=1,dive,required"`
	Excludes []string `koanf:"excludes" yaml:"excludes,omitempty"`
	// Relative preserves full source paths under the snapshot (rsync -R).
	Relative bool `koanf:"relative" yaml:"relative"`
}

// RemoteSection configures fetching the sources over ssh.
type RemoteSection struct {
	Enabled      bool   `koanf:"enabled" yaml:"enabled"`
	Host         string `koanf:"host" yaml:"host" validate:"required_if=Enabled true"`
	Port         int    `koanf:"port" yaml:"port" validate:"min=1,max=65535"`
	User         string `koanf:"user" yaml:"user"`
	IdentityFile string `koanf:"identity_file" yaml:"identity_file,omitempty"`
}

// MoverSection configures the external tools.
type MoverSection struct {
	RsyncPath string `koanf:"rsync_path" yaml:"rsync_path" validate:"required"`
	SSHPath   string `koanf:"ssh_path" yaml:"ssh_path" validate:"required"`
	// Linker selects the hardlink copier for lower intervals.
	Linker    string   `koanf:"linker" yaml:"linker" validate:"oneof=native rsync"`
	ExtraArgs []string `koanf:"extra_args" yaml:"extra_args,omitempty"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `koanf:"format" yaml:"format" validate:"oneof=json text console"`
	// File appends logs to a file instead of stderr.
	File string `koanf:"file" yaml:"file,omitempty"`
}

// MetricsSection configures the node_exporter textfile.
type MetricsSection struct {
	Textfile string `koanf:"textfile" yaml:"textfile,omitempty"`
}

// Intervals converts the configured intervals to domain values in
// configuration order.
func (c *Config) Intervals() []domain.Interval {
	out := make([]domain.Interval, len(c.Backup.Intervals))
	for i, iv := range c.Backup.Intervals {
		out[i] = domain.Interval{
			Name:      iv.Name,
			Priority:  iv.Prio,
			Retention: iv.Keep,
			Cycle:     iv.Cycle.Duration(),
		}
	}
	return out
}

// FullCycle returns the epoch period.
func (c *Config) FullCycle() time.Duration {
	return c.Backup.FullBackupCycle.Duration()
}

// LockPath returns the lock file used for a run.
func (c *Config) LockPath() string {
	if c.Backup.LockFile != "" {
		return c.Backup.LockFile
	}
	return filepath.Join(c.Backup.TargetDir, DefaultLockName)
}
