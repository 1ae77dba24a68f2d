package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yndnr/genback/internal/core/domain"
	"github.com/yndnr/genback/internal/storage/snapshot"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their configuration key.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Verify validates the configuration. Every failure matches
// domain.ErrInvalidConfig except duplicate interval priorities, which
// match domain.ErrDuplicatePriority.
func Verify(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return domain.ErrInvalidConfig.WithDetails("%s", describe(err)).WithCause(err)
	}
	if err := verifyBackup(&cfg.Backup); err != nil {
		return err
	}
	if err := verifyIntervals(cfg); err != nil {
		return err
	}
	return nil
}

func verifyBackup(b *BackupSection) error {
	fi, err := os.Stat(b.TargetDir)
	if err != nil || !fi.IsDir() {
		return domain.ErrInvalidConfig.WithPath(b.TargetDir).
			WithDetails("backup.target_dir does not exist or is not a directory, please create it")
	}
	if !b.FullBackupCycle.Valid() {
		return domain.ErrInvalidConfig.WithDetails("backup.full_backup_cycle has a negative component")
	}
	if err := plainName(b.Latest); err != nil {
		return domain.ErrInvalidConfig.WithDetails("backup.latest: %v", err)
	}
	return nil
}

func verifyIntervals(cfg *Config) error {
	names := make(map[string]bool, len(cfg.Backup.Intervals))
	for _, iv := range cfg.Backup.Intervals {
		if err := plainName(iv.Name); err != nil {
			return domain.ErrInvalidConfig.WithInterval(iv.Name).WithDetails("%v", err)
		}
		if iv.Name == cfg.Backup.Latest {
			return domain.ErrInvalidConfig.WithInterval(iv.Name).
				WithDetails("interval name collides with the latest pointer name")
		}
		if names[iv.Name] {
			return domain.ErrInvalidConfig.WithInterval(iv.Name).WithDetails("interval name is used twice")
		}
		names[iv.Name] = true

		if !iv.Cycle.Valid() {
			return domain.ErrInvalidConfig.WithInterval(iv.Name).WithDetails("cycle has a negative component")
		}
		if iv.Cycle.Duration() <= 0 {
			return domain.ErrInvalidConfig.WithInterval(iv.Name).WithDetails("cycle must be greater than zero")
		}
	}

	if _, err := domain.SortIntervals(cfg.Intervals()); err != nil {
		return err
	}
	return nil
}

// plainName rejects names that cannot be a single directory entry or that
// would be mistaken for snapshot state.
func plainName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%q is not a valid directory name", name)
	case strings.ContainsRune(name, os.PathSeparator):
		return fmt.Errorf("%q must not contain a path separator", name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%q must not start with a dot", name)
	case strings.HasSuffix(name, snapshot.StagingSuffix):
		return fmt.Errorf("%q must not end in %s", name, snapshot.StagingSuffix)
	case domain.IsTimestampName(name):
		return fmt.Errorf("%q looks like a snapshot timestamp", name)
	}
	return nil
}

// describe turns validator errors into "key: problem" messages.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := fe.Namespace()
		if _, rest, ok := strings.Cut(key, "."); ok {
			key = rest
		}
		var msg string
		switch fe.Tag() {
		case "required", "required_if":
			msg = "is required"
		case "min":
			msg = "must be at least " + fe.Param()
		case "max":
			msg = "must be at most " + fe.Param()
		case "oneof":
			msg = "must be one of: " + fe.Param()
		default:
			msg = "failed " + fe.Tag() + " check"
		}
		msgs = append(msgs, key+" "+msg)
	}
	return strings.Join(msgs, "; ")
}
