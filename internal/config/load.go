package config

import (
	"github.com/yndnr/genback/internal/core/domain"
	"github.com/yndnr/genback/internal/infra/confloader"
)

// Keys whose environment values are comma-separated lists.
var listKeys = []string{"source.paths", "source.excludes", "mover.extra_args"}

// Load builds the effective configuration from the defaults, the YAML
// file at path (skipped when empty), the environment and overrides, whose
// keys are dotted paths such as "remote.enabled". It does not verify the
// result.
func Load(path string, overrides map[string]any) (*Config, error) {
	defaults, err := DefaultMap()
	if err != nil {
		return nil, domain.ErrInvalidConfig.WithCause(err)
	}

	l := confloader.NewLoader(
		confloader.WithDefaults(defaults),
		confloader.WithConfigFile(path),
		confloader.WithOverrides(overrides),
		confloader.WithListKeys(listKeys...),
	)

	var cfg Config
	if err := l.Load(&cfg); err != nil {
		e := domain.ErrInvalidConfig.WithCause(err)
		if path != "" {
			e = e.WithPath(path)
		}
		return nil, e
	}
	return &cfg, nil
}
