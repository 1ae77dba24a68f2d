package config

import (
	"slices"

	"github.com/yndnr/genback/internal/telemetry/logger"
)

// Sanitize returns a copy of the config with credentials embedded in
// source URLs or mover arguments masked.
func Sanitize(cfg *Config) *Config {
	sanitized := *cfg
	sanitized.Source.Paths = maskAll(cfg.Source.Paths)
	sanitized.Mover.ExtraArgs = maskAll(cfg.Mover.ExtraArgs)
	sanitized.Backup.Intervals = slices.Clone(cfg.Backup.Intervals)
	return &sanitized
}

func maskAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = logger.RedactString(s)
	}
	return out
}
