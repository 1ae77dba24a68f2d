// Package command defines the genback commands on urfave/cli/v2:
//
//   - run:     rotate every due interval (locked, crash guarded)
//   - plan:    dry-run of the next rotation
//   - list:    inventory of the backup root
//   - check:   configuration validation
//   - config:  default template and effective configuration
//   - version: build information
//
// Every command loads the configuration the same way (defaults, file,
// GENBACK_ environment, flags) and renders its result with the global
// --output format. Errors are mapped to exit statuses by ExitCode.
package command
