// Package confloader loads layered configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults (a nested map supplied by the caller)
//  2. Configuration file (YAML)
//  3. Environment variables (GENBACK_ prefix)
//  4. Overrides (usually command-line flags)
//
// Environment names map onto keys by lowercasing, taking the first
// underscore after the prefix as the section separator and "__" as any
// deeper separator:
//
//	GENBACK_BACKUP_TARGET_DIR               -> backup.target_dir
//	GENBACK_BACKUP_FULL_BACKUP_CYCLE__DAYS  -> backup.full_backup_cycle.days
package confloader
