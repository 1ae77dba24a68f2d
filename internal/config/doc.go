// Package config defines the genback configuration file.
//
// A minimal configuration:
//
//	backup:
//	  target_dir: /mnt/backup
//	  full_backup_cycle: {days: 90}
//	  intervals:
//	    - {name: hourly, prio: 40, keep: 24, cycle: {hours: 1}}
//	    - {name: daily,  prio: 30, keep: 7,  cycle: {days: 1}}
//	source:
//	  paths: [/etc, /home]
//
// Load merges defaults, the YAML file, GENBACK_ environment variables and
// flag overrides. Verify checks the result before anything touches disk.
package config
