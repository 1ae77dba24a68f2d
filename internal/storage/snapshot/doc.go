// Package snapshot manages timestamp-named snapshot directories.
//
// Layout of a backup root:
//
//	<root>/
//	  latest -> 2024-05-01_00-00-00      epoch pointer
//	  2024-05-01_00-00-00/               one directory per full-backup epoch
//	    hourly/
//	      latest -> 2024-05-03_14-00-00  newest snapshot of the interval
//	      2024-05-03_13-00-00/
//	      2024-05-03_14-00-00/
//	    daily/
//	      ...
//
// Directory names are the only persisted state. A Store owns one interval
// directory: it lists real snapshots, resolves the latest pointer, decides
// whether a rotation is due, allocates the next name and publishes a staged
// directory. InitRoot owns the epoch level.
//
// Publishing sequence:
//
//  1. Stage under "<name>.partial" (fresh, or the recycled oldest snapshot)
//  2. Populate the staged directory
//  3. Rename to "<name>"
//  4. Replace the latest pointer (symlink renamed over the old one)
//  5. Prune generations beyond the retention count
package snapshot
