// Package lockfile serialises rotation runs against one backup root.
//
// The lock is an advisory flock(2) on a small file that also records the
// PID of the holder. The kernel drops the lock when the process dies, so
// a stale file never blocks the next run.
package lockfile
