// Command genback keeps generational backups of a set of directories.
//
// The highest priority interval is mirrored from the sources with rsync,
// locally or over ssh. Every lower interval is a hardlinked copy of the
// interval above it, so unchanged files share storage across all
// snapshots. Each interval keeps a fixed number of timestamped snapshots
// and a latest pointer; the oldest snapshot is recycled once the count is
// reached.
//
// Typical use from cron:
//
//	genback -c /etc/genback.yaml run --metrics-textfile /var/lib/node_exporter/genback.prom
//
// Exit status: 0 success, 1 other error, 2 invalid configuration,
// 3 duplicate interval priorities, 4 population failure, 5 integrity
// fault, 6 another run holds the lock, 128+N killed by signal N.
package main
