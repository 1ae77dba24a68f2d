// Package mover moves bytes into a staged snapshot.
//
// Two primitives are provided:
//
//   - DataMover mirrors the configured sources, local or over ssh, into a
//     directory. Rsync implements it.
//   - LinkCopier makes a directory an exact copy of another one in which
//     every regular file is a hardlink to the source file. Linker (pure Go)
//     and Rsync (--link-dest) implement it.
//
// External processes are started through a Runner so tests can observe
// the exact command lines.
package mover
