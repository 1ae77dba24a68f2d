package mover

import "context"

// MirrorRequest describes one population of the top interval.
type MirrorRequest struct {
	// Dest is the staged directory to fill.
	Dest string
	// LinkDest, when set, is a previous snapshot whose unchanged files are
	// hardlinked instead of transferred.
	LinkDest string
}

// DataMover mirrors the configured sources into a directory.
type DataMover interface {
	Mirror(ctx context.Context, req MirrorRequest) error
}

// LinkCopier makes dst mirror src using hardlinks for regular files.
// Entries in dst that are absent from src are removed.
type LinkCopier interface {
	LinkCopy(ctx context.Context, src, dst string) error
}
