package mover

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yndnr/genback/internal/telemetry/logger"
)

// exitVanished is rsync's status for files deleted on the source while
// the transfer ran. The snapshot is still consistent.
const exitVanished = 24

// Remote is an ssh source host.
type Remote struct {
	Host         string
	Port         int
	User         string
	IdentityFile string
}

// RsyncOptions configures Rsync.
type RsyncOptions struct {
	RsyncPath string
	SSHPath   string
	// Sources are the paths mirrored by Mirror.
	Sources  []string
	Excludes []string
	// Relative keeps full source paths under the destination (-R).
	Relative  bool
	ExtraArgs []string
	// Remote, when set, fetches Sources from that host over ssh.
	Remote *Remote
}

// Rsync drives the rsync binary. It is both a DataMover and a LinkCopier.
type Rsync struct {
	opts   RsyncOptions
	runner Runner
}

// NewRsync returns an Rsync. A nil runner uses ExecRunner.
func NewRsync(opts RsyncOptions, runner Runner) *Rsync {
	if opts.RsyncPath == "" {
		opts.RsyncPath = "rsync"
	}
	if opts.SSHPath == "" {
		opts.SSHPath = "ssh"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Rsync{opts: opts, runner: runner}
}

// MirrorArgs returns the rsync arguments for req.
func (r *Rsync) MirrorArgs(req MirrorRequest) []string {
	args := []string{"-a", "--delete", "--numeric-ids"}
	if r.opts.Relative {
		args = append(args, "-R")
	}
	for _, ex := range r.opts.Excludes {
		args = append(args, "--exclude="+ex)
	}
	if req.LinkDest != "" {
		args = append(args, "--link-dest="+absPath(req.LinkDest))
	}
	if r.opts.Remote != nil {
		args = append(args, "-e", r.sshCommand())
	}
	args = append(args, r.opts.ExtraArgs...)

	for _, src := range r.opts.Sources {
		args = append(args, r.sourceSpec(src))
	}
	return append(args, withSlash(req.Dest))
}

// Mirror implements DataMover.
func (r *Rsync) Mirror(ctx context.Context, req MirrorRequest) error {
	if len(r.opts.Sources) == 0 {
		return fmt.Errorf("rsync: no sources configured")
	}
	return r.run(ctx, r.MirrorArgs(req))
}

// LinkCopyArgs returns the rsync arguments for LinkCopy.
func (r *Rsync) LinkCopyArgs(src, dst string) []string {
	return []string{
		"-a", "--delete", "--numeric-ids",
		"--link-dest=" + absPath(src),
		withSlash(src),
		withSlash(dst),
	}
}

// LinkCopy implements LinkCopier with rsync --link-dest. rsync only
// consults --link-dest for files missing from dst, so regular files of a
// recycled dst that are not already links to src are removed first.
func (r *Rsync) LinkCopy(ctx context.Context, src, dst string) error {
	dropped, err := dropUnlinked(ctx, src, dst)
	if err != nil {
		return fmt.Errorf("prepare link copy: %w", err)
	}
	if dropped > 0 {
		logger.L(ctx).Debug("dropped stale files before link copy", "dst", dst, "count", dropped)
	}
	return r.run(ctx, r.LinkCopyArgs(src, dst))
}

// dropUnlinked removes every regular file of dst that is not the same
// inode as its counterpart in src. A missing dst is not an error.
func dropUnlinked(ctx context.Context, src, dst string) (int, error) {
	var dropped int
	err := filepath.WalkDir(dst, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dst {
				return filepath.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dst, path)
		if err != nil {
			return err
		}
		di, err := d.Info()
		if err != nil {
			return err
		}
		if si, err := os.Lstat(filepath.Join(src, rel)); err == nil && os.SameFile(si, di) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		dropped++
		return nil
	})
	return dropped, err
}

func (r *Rsync) run(ctx context.Context, args []string) error {
	log := logger.L(ctx)
	log.Debug("running rsync", "path", r.opts.RsyncPath, "args", args)

	out, err := r.runner.Run(ctx, r.opts.RsyncPath, args...)
	var ce *CommandError
	if errors.As(err, &ce) && ce.ExitCode == exitVanished {
		log.Warn("source files vanished during transfer", "output", ce.Output)
		err = nil
	}
	if err != nil {
		log.Error("rsync failed", "error", err)
		return err
	}
	if len(out) > 0 {
		log.Debug("rsync output", "output", tail(out))
	}
	return nil
}

func (r *Rsync) sshCommand() string {
	parts := []string{r.opts.SSHPath}
	if r.opts.Remote.Port > 0 {
		parts = append(parts, "-p", strconv.Itoa(r.opts.Remote.Port))
	}
	if r.opts.Remote.IdentityFile != "" {
		parts = append(parts, "-i", r.opts.Remote.IdentityFile)
	}
	return strings.Join(parts, " ")
}

func (r *Rsync) sourceSpec(src string) string {
	if r.opts.Remote == nil {
		return src
	}
	host := r.opts.Remote.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if r.opts.Remote.User != "" {
		host = r.opts.Remote.User + "@" + host
	}
	return host + ":" + src
}

// withSlash makes rsync copy the contents of a directory, not the
// directory itself.
func withSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

// absPath keeps --link-dest independent of rsync's relative resolution,
// which is against the destination directory.
func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
