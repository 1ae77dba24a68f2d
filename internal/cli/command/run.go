package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/genback/internal/cli/output"
	"github.com/yndnr/genback/internal/config"
	"github.com/yndnr/genback/internal/core/service"
	"github.com/yndnr/genback/internal/infra/buildinfo"
	"github.com/yndnr/genback/internal/infra/lockfile"
	"github.com/yndnr/genback/internal/infra/shutdown"
	"github.com/yndnr/genback/internal/mover"
	"github.com/yndnr/genback/internal/telemetry/logger"
	"github.com/yndnr/genback/internal/telemetry/metric"
)

// sourceFlags select where the sources are fetched from.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "ssh",
			Usage: "Fetch the sources from a remote host over ssh",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "Remote host (with --ssh)",
		},
		&cli.IntFlag{
			Name:  "port",
			Usage: "Remote ssh port (with --ssh)",
		},
		&cli.StringFlag{
			Name:  "user",
			Usage: "Remote user (with --ssh)",
		},
		&cli.BoolFlag{
			Name:  "no-relatives",
			Usage: "Do not preserve full source paths in snapshots",
		},
	}
}

// sourceOverrides turns the source flags that were set into config keys.
func sourceOverrides(c *cli.Context) map[string]any {
	ov := make(map[string]any)
	if c.IsSet("ssh") {
		ov["remote.enabled"] = c.Bool("ssh")
	}
	if c.IsSet("host") {
		ov["remote.host"] = c.String("host")
	}
	if c.IsSet("port") {
		ov["remote.port"] = c.Int("port")
	}
	if c.IsSet("user") {
		ov["remote.user"] = c.String("user")
	}
	if c.Bool("no-relatives") {
		ov["source.relative"] = false
	}
	return ov
}

// RunCommand returns the run command.
func RunCommand() *cli.Command {
	flags := append(sourceFlags(),
		&cli.StringFlag{
			Name:  "metrics-textfile",
			Usage: "Write Prometheus metrics to this file after the run",
		},
		&cli.BoolFlag{
			Name:  "continue-on-primary-failure",
			Usage: "Keep rotating lower intervals when the top interval fails",
		},
	)
	return &cli.Command{
		Name:   "run",
		Usage:  "Rotate every due interval",
		Flags:  flags,
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	ov := sourceOverrides(c)
	if c.IsSet("metrics-textfile") {
		ov["metrics.textfile"] = c.String("metrics-textfile")
	}
	if c.IsSet("continue-on-primary-failure") {
		ov["backup.continue_on_primary_failure"] = c.Bool("continue-on-primary-failure")
	}

	cfg, err := loadConfig(c, ov, true)
	if err != nil {
		return err
	}
	log, closer, err := setupLogger(c, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	bi := buildinfo.Get()
	log.Info("starting genback", "version", bi.Version, "commit", bi.Commit, "target", cfg.Backup.TargetDir)
	log.Debug("effective configuration", "config", fmt.Sprintf("%+v", *config.Sanitize(cfg)))

	lock, err := lockfile.Acquire(cfg.LockPath())
	if err != nil {
		return err
	}
	defer lock.Release()

	ctx, cancel := context.WithCancel(logger.WithLogger(c.Context, log))
	defer cancel()

	guard := shutdown.NewGuard(shutdown.WithLogger(log), shutdown.WithCancel(cancel))
	guard.OnInterrupt(func() {
		if err := lock.Release(); err != nil {
			log.Error("failed to release lock", "path", lock.Path(), "error", err)
		}
	})
	guard.Start()
	defer guard.Stop()

	rsync := mover.NewRsync(rsyncOptions(cfg), mover.ExecRunner{})
	var linker mover.LinkCopier = mover.Linker{}
	if cfg.Mover.Linker == "rsync" {
		linker = rsync
	}

	reg := metric.NewRegistry()
	rot := service.NewRotation(rotationConfig(cfg), rsync, linker,
		service.WithTracker(guard),
		service.WithMetrics(reg),
	)

	report, runErr := rot.Run(ctx)

	if cfg.Metrics.Textfile != "" {
		if err := reg.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn("failed to write metrics textfile", "path", cfg.Metrics.Textfile, "error", err)
		}
	}

	if err := render(c, report, func(wide bool) *output.Table { return reportTable(report, wide) }); err != nil {
		return err
	}
	return runErr
}

func rotationConfig(cfg *config.Config) service.RotationConfig {
	return service.RotationConfig{
		Root:                     cfg.Backup.TargetDir,
		LatestName:               cfg.Backup.Latest,
		FullCycle:                cfg.FullCycle(),
		Intervals:                cfg.Intervals(),
		ContinueOnPrimaryFailure: cfg.Backup.ContinueOnPrimaryFailure,
	}
}

func rsyncOptions(cfg *config.Config) mover.RsyncOptions {
	opts := mover.RsyncOptions{
		RsyncPath: cfg.Mover.RsyncPath,
		SSHPath:   cfg.Mover.SSHPath,
		Sources:   cfg.Source.Paths,
		Excludes:  cfg.Source.Excludes,
		Relative:  cfg.Source.Relative,
		ExtraArgs: cfg.Mover.ExtraArgs,
	}
	if cfg.Remote.Enabled {
		opts.Remote = &mover.Remote{
			Host:         cfg.Remote.Host,
			Port:         cfg.Remote.Port,
			User:         cfg.Remote.User,
			IdentityFile: cfg.Remote.IdentityFile,
		}
	}
	return opts
}

func reportTable(r *service.Report, wide bool) *output.Table {
	t := &output.Table{}
	t.SetHeaders("INTERVAL", "OUTCOME", "MODE", "SNAPSHOT", "DURATION", "ERROR")
	if wide {
		t.SetHeaders("INTERVAL", "OUTCOME", "MODE", "SNAPSHOT", "DURATION", "ERROR", "SOURCE")
	}
	if r == nil {
		return t
	}
	for _, res := range r.Results {
		var snap string
		if res.Snapshot != nil {
			snap = res.Snapshot.Name
		}
		row := []string{
			res.Interval,
			string(res.Outcome),
			output.FormatValue(res.Mode),
			output.FormatValue(snap),
			output.FormatValue(res.Duration),
			output.FormatValue(res.Error),
		}
		if wide {
			row = append(row, output.FormatValue(res.Source))
		}
		t.AddRow(row...)
	}
	return t
}
