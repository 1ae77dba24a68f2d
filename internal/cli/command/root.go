// Package command provides CLI command definitions for genback.
package command

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/genback/internal/cli/output"
	"github.com/yndnr/genback/internal/config"
	"github.com/yndnr/genback/internal/core/domain"
	"github.com/yndnr/genback/internal/infra/buildinfo"
	"github.com/yndnr/genback/internal/telemetry/logger"
)

// Exit statuses returned by the genback binary.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitConfig            = 2
	ExitDuplicatePriority = 3
	ExitPopulation        = 4
	ExitIntegrity         = 5
	ExitLockHeld          = 6
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "genback",
		Usage:   "generational rsync backups with hardlinked retention intervals",
		Version: buildinfo.Get().Version,
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			RunCommand(),
			PlanCommand(),
			ListCommand(),
			CheckCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		HideVersion: true,
		// Errors are reported by main with a mapped exit status.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the YAML configuration file",
			EnvVars: []string{"GENBACK_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: json, text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Config    string
	LogLevel  string
	LogFormat string
	Output    string
	Wide      bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:    c.String("config"),
		LogLevel:  c.String("log-level"),
		LogFormat: c.String("log-format"),
		Output:    c.String("output"),
		Wide:      c.Bool("wide"),
	}
}

// overrides collects configuration overrides from the global flags.
func (g *GlobalFlags) overrides() map[string]any {
	ov := make(map[string]any)
	if g.LogLevel != "" {
		ov["log.level"] = g.LogLevel
	}
	if g.LogFormat != "" {
		ov["log.format"] = g.LogFormat
	}
	return ov
}

// loadConfig loads the effective configuration. extra holds command
// specific overrides; verify runs the full verification.
func loadConfig(c *cli.Context, extra map[string]any, verify bool) (*config.Config, error) {
	flags := ParseGlobalFlags(c)
	ov := flags.overrides()
	for k, v := range extra {
		ov[k] = v
	}

	cfg, err := config.Load(flags.Config, ov)
	if err != nil {
		return nil, err
	}
	if verify {
		if err := config.Verify(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setupLogger installs the configured logger as the default one. The
// returned closer releases the log file, if any.
func setupLogger(c *cli.Context, cfg *config.Config) (logger.Logger, io.Closer, error) {
	var (
		out    io.Writer = c.App.ErrWriter
		closer io.Closer = nopCloser{}
	)
	if out == nil {
		out = os.Stderr
	}
	if cfg.Log.File != "" {
		f, err := logger.OpenFile(cfg.Log.File)
		if err != nil {
			return nil, nil, domain.ErrInvalidConfig.WithPath(cfg.Log.File).WithDetails("cannot open log file").WithCause(err)
		}
		out, closer = f, f
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: out,
	})
	if err != nil {
		_ = closer.Close()
		return nil, nil, domain.ErrInvalidConfig.WithCause(err)
	}
	logger.SetDefault(log)
	return log, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// render writes data in the selected output format. For the table format
// table, when not nil, supplies the layout.
func render(c *cli.Context, data any, table func(wide bool) *output.Table) error {
	flags := ParseGlobalFlags(c)
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return err
	}
	w := c.App.Writer
	if w == nil {
		w = os.Stdout
	}
	if format == output.FormatTable && table != nil {
		data = table(flags.Wide)
	}
	return output.NewFormatter(format, flags.Wide).Format(w, data)
}

// ExitCode maps an error returned by the application to the process exit
// status. Joined errors report their most severe member.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrLockHeld):
		return ExitLockHeld
	case errors.Is(err, domain.ErrDuplicatePriority):
		return ExitDuplicatePriority
	case errors.Is(err, domain.ErrInvalidConfig):
		return ExitConfig
	case errors.Is(err, domain.ErrIntegrityFault), errors.Is(err, domain.ErrNameCollision):
		return ExitIntegrity
	case errors.Is(err, domain.ErrPopulationFailure):
		return ExitPopulation
	default:
		return ExitFailure
	}
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
