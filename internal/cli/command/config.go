package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/genback/internal/cli/output"
	"github.com/yndnr/genback/internal/config"
	"github.com/yndnr/genback/internal/core/domain"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:      "default",
				Usage:     "Write the default configuration template",
				ArgsUsage: "[FILE]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite FILE if it exists",
					},
				},
				Action: configDefault,
			},
			{
				Name:   "show",
				Usage:  "Show the effective configuration with secrets masked",
				Action: configShow,
			},
		},
	}
}

func configDefault(c *cli.Context) error {
	data, err := config.Template(config.Default())
	if err != nil {
		return err
	}

	path := c.Args().First()
	if path == "" || path == "-" {
		_, err := c.App.Writer.Write(data)
		return err
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if c.Bool("force") {
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return domain.ErrFilesystem.WithPath(path).WithDetails("file exists, use --force to overwrite")
		}
		return domain.ErrFilesystem.WithPath(path).WithCause(err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return domain.ErrFilesystem.WithPath(path).WithCause(err)
	}
	if err := f.Close(); err != nil {
		return domain.ErrFilesystem.WithPath(path).WithCause(err)
	}
	fmt.Fprintf(c.App.Writer, "default configuration written to %s\n", path)
	return nil
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(c, nil, false)
	if err != nil {
		return err
	}
	safe := config.Sanitize(cfg)

	// Nested sections do not fit in columns.
	format, err := output.ParseFormat(ParseGlobalFlags(c).Output)
	if err != nil {
		return err
	}
	if format == output.FormatTable {
		format = output.FormatYAML
	}
	return output.NewFormatter(format, false).Format(c.App.Writer, safe)
}
