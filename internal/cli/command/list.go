package command

import (
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/genback/internal/cli/output"
	"github.com/yndnr/genback/internal/core/domain"
	"github.com/yndnr/genback/internal/core/service"
)

// ListCommand returns the list command.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List epochs, intervals and snapshots under the backup root",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "root",
				Usage: "Backup root to list (defaults to backup.target_dir)",
			},
		},
		Action: listAction,
	}
}

func listAction(c *cli.Context) error {
	ov := make(map[string]any)
	if c.IsSet("root") {
		ov["backup.target_dir"] = c.String("root")
	}
	cfg, err := loadConfig(c, ov, false)
	if err != nil {
		return err
	}
	if cfg.Backup.TargetDir == "" {
		return domain.ErrInvalidConfig.WithDetails("backup.target_dir is required")
	}

	inv, err := service.Inventory(cfg.Backup.TargetDir, cfg.Backup.Latest)
	if err != nil {
		return err
	}
	return render(c, inv, func(wide bool) *output.Table { return inventoryTable(inv, wide) })
}

func inventoryTable(inv []service.EpochInventory, wide bool) *output.Table {
	t := &output.Table{}
	t.SetHeaders("EPOCH", "CURRENT", "INTERVAL", "COUNT", "LATEST", "FAULT")
	if wide {
		t.SetHeaders("EPOCH", "CURRENT", "INTERVAL", "COUNT", "LATEST", "FAULT", "SNAPSHOTS")
	}
	for _, ep := range inv {
		current := ""
		if ep.Current {
			current = "*"
		}
		if len(ep.Intervals) == 0 {
			t.AddRow(ep.Name, output.FormatValue(current), "-", "0", "-", "-")
			continue
		}
		for _, iv := range ep.Intervals {
			row := []string{
				ep.Name,
				output.FormatValue(current),
				iv.Interval,
				strconv.Itoa(len(iv.Snapshots)),
				output.FormatValue(iv.Latest),
				output.FormatValue(iv.Fault),
			}
			if wide {
				names := make([]string, len(iv.Snapshots))
				for i, s := range iv.Snapshots {
					names[i] = s.Name
				}
				row = append(row, output.FormatValue(strings.Join(names, ",")))
			}
			t.AddRow(row...)
		}
	}
	return t
}
