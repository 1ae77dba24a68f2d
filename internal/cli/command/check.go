package command

import (
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/genback/internal/cli/output"
	"github.com/yndnr/genback/internal/core/domain"
)

// CheckCommand returns the check command.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:   "check",
		Usage:  "Validate the configuration and print the intervals in execution order",
		Flags:  sourceFlags(),
		Action: checkAction,
	}
}

func checkAction(c *cli.Context) error {
	cfg, err := loadConfig(c, sourceOverrides(c), true)
	if err != nil {
		return err
	}
	intervals, err := domain.SortIntervals(cfg.Intervals())
	if err != nil {
		return err
	}
	return render(c, intervals, func(bool) *output.Table { return intervalTable(intervals) })
}

func intervalTable(intervals []domain.Interval) *output.Table {
	t := &output.Table{}
	t.SetHeaders("ORDER", "INTERVAL", "PRIO", "KEEP", "CYCLE")
	for i, iv := range intervals {
		t.AddRow(
			strconv.Itoa(i+1),
			iv.Name,
			strconv.Itoa(iv.Priority),
			strconv.Itoa(iv.Retention),
			iv.Cycle.String(),
		)
	}
	return t
}
