package command

import (
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/genback/internal/cli/output"
	"github.com/yndnr/genback/internal/core/service"
)

// PlanCommand returns the plan command.
func PlanCommand() *cli.Command {
	return &cli.Command{
		Name:   "plan",
		Usage:  "Show what a run would do now without changing anything",
		Flags:  sourceFlags(),
		Action: planAction,
	}
}

func planAction(c *cli.Context) error {
	cfg, err := loadConfig(c, sourceOverrides(c), true)
	if err != nil {
		return err
	}
	log, closer, err := setupLogger(c, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	rot := service.NewRotation(rotationConfig(cfg), nil, nil)
	plan, err := rot.Plan(c.Context)
	if err != nil {
		return err
	}
	if plan.Epoch.Created {
		log.Info("a new full-backup epoch would be started", "epoch", plan.Epoch.Path)
	}
	return render(c, plan, func(wide bool) *output.Table { return planTable(plan, wide) })
}

func planTable(p *service.Plan, wide bool) *output.Table {
	t := &output.Table{}
	t.SetHeaders("INTERVAL", "PRIO", "KEEP", "DUE", "MODE", "TARGET", "RECYCLE", "ERROR")
	if wide {
		t.SetHeaders("INTERVAL", "PRIO", "KEEP", "DUE", "MODE", "TARGET", "RECYCLE", "ERROR", "SOURCE")
	}
	for _, st := range p.Steps {
		var mode, target, recycle string
		if st.Alloc != nil {
			mode = st.Alloc.Mode.String()
			target = st.Alloc.Name
			if wide {
				target = st.Alloc.Target
			}
			if st.Alloc.Recycle != nil {
				recycle = st.Alloc.Recycle.Name
			}
		}
		row := []string{
			st.Interval,
			strconv.Itoa(st.Priority),
			strconv.Itoa(st.Retention),
			strconv.FormatBool(st.Due),
			output.FormatValue(mode),
			output.FormatValue(target),
			output.FormatValue(recycle),
			output.FormatValue(st.Error),
		}
		if wide {
			row = append(row, output.FormatValue(st.Source))
		}
		t.AddRow(row...)
	}
	return t
}
