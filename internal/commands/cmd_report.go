package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/KrikINS/floor-ready/internal/core/task"
	"github.com/KrikINS/floor-ready/internal/tracker"
	"github.com/KrikINS/floor-ready/pkg/iojson"
	"github.com/KrikINS/floor-ready/pkg/utils"
)

// ReportCmd implements the report command group.
type ReportCmd struct {
	flags *Flags
	app   *tracker.App

	out        string
	status     string
	event      string
	costCenter string
}

// NewReportCmd creates a new report command.
func NewReportCmd(flags *Flags, app *tracker.App) *ReportCmd {
	return &ReportCmd{flags: flags, app: app}
}

// Register adds the report command to the application.
func (cmd *ReportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "report",
		Usage: "Export reports",
		Commands: []*cli.Command{
			{
				Name:      "profit",
				Usage:     "Export the profitability workbook",
				UsageText: "floorready report profit --out <file.xlsx> [--status <status>] [--event <id>] [--cost-center <id>]",
				Description: `Writes one row per task with billing, cost and profit figures plus a
totals row. Admin or Manager only.

Examples:
  floorready --as <manager> report profit --out march.xlsx
  floorready --as <manager> report profit --out done.xlsx --status Completed`,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file", Value: "profitability.xlsx", Destination: &cmd.out},
					&cli.StringFlag{Name: "status", Usage: "only tasks in this status", Destination: &cmd.status},
					&cli.StringFlag{Name: "event", Usage: "only tasks of this event", Destination: &cmd.event},
					&cli.StringFlag{Name: "cost-center", Usage: "only tasks of this cost center", Destination: &cmd.costCenter},
				},
				Action: cmd.runProfit,
			},
		},
	})

	return app
}

func (cmd *ReportCmd) runProfit(ctx context.Context, c *cli.Command) error {
	filter := task.ListFilter{
		Status:       task.Status(cmd.status),
		EventID:      cmd.event,
		CostCenterID: cmd.costCenter,
		Order:        task.OrderDeadline,
	}

	// A refused report must not leave an empty workbook behind.
	out := &utils.DeferredWriter{}
	if err := cmd.app.Reports.Profitability(ctx, filter, out); err != nil {
		return fmt.Errorf("profitability report: %w", err)
	}

	size := out.Len()
	if err := out.FlushFile(cmd.out); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return iojson.WriteLine(c.Root().Writer, map[string]any{"file": cmd.out, "bytes": size})
}
