package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/KrikINS/floor-ready/internal/tracker"
	"github.com/KrikINS/floor-ready/pkg/iojson"
)

// CatalogCmd implements the event and cost-center command groups.
type CatalogCmd struct {
	flags *Flags
	app   *tracker.App

	event    tracker.NewEventInput
	startsAt string
	center   tracker.NewCostCenterInput
}

// NewCatalogCmd creates the event and cost-center commands.
func NewCatalogCmd(flags *Flags, app *tracker.App) *CatalogCmd {
	return &CatalogCmd{flags: flags, app: app}
}

// Register adds the event and cost-center commands to the application.
func (cmd *CatalogCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:  "event",
			Usage: "Manage events that own tasks",
			Commands: []*cli.Command{
				{
					Name:      "add",
					Usage:     "Add an event",
					UsageText: "floorready event add --name <name> [--venue <venue>] [--starts <date>]",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "name", Required: true, Destination: &cmd.event.Name},
						&cli.StringFlag{Name: "venue", Destination: &cmd.event.Venue},
						&cli.StringFlag{Name: "starts", Usage: "start date (YYYY-MM-DD or RFC 3339)", Destination: &cmd.startsAt},
					},
					Action: cmd.runAddEvent,
				},
				{
					Name:    "list",
					Aliases: []string{"ls"},
					Usage:   "List events as JSON lines",
					Action:  cmd.runListEvents,
				},
			},
		},
		&cli.Command{
			Name:  "cost-center",
			Usage: "Manage cost centers used in profitability reporting",
			Commands: []*cli.Command{
				{
					Name:      "add",
					Usage:     "Add a cost center",
					UsageText: "floorready cost-center add --code <code> --title <title>",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "code", Required: true, Destination: &cmd.center.Code},
						&cli.StringFlag{Name: "title", Required: true, Destination: &cmd.center.Title},
					},
					Action: cmd.runAddCostCenter,
				},
				{
					Name:    "list",
					Aliases: []string{"ls"},
					Usage:   "List cost centers as JSON lines",
					Action:  cmd.runListCostCenters,
				},
			},
		},
	)

	return app
}

func (cmd *CatalogCmd) runAddEvent(ctx context.Context, c *cli.Command) error {
	in := cmd.event

	var err error
	if in.StartsAt, err = parseDate(cmd.startsAt); err != nil {
		return err
	}

	ev, err := cmd.app.Catalog.CreateEvent(ctx, in)
	if err != nil {
		return fmt.Errorf("add event: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, ev)
}

func (cmd *CatalogCmd) runListEvents(ctx context.Context, c *cli.Command) error {
	events, err := cmd.app.Catalog.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	return writeLines(c.Root().Writer, events)
}

func (cmd *CatalogCmd) runAddCostCenter(ctx context.Context, c *cli.Command) error {
	cc, err := cmd.app.Catalog.CreateCostCenter(ctx, cmd.center)
	if err != nil {
		return fmt.Errorf("add cost center: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, cc)
}

func (cmd *CatalogCmd) runListCostCenters(ctx context.Context, c *cli.Command) error {
	centers, err := cmd.app.Catalog.ListCostCenters(ctx)
	if err != nil {
		return fmt.Errorf("list cost centers: %w", err)
	}
	return writeLines(c.Root().Writer, centers)
}
