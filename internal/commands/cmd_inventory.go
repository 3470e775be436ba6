package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/KrikINS/floor-ready/internal/tracker"
	"github.com/KrikINS/floor-ready/pkg/iojson"
)

// InventoryCmd implements the inventory command group.
type InventoryCmd struct {
	flags *Flags
	app   *tracker.App

	add    tracker.NewItemInput
	delta  int
	reason string
}

// NewInventoryCmd creates a new inventory command.
func NewInventoryCmd(flags *Flags, app *tracker.App) *InventoryCmd {
	return &InventoryCmd{flags: flags, app: app}
}

// Register adds the inventory command to the application.
func (cmd *InventoryCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "inventory",
		Usage: "Manage stock items",
		Description: `Inventory commands manage the stock that tasks reserve. Writes are
limited to Admins and Managers.

Examples:
  floorready --as <manager> inventory add --name "Barrier" --unit pcs --stock 40
  floorready --as <manager> inventory adjust <item> --by=-5 --reason damaged
  floorready --as <manager> inventory log <item>`,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a stock item",
				UsageText: "floorready inventory add --name <name> [--unit <unit>] [--stock <n>]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true, Destination: &cmd.add.Name},
					&cli.StringFlag{Name: "unit", Destination: &cmd.add.Unit},
					&cli.IntFlag{Name: "stock", Usage: "opening stock", Destination: &cmd.add.Stock},
				},
				Action: cmd.runAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List stock items as JSON lines",
				Action:  cmd.runList,
			},
			{
				Name:      "adjust",
				Usage:     "Change the stock of an item",
				UsageText: "floorready inventory adjust <item> --by <delta> [--reason <text>]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "by", Usage: "signed stock change", Required: true, Destination: &cmd.delta},
					&cli.StringFlag{Name: "reason", Usage: "why the stock changed", Destination: &cmd.reason},
				},
				Action: cmd.runAdjust,
			},
			{
				Name:      "log",
				Usage:     "List the adjustments of an item",
				UsageText: "floorready inventory log <item>",
				Action:    cmd.runLog,
			},
		},
	})

	return app
}

func (cmd *InventoryCmd) runAdd(ctx context.Context, c *cli.Command) error {
	item, err := cmd.app.Inventory.CreateItem(ctx, cmd.add)
	if err != nil {
		return fmt.Errorf("add item: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, item)
}

func (cmd *InventoryCmd) runList(ctx context.Context, c *cli.Command) error {
	items, err := cmd.app.Inventory.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	return writeLines(c.Root().Writer, items)
}

func (cmd *InventoryCmd) runAdjust(ctx context.Context, c *cli.Command) error {
	args, err := requireArgs(c, 1)
	if err != nil {
		return err
	}

	item, err := cmd.app.Inventory.Adjust(ctx, args[0], cmd.delta, cmd.reason)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, item)
}

func (cmd *InventoryCmd) runLog(ctx context.Context, c *cli.Command) error {
	args, err := requireArgs(c, 1)
	if err != nil {
		return err
	}

	adjustments, err := cmd.app.Inventory.ListAdjustments(ctx, args[0])
	if err != nil {
		return fmt.Errorf("list adjustments: %w", err)
	}
	return writeLines(c.Root().Writer, adjustments)
}
