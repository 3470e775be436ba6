package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/KrikINS/floor-ready/internal/core/identity"
	"github.com/KrikINS/floor-ready/internal/tracker"
	"github.com/KrikINS/floor-ready/pkg/iojson"
)

// TeamCmd implements the team command group.
type TeamCmd struct {
	flags *Flags
	app   *tracker.App

	add     tracker.AddMemberInput
	addRole string
}

// NewTeamCmd creates a new team command.
func NewTeamCmd(flags *Flags, app *tracker.App) *TeamCmd {
	return &TeamCmd{flags: flags, app: app}
}

// Register adds the team command to the application.
func (cmd *TeamCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "team",
		Usage: "Manage team members",
		Description: `Team commands manage who may act on tasks.

The first member added becomes an active Admin and needs no --as. Later
members start Pending and must be activated by an Admin or Manager.

Examples:
  floorready team add --name "Ada" --email ada@example.com
  floorready --as <admin> team add --name "Ben" --email ben@example.com --role Employee
  floorready --as <admin> team activate <member>
  floorready --as <member> team token <member>`,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a member",
				UsageText: "floorready team add --name <name> --email <email> [--role Admin|Manager|Employee]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true, Destination: &cmd.add.Name},
					&cli.StringFlag{Name: "email", Required: true, Destination: &cmd.add.Email},
					&cli.StringFlag{Name: "avatar-url", Destination: &cmd.add.AvatarURL},
					&cli.StringFlag{Name: "role", Usage: "Admin, Manager or Employee (default Employee)", Destination: &cmd.addRole},
				},
				Action: cmd.runAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List members as JSON lines",
				Action:  cmd.runList,
			},
			{
				Name:      "activate",
				Usage:     "Activate a member",
				UsageText: "floorready team activate <member>",
				Action:    cmd.statusAction((*tracker.TeamService).Activate),
			},
			{
				Name:      "suspend",
				Usage:     "Suspend a member",
				UsageText: "floorready team suspend <member>",
				Action:    cmd.statusAction((*tracker.TeamService).Suspend),
			},
			{
				Name:      "token",
				Usage:     "Issue an API access token",
				UsageText: "floorready team token <member>",
				Description: `Issues a bearer token for the HTTP API. Members may issue their own;
Admins may issue anyone's. Requires auth.jwt_secret.`,
				Action: cmd.runToken,
			},
		},
	})

	return app
}

func (cmd *TeamCmd) runAdd(ctx context.Context, c *cli.Command) error {
	in := cmd.add
	in.Role = identity.Role(cmd.addRole)

	m, err := cmd.app.Team.Add(ctx, in)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, m)
}

func (cmd *TeamCmd) runList(ctx context.Context, c *cli.Command) error {
	members, err := cmd.app.Team.List(ctx)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	return writeLines(c.Root().Writer, members)
}

type statusFunc func(s *tracker.TeamService, ctx context.Context, id string) (identity.Member, error)

func (cmd *TeamCmd) statusAction(fn statusFunc) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		args, err := requireArgs(c, 1)
		if err != nil {
			return err
		}
		m, err := fn(cmd.app.Team, ctx, args[0])
		if err != nil {
			return fmt.Errorf("%s member: %w", c.Name, err)
		}
		return iojson.WriteLine(c.Root().Writer, m)
	}
}

func (cmd *TeamCmd) runToken(ctx context.Context, c *cli.Command) error {
	args, err := requireArgs(c, 1)
	if err != nil {
		return err
	}

	tok, err := cmd.app.Team.IssueToken(ctx, args[0])
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, tok)
}
