package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/KrikINS/floor-ready/internal/core/styles"
	"github.com/KrikINS/floor-ready/internal/core/task"
	"github.com/KrikINS/floor-ready/internal/tracker"
	"github.com/KrikINS/floor-ready/pkg/iojson"
)

// TaskCmd implements the task command group.
type TaskCmd struct {
	flags *Flags
	app   *tracker.App

	// list flags
	listStatus     string
	listAssignee   string
	listEvent      string
	listCostCenter string
	listOrder      string

	// create flags
	create      iojson.FileReader[tracker.CreateInput]
	createInput tracker.CreateInput
	createCost  string
	createQty   string
	createDue   string
	createPrio  string
	createFiles []string

	// shared mutation flags
	target   string
	comment  string
	version  int64
	yes      bool
	fileCtxt string
}

// NewTaskCmd creates a new task command.
func NewTaskCmd(flags *Flags, app *tracker.App) *TaskCmd {
	return &TaskCmd{flags: flags, app: app}
}

func (cmd *TaskCmd) tasks() *tracker.TaskService {
	return cmd.app.Tasks
}

// Register adds the task command to the application.
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "task",
		Usage: "Track event operation tasks",
		Description: `Task commands create tasks and move them through their lifecycle:

  Pending -> Acknowledged -> In Progress -> Awaiting Approval -> Completed

A rejected task returns to In Progress. Commands act as the member given by
the global --as flag.

Examples:
  floorready --as <member> task ls --status Pending
  floorready --as <member> task create --title "Stage lighting" --assignee <member>
  floorready --as <member> task advance <id>
  floorready --as <member> task approve <id> --comment "looks good"`,
		Commands: []*cli.Command{
			cmd.listCmd(),
			cmd.showCmd(),
			cmd.createCmd(),
			cmd.advanceCmd(),
			cmd.reviewCmd("approve", "Approve a task awaiting approval", (*tracker.TaskService).Approve),
			cmd.reviewCmd("reject", "Send a task awaiting approval back to In Progress", (*tracker.TaskService).Reject),
			cmd.fulfillCmd(),
			cmd.reassignCmd(),
			cmd.removeCmd(),
			cmd.attachCmd(),
			cmd.historyCmd(),
		},
	})

	return app
}

func (cmd *TaskCmd) versionFlag() cli.Flag {
	return &cli.Int64Flag{
		Name:        "expect-version",
		Usage:       "fail with a conflict unless the task is at this version",
		Destination: &cmd.version,
	}
}

func (cmd *TaskCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List tasks",
		UsageText: "floorready task ls [--status <status>] [--assignee <id>] [--event <id>] [--order newest|deadline|priority]",
		Description: `Lists task views as JSON lines, newest first by default.

Examples:
  floorready task ls
  floorready task ls --status "Awaiting Approval"
  floorready task ls --assignee <member> --order deadline`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "filter by status", Destination: &cmd.listStatus},
			&cli.StringFlag{Name: "assignee", Usage: "filter by assignee member ID", Destination: &cmd.listAssignee},
			&cli.StringFlag{Name: "event", Usage: "filter by event ID", Destination: &cmd.listEvent},
			&cli.StringFlag{Name: "cost-center", Usage: "filter by cost center ID", Destination: &cmd.listCostCenter},
			&cli.StringFlag{Name: "order", Usage: "sort order (newest, deadline, priority)", Destination: &cmd.listOrder},
		},
		Action: cmd.runList,
	}
}

func (cmd *TaskCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one task",
		UsageText: "floorready task show <id>",
		Description: `Shows a task with its references, profit and progress. On a terminal the
progress is rendered as a step line; otherwise the view is printed as JSON.`,
		Action: cmd.runShow,
	}
}

func (cmd *TaskCmd) createCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a task",
		UsageText: "floorready task create --title <title> [options] | floorready task create -f task.json",
		Description: `Creates a Pending task. Without --title the task is read as JSON from
--file or stdin, using the same field names as the HTTP API.

Files given with --attach are uploaded after creation. A file that cannot
be stored is logged and skipped; the task is kept.

Examples:
  floorready task create --title "Stage lighting" --priority High --deadline 2026-05-01
  floorready task create --title "Signage" --item <item> --quantity 4 --attach plan.pdf
  floorready task create -f task.json`,
		Flags: []cli.Flag{
			cmd.create.Flag(),
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "task title", Destination: &cmd.createInput.Title},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "task description", Destination: &cmd.createInput.Description},
			&cli.StringFlag{Name: "priority", Usage: "Low, Medium, High or Urgent", Destination: &cmd.createPrio},
			&cli.StringFlag{Name: "event", Usage: "owning event ID", Destination: &cmd.createInput.EventID},
			&cli.StringFlag{Name: "assignee", Usage: "assignee member ID", Destination: &cmd.createInput.AssigneeID},
			&cli.StringFlag{Name: "deadline", Usage: "deadline (YYYY-MM-DD or RFC 3339)", Destination: &cmd.createDue},
			&cli.StringFlag{Name: "custom-id", Usage: "external reference", Destination: &cmd.createInput.CustomID},
			&cli.StringFlag{Name: "cost-to-client", Usage: "price charged per unit", Destination: &cmd.createCost},
			&cli.StringFlag{Name: "unit-type", Usage: "billing unit", Destination: &cmd.createInput.UnitType},
			&cli.StringFlag{Name: "billable-quantity", Usage: "billed units", Destination: &cmd.createQty},
			&cli.StringFlag{Name: "comments", Usage: "profitability comments", Destination: &cmd.createInput.Comments},
			&cli.StringFlag{Name: "cost-center", Usage: "cost center ID", Destination: &cmd.createInput.CostCenterID},
			&cli.StringSliceFlag{Name: "item", Usage: "inventory item ID to reserve (repeatable)", Destination: &cmd.createInput.ItemIDs},
			&cli.IntFlag{Name: "quantity", Usage: "units reserved per item", Destination: &cmd.createInput.QuantityRequired},
			&cli.StringSliceFlag{Name: "attach", Usage: "file to attach (repeatable)", Destination: &cmd.createFiles},
		},
		Action: cmd.runCreate,
	}
}

func (cmd *TaskCmd) advanceCmd() *cli.Command {
	return &cli.Command{
		Name:      "advance",
		Usage:     "Move a task to its next status",
		UsageText: "floorready task advance <id> [--to <status>] [fulfillment flags]",
		Description: `Advances a task. Without --to the task moves to the next status; from
Awaiting Approval that means approval. Fulfillment flags are saved with the
transition.

Examples:
  floorready task advance <id>
  floorready task advance <id> --to "Awaiting Approval" --actual-cost 120 --vendor-name Acme`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "to", Usage: "target status", Destination: &cmd.target},
			&cli.StringFlag{Name: "comment", Usage: "comment recorded with the transition", Destination: &cmd.comment},
			cmd.versionFlag(),
		}, editFlags()...),
		Action: cmd.runAdvance,
	}
}

// reviewFunc is a review method of the task service. The service is bound at
// run time because the app is populated after commands are registered.
type reviewFunc func(s *tracker.TaskService, ctx context.Context, id, comment string, version int64) (task.Task, error)

func (cmd *TaskCmd) reviewCmd(name, usage string, fn reviewFunc) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		UsageText: fmt.Sprintf("floorready task %s <id> [--comment <text>]", name),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "comment", Usage: "review comment", Destination: &cmd.comment},
			cmd.versionFlag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			args, err := requireArgs(c, 1)
			if err != nil {
				return err
			}
			t, err := fn(cmd.tasks(), ctx, args[0], cmd.comment, cmd.version)
			if err != nil {
				return fmt.Errorf("%s task: %w", name, err)
			}
			return iojson.WriteLine(c.Root().Writer, t)
		},
	}
}

func (cmd *TaskCmd) fulfillCmd() *cli.Command {
	return &cli.Command{
		Name:      "fulfill",
		Usage:     "Save fulfillment details",
		UsageText: "floorready task fulfill <id> [--actual-cost <n>] [--vendor-name <s>] ...",
		Description: `Saves vendor and cost details without changing status. Only flags that
are given are changed; pass an empty value to clear a field.

Examples:
  floorready task fulfill <id> --actual-cost 95.50 --vendor-contact "+1 555 0100"
  floorready task fulfill <id> --vendor-address ""`,
		Flags:  append([]cli.Flag{cmd.versionFlag()}, editFlags()...),
		Action: cmd.runFulfill,
	}
}

func (cmd *TaskCmd) reassignCmd() *cli.Command {
	return &cli.Command{
		Name:      "reassign",
		Usage:     "Change or clear the assignee",
		UsageText: "floorready task reassign <id> [member-id]",
		Description: `Reassigns a task. Omit the member ID to clear the assignee, which is only
allowed before work starts.`,
		Flags:  []cli.Flag{cmd.versionFlag()},
		Action: cmd.runReassign,
	}
}

func (cmd *TaskCmd) removeCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Aliases:   []string{"delete"},
		Usage:     "Delete a task",
		UsageText: "floorready task rm <id> [--yes]",
		Description: `Deletes a task with its reservations and audit history. Stored files are
kept. Asks for confirmation on a terminal unless --yes is given.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt", Destination: &cmd.yes},
		},
		Action: cmd.runRemove,
	}
}

func (cmd *TaskCmd) attachCmd() *cli.Command {
	return &cli.Command{
		Name:      "attach",
		Usage:     "Attach a file to a task",
		UsageText: "floorready task attach <id> <file> [--context submission|comment]",
		Description: `Uploads an image or PDF of at most 10 MiB.

Examples:
  floorready task attach <id> receipt.pdf --context submission`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "context",
				Usage:       "why the file is attached (submission, comment)",
				Value:       string(task.ContextComment),
				Destination: &cmd.fileCtxt,
			},
		},
		Action: cmd.runAttach,
	}
}

func (cmd *TaskCmd) historyCmd() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show the audit history of a task",
		UsageText: "floorready task history <id>",
		Action:    cmd.runHistory,
	}
}

func (cmd *TaskCmd) runList(ctx context.Context, c *cli.Command) error {
	views, err := cmd.tasks().List(ctx, task.ListFilter{
		Status:       task.Status(cmd.listStatus),
		AssigneeID:   cmd.listAssignee,
		EventID:      cmd.listEvent,
		CostCenterID: cmd.listCostCenter,
		Order:        task.Order(cmd.listOrder),
	})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	return writeLines(c.Root().Writer, views)
}

func (cmd *TaskCmd) runShow(ctx context.Context, c *cli.Command) error {
	args, err := requireArgs(c, 1)
	if err != nil {
		return err
	}

	v, err := cmd.tasks().Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("show task: %w", err)
	}

	w := c.Root().Writer
	if !isTerminal(w) {
		return iojson.WriteWith(w, c.Root().ErrWriter, v)
	}
	return renderView(w, v)
}

func (cmd *TaskCmd) runCreate(ctx context.Context, c *cli.Command) error {
	in, err := cmd.createRequest()
	if err != nil {
		return err
	}

	for _, path := range cmd.createFiles {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open attachment: %w", err)
		}
		defer func() { _ = f.Close() }()
		in.Attachments = append(in.Attachments, tracker.FileInput{Name: filepath.Base(path), Body: f})
	}

	t, err := cmd.tasks().Create(ctx, in)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, t)
}

// createRequest reads JSON input when --file is given or no title flag is.
func (cmd *TaskCmd) createRequest() (tracker.CreateInput, error) {
	if cmd.create.Provided() || cmd.createInput.Title == "" {
		in, err := cmd.create.Read()
		if err != nil {
			return in, fmt.Errorf("read task: %w", err)
		}
		return in, nil
	}

	in := cmd.createInput
	in.Priority = task.Priority(cmd.createPrio)

	var err error
	if in.Deadline, err = parseDate(cmd.createDue); err != nil {
		return in, err
	}
	if in.CostToClient, err = task.ParseAmount("cost_to_client", cmd.createCost); err != nil {
		return in, err
	}
	if in.BillableQuantity, err = task.ParseAmount("billable_quantity", cmd.createQty); err != nil {
		return in, err
	}
	return in, nil
}

func (cmd *TaskCmd) runAdvance(ctx context.Context, c *cli.Command) error {
	args, err := requireArgs(c, 1)
	if err != nil {
		return err
	}

	t, err := cmd.tasks().Advance(ctx, args[0], tracker.AdvanceInput{
		Target:          task.Status(cmd.target),
		Edits:           editsFrom(c),
		Comment:         cmd.comment,
		ExpectedVersion: cmd.version,
	})
	if err != nil {
		return fmt.Errorf("advance task: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, t)
}

func (cmd *TaskCmd) runFulfill(ctx context.Context, c *cli.Command) error {
	args, err := requireArgs(c, 1)
	if err != nil {
		return err
	}

	t, err := cmd.tasks().SaveFulfillment(ctx, args[0], editsFrom(c), cmd.version)
	if err != nil {
		return fmt.Errorf("save fulfillment: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, t)
}

func (cmd *TaskCmd) runReassign(ctx context.Context, c *cli.Command) error {
	args, err := requireArgs(c, 1)
	if err != nil {
		return err
	}

	t, err := cmd.tasks().Reassign(ctx, args[0], c.Args().Get(1), cmd.version)
	if err != nil {
		return fmt.Errorf("reassign task: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, t)
}

func (cmd *TaskCmd) runRemove(ctx context.Context, c *cli.Command) error {
	args, err := requireArgs(c, 1)
	if err != nil {
		return err
	}
	id := args[0]

	if !cmd.yes {
		if !isTerminal(os.Stdin) {
			return errors.New("refusing to delete without confirmation; pass --yes")
		}

		v, err := cmd.tasks().Get(ctx, id)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}

		confirmed := false
		err = huh.NewConfirm().
			Title(fmt.Sprintf("Delete task %q?", v.Title)).
			Description("Reservations and history are removed. Files are kept.").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return fmt.Errorf("confirm delete: %w", err)
		}
		if !confirmed {
			_, _ = fmt.Fprintln(c.Root().Writer, "cancelled")
			return nil
		}
	}

	if err := cmd.tasks().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "deleted")
	return nil
}

func (cmd *TaskCmd) runAttach(ctx context.Context, c *cli.Command) error {
	args, err := requireArgs(c, 2)
	if err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("open attachment: %w", err)
	}
	defer func() { _ = f.Close() }()

	a, err := cmd.tasks().Upload(ctx, args[0], tracker.UploadInput{
		FileInput: tracker.FileInput{Name: filepath.Base(args[1]), Body: f},
		Context:   task.AttachmentContext(cmd.fileCtxt),
	})
	if err != nil {
		return fmt.Errorf("attach file: %w", err)
	}
	return iojson.WriteLine(c.Root().Writer, a)
}

func (cmd *TaskCmd) runHistory(ctx context.Context, c *cli.Command) error {
	args, err := requireArgs(c, 1)
	if err != nil {
		return err
	}

	events, err := cmd.tasks().History(ctx, args[0])
	if err != nil {
		return fmt.Errorf("task history: %w", err)
	}
	return writeLines(c.Root().Writer, events)
}

// renderView prints a task for a human reader.
func renderView(w io.Writer, v task.View) error {
	statuses := task.Statuses()
	labels := make([]string, len(statuses))
	for i, s := range statuses {
		labels[i] = string(s)
	}

	lines := []string{
		styles.TitleStyle.Render(v.Title),
		styles.Steps(labels, v.Progress.Step),
		styles.Bar(v.Progress.Fraction, 30),
		"",
		styles.Field("id", v.ID),
		styles.Field("status", string(v.Status)),
		styles.Field("priority", string(v.Priority)),
	}
	if v.Assignee != nil {
		lines = append(lines, styles.Field("assignee", v.Assignee.Name))
	}
	if v.Event != nil {
		lines = append(lines, styles.Field("event", v.Event.Name))
	}
	if v.Deadline != nil {
		lines = append(lines, styles.Field("deadline", v.Deadline.Format("2006-01-02 15:04")))
	}
	if v.CostCenter != nil {
		lines = append(lines, styles.Field("cost center", v.CostCenter.Code+" "+v.CostCenter.Title))
	}
	if v.Status.FulfillmentVisible() {
		lines = append(lines,
			styles.Field("vendor", deref(v.VendorName)),
			styles.Field("actual cost", amountText(v.ActualCost)),
		)
	}
	lines = append(lines,
		styles.Field("profit / unit", fmt.Sprintf("%.2f", v.Profit.PerUnit)),
		styles.Field("total profit", fmt.Sprintf("%.2f", v.Profit.Net)),
	)
	for _, a := range v.Attachments {
		lines = append(lines, styles.Field("attachment", a.FileName+"  "+a.URL))
	}

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func amountText(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *f)
}
