package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/KrikINS/floor-ready/internal/core/task"
	"github.com/KrikINS/floor-ready/pkg/iojson"
)

// writeLines prints items as JSON lines.
func writeLines[T any](w io.Writer, items []T) error {
	for _, item := range items {
		if err := iojson.WriteLine(w, item); err != nil {
			return err
		}
	}
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// requireArgs returns the first n positional arguments or a usage error.
func requireArgs(c *cli.Command, n int) ([]string, error) {
	if c.NArg() < n {
		return nil, fmt.Errorf("usage: %s", c.UsageText)
	}
	return c.Args().Slice()[:n], nil
}

const (
	flagActualCost    = "actual-cost"
	flagVendorName    = "vendor-name"
	flagVendorAddress = "vendor-address"
	flagVendorContact = "vendor-contact"
)

// editFlags are the fulfillment fields shared by advance and fulfill.
func editFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagActualCost, Usage: "actual cost (blank clears)"},
		&cli.StringFlag{Name: flagVendorName, Usage: "vendor name (blank clears)"},
		&cli.StringFlag{Name: flagVendorAddress, Usage: "vendor address (blank clears)"},
		&cli.StringFlag{Name: flagVendorContact, Usage: "vendor contact (blank clears)"},
	}
}

// editsFrom builds an edit buffer from the fulfillment flags. Flags that were
// not given stay untouched.
func editsFrom(c *cli.Command) task.Edits {
	get := func(name string) *string {
		if !c.IsSet(name) {
			return nil
		}
		v := c.String(name)
		return &v
	}

	return task.Edits{
		ActualCost:    get(flagActualCost),
		VendorName:    get(flagVendorName),
		VendorAddress: get(flagVendorAddress),
		VendorContact: get(flagVendorContact),
	}
}

// parseDate accepts RFC 3339 timestamps or plain dates. Blank input is nil.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC 3339", raw)
}
