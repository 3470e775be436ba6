package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/KrikINS/floor-ready/internal/core/config"
	"github.com/KrikINS/floor-ready/internal/core/styles"
	"github.com/KrikINS/floor-ready/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "floorready config validate [options]",
				Description: "Validates the configuration file, checking directories, URLs and the Firebase credentials.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationReport struct {
	Valid    bool                       `json:"valid"`
	Error    string                     `json:"error,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigValidateCmd) validate() validationReport {
	cfg := cmd.flags.Config

	report := validationReport{Valid: true, Warnings: cfg.Warnings()}
	if err := cfg.ValidateDeep(cmd.flags.ConfigPath); err != nil {
		report.Valid = false
		report.Error = err.Error()
	}
	return report
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	report := cmd.validate()

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, report); err != nil {
			return err
		}
	} else {
		w := c.Root().Writer
		for _, warn := range report.Warnings {
			_, _ = fmt.Fprintln(w, styles.WarnStyle.Render("! "+warn.Category+": "+warn.Message))
			if warn.Item != "" {
				_, _ = fmt.Fprintf(w, "  Item: %s\n", warn.Item)
			}
		}
		if report.Valid {
			_, _ = fmt.Fprintln(w, styles.DoneStyle.Render("✓ Configuration is valid"))
		} else {
			_, _ = fmt.Fprintln(w, styles.ErrorStyle.Render("✗ "+report.Error))
		}
	}

	if !report.Valid {
		return cli.Exit("", 1)
	}
	return nil
}
