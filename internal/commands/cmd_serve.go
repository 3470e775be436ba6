package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/KrikINS/floor-ready/internal/api"
	"github.com/KrikINS/floor-ready/internal/auth"
	"github.com/KrikINS/floor-ready/internal/data/blobs"
	"github.com/KrikINS/floor-ready/internal/tracker"
)

// ServeCmd runs the HTTP API.
type ServeCmd struct {
	flags *Flags
	app   *tracker.App

	addr string
}

// NewServeCmd creates a new serve command.
func NewServeCmd(flags *Flags, app *tracker.App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application.
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Serve the HTTP API",
		UsageText: "floorready serve [--addr :8080]",
		Description: `Serves the JSON API. Callers authenticate with a bearer token or a jwt
cookie issued by "floorready team token". The global --as flag is ignored.

Files in the local object store are served under /files.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (defaults to server.addr)",
				Sources:     cli.EnvVars("FLOORREADY_ADDR"),
				Destination: &cmd.addr,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if err := cfg.RequireAuth(); err != nil {
		return err
	}

	addr := cmd.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	var filesDir string
	if local, ok := cmd.app.Blobs.(*blobs.LocalStore); ok {
		filesDir = local.Dir()
	}

	// Each request carries its own actor, so the CLI identity is not used.
	app := tracker.NewApp(cfg, cmd.app.DB, cmd.app.Blobs, auth.ContextProvider{}, cmd.app.Tokens, cmd.app.Bus, log.Logger)

	srv := api.New(app, app.Tokens, api.Options{
		Addr:      addr,
		BodyLimit: cfg.Server.BodyLimit,
		FilesDir:  filesDir,
	}, log.Logger)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("addr", addr).Str("storage", cfg.Storage.Backend).Msg("serving api")
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
