package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime/debug"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/KrikINS/floor-ready/internal/auth"
	"github.com/KrikINS/floor-ready/internal/commands"
	"github.com/KrikINS/floor-ready/internal/core/blob"
	"github.com/KrikINS/floor-ready/internal/core/config"
	"github.com/KrikINS/floor-ready/internal/core/eventbus"
	"github.com/KrikINS/floor-ready/internal/core/logging"
	"github.com/KrikINS/floor-ready/internal/data/blobs"
	"github.com/KrikINS/floor-ready/internal/data/db"
	"github.com/KrikINS/floor-ready/internal/data/stores"
	"github.com/KrikINS/floor-ready/internal/tracker"
	"github.com/KrikINS/floor-ready/pkg/iojson"
	"github.com/KrikINS/floor-ready/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	// Secrets usually live in .env next to the binary's working directory.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	var (
		logCloser func()
		trackApp  = &tracker.App{}
		database  *db.DB
		bus       *eventbus.EventBus
		busCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "floorready",
		Usage:     "Track event operation tasks from assignment to approval",
		UsageText: "floorready [global options] command [command options]",
		Description: `floorready tracks the tasks an event operations team works through:
who owns them, what they cost, what was reserved from stock and whether a
manager has signed them off.

Run 'floorready team add' first; the first member becomes the Admin.
Run 'floorready serve' to expose the JSON API.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("FLOORREADY_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr)",
				Sources:     cli.EnvVars("FLOORREADY_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("FLOORREADY_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("FLOORREADY_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "as",
				Usage:       "member ID to act as",
				Sources:     cli.EnvVars("FLOORREADY_ACTOR"),
				Destination: &flags.Actor,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			database, err = openDatabase(cfg)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			store, err := openBlobStore(ctx, cfg)
			if err != nil {
				return ctx, fmt.Errorf("open object store: %w", err)
			}

			var tokens *auth.Tokens
			if cfg.Auth.JWTSecret != "" {
				tokens = auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
			}

			bus = eventbus.New(64)
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))
			eventbus.NewNotificationRouter(bus).Register()
			if url := cfg.Notify.SlackWebhookURL; url != "" {
				tracker.NewSlackNotifier(url, log.Logger).Register(bus)
			}

			var busCtx context.Context
			busCtx, busCancel = context.WithCancel(context.Background())
			go bus.Start(busCtx)

			provider := auth.NewMemberProvider(stores.NewMemberStore(database), flags.Actor)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*trackApp = *tracker.NewApp(cfg, database, store, provider, tokens, bus, log.Logger)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Drain pending notifications before the process exits.
			if busCancel != nil {
				busCancel()
				select {
				case <-bus.Done():
				case <-time.After(15 * time.Second):
					log.Warn().Msg("event bus did not drain in time")
				}
			}

			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewServeCmd(flags, trackApp).Register(app)
	app = commands.NewTaskCmd(flags, trackApp).Register(app)
	app = commands.NewTeamCmd(flags, trackApp).Register(app)
	app = commands.NewInventoryCmd(flags, trackApp).Register(app)
	app = commands.NewCatalogCmd(flags, trackApp).Register(app)
	app = commands.NewReportCmd(flags, trackApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		// Scripts reading JSON lines get the error in the same shape.
		if term.IsTerminal(int(os.Stderr.Fd())) {
			_, _ = fmt.Fprintln(os.Stderr, runErr.Error())
		} else {
			_ = iojson.WriteError(os.Stderr, runErr.Error(), nil)
		}
		exitCode = 1
	}

	os.Exit(exitCode)
}

// openDatabase opens the record store. A corrupted file is moved aside and
// replaced by an empty database.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	path := cfg.DatabasePath()
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		Logger:       logging.Component("db"),
	}

	database, err := db.Open(path, opts)
	if err != nil && stores.IsCorruptionError(err) {
		log.Warn().Err(err).Str("path", path).Msg("database is corrupted, starting from an empty file")
		if rerr := stores.RecoverFromCorruption(path); rerr != nil {
			return nil, rerr
		}
		database, err = db.Open(path, opts)
	}
	return database, err
}

func openBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendFirebase:
		fb := cfg.Storage.Firebase
		return blobs.NewFirebaseStore(ctx, fb.Bucket, fb.CredentialsFile)
	default:
		return blobs.NewLocalStore(cfg.BlobDir(), cfg.Storage.PublicBaseURL)
	}
}
