// Package api exposes the tracker services over HTTP with fiber.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/KrikINS/floor-ready/internal/auth"
	"github.com/KrikINS/floor-ready/internal/tracker"
)

// Options configure the HTTP server.
type Options struct {
	Addr      string
	BodyLimit int
	// FilesDir is served under /files when set. Only the local object store
	// has one.
	FilesDir string
}

// Server is the HTTP front of the tracker.
type Server struct {
	app    *tracker.App
	tokens *auth.Tokens
	opts   Options
	log    zerolog.Logger
	fiber  *fiber.App
}

// New builds the server and registers every route. tokens may be nil, in
// which case every request is anonymous.
func New(app *tracker.App, tokens *auth.Tokens, opts Options, log zerolog.Logger) *Server {
	s := &Server{
		app:    app,
		tokens: tokens,
		opts:   opts,
		log:    log.With().Str("component", "api").Logger(),
	}

	s.fiber = fiber.New(fiber.Config{
		AppName:               "floorready",
		BodyLimit:             opts.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.fiber.Use(recover.New())
	s.fiber.Use(s.requestLogger())
	s.fiber.Use(cors.New(cors.Config{
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
	}))

	if opts.FilesDir != "" {
		s.fiber.Static("/files", opts.FilesDir)
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.fiber.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.fiber.Group("/api", s.authenticate())
	api.Get("/me", s.me)

	tasks := api.Group("/tasks")
	tasks.Post("/", s.createTask)
	tasks.Get("/", s.listTasks)
	tasks.Get("/:id", s.getTask)
	tasks.Get("/:id/history", s.taskHistory)
	tasks.Post("/:id/advance", s.advanceTask)
	tasks.Post("/:id/approve", s.approveTask)
	tasks.Post("/:id/reject", s.rejectTask)
	tasks.Put("/:id/fulfillment", s.saveFulfillment)
	tasks.Put("/:id/assignee", s.reassignTask)
	tasks.Delete("/:id", s.deleteTask)
	tasks.Post("/:id/attachments", s.uploadAttachment)

	api.Get("/members", s.listMembers)
	api.Get("/events", s.listEvents)
	api.Get("/cost-centers", s.listCostCenters)
	api.Get("/inventory", s.listItems)
	api.Post("/inventory/:id/adjustments", s.adjustStock)

	api.Get("/reports/profitability", s.profitabilityReport)
}

// Handler returns the fiber app, for tests and embedding.
func (s *Server) Handler() *fiber.App { return s.fiber }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.opts.Addr).Msg("http server listening")
		errCh <- s.fiber.Listen(s.opts.Addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("http server shutting down")
	if err := s.fiber.Shutdown(); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		s.log.Debug().Err(err).Msg("listener closed")
	}
	return nil
}
