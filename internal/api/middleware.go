package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/KrikINS/floor-ready/internal/auth"
	"github.com/KrikINS/floor-ready/internal/core/identity"
	"github.com/KrikINS/floor-ready/internal/core/logging"
)

// requestLogger logs one line per request.
func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Run the error handler now so the logged status is final.
			if herr := s.handleError(c, err); herr != nil {
				return herr
			}
			err = nil
		}

		evt := s.log.Info()
		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			evt = s.log.Error()
		}
		evt.Ctx(c.UserContext()).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}

// authenticate resolves the bearer token, or the jwt cookie, to an actor on
// the request context. Requests without credentials continue anonymously
// and are refused by the services that need an actor.
func (s *Server) authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c)
		if raw == "" {
			return c.Next()
		}
		if s.tokens == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "token authentication is not configured")
		}

		memberID, err := s.tokens.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		actor, err := auth.Resolve(c.UserContext(), s.app.Members, memberID)
		if errors.Is(err, identity.ErrNoActor) {
			return fiber.NewError(fiber.StatusUnauthorized, "unknown member")
		}
		if err != nil {
			return err
		}

		ctx := logging.WithActorID(c.UserContext(), actor.ID)
		c.SetUserContext(auth.WithActor(ctx, actor))
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return c.Cookies("jwt")
}
