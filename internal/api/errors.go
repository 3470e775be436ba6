package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/KrikINS/floor-ready/internal/auth"
	"github.com/KrikINS/floor-ready/internal/core/identity"
	"github.com/KrikINS/floor-ready/internal/core/task"
	"github.com/KrikINS/floor-ready/internal/data/stores"
	"github.com/KrikINS/floor-ready/internal/tracker"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps domain errors to HTTP status codes and a stable code.
func statusFor(c *fiber.Ctx, err error) (int, string) {
	var ferr *fiber.Error
	switch {
	case errors.As(err, &ferr):
		return ferr.Code, "http"
	case errors.Is(err, task.ErrUnauthorized), errors.Is(err, identity.ErrNoActor):
		if auth.ActorFrom(c.UserContext()) == nil {
			return fiber.StatusUnauthorized, "unauthenticated"
		}
		return fiber.StatusForbidden, "unauthorized"
	case errors.Is(err, task.ErrInvalidTransition):
		return fiber.StatusConflict, "invalid_transition"
	case errors.Is(err, task.ErrConflict):
		return fiber.StatusConflict, "conflict"
	case errors.Is(err, task.ErrValidation):
		return fiber.StatusBadRequest, "validation"
	case tracker.IsNotFound(err):
		return fiber.StatusNotFound, "not_found"
	case errors.Is(err, task.ErrPersistence) && stores.IsBusyError(err):
		return fiber.StatusServiceUnavailable, "busy"
	default:
		return fiber.StatusInternalServerError, "internal"
	}
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status, code := statusFor(c, err)
	switch status {
	case fiber.StatusInternalServerError:
		s.log.Error().Ctx(c.UserContext()).Err(err).Str("path", c.Path()).Msg("request failed")
	case fiber.StatusServiceUnavailable:
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return c.Status(status).JSON(errorResponse{Error: err.Error(), Code: code})
}
