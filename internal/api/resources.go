package api

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/KrikINS/floor-ready/internal/auth"
	"github.com/KrikINS/floor-ready/internal/core/task"
)

func (s *Server) me(c *fiber.Ctx) error {
	actor := auth.ActorFrom(c.UserContext())
	if actor == nil {
		return fmt.Errorf("%w: not signed in", task.ErrUnauthorized)
	}
	m, err := s.app.Members.Get(c.UserContext(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(m)
}

func (s *Server) listMembers(c *fiber.Ctx) error {
	members, err := s.app.Team.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(members)
}

func (s *Server) listEvents(c *fiber.Ctx) error {
	events, err := s.app.Catalog.ListEvents(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(events)
}

func (s *Server) listCostCenters(c *fiber.Ctx) error {
	centers, err := s.app.Catalog.ListCostCenters(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(centers)
}

func (s *Server) listItems(c *fiber.Ctx) error {
	items, err := s.app.Inventory.ListItems(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (s *Server) adjustStock(c *fiber.Ctx) error {
	var req adjustRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	item, err := s.app.Inventory.Adjust(c.UserContext(), c.Params("id"), req.Delta, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (s *Server) profitabilityReport(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := s.app.Reports.Profitability(c.UserContext(), listFilter(c), &buf); err != nil {
		return err
	}

	name := fmt.Sprintf("profitability-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(buf.Bytes())
}
