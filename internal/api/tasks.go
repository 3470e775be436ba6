package api

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/KrikINS/floor-ready/internal/core/task"
	"github.com/KrikINS/floor-ready/internal/tracker"
)

func (s *Server) createTask(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	created, err := s.app.Tasks.Create(ctx, tracker.CreateInput{
		Title:            req.Title,
		Description:      req.Description,
		Priority:         task.Priority(req.Priority),
		EventID:          req.EventID,
		AssigneeID:       req.AssigneeID,
		Deadline:         req.Deadline,
		CustomID:         req.CustomID,
		CostToClient:     req.CostToClient,
		UnitType:         req.UnitType,
		BillableQuantity: req.BillableQuantity,
		Comments:         req.Comments,
		CostCenterID:     req.CostCenterID,
		ItemIDs:          req.ItemIDs,
		QuantityRequired: req.QuantityRequired,
	})
	if err != nil {
		return err
	}

	return s.respondView(c, fiber.StatusCreated, created.ID)
}

func (s *Server) listTasks(c *fiber.Ctx) error {
	views, err := s.app.Tasks.List(c.UserContext(), listFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(views)
}

func listFilter(c *fiber.Ctx) task.ListFilter {
	return task.ListFilter{
		Status:       task.Status(c.Query("status")),
		AssigneeID:   c.Query("assignee_id"),
		EventID:      c.Query("event_id"),
		CostCenterID: c.Query("cost_center_id"),
		Order:        task.Order(c.Query("order")),
	}
}

func (s *Server) getTask(c *fiber.Ctx) error {
	return s.respondView(c, fiber.StatusOK, c.Params("id"))
}

func (s *Server) taskHistory(c *fiber.Ctx) error {
	events, err := s.app.Tasks.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(events)
}

func (s *Server) advanceTask(c *fiber.Ctx) error {
	var req advanceRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	t, err := s.app.Tasks.Advance(c.UserContext(), c.Params("id"), tracker.AdvanceInput{
		Target:          task.Status(req.TargetStatus),
		Edits:           req.Fulfillment.toEdits(),
		Comment:         req.Comment,
		ExpectedVersion: req.Version,
	})
	if err != nil {
		return err
	}
	return s.respondView(c, fiber.StatusOK, t.ID)
}

func (s *Server) approveTask(c *fiber.Ctx) error {
	return s.review(c, s.app.Tasks.Approve)
}

func (s *Server) rejectTask(c *fiber.Ctx) error {
	return s.review(c, s.app.Tasks.Reject)
}

type reviewFunc func(ctx context.Context, id, comment string, version int64) (task.Task, error)

func (s *Server) review(c *fiber.Ctx, fn reviewFunc) error {
	var req reviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	t, err := fn(c.UserContext(), c.Params("id"), req.Comment, req.Version)
	if err != nil {
		return err
	}
	return s.respondView(c, fiber.StatusOK, t.ID)
}

func (s *Server) saveFulfillment(c *fiber.Ctx) error {
	var req fulfillmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	t, err := s.app.Tasks.SaveFulfillment(c.UserContext(), c.Params("id"), req.editsRequest.toEdits(), req.Version)
	if err != nil {
		return err
	}
	return s.respondView(c, fiber.StatusOK, t.ID)
}

func (s *Server) reassignTask(c *fiber.Ctx) error {
	var req reassignRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	t, err := s.app.Tasks.Reassign(c.UserContext(), c.Params("id"), *req.AssigneeID, req.Version)
	if err != nil {
		return err
	}
	return s.respondView(c, fiber.StatusOK, t.ID)
}

func (s *Server) deleteTask(c *fiber.Ctx) error {
	if err := s.app.Tasks.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) uploadAttachment(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: multipart field \"file\" is required", task.ErrValidation)
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer func(f multipart.File) { _ = f.Close() }(f)

	attachCtx := task.AttachmentContext(c.FormValue("context", string(task.ContextComment)))
	a, err := s.app.Tasks.Upload(c.UserContext(), c.Params("id"), tracker.UploadInput{
		FileInput: tracker.FileInput{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Body:        f,
		},
		Context: attachCtx,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

// respondView re-reads the task through the projection so callers always get
// the stored state.
func (s *Server) respondView(c *fiber.Ctx, status int, id string) error {
	v, err := s.app.Tasks.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.Status(status).JSON(v)
}
