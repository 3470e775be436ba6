package task

import (
	"context"

	"github.com/KrikINS/floor-ready/internal/core/inventory"
)

// Order selects the sort order of List.
type Order string

const (
	OrderNewest   Order = "newest"
	OrderDeadline Order = "deadline"
	OrderPriority Order = "priority"
)

// IsValid reports whether o is a known order.
func (o Order) IsValid() bool {
	switch o {
	case OrderNewest, OrderDeadline, OrderPriority:
		return true
	}
	return false
}

// ListFilter controls which tasks List returns. Empty fields match all.
type ListFilter struct {
	Status       Status
	AssigneeID   string
	EventID      string
	CostCenterID string
	Order        Order
}

// Store defines task persistence.
type Store interface {
	// Create inserts t with its inventory reservations and the creation event
	// in one transaction. The store assigns ID and sets Version to 1.
	Create(ctx context.Context, t *Task, reservations []inventory.Reservation, ev Event) error

	// Get returns a task by ID. Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (Task, error)

	// List returns tasks matching the filter.
	List(ctx context.Context, filter ListFilter) ([]Task, error)

	// Update writes every mutable field of t and appends ev in one
	// transaction, provided the stored version still equals t.Version.
	// Returns ErrConflict otherwise, ErrNotFound if the row is gone. On
	// success t.Version is incremented.
	Update(ctx context.Context, t *Task, ev Event) error

	// Delete removes the task with its attachments, reservations and events.
	Delete(ctx context.Context, id string) error

	// AddAttachment inserts the attachment row and its audit event.
	AddAttachment(ctx context.Context, a *Attachment, ev Event) error

	// Attachments lists a task's attachments, oldest first.
	Attachments(ctx context.Context, taskID string) ([]Attachment, error)

	// Events lists a task's audit events, oldest first.
	Events(ctx context.Context, taskID string) ([]Event, error)
}
