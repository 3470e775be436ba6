// Package catalog holds the reference collections tasks point at: the
// events they belong to and the cost centers they are billed against.
package catalog

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when an event or cost center does not exist.
	ErrNotFound = errors.New("catalog entry not found")
	// ErrDuplicate is returned when a cost center code is already taken.
	ErrDuplicate = errors.New("duplicate cost center code")
)

// Event is an operation being staffed and supplied.
type Event struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Venue     string     `json:"venue,omitempty"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CostCenter is a billing bucket identified by a short code.
type CostCenter struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Title string `json:"title"`
}

// Store persists events and cost centers.
type Store interface {
	CreateEvent(ctx context.Context, e *Event) error
	// GetEvent returns ErrNotFound if the event does not exist.
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)

	// CreateCostCenter returns ErrDuplicate if the code is taken.
	CreateCostCenter(ctx context.Context, c *CostCenter) error
	// GetCostCenter returns ErrNotFound if the cost center does not exist.
	GetCostCenter(ctx context.Context, id string) (CostCenter, error)
	ListCostCenters(ctx context.Context) ([]CostCenter, error)
}
