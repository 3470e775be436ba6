// Package inventory models stock items and the logical reservations tasks
// place on them. Reserving never touches stock; stock only moves through
// explicit adjustments.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when an item does not exist.
	ErrNotFound = errors.New("inventory item not found")
	// ErrInsufficientStock is returned when an adjustment would take stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidReservation is returned for malformed reservation input.
	ErrInvalidReservation = errors.New("invalid reservation")
)

// Item is a stock-keeping entry.
type Item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit,omitempty"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
}

// Reservation links an item to the task that requires it.
type Reservation struct {
	TaskID           string    `json:"task_id"`
	ItemID           string    `json:"item_id"`
	QuantityRequired int       `json:"quantity_required"`
	CreatedAt        time.Time `json:"created_at"`
}

// Adjustment is a manual stock movement.
type Adjustment struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason,omitempty"`
	ActorID   string    `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Reserve builds one reservation per distinct item. The task ID is filled in
// by the task store once the task row exists. An empty selection yields no
// reservations and ignores quantity.
func Reserve(itemIDs []string, quantity int, now time.Time) ([]Reservation, error) {
	seen := make(map[string]bool, len(itemIDs))
	var out []Reservation
	for _, id := range itemIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, Reservation{ItemID: id, QuantityRequired: quantity, CreatedAt: now})
	}

	if len(out) > 0 && quantity < 1 {
		return nil, fmt.Errorf("%w: quantity_required must be at least 1", ErrInvalidReservation)
	}

	return out, nil
}

// Apply returns the stock level after applying delta.
func (i Item) Apply(delta int) (int, error) {
	next := i.Stock + delta
	if next < 0 {
		return i.Stock, fmt.Errorf("%w: %s has %d, cannot remove %d", ErrInsufficientStock, i.Name, i.Stock, -delta)
	}
	return next, nil
}

// Store persists inventory items, reservations and adjustments.
type Store interface {
	CreateItem(ctx context.Context, item *Item) error
	// GetItem returns ErrNotFound if the item does not exist.
	GetItem(ctx context.Context, id string) (Item, error)
	ListItems(ctx context.Context) ([]Item, error)

	// ReservationsForTask lists the items a task requires.
	ReservationsForTask(ctx context.Context, taskID string) ([]Reservation, error)

	// Adjust records the adjustment and moves stock atomically. Returns
	// ErrInsufficientStock if the result would be negative.
	Adjust(ctx context.Context, adj *Adjustment) (Item, error)
	ListAdjustments(ctx context.Context, itemID string) ([]Adjustment, error)
}
