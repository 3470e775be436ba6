package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/KrikINS/floor-ready/internal/core/identity"
	"github.com/KrikINS/floor-ready/internal/core/inventory"
	"github.com/KrikINS/floor-ready/internal/core/task"
)

// InventoryService manages stock items and manual adjustments. Task
// reservations never move stock.
type InventoryService struct {
	store    inventory.Store
	identity identity.Provider
	log      zerolog.Logger
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(store inventory.Store, provider identity.Provider, log zerolog.Logger) *InventoryService {
	return &InventoryService{
		store:    store,
		identity: provider,
		log:      log.With().Str("component", "inventory-service").Logger(),
	}
}

// NewItemInput holds the fields of a new stock item.
type NewItemInput struct {
	Name  string `json:"name" validate:"required,max=120"`
	Unit  string `json:"unit" validate:"max=32"`
	Stock int    `json:"stock" validate:"gte=0"`
}

// CreateItem adds a stock item. Admin or Manager only.
func (s *InventoryService) CreateItem(ctx context.Context, in NewItemInput) (inventory.Item, error) {
	actor, err := currentActor(ctx, s.identity)
	if err != nil {
		return inventory.Item{}, err
	}
	if err := requirePrivileged(actor, "manage inventory"); err != nil {
		return inventory.Item{}, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return inventory.Item{}, err
	}

	item := inventory.Item{Name: in.Name, Unit: strings.TrimSpace(in.Unit), Stock: in.Stock}
	if err := s.store.CreateItem(ctx, &item); err != nil {
		return inventory.Item{}, storeErr("create item", err)
	}

	s.log.Info().Str("item_id", item.ID).Int("stock", item.Stock).Msg("inventory item created")
	return item, nil
}

// ListItems returns all stock items.
func (s *InventoryService) ListItems(ctx context.Context) ([]inventory.Item, error) {
	if _, err := currentActor(ctx, s.identity); err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, storeErr("list items", err)
	}
	return items, nil
}

// Adjust moves stock by delta and records who did it. Stock never goes
// below zero.
func (s *InventoryService) Adjust(ctx context.Context, itemID string, delta int, reason string) (inventory.Item, error) {
	actor, err := currentActor(ctx, s.identity)
	if err != nil {
		return inventory.Item{}, err
	}
	if err := requirePrivileged(actor, "adjust stock"); err != nil {
		return inventory.Item{}, err
	}
	if delta == 0 {
		return inventory.Item{}, fmt.Errorf("adjust stock: %w: delta must not be zero", task.ErrValidation)
	}

	adj := inventory.Adjustment{
		ItemID:  itemID,
		Delta:   delta,
		Reason:  strings.TrimSpace(reason),
		ActorID: actor.ID,
	}
	item, err := s.store.Adjust(ctx, &adj)
	if err != nil {
		if errors.Is(err, inventory.ErrInsufficientStock) {
			return inventory.Item{}, fmt.Errorf("adjust stock: %w: %w", task.ErrValidation, err)
		}
		return inventory.Item{}, storeErr("adjust stock", err)
	}

	s.log.Info().
		Str("item_id", item.ID).
		Int("delta", delta).
		Int("stock", item.Stock).
		Str("actor_id", actor.ID).
		Msg("stock adjusted")
	return item, nil
}

// ListAdjustments returns the adjustment history of one item, newest first.
func (s *InventoryService) ListAdjustments(ctx context.Context, itemID string) ([]inventory.Adjustment, error) {
	if _, err := currentActor(ctx, s.identity); err != nil {
		return nil, err
	}
	if _, err := s.store.GetItem(ctx, itemID); err != nil {
		return nil, storeErr("load item", err)
	}
	adjs, err := s.store.ListAdjustments(ctx, itemID)
	if err != nil {
		return nil, storeErr("list adjustments", err)
	}
	return adjs, nil
}
