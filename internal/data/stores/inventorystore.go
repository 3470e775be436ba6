package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KrikINS/floor-ready/internal/core/inventory"
	"github.com/KrikINS/floor-ready/internal/data/db"
)

// InventoryStore implements inventory.Store using SQLite.
type InventoryStore struct {
	db *db.DB
}

var _ inventory.Store = (*InventoryStore)(nil)

// NewInventoryStore creates a new SQLite-backed inventory store.
func NewInventoryStore(db *db.DB) *InventoryStore {
	return &InventoryStore{db: db}
}

func (s *InventoryStore) CreateItem(ctx context.Context, item *inventory.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if item.Stock < 0 {
		return fmt.Errorf("%w: opening stock cannot be negative", inventory.ErrInsufficientStock)
	}

	if err := s.db.Conn(ctx).Create(itemToRow(*item)).Error; err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}
	return nil
}

func (s *InventoryStore) GetItem(ctx context.Context, id string) (inventory.Item, error) {
	return getItem(s.db.Conn(ctx), id)
}

func (s *InventoryStore) ListItems(ctx context.Context) ([]inventory.Item, error) {
	var rows []db.InventoryItemRow
	if err := s.db.Conn(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory items: %w", err)
	}

	out := make([]inventory.Item, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToItem(r))
	}
	return out, nil
}

func (s *InventoryStore) ReservationsForTask(ctx context.Context, taskID string) ([]inventory.Reservation, error) {
	var rows []db.ReservationRow
	if err := s.db.Conn(ctx).Where("task_id = ?", taskID).Order("created_at ASC, item_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	out := make([]inventory.Reservation, 0, len(rows))
	for _, r := range rows {
		out = append(out, inventory.Reservation{
			TaskID:           r.TaskID,
			ItemID:           r.ItemID,
			QuantityRequired: r.QuantityRequired,
			CreatedAt:        r.CreatedAt,
		})
	}
	return out, nil
}

// Adjust applies adj.Delta to the item's stock and records the adjustment.
func (s *InventoryStore) Adjust(ctx context.Context, adj *inventory.Adjustment) (inventory.Item, error) {
	if adj.ID == "" {
		adj.ID = uuid.NewString()
	}
	if adj.CreatedAt.IsZero() {
		adj.CreatedAt = time.Now().UTC()
	}

	var updated inventory.Item
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		item, err := getItem(tx, adj.ItemID)
		if err != nil {
			return err
		}

		next, err := item.Apply(adj.Delta)
		if err != nil {
			return err
		}

		res := tx.Model(&db.InventoryItemRow{}).
			Where("id = ? AND stock = ?", item.ID, item.Stock).
			Update("stock", next)
		if res.Error != nil {
			return fmt.Errorf("failed to update stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("stock of %s changed during adjustment", item.ID)
		}

		if err := tx.Create(&db.AdjustmentRow{
			ID:        adj.ID,
			ItemID:    adj.ItemID,
			Delta:     adj.Delta,
			Reason:    adj.Reason,
			ActorID:   adj.ActorID,
			CreatedAt: adj.CreatedAt,
		}).Error; err != nil {
			return fmt.Errorf("failed to insert adjustment: %w", err)
		}

		item.Stock = next
		updated = item
		return nil
	})
	if err != nil {
		return inventory.Item{}, err
	}
	return updated, nil
}

// ListAdjustments returns an item's adjustments, newest first. An empty
// itemID lists all.
func (s *InventoryStore) ListAdjustments(ctx context.Context, itemID string) ([]inventory.Adjustment, error) {
	q := s.db.Conn(ctx).Order("created_at DESC, rowid DESC")
	if itemID != "" {
		q = q.Where("item_id = ?", itemID)
	}

	var rows []db.AdjustmentRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list adjustments: %w", err)
	}

	out := make([]inventory.Adjustment, 0, len(rows))
	for _, r := range rows {
		out = append(out, inventory.Adjustment{
			ID:        r.ID,
			ItemID:    r.ItemID,
			Delta:     r.Delta,
			Reason:    r.Reason,
			ActorID:   r.ActorID,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

func getItem(tx *gorm.DB, id string) (inventory.Item, error) {
	var row db.InventoryItemRow
	err := tx.First(&row, "id = ?", id).Error
	if IsNotFoundError(err) {
		return inventory.Item{}, inventory.ErrNotFound
	}
	if err != nil {
		return inventory.Item{}, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return rowToItem(row), nil
}

func itemToRow(i inventory.Item) *db.InventoryItemRow {
	return &db.InventoryItemRow{
		ID:        i.ID,
		Name:      i.Name,
		Unit:      i.Unit,
		Stock:     i.Stock,
		CreatedAt: i.CreatedAt,
	}
}

func rowToItem(r db.InventoryItemRow) inventory.Item {
	return inventory.Item{
		ID:        r.ID,
		Name:      r.Name,
		Unit:      r.Unit,
		Stock:     r.Stock,
		CreatedAt: r.CreatedAt,
	}
}
