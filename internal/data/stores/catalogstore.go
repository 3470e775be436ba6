package stores

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KrikINS/floor-ready/internal/core/catalog"
	"github.com/KrikINS/floor-ready/internal/data/db"
)

// CatalogStore implements catalog.Store using SQLite.
type CatalogStore struct {
	db *db.DB
}

var _ catalog.Store = (*CatalogStore)(nil)

// NewCatalogStore creates a new SQLite-backed catalog store.
func NewCatalogStore(db *db.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) CreateEvent(ctx context.Context, e *catalog.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	err := s.db.Conn(ctx).Create(&db.EventRow{
		ID:        e.ID,
		Name:      e.Name,
		Venue:     e.Venue,
		StartsAt:  e.StartsAt,
		CreatedAt: e.CreatedAt,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (s *CatalogStore) GetEvent(ctx context.Context, id string) (catalog.Event, error) {
	var row db.EventRow
	err := s.db.Conn(ctx).First(&row, "id = ?", id).Error
	if IsNotFoundError(err) {
		return catalog.Event{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Event{}, fmt.Errorf("failed to get event: %w", err)
	}
	return rowToEvent(row), nil
}

// ListEvents returns events, soonest first. Undated events sort last.
func (s *CatalogStore) ListEvents(ctx context.Context) ([]catalog.Event, error) {
	var rows []db.EventRow
	if err := s.db.Conn(ctx).Order("starts_at IS NULL, starts_at ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	out := make([]catalog.Event, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToEvent(r))
	}
	return out, nil
}

// CreateCostCenter stores c with its code upper-cased.
func (s *CatalogStore) CreateCostCenter(ctx context.Context, c *catalog.CostCenter) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))

	err := s.db.Conn(ctx).Create(&db.CostCenterRow{ID: c.ID, Code: c.Code, Title: c.Title}).Error
	if isUniqueConstraintError(err) {
		return catalog.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create cost center: %w", err)
	}
	return nil
}

func (s *CatalogStore) GetCostCenter(ctx context.Context, id string) (catalog.CostCenter, error) {
	var row db.CostCenterRow
	err := s.db.Conn(ctx).First(&row, "id = ?", id).Error
	if IsNotFoundError(err) {
		return catalog.CostCenter{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.CostCenter{}, fmt.Errorf("failed to get cost center: %w", err)
	}
	return catalog.CostCenter{ID: row.ID, Code: row.Code, Title: row.Title}, nil
}

func (s *CatalogStore) ListCostCenters(ctx context.Context) ([]catalog.CostCenter, error) {
	var rows []db.CostCenterRow
	if err := s.db.Conn(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list cost centers: %w", err)
	}

	out := make([]catalog.CostCenter, 0, len(rows))
	for _, r := range rows {
		out = append(out, catalog.CostCenter{ID: r.ID, Code: r.Code, Title: r.Title})
	}
	return out, nil
}

func rowToEvent(r db.EventRow) catalog.Event {
	return catalog.Event{
		ID:        r.ID,
		Name:      r.Name,
		Venue:     r.Venue,
		StartsAt:  r.StartsAt,
		CreatedAt: r.CreatedAt,
	}
}
