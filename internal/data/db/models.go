package db

import (
	"time"

	"gorm.io/datatypes"
)

// TaskRow is a row of the tasks table.
type TaskRow struct {
	ID          string `gorm:"primaryKey"`
	CustomID    string `gorm:"index:idx_tasks_custom_id,unique,where:custom_id <> ''"`
	Title       string `gorm:"not null"`
	Description string
	Priority    string `gorm:"not null"`
	Status      string `gorm:"not null;index"`
	EventID     string `gorm:"index"`
	AssigneeID  string `gorm:"index"`

	Deadline       *time.Time
	CreatedAt      time.Time `gorm:"not null;index"`
	AcknowledgedAt *time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time

	ActualCost    *float64
	VendorName    *string
	VendorAddress *string
	VendorContact *string

	CostToClient          *float64
	UnitType              string
	BillableQuantity      *float64
	ProfitabilityComments string
	CostCenterID          string `gorm:"index"`

	Version int64 `gorm:"not null;default:1"`
}

func (TaskRow) TableName() string { return "tasks" }

// AttachmentRow is a row of the task_attachments table.
type AttachmentRow struct {
	ID         string `gorm:"primaryKey"`
	TaskID     string `gorm:"not null;index"`
	FileName   string `gorm:"not null"`
	FilePath   string `gorm:"not null"`
	FileType   string `gorm:"not null"`
	FileSize   int64  `gorm:"not null"`
	UploadedBy string `gorm:"not null"`
	Context    string `gorm:"not null"`
	CreatedAt  time.Time
}

func (AttachmentRow) TableName() string { return "task_attachments" }

// TaskEventRow is a row of the append-only task_events table.
type TaskEventRow struct {
	ID         string `gorm:"primaryKey"`
	TaskID     string `gorm:"not null;index"`
	Kind       string `gorm:"not null"`
	FromStatus string
	ToStatus   string
	ActorID    string `gorm:"not null"`
	Comment    string
	Details    datatypes.JSONMap
	CreatedAt  time.Time `gorm:"index"`
}

func (TaskEventRow) TableName() string { return "task_events" }

// MemberRow is a row of the team_members table.
type MemberRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"not null;uniqueIndex"`
	AvatarURL string
	Role      string `gorm:"not null"`
	Status    string `gorm:"not null"`
	CreatedAt time.Time
}

func (MemberRow) TableName() string { return "team_members" }

// EventRow is a row of the events table.
type EventRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Venue     string
	StartsAt  *time.Time
	CreatedAt time.Time
}

func (EventRow) TableName() string { return "events" }

// CostCenterRow is a row of the cost_centers table.
type CostCenterRow struct {
	ID    string `gorm:"primaryKey"`
	Code  string `gorm:"not null;uniqueIndex"`
	Title string `gorm:"not null"`
}

func (CostCenterRow) TableName() string { return "cost_centers" }

// InventoryItemRow is a row of the inventory_items table.
type InventoryItemRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Unit      string
	Stock     int `gorm:"not null;default:0"`
	CreatedAt time.Time
}

func (InventoryItemRow) TableName() string { return "inventory_items" }

// ReservationRow links a task to an inventory item it requires.
type ReservationRow struct {
	TaskID           string `gorm:"primaryKey"`
	ItemID           string `gorm:"primaryKey"`
	QuantityRequired int    `gorm:"not null"`
	CreatedAt        time.Time
}

func (ReservationRow) TableName() string { return "task_inventory_items" }

// AdjustmentRow is a row of the inventory_adjustments table.
type AdjustmentRow struct {
	ID        string `gorm:"primaryKey"`
	ItemID    string `gorm:"not null;index"`
	Delta     int    `gorm:"not null"`
	Reason    string
	ActorID   string `gorm:"not null"`
	CreatedAt time.Time
}

func (AdjustmentRow) TableName() string { return "inventory_adjustments" }
