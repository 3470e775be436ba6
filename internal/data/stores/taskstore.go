package stores

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/KrikINS/floor-ready/internal/core/inventory"
	"github.com/KrikINS/floor-ready/internal/core/task"
	"github.com/KrikINS/floor-ready/internal/data/db"
)

// TaskStore implements task.Store using SQLite.
type TaskStore struct {
	db *db.DB
}

var _ task.Store = (*TaskStore)(nil)

// NewTaskStore creates a new SQLite-backed task store.
func NewTaskStore(db *db.DB) *TaskStore {
	return &TaskStore{db: db}
}

// Create inserts the task, its reservations and the creation event. Every
// reserved item must exist.
func (s *TaskStore) Create(ctx context.Context, t *task.Task, reservations []inventory.Reservation, ev task.Event) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.Version = 1

	row := taskToRow(*t)
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: custom_id %q is already in use", task.ErrValidation, t.CustomID)
			}
			return fmt.Errorf("failed to insert task: %w", err)
		}

		for _, r := range reservations {
			var n int64
			if err := tx.Model(&db.InventoryItemRow{}).Where("id = ?", r.ItemID).Count(&n).Error; err != nil {
				return fmt.Errorf("failed to check inventory item: %w", err)
			}
			if n == 0 {
				return fmt.Errorf("%w: %s", inventory.ErrNotFound, r.ItemID)
			}

			created := r.CreatedAt
			if created.IsZero() {
				created = t.CreatedAt
			}
			if err := tx.Create(&db.ReservationRow{
				TaskID:           t.ID,
				ItemID:           r.ItemID,
				QuantityRequired: r.QuantityRequired,
				CreatedAt:        created,
			}).Error; err != nil {
				return fmt.Errorf("failed to insert reservation: %w", err)
			}
		}

		ev.TaskID = t.ID
		return insertEvent(tx, ev)
	})
}

// Get returns a task by ID. Returns task.ErrNotFound if missing.
func (s *TaskStore) Get(ctx context.Context, id string) (task.Task, error) {
	var row db.TaskRow
	err := s.db.Conn(ctx).First(&row, "id = ?", id).Error
	if IsNotFoundError(err) {
		return task.Task{}, task.ErrNotFound
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return rowToTask(row), nil
}

// List returns tasks matching the filter.
func (s *TaskStore) List(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	q := s.db.Conn(ctx).Model(&db.TaskRow{})

	if filter.Status != "" {
		// Legacy rows still carry the alias of Acknowledged.
		if filter.Status.Canonical() == task.StatusAcknowledged {
			q = q.Where("status IN ?", []string{string(task.StatusAcknowledged), string(task.StatusInReview)})
		} else {
			q = q.Where("status = ?", string(filter.Status))
		}
	}
	if filter.AssigneeID != "" {
		q = q.Where("assignee_id = ?", filter.AssigneeID)
	}
	if filter.EventID != "" {
		q = q.Where("event_id = ?", filter.EventID)
	}
	if filter.CostCenterID != "" {
		q = q.Where("cost_center_id = ?", filter.CostCenterID)
	}

	switch filter.Order {
	case task.OrderDeadline:
		q = q.Order("deadline IS NULL, deadline ASC, created_at DESC")
	case task.OrderPriority:
		q = q.Order("CASE priority WHEN 'Urgent' THEN 0 WHEN 'High' THEN 1 WHEN 'Medium' THEN 2 ELSE 3 END, created_at DESC")
	default:
		q = q.Order("created_at DESC")
	}

	var rows []db.TaskRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	out := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToTask(row))
	}
	return out, nil
}

// Update writes t when the stored version still matches and appends ev.
func (s *TaskStore) Update(ctx context.Context, t *task.Task, ev task.Event) error {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		row := taskToRow(*t)
		res := tx.Model(&db.TaskRow{}).
			Where("id = ? AND version = ?", t.ID, t.Version).
			Updates(mutableColumns(row, t.Version+1))
		if res.Error != nil {
			if isUniqueConstraintError(res.Error) {
				return fmt.Errorf("%w: custom_id %q is already in use", task.ErrValidation, t.CustomID)
			}
			return fmt.Errorf("failed to update task: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&db.TaskRow{}).Where("id = ?", t.ID).Count(&n).Error; err != nil {
				return fmt.Errorf("failed to check task: %w", err)
			}
			if n == 0 {
				return task.ErrNotFound
			}
			return task.ErrConflict
		}

		ev.TaskID = t.ID
		return insertEvent(tx, ev)
	})
	if err != nil {
		return err
	}

	t.Version++
	return nil
}

// Delete removes the task with its attachments, reservations and events.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&db.TaskRow{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete task: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return task.ErrNotFound
		}

		for _, model := range []any{&db.AttachmentRow{}, &db.ReservationRow{}, &db.TaskEventRow{}} {
			if err := tx.Where("task_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to delete task children: %w", err)
			}
		}
		return nil
	})
}

// AddAttachment inserts the attachment row and its audit event.
func (s *TaskStore) AddAttachment(ctx context.Context, a *task.Attachment, ev task.Event) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&db.TaskRow{}).Where("id = ?", a.TaskID).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check task: %w", err)
		}
		if n == 0 {
			return task.ErrNotFound
		}

		if err := tx.Create(&db.AttachmentRow{
			ID:         a.ID,
			TaskID:     a.TaskID,
			FileName:   a.FileName,
			FilePath:   a.FilePath,
			FileType:   a.FileType,
			FileSize:   a.FileSize,
			UploadedBy: a.UploadedBy,
			Context:    string(a.Context),
			CreatedAt:  a.CreatedAt,
		}).Error; err != nil {
			return fmt.Errorf("failed to insert attachment: %w", err)
		}

		ev.TaskID = a.TaskID
		return insertEvent(tx, ev)
	})
}

// Attachments lists a task's attachments, oldest first.
func (s *TaskStore) Attachments(ctx context.Context, taskID string) ([]task.Attachment, error) {
	var rows []db.AttachmentRow
	if err := s.db.Conn(ctx).Where("task_id = ?", taskID).Order("created_at ASC, rowid ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	out := make([]task.Attachment, 0, len(rows))
	for _, r := range rows {
		out = append(out, task.Attachment{
			ID:         r.ID,
			TaskID:     r.TaskID,
			FileName:   r.FileName,
			FilePath:   r.FilePath,
			FileType:   r.FileType,
			FileSize:   r.FileSize,
			UploadedBy: r.UploadedBy,
			Context:    task.AttachmentContext(r.Context),
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}

// Events lists a task's audit events, oldest first.
func (s *TaskStore) Events(ctx context.Context, taskID string) ([]task.Event, error) {
	var rows []db.TaskEventRow
	if err := s.db.Conn(ctx).Where("task_id = ?", taskID).Order("created_at ASC, rowid ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list task events: %w", err)
	}

	out := make([]task.Event, 0, len(rows))
	for _, r := range rows {
		out = append(out, task.Event{
			ID:        r.ID,
			TaskID:    r.TaskID,
			Kind:      task.EventKind(r.Kind),
			From:      task.Status(r.FromStatus),
			To:        task.Status(r.ToStatus),
			ActorID:   r.ActorID,
			Comment:   r.Comment,
			Details:   map[string]any(r.Details),
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

func insertEvent(tx *gorm.DB, ev task.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	row := db.TaskEventRow{
		ID:         ev.ID,
		TaskID:     ev.TaskID,
		Kind:       string(ev.Kind),
		FromStatus: string(ev.From),
		ToStatus:   string(ev.To),
		ActorID:    ev.ActorID,
		Comment:    ev.Comment,
		CreatedAt:  ev.CreatedAt,
	}
	if len(ev.Details) > 0 {
		row.Details = datatypes.JSONMap(ev.Details)
	}

	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert task event: %w", err)
	}
	return nil
}

// mutableColumns lists every column an update may change. A map is used so
// that nil and zero values are written too.
func mutableColumns(r db.TaskRow, version int64) map[string]any {
	return map[string]any{
		"custom_id":              r.CustomID,
		"title":                  r.Title,
		"description":            r.Description,
		"priority":               r.Priority,
		"status":                 r.Status,
		"event_id":               r.EventID,
		"assignee_id":            r.AssigneeID,
		"deadline":               r.Deadline,
		"acknowledged_at":        r.AcknowledgedAt,
		"started_at":             r.StartedAt,
		"completed_at":           r.CompletedAt,
		"actual_cost":            r.ActualCost,
		"vendor_name":            r.VendorName,
		"vendor_address":         r.VendorAddress,
		"vendor_contact":         r.VendorContact,
		"cost_to_client":         r.CostToClient,
		"unit_type":              r.UnitType,
		"billable_quantity":      r.BillableQuantity,
		"profitability_comments": r.ProfitabilityComments,
		"cost_center_id":         r.CostCenterID,
		"version":                version,
	}
}

func taskToRow(t task.Task) db.TaskRow {
	return db.TaskRow{
		ID:                    t.ID,
		CustomID:              t.CustomID,
		Title:                 t.Title,
		Description:           t.Description,
		Priority:              string(t.Priority),
		Status:                string(t.Status),
		EventID:               t.EventID,
		AssigneeID:            t.AssigneeID,
		Deadline:              t.Deadline,
		CreatedAt:             t.CreatedAt,
		AcknowledgedAt:        t.AcknowledgedAt,
		StartedAt:             t.StartedAt,
		CompletedAt:           t.CompletedAt,
		ActualCost:            t.ActualCost,
		VendorName:            t.VendorName,
		VendorAddress:         t.VendorAddress,
		VendorContact:         t.VendorContact,
		CostToClient:          t.CostToClient,
		UnitType:              t.UnitType,
		BillableQuantity:      t.BillableQuantity,
		ProfitabilityComments: t.Comments,
		CostCenterID:          t.CostCenterID,
		Version:               t.Version,
	}
}

func rowToTask(r db.TaskRow) task.Task {
	return task.Task{
		ID:             r.ID,
		CustomID:       r.CustomID,
		Title:          r.Title,
		Description:    r.Description,
		Priority:       task.Priority(r.Priority),
		Status:         task.Status(r.Status),
		EventID:        r.EventID,
		AssigneeID:     r.AssigneeID,
		Deadline:       r.Deadline,
		CreatedAt:      r.CreatedAt,
		AcknowledgedAt: r.AcknowledgedAt,
		StartedAt:      r.StartedAt,
		CompletedAt:    r.CompletedAt,
		Fulfillment: task.Fulfillment{
			ActualCost:    r.ActualCost,
			VendorName:    r.VendorName,
			VendorAddress: r.VendorAddress,
			VendorContact: r.VendorContact,
		},
		Profitability: task.Profitability{
			CostToClient:     r.CostToClient,
			UnitType:         r.UnitType,
			BillableQuantity: r.BillableQuantity,
			Comments:         r.ProfitabilityComments,
			CostCenterID:     r.CostCenterID,
		},
		Version: r.Version,
	}
}
