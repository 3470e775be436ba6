// Package task defines the task domain model and its lifecycle engine: the
// ordered state machine, the permission predicates, fulfillment capture and
// attachment rules. Everything here is pure; persistence lives behind Store.
package task

import "time"

// Priority ranks tasks for the operator.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Fulfillment is the vendor and cost data captured while work is underway.
// Nil fields are unset.
type Fulfillment struct {
	ActualCost    *float64 `json:"actual_cost"`
	VendorName    *string  `json:"vendor_name"`
	VendorAddress *string  `json:"vendor_address"`
	VendorContact *string  `json:"vendor_contact"`
}

// Profitability is the billing side of a task.
type Profitability struct {
	CostToClient     *float64 `json:"cost_to_client"`
	UnitType         string   `json:"unit_type,omitempty"`
	BillableQuantity *float64 `json:"billable_quantity"`
	Comments         string   `json:"profitability_comments,omitempty"`
	CostCenterID     string   `json:"cost_center_id,omitempty"`
}

// Task is the central entity.
type Task struct {
	ID          string   `json:"id"`
	CustomID    string   `json:"custom_id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	EventID     string   `json:"event_id,omitempty"`
	AssigneeID  string   `json:"assignee_id,omitempty"`

	Deadline       *time.Time `json:"deadline"`
	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`

	Fulfillment
	Profitability

	// Version increments on every write and guards concurrent updates.
	Version int64 `json:"version"`
}

// EventKind classifies an audit event.
type EventKind string

const (
	EventCreated     EventKind = "created"
	EventTransition  EventKind = "transition"
	EventApproved    EventKind = "approved"
	EventRejected    EventKind = "rejected"
	EventFulfillment EventKind = "fulfillment"
	EventReassigned  EventKind = "reassigned"
	EventAttachment  EventKind = "attachment"
)

// Event is one append-only audit record. Scalar timestamps on Task keep only
// the first entry into each state; events keep every cycle.
type Event struct {
	ID        string         `json:"id"`
	TaskID    string         `json:"task_id"`
	Kind      EventKind      `json:"kind"`
	From      Status         `json:"from_status,omitempty"`
	To        Status         `json:"to_status,omitempty"`
	ActorID   string         `json:"actor_id"`
	Comment   string         `json:"comment,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
