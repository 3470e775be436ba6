package eventbus

import (
	"fmt"
	"time"

	"github.com/KrikINS/floor-ready/internal/core/notify"
	"github.com/KrikINS/floor-ready/internal/core/task"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
	now func() time.Time
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus, now: time.Now}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeTaskCreated(func(p TaskCreatedPayload) {
		r.notifyf(p.Task.ID, notify.LevelInfo, "task %q created (%s)", p.Task.Title, p.Task.Priority)
	})

	r.bus.SubscribeTaskTransitioned(func(p TaskTransitionedPayload) {
		switch {
		case p.Kind == task.EventApproved:
			r.notifyf(p.Task.ID, notify.LevelInfo, "task %q approved", p.Task.Title)
		case p.Kind == task.EventRejected:
			msg := fmt.Sprintf("task %q sent back to %s", p.Task.Title, p.To)
			if p.Comment != "" {
				msg += ": " + p.Comment
			}
			r.notifyf(p.Task.ID, notify.LevelWarning, "%s", msg)
		case p.To == task.StatusAwaitingApproval:
			r.notifyf(p.Task.ID, notify.LevelInfo, "task %q is awaiting approval", p.Task.Title)
		}
	})

	r.bus.SubscribeTaskReassigned(func(p TaskReassignedPayload) {
		to := p.Task.AssigneeID
		if to == "" {
			to = "nobody"
		}
		r.notifyf(p.Task.ID, notify.LevelInfo, "task %q reassigned to %s", p.Task.Title, to)
	})

	r.bus.SubscribeTaskDeleted(func(p TaskDeletedPayload) {
		r.notifyf(p.TaskID, notify.LevelWarning, "task %q deleted", p.Title)
	})
}

func (r *NotificationRouter) notifyf(taskID string, level notify.Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Notification: notify.Notification{
			Level:     level,
			Message:   fmt.Sprintf(format, args...),
			TaskID:    taskID,
			CreatedAt: r.now(),
		},
	})
}
