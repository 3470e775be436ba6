package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger logs bus activity. Published events are logged at debug
// level with the task they concern; dropped events and subscriber panics are
// logged as warnings and errors since both lose work.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnSubscribe(func(event Event) {
		logger.Debug().Str("event", string(event)).Msg("subscriber registered")
	})

	bus.OnPublish(func(event Event, payload any) {
		logger.Debug().
			Str("event", string(event)).
			Str("task_id", PayloadTaskID(payload)).
			Msg("event published")
	})

	bus.OnDrop(func(event Event, payload any) {
		logger.Warn().
			Str("event", string(event)).
			Str("task_id", PayloadTaskID(payload)).
			Msg("event dropped: buffer full")
	})

	bus.OnPanic(func(event Event, payload any, recovered any) {
		logger.Error().
			Str("event", string(event)).
			Str("task_id", PayloadTaskID(payload)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

// PayloadTaskID returns the ID of the task an event payload concerns, or ""
// when it concerns none.
func PayloadTaskID(payload any) string {
	switch p := payload.(type) {
	case TaskCreatedPayload:
		return p.Task.ID
	case TaskTransitionedPayload:
		return p.Task.ID
	case TaskFulfillmentSavedPayload:
		return p.Task.ID
	case TaskReassignedPayload:
		return p.Task.ID
	case TaskDeletedPayload:
		return p.TaskID
	case AttachmentUploadedPayload:
		return p.Attachment.TaskID
	case NotificationPublishedPayload:
		return p.Notification.TaskID
	}
	return ""
}
