// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within floorready.
package eventbus

import (
	"github.com/KrikINS/floor-ready/internal/core/notify"
	"github.com/KrikINS/floor-ready/internal/core/task"
)

// Event names a bus topic.
type Event string

// Keep list sorted A-Z
const (
	EventAttachmentUploaded    Event = "attachment.uploaded"
	EventNotificationPublished Event = "notification.published"
	EventTaskCreated           Event = "task.created"
	EventTaskDeleted           Event = "task.deleted"
	EventTaskFulfillmentSaved  Event = "task.fulfillment-saved"
	EventTaskReassigned        Event = "task.reassigned"
	EventTaskTransitioned      Event = "task.transitioned"
)

// TaskCreatedPayload is emitted after a task and its reservations are stored.
type TaskCreatedPayload struct {
	Task    task.Task
	ActorID string
}

// TaskTransitionedPayload is emitted after a status change is stored.
type TaskTransitionedPayload struct {
	Task    task.Task
	From    task.Status
	To      task.Status
	Kind    task.EventKind
	ActorID string
	Comment string
}

// TaskFulfillmentSavedPayload is emitted after vendor or cost data is saved.
type TaskFulfillmentSavedPayload struct {
	Task    task.Task
	Fields  []string
	ActorID string
}

// TaskReassignedPayload is emitted when the assignee changes.
type TaskReassignedPayload struct {
	Task    task.Task
	From    string
	ActorID string
}

// TaskDeletedPayload is emitted after a task is removed.
type TaskDeletedPayload struct {
	TaskID  string
	Title   string
	ActorID string
}

// AttachmentUploadedPayload is emitted after an attachment row is stored.
type AttachmentUploadedPayload struct {
	Attachment task.Attachment
	ActorID    string
}

// NotificationPublishedPayload carries a user-facing notification.
type NotificationPublishedPayload struct {
	Notification notify.Notification
}

// PublishTaskCreated enqueues a task.created event.
func (bus *EventBus) PublishTaskCreated(p TaskCreatedPayload) { bus.send(EventTaskCreated, p) }

// SubscribeTaskCreated registers fn for task.created events.
func (bus *EventBus) SubscribeTaskCreated(fn func(TaskCreatedPayload)) {
	bus.subscribe(EventTaskCreated, func(p any) { fn(p.(TaskCreatedPayload)) })
}

// PublishTaskTransitioned enqueues a task.transitioned event.
func (bus *EventBus) PublishTaskTransitioned(p TaskTransitionedPayload) {
	bus.send(EventTaskTransitioned, p)
}

// SubscribeTaskTransitioned registers fn for task.transitioned events.
func (bus *EventBus) SubscribeTaskTransitioned(fn func(TaskTransitionedPayload)) {
	bus.subscribe(EventTaskTransitioned, func(p any) { fn(p.(TaskTransitionedPayload)) })
}

// PublishTaskFulfillmentSaved enqueues a task.fulfillment-saved event.
func (bus *EventBus) PublishTaskFulfillmentSaved(p TaskFulfillmentSavedPayload) {
	bus.send(EventTaskFulfillmentSaved, p)
}

// SubscribeTaskFulfillmentSaved registers fn for task.fulfillment-saved events.
func (bus *EventBus) SubscribeTaskFulfillmentSaved(fn func(TaskFulfillmentSavedPayload)) {
	bus.subscribe(EventTaskFulfillmentSaved, func(p any) { fn(p.(TaskFulfillmentSavedPayload)) })
}

// PublishTaskReassigned enqueues a task.reassigned event.
func (bus *EventBus) PublishTaskReassigned(p TaskReassignedPayload) {
	bus.send(EventTaskReassigned, p)
}

// SubscribeTaskReassigned registers fn for task.reassigned events.
func (bus *EventBus) SubscribeTaskReassigned(fn func(TaskReassignedPayload)) {
	bus.subscribe(EventTaskReassigned, func(p any) { fn(p.(TaskReassignedPayload)) })
}

// PublishTaskDeleted enqueues a task.deleted event.
func (bus *EventBus) PublishTaskDeleted(p TaskDeletedPayload) { bus.send(EventTaskDeleted, p) }

// SubscribeTaskDeleted registers fn for task.deleted events.
func (bus *EventBus) SubscribeTaskDeleted(fn func(TaskDeletedPayload)) {
	bus.subscribe(EventTaskDeleted, func(p any) { fn(p.(TaskDeletedPayload)) })
}

// PublishAttachmentUploaded enqueues an attachment.uploaded event.
func (bus *EventBus) PublishAttachmentUploaded(p AttachmentUploadedPayload) {
	bus.send(EventAttachmentUploaded, p)
}

// SubscribeAttachmentUploaded registers fn for attachment.uploaded events.
func (bus *EventBus) SubscribeAttachmentUploaded(fn func(AttachmentUploadedPayload)) {
	bus.subscribe(EventAttachmentUploaded, func(p any) { fn(p.(AttachmentUploadedPayload)) })
}

// PublishNotificationPublished enqueues a notification.published event.
func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

// SubscribeNotificationPublished registers fn for notification.published events.
func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	bus.subscribe(EventNotificationPublished, func(p any) { fn(p.(NotificationPublishedPayload)) })
}
