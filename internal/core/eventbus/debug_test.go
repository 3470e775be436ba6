package eventbus_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/KrikINS/floor-ready/internal/core/eventbus"
	"github.com/KrikINS/floor-ready/internal/core/task"
)

func TestRegisterDebugLogger(t *testing.T) {
	var buf bytes.Buffer
	bus := eventbus.New(1)
	eventbus.RegisterDebugLogger(bus, zerolog.New(&buf).Level(zerolog.DebugLevel))

	bus.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: task.Task{ID: "t1"}})
	bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: "t2"})

	out := buf.String()
	assert.Contains(t, out, `"message":"event published"`)
	assert.Contains(t, out, `"task_id":"t1"`)
	assert.Contains(t, out, `"message":"event dropped: buffer full"`)
	assert.Contains(t, out, `"task_id":"t2"`)
}

func TestPayloadTaskID(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{name: "created", payload: eventbus.TaskCreatedPayload{Task: task.Task{ID: "a"}}, want: "a"},
		{name: "transitioned", payload: eventbus.TaskTransitionedPayload{Task: task.Task{ID: "b"}}, want: "b"},
		{name: "deleted", payload: eventbus.TaskDeletedPayload{TaskID: "c"}, want: "c"},
		{name: "attachment", payload: eventbus.AttachmentUploadedPayload{Attachment: task.Attachment{TaskID: "d"}}, want: "d"},
		{name: "unknown", payload: "noise", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eventbus.PayloadTaskID(tt.payload))
		})
	}
}

func TestEventBus_SubscriberPanicIsRecovered(t *testing.T) {
	bus := eventbus.New(8)
	panicked := make(chan eventbus.Event, 1)
	bus.OnPanic(func(e eventbus.Event, _ any, _ any) { panicked <- e })

	delivered := make(chan string, 1)
	bus.SubscribeTaskDeleted(func(eventbus.TaskDeletedPayload) { panic("boom") })
	bus.SubscribeTaskDeleted(func(p eventbus.TaskDeletedPayload) { delivered <- p.TaskID })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Start(ctx)

	bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: "t1"})

	select {
	case e := <-panicked:
		assert.Equal(t, eventbus.EventTaskDeleted, e)
	case <-time.After(time.Second):
		t.Fatal("panic hook not called")
	}
	select {
	case id := <-delivered:
		assert.Equal(t, "t1", id)
	case <-time.After(time.Second):
		t.Fatal("second subscriber not called")
	}
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	bus := eventbus.New(1)
	dropped := 0
	bus.OnDrop(func(eventbus.Event, any) { dropped++ })

	bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: "a"})
	bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: "b"})

	assert.Equal(t, 1, dropped)
}

func TestEventBus_StartDrainsOnCancel(t *testing.T) {
	bus := eventbus.New(4)
	var got []string
	bus.SubscribeTaskDeleted(func(p eventbus.TaskDeletedPayload) { got = append(got, p.TaskID) })

	bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: "a"})
	bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: "b"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Start(ctx)

	<-bus.Done()
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestEventBus_PanickingHookIsSwallowed(t *testing.T) {
	bus := eventbus.New(4)
	var seen []eventbus.Event
	bus.OnPanic(func(eventbus.Event, any, any) { panic("hook") })
	bus.OnPanic(func(e eventbus.Event, _ any, _ any) { seen = append(seen, e) })

	delivered := 0
	bus.SubscribeTaskDeleted(func(eventbus.TaskDeletedPayload) { panic("boom") })
	bus.SubscribeTaskDeleted(func(eventbus.TaskDeletedPayload) { delivered++ })

	bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Start(ctx)

	assert.Equal(t, []eventbus.Event{eventbus.EventTaskDeleted}, seen)
	assert.Equal(t, 1, delivered)
}
