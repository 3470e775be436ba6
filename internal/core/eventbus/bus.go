package eventbus

import (
	"context"
	"slices"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// hookSet is a callback list that may grow while events are in flight.
type hookSet[F any] struct {
	mu  sync.RWMutex
	fns []F
}

func (h *hookSet[F]) add(fn F) {
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

func (h *hookSet[F]) snapshot() []F {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.fns)
}

// EventBus delivers published events to subscribers on a single dispatch
// goroutine started by Start. Publishing never blocks; events are dropped
// when the buffer is full.
type EventBus struct {
	ch chan envelope

	mu   sync.RWMutex
	subs map[Event][]func(any)

	onPublish   hookSet[func(Event, any)]
	onDrop      hookSet[func(Event, any)]
	onSubscribe hookSet[func(Event)]
	onPanic     hookSet[func(Event, any, any)]

	done chan struct{}
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	if buffer < 1 {
		buffer = 1
	}
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
		done: make(chan struct{}),
	}
}

// OnPublish runs fn after an event is queued.
func (bus *EventBus) OnPublish(fn func(Event, any)) { bus.onPublish.add(fn) }

// OnDrop runs fn when an event is dropped on a full buffer.
func (bus *EventBus) OnDrop(fn func(Event, any)) { bus.onDrop.add(fn) }

// OnSubscribe runs fn after a subscriber is registered.
func (bus *EventBus) OnSubscribe(fn func(Event)) { bus.onSubscribe.add(fn) }

// OnPanic runs fn with the recovered value when a subscriber panics. A
// panicking hook is swallowed.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) { bus.onPanic.add(fn) }

// Start dispatches events until ctx is cancelled, then delivers whatever is
// still buffered and returns.
func (bus *EventBus) Start(ctx context.Context) {
	defer close(bus.done)
	for {
		select {
		case env := <-bus.ch:
			bus.dispatch(env)
		case <-ctx.Done():
			for {
				select {
				case env := <-bus.ch:
					bus.dispatch(env)
				default:
					return
				}
			}
		}
	}
}

// Done is closed once Start has returned.
func (bus *EventBus) Done() <-chan struct{} {
	return bus.done
}

func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		for _, fn := range bus.onPublish.snapshot() {
			fn(event, payload)
		}
	default:
		for _, fn := range bus.onDrop.snapshot() {
			fn(event, payload)
		}
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()

	for _, hook := range bus.onSubscribe.snapshot() {
		hook(event)
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := slices.Clone(bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.panicked(env, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func (bus *EventBus) panicked(env envelope, recovered any) {
	for _, fn := range bus.onPanic.snapshot() {
		func() {
			defer func() { _ = recover() }()
			fn(env.event, env.payload, recovered)
		}()
	}
}
