package event

import (
	"reflect"
	"sync"
)

// Bus holds the events of the frame in progress. Systems Emit during their
// phase and later phases of the same frame Read them; nothing survives Clear,
// which runs in the cleanup phase. External collaborators (feed, audio, UI)
// Subscribe and receive the frame's events in emission order on DispatchAll.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	queues   map[reflect.Type][]any
	log      []any
	handlers map[reflect.Type][]func(any)
	taps     []func(frame uint64, ev any)
	frame    uint64
}

func NewBus() *Bus {
	return &Bus{
		queues:   make(map[reflect.Type][]any),
		log:      make([]any, 0, 64),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit appends event to this frame's queue for T.
func Emit[T any](b *Bus, event T) {
	t := typeOf[T]()
	b.queues[t] = append(b.queues[t], event)
	b.log = append(b.log, event)
}

// Read returns this frame's events of type T in emission order.
func Read[T any](b *Bus) []T {
	raw := b.queues[typeOf[T]()]
	if len(raw) == 0 {
		return nil
	}
	out := make([]T, len(raw))
	for i, ev := range raw {
		out[i] = ev.(T)
	}
	return out
}

// Count returns how many events of type T were emitted this frame.
func Count[T any](b *Bus) int {
	return len(b.queues[typeOf[T]()])
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeOf[T]()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// Tap registers a handler that sees every event regardless of type.
func (b *Bus) Tap(fn func(frame uint64, ev any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.taps = append(b.taps, fn)
}

// DispatchAll delivers this frame's events to subscribers in emission order.
func (b *Bus) DispatchAll() {
	for _, ev := range b.log {
		for _, h := range b.handlers[reflect.TypeOf(ev)] {
			h(ev)
		}
		for _, tap := range b.taps {
			tap(b.frame, ev)
		}
	}
}

// Clear drops every queued event and advances the frame counter.
func (b *Bus) Clear() {
	for k := range b.queues {
		b.queues[k] = b.queues[k][:0]
	}
	clear(b.log)
	b.log = b.log[:0]
	b.frame++
}

// Frame returns the index of the frame currently collecting events.
func (b *Bus) Frame() uint64 { return b.frame }
