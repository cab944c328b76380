// ABOUTME: Typed event bus used to broadcast runtime lifecycle transitions
// ABOUTME: Delivers synchronously in subscription order; Last replays the most recent event to late observers

package eventbus

import (
	"slices"
	"sync"
)

// Handler is a callback function for events.
type Handler[T any] func(T)

type subscription[T any] struct {
	id      int
	handler Handler[T]
}

// Bus is a typed event bus that delivers events to registered handlers.
type Bus[T any] struct {
	mu      sync.RWMutex
	subs    []subscription[T]
	nextID  int
	last    T
	hasLast bool
}

// New creates a new event bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{}
}

// Subscribe registers a handler and returns an unsubscribe function.
// Calling the returned function more than once is harmless.
func (b *Bus[T]) Subscribe(handler Handler[T]) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscription[T]{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		b.subs = slices.DeleteFunc(b.subs, func(s subscription[T]) bool {
			return s.id == id
		})
		b.mu.Unlock()
	}
}

// Publish sends an event to all registered handlers, oldest subscription
// first. Handlers run on the caller's goroutine.
func (b *Bus[T]) Publish(event T) {
	b.mu.Lock()
	b.last = event
	b.hasLast = true
	// Snapshot handlers to avoid holding lock during callbacks
	snapshot := make([]Handler[T], len(b.subs))
	for i, s := range b.subs {
		snapshot[i] = s.handler
	}
	b.mu.Unlock()

	for _, h := range snapshot {
		h(event)
	}
}

// Last returns the most recently published event, if any.
func (b *Bus[T]) Last() (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last, b.hasLast
}

// Count returns the number of registered handlers.
func (b *Bus[T]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
