// Package bus provides the in-process publish/subscribe channel that
// decouples state-change producers from the views that must refresh.
// Delivery is synchronous, fire-and-forget, and reaches exactly the
// handlers registered at publish time; there is no persistence or replay.
package bus

import "sync"

// Handler receives the name of the published event.
type Handler func(event string)

type subscription struct {
	id      int
	handler Handler
}

// Bus is a process-local event channel. The zero value is not usable; call
// New.
type Bus struct {
	mu     sync.Mutex
	subs   map[string][]subscription
	nextID int
}

func New() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// Subscribe registers handler for event and returns its unsubscribe func.
// Unsubscribing twice is harmless.
func (b *Bus) Subscribe(event string, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[event] = append(b.subs[event], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[event]
		for i, sub := range list {
			if sub.id == id {
				b.subs[event] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish dispatches event to current subscribers, in registration order,
// on the caller's goroutine. Handlers added or removed while Publish runs
// take effect on the next publish.
func (b *Bus) Publish(event string) {
	b.mu.Lock()
	list := b.subs[event]
	snapshot := make([]subscription, len(list))
	copy(snapshot, list)
	b.mu.Unlock()

	for _, sub := range snapshot {
		sub.handler(event)
	}
}
