// Package eventbus implements a small fan-out pub/sub bus for planning events.
package eventbus

import (
	"sync"

	"github.com/freightplan/freightplan/core/events"
)

// Bus fans events out to subscribers. Delivery is non-blocking: a subscriber
// that falls behind loses events rather than stalling the planner.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan events.Event
	nextID int
	closed bool
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[int]chan events.Event)}
}

// Publish delivers e to every subscriber that has buffer space left.
func (b *Bus) Publish(e events.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a subscriber and returns its channel along with a
// cancel function that removes it.
func (b *Bus) Subscribe() (<-chan events.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan events.Event, 16)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

// Close shuts the bus and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
