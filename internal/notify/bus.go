// Package notify is a process-wide, in-memory notification channel.
// Publishers never block: events are dropped for subscribers whose buffer is full.
package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Event types
const (
	RecordCreated = "record.created"
	RecordUpdated = "record.updated"
	RecordDeleted = "record.deleted"
	SyncCompleted = "sync.completed"
)

// Event describes a change to a catalog record.
type Event struct {
	At     time.Time
	Type   string
	Kind   string
	ID     string
	Origin string // remote | local
}

// Bus fans events out to subscribers.
type Bus struct {
	subs    map[uint64]chan Event
	nextID  uint64
	dropped atomic.Uint64
	mu      sync.RWMutex
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]chan Event)}
}

// Publish delivers ev to every subscriber without blocking.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.dropped.Add(1)
		}
	}
}

// Subscribe returns a channel receiving future events and a cancel func
// that unsubscribes and closes the channel. Cancel is safe to call twice.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}
