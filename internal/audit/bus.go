package audit

import (
	"sort"
	"sync"

	"github.com/Wingseter/signal-smith-sub001/internal/logger"
)

// Listener receives published events. A listener that panics is isolated and
// logged; its siblings still run.
type Listener func(Event)

// Bus is a typed publish/subscribe hub for signal events. Observers register
// at construction time; nothing in the system reassigns functions at runtime.
type Bus struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[string]map[int]Listener // event type -> id -> listener
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[string]map[int]Listener)}
}

// Subscribe registers fn for eventType and returns a token for Unsubscribe.
// The empty eventType subscribes to every event.
func (b *Bus) Subscribe(eventType string, fn Listener) int {
	if fn == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	if b.listeners[eventType] == nil {
		b.listeners[eventType] = make(map[int]Listener)
	}
	b.listeners[eventType][id] = fn
	return id
}

// Unsubscribe removes a previously registered listener.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, group := range b.listeners {
		delete(group, id)
	}
}

// Publish delivers evt to listeners of its type and to wildcard listeners,
// synchronously, in subscription order. Tokens are monotonic, so sorting by
// token restores the order Subscribe was called in.
func (b *Bus) Publish(evt Event) {
	type target struct {
		id int
		fn Listener
	}
	b.mu.RLock()
	targets := make([]target, 0, 8)
	for id, fn := range b.listeners[evt.EventType] {
		targets = append(targets, target{id: id, fn: fn})
	}
	for id, fn := range b.listeners[""] {
		targets = append(targets, target{id: id, fn: fn})
	}
	b.mu.RUnlock()
	sort.Slice(targets, func(i, j int) bool { return targets[i].id < targets[j].id })

	for _, t := range targets {
		b.dispatch(evt, t.fn)
	}
}

func (b *Bus) dispatch(evt Event, fn Listener) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("event bus: listener panic on %s: %v", evt.EventType, r)
		}
	}()
	fn(evt)
}
