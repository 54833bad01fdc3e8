package events

import (
	"log"
	"sync"
)

// Registry fans an event out to subscribed listeners. Delivery is
// synchronous and follows registration order. A listener that panics is
// logged and skipped; it never blocks delivery to the others.
type Registry[T any] struct {
	mu      sync.Mutex
	next    int
	entries []entry[T]
}

type entry[T any] struct {
	id       int
	listener func(T)
}

// Subscription identifies one registered listener.
type Subscription struct {
	cancel func()
	once   sync.Once
}

// Cancel removes the listener. Safe to call more than once, including from
// inside a listener callback.
func (sub *Subscription) Cancel() {
	if sub == nil {
		return
	}
	sub.once.Do(sub.cancel)
}

// Subscribe registers a listener and returns its subscription handle.
func (registry *Registry[T]) Subscribe(listener func(T)) *Subscription {
	registry.mu.Lock()
	id := registry.next
	registry.next++
	registry.entries = append(registry.entries, entry[T]{id: id, listener: listener})
	registry.mu.Unlock()

	return &Subscription{cancel: func() {
		registry.remove(id)
	}}
}

// Emit delivers the event to a snapshot of the current listeners, so
// listeners may subscribe or cancel during delivery.
func (registry *Registry[T]) Emit(event T) {
	registry.mu.Lock()
	snapshot := make([]entry[T], len(registry.entries))
	copy(snapshot, registry.entries)
	registry.mu.Unlock()

	for _, item := range snapshot {
		deliver(item.listener, event)
	}
}

// Len reports the number of registered listeners.
func (registry *Registry[T]) Len() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.entries)
}

// Clear drops every listener.
func (registry *Registry[T]) Clear() {
	registry.mu.Lock()
	registry.entries = nil
	registry.mu.Unlock()
}

func (registry *Registry[T]) remove(id int) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for index, item := range registry.entries {
		if item.id == id {
			registry.entries = append(registry.entries[:index], registry.entries[index+1:]...)
			return
		}
	}
}

func deliver[T any](listener func(T), event T) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Printf("event listener panic: %v", recovered)
		}
	}()
	listener(event)
}
