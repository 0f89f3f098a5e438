package telemetry

import "github.com/kilianp07/evdash/internal/eventbus"

// Hub couples the Store with the push fan-out: every Publish replaces the
// stored snapshot and then offers it to all subscribers.
type Hub struct {
	store *Store
	bus   *eventbus.TypedBus[Snapshot]
}

// NewHub creates a hub over store. buffer is the per-subscriber queue depth.
func NewHub(store *Store, buffer int) *Hub {
	return &Hub{store: store, bus: eventbus.NewTyped[Snapshot](buffer)}
}

// Publish replaces the current snapshot and broadcasts it. It returns the
// number of subscribers that accepted the value. With no subscribers the
// broadcast is a no-op.
func (h *Hub) Publish(s Snapshot) int {
	h.store.Replace(s)
	return h.bus.Publish(s)
}

// Store returns the underlying store.
func (h *Hub) Store() *Store { return h.store }

// Subscribe registers a push subscriber.
func (h *Hub) Subscribe() <-chan Snapshot { return h.bus.Subscribe() }

// Unsubscribe removes a push subscriber.
func (h *Hub) Unsubscribe(ch <-chan Snapshot) { h.bus.Unsubscribe(ch) }

// Subscribers reports the number of connected push subscribers.
func (h *Hub) Subscribers() int { return h.bus.Len() }

// Close disconnects all subscribers.
func (h *Hub) Close() { h.bus.Close() }
