package eventbus

// Event is any lifecycle notification passed on the bus.
type Event interface{}

// EventBus fans lifecycle events out to subscribers without blocking the
// publisher.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default EventBus. It is a TypedBus over Event.
type Bus struct {
	typed *TypedBus[Event]
}

// New creates a Bus whose subscribers buffer up to 16 events.
func New() *Bus { return &Bus{typed: NewTyped[Event](16)} }

// Publish hands e to every subscriber that has room for it.
func (b *Bus) Publish(e Event) { b.typed.Publish(e) }

// Subscribe registers a subscriber.
func (b *Bus) Subscribe() <-chan Event { return b.typed.Subscribe() }

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(sub <-chan Event) { b.typed.Unsubscribe(sub) }

// Close closes every subscriber channel.
func (b *Bus) Close() { b.typed.Close() }
