package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(LEDChangedEvent{...})
func (b *Bus) Publish(ev Event) {
	// Type switch calls the generic Publish with the concrete type
	switch e := ev.(type) {
	case LinkStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case SessionChangedEvent:
		event.Publish(b.dispatcher, e)
	case LEDChangedEvent:
		event.Publish(b.dispatcher, e)
	case DisplayChangedEvent:
		event.Publish(b.dispatcher, e)
	case LogEntryEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function
// The handler type determines which events it receives (type inference)
// Returns an unsubscribe function
// Usage: unsub := bus.Subscribe(func(e LinkStateChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(LinkStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(SessionChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LEDChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(DisplayChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LogEntryEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// No-op unsubscribe for unrecognized handler types
		return func() {}
	}
}
