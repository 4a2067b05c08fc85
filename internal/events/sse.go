package events

import "github.com/kelindar/event"

// SubscribeToChannel bridges kelindar/event subscriptions onto a channel for
// the SSE endpoints, which drive a select loop per connection. A full channel
// drops the event; the client resynchronizes from the next snapshot or log
// backlog read.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}
