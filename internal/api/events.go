package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/loopbridge/internal/events"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time event stream for link state, session changes, LED updates, and display changes",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"link-state-changed": events.LinkStateChangedEvent{},
		"session-changed":    events.SessionChangedEvent{},
		"led-changed":        events.LEDChangedEvent{},
		"display-changed":    events.DisplayChangedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.LinkStateChangedEvent](s.options.EventBus, eventCh),
			events.SubscribeToChannel[events.SessionChangedEvent](s.options.EventBus, eventCh),
			events.SubscribeToChannel[events.LEDChangedEvent](s.options.EventBus, eventCh),
			events.SubscribeToChannel[events.DisplayChangedEvent](s.options.EventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Send the current link state so clients do not wait for the next
		// transition.
		snap := s.options.Snapshot()
		if err := send.Data(events.LinkStateChangedEvent{
			Connected:   snap.Connected,
			SendPort:    snap.SendPort,
			ReceivePort: snap.ReceivePort,
			Reason:      "subscribed",
			Timestamp:   time.Now().Format(time.RFC3339),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
