package events

// Event type constants for kelindar/event.
const (
	TypeLinkStateChanged uint32 = iota + 1
	TypeSessionChanged
	TypeLEDChanged
	TypeDisplayChanged
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LinkStateChangedEvent is published when the OSC link to the engine comes up
// or goes down.
type LinkStateChangedEvent struct {
	Connected   bool   `json:"connected" example:"true" doc:"Whether both OSC endpoints are up"`
	SendPort    int    `json:"send_port" example:"9000" doc:"Engine command port, -1 when down"`
	ReceivePort int    `json:"receive_port" example:"9001" doc:"Local listen port, -1 when down"`
	Reason      string `json:"reason" example:"timeout" doc:"Why the state changed: connected, timeout, serve_error, shutdown"`
	Timestamp   string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LinkStateChangedEvent.
func (e LinkStateChangedEvent) Type() uint32 { return TypeLinkStateChanged }

// SessionChangedEvent is published when the engine announces itself or the
// LED registry is rebuilt or resized.
type SessionChangedEvent struct {
	Action    string `json:"action" example:"established" doc:"Action type: established, rebuilt, resized"`
	EngineID  int32  `json:"engine_id" example:"1337" doc:"Engine instance identifier"`
	Host      string `json:"host" example:"127.0.0.1" doc:"Engine host"`
	Version   string `json:"version" example:"0.3.1" doc:"Engine version string"`
	LEDCount  int    `json:"led_count" example:"12" doc:"Number of tracked LED slots"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SessionChangedEvent.
func (e SessionChangedEvent) Type() uint32 { return TypeSessionChanged }

// LEDChangedEvent is published when an engine update changes a tracked LED.
type LEDChangedEvent struct {
	Index     int    `json:"index" example:"3" doc:"Slot index"`
	On        bool   `json:"on" example:"true" doc:"Current illumination"`
	State     string `json:"state" example:"blink" doc:"Animation state: dark, light, blink, fastblink"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LEDChangedEvent.
func (e LEDChangedEvent) Type() uint32 { return TypeLEDChanged }

// DisplayChangedEvent is published when the engine selects a different loop.
type DisplayChangedEvent struct {
	Selected  int    `json:"selected" example:"5" doc:"One-based selected loop number shown on the display"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DisplayChangedEvent.
func (e DisplayChangedEvent) Type() uint32 { return TypeDisplayChanged }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"engine" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
