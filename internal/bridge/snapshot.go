package bridge

import (
	"time"

	"github.com/smazurov/loopbridge/internal/led"
)

// Snapshot is an immutable copy of bridge state, republished after every
// tick and handled message. Observers (API, status command) read it without
// touching live state.
type Snapshot struct {
	Connected   bool      `json:"connected"`
	SendPort    int       `json:"send_port"`
	ReceivePort int       `json:"receive_port"`
	Countdown   int       `json:"countdown"`
	Pinged      bool      `json:"pinged"`
	Engine      Engine    `json:"engine"`
	LEDs        []led.LED `json:"leds"`
	Device      string    `json:"device"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Engine is the tracked engine identity within a snapshot.
type Engine struct {
	ID          int32  `json:"id"`
	Host        string `json:"host"`
	Version     string `json:"version"`
	Established bool   `json:"established"`
}

func (b *Bridge) publishSnapshot() {
	send, receive := b.link.Ports()
	session := b.tracker.Session()
	b.snapshot.Store(&Snapshot{
		Connected:   b.link.Up(),
		SendPort:    send,
		ReceivePort: receive,
		Countdown:   b.link.Countdown(),
		Pinged:      b.link.Pinged(),
		Engine: Engine{
			ID:          session.EngineID,
			Host:        session.Host,
			Version:     session.Version,
			Established: session.Established,
		},
		LEDs:      b.registry.Snapshot(),
		Device:    b.settings.MIDI.Device,
		UpdatedAt: time.Now(),
	})
}
