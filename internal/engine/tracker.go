package engine

import (
	"log/slog"
	"time"

	"github.com/scgolang/osc"

	"github.com/smazurov/loopbridge/internal/events"
	"github.com/smazurov/loopbridge/internal/led"
	"github.com/smazurov/loopbridge/internal/logging"
	"github.com/smazurov/loopbridge/internal/metrics"
	"github.com/smazurov/loopbridge/internal/surface"
)

// Session is the engine instance the bridge currently mirrors. Identity is
// meaningful only after the first pingack or heartbeat.
type Session struct {
	EngineID    int32
	Host        string
	Version     string
	Established bool
}

// Tracker interprets inbound protocol messages and keeps the LED registry
// consistent with the engine's self-reported session. It runs entirely on
// the bridge goroutine.
type Tracker struct {
	session     Session
	heartbeatOn bool

	registry *led.Registry
	writer   surface.Writer
	link     *Link
	publish  func(events.Event)
	logger   *slog.Logger
}

// NewTracker wires the session tracker to its collaborators. publish may be
// nil when no event bus is attached.
func NewTracker(registry *led.Registry, writer surface.Writer, link *Link, publish func(events.Event)) *Tracker {
	return &Tracker{
		registry: registry,
		writer:   writer,
		link:     link,
		publish:  publish,
		logger:   logging.GetLogger("engine"),
	}
}

// Session returns the tracked engine identity.
func (t *Tracker) Session() Session {
	return t.session
}

// SetWriter swaps the hardware writer, used when the device is reconfigured.
func (t *Tracker) SetWriter(w surface.Writer) {
	t.writer = w
}

// HandlePingAck processes an identity probe response: record who we are
// talking to and rebuild the registry to the announced size.
func (t *Tracker) HandlePingAck(m osc.Message) error {
	info, err := parseSessionInfo(m)
	if err != nil {
		return err
	}

	t.session = Session{
		EngineID:    info.EngineID,
		Host:        info.Host,
		Version:     info.Version,
		Established: true,
	}
	t.logger.Info("Engine identified",
		"host", info.Host, "version", info.Version,
		"engine_id", info.EngineID, "led_count", info.LEDCount)

	if info.LEDCount > 0 {
		t.rebuild(int(info.LEDCount))
	}
	t.publishSession("established")
	return nil
}

// HandleHeartbeat processes a periodic heartbeat. A changed engine identity
// rebuilds the registry like a fresh pingack; a grown LED count appends new
// slots; a shrunk count is a known protocol gap and leaves slots untouched.
// Either way the hardware heartbeat indicator toggles.
func (t *Tracker) HandleHeartbeat(m osc.Message) error {
	info, err := parseSessionInfo(m)
	if err != nil {
		return err
	}

	switch {
	case !t.session.Established || info.EngineID != t.session.EngineID:
		// The engine instance changed underneath us, e.g. a restart
		// without a fresh pingack.
		if info.LEDCount > 0 {
			t.session = Session{
				EngineID:    info.EngineID,
				Host:        info.Host,
				Version:     info.Version,
				Established: true,
			}
			t.logger.Info("Engine instance changed, rebuilding",
				"engine_id", info.EngineID, "led_count", info.LEDCount)
			t.rebuild(int(info.LEDCount))
			t.publishSession("rebuilt")
		}

	case int(info.LEDCount) > t.registry.Len():
		prev := t.registry.Len()
		grown := int(info.LEDCount) - prev
		t.registry.Append(grown)
		for i := prev; i < t.registry.Len(); i++ {
			t.link.SendRegisterAutoUpdate()
			t.link.RequestState()
			t.writeLED(i, false)
		}
		metrics.SetLEDCount(t.registry.Len())
		t.logger.Info("LED count grew", "from", prev, "to", info.LEDCount)
		t.publishSession("resized")

	case int(info.LEDCount) < t.registry.Len() && info.LEDCount > 0:
		// Shrink is not handled; dropping slots here would corrupt the
		// index mapping on the next grow.
		t.logger.Warn("Engine reports fewer LEDs, keeping existing slots",
			"reported", info.LEDCount, "tracked", t.registry.Len())
	}

	t.heartbeatOn = !t.heartbeatOn
	if err := t.writer.Heartbeat(t.heartbeatOn); err != nil {
		t.logger.Warn("Failed to write heartbeat indicator", "error", err)
	}
	return nil
}

// HandleLED processes a per-slot state update. Out-of-range indexes are
// dropped silently: engines legitimately announce more loops than the pedal
// has LEDs.
func (t *Tracker) HandleLED(m osc.Message) error {
	u, err := parseLEDUpdate(m)
	if err != nil {
		return err
	}

	if !t.registry.Set(int(u.Index), u.On, u.Timer, u.State) {
		return nil
	}
	t.writeLED(int(u.Index), u.On)

	if t.publish != nil {
		t.publish(events.LEDChangedEvent{
			Index:     int(u.Index),
			On:        u.On,
			State:     u.State.String(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
	return nil
}

// HandleDisplay shows the engine's selected loop on the two-digit display.
// The engine counts loops from zero, the display from one. Pure output, no
// stored state.
func (t *Tracker) HandleDisplay(m osc.Message) error {
	loopIndex, err := parseDisplay(m)
	if err != nil {
		return err
	}

	selected := int(loopIndex) + 1
	if selected < 0 {
		selected = 0
	}
	if err := t.writer.Display(selected); err != nil {
		t.logger.Warn("Failed to write display", "value", selected, "error", err)
	}

	if t.publish != nil {
		t.publish(events.DisplayChangedEvent{
			Selected:  selected,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
	return nil
}

// rebuild replaces the registry with count fresh dark slots and asks the
// engine for each slot's current state.
func (t *Tracker) rebuild(count int) {
	t.registry.Rebuild(count)
	for i := 0; i < count; i++ {
		t.link.SendRegisterAutoUpdate()
		t.link.RequestState()
		t.writeLED(i, false)
	}
	metrics.SetLEDCount(count)
}

func (t *Tracker) writeLED(index int, on bool) {
	if err := t.writer.SetLED(index, on); err != nil {
		t.logger.Warn("Failed to write LED", "slot", index, "on", on, "error", err)
	}
}

func (t *Tracker) publishSession(action string) {
	if t.publish == nil {
		return
	}
	t.publish(events.SessionChangedEvent{
		Action:    action,
		EngineID:  t.session.EngineID,
		Host:      t.session.Host,
		Version:   t.session.Version,
		LEDCount:  t.registry.Len(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
