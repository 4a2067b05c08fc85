// Package bridge runs the 200ms scheduler goroutine that owns every piece of
// mutable state: the OSC link, the session tracker, the LED registry, and the
// hardware writer. Everything else talks to it through channels or reads the
// published snapshot.
package bridge

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/smazurov/loopbridge/internal/config"
	"github.com/smazurov/loopbridge/internal/engine"
	"github.com/smazurov/loopbridge/internal/events"
	"github.com/smazurov/loopbridge/internal/led"
	"github.com/smazurov/loopbridge/internal/logging"
	"github.com/smazurov/loopbridge/internal/metrics"
	"github.com/smazurov/loopbridge/internal/surface"
)

// TickInterval is the scheduler period driving liveness and LED animation.
const TickInterval = 200 * time.Millisecond

const queueSize = 128

// Options configures a Bridge.
type Options struct {
	Settings config.Settings
	Bus      *events.Bus
}

// Bridge is the single consumer of inbound messages, reload requests, and
// scheduler ticks.
type Bridge struct {
	settings config.Settings

	registry *led.Registry
	link     *engine.Link
	tracker  *engine.Tracker
	writer   surface.Writer

	queue  chan engine.Inbound
	reload chan config.Settings

	bus      *events.Bus
	snapshot atomic.Pointer[Snapshot]
	logger   *slog.Logger
}

// New builds a bridge from the initial settings. The MIDI device is opened
// here, once; a failed open leaves the noop writer in place until the device
// name is reconfigured.
func New(opts Options) *Bridge {
	b := &Bridge{
		settings: opts.Settings,
		registry: led.NewRegistry(),
		queue:    make(chan engine.Inbound, queueSize),
		reload:   make(chan config.Settings, 1),
		bus:      opts.Bus,
		logger:   logging.GetLogger("bridge"),
	}

	b.writer = b.openWriter(opts.Settings.MIDI.Device)
	b.link = engine.NewLink(
		opts.Settings.OSC.Host,
		opts.Settings.OSC.SendPort,
		opts.Settings.OSC.ReceivePort,
		b.post,
	)
	b.link.OnStateChange(b.publishLinkState)
	b.tracker = engine.NewTracker(b.registry, b.writer, b.link, b.publish)

	b.publishSnapshot()
	return b
}

// Reconfigure hands new settings to the bridge goroutine. A pending reload
// that was not picked up yet is replaced.
func (b *Bridge) Reconfigure(s config.Settings) {
	select {
	case b.reload <- s:
	default:
		<-b.reload
		b.reload <- s
	}
}

// Snapshot returns the last published state for observers. Never nil.
func (b *Bridge) Snapshot() *Snapshot {
	return b.snapshot.Load()
}

// Run drives the bridge until ctx is cancelled. It notifies systemd when it
// is ready and feeds the watchdog when one is armed.
func (b *Bridge) Run(ctx context.Context) {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		b.logger.Debug("systemd ready notification failed", "error", err)
	}

	var watchdogC <-chan time.Time
	if interval, err := daemon.SdWatchdogEnabled(false); err == nil && interval > 0 {
		wt := time.NewTicker(interval / 2)
		defer wt.Stop()
		watchdogC = wt.C
		b.logger.Info("systemd watchdog armed", "interval", interval)
	}

	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	b.logger.Info("Bridge started",
		"osc_host", b.settings.OSC.Host,
		"send_port", b.settings.OSC.SendPort,
		"receive_port", b.settings.OSC.ReceivePort,
		"device", b.settings.MIDI.Device)

	for {
		select {
		case <-ctx.Done():
			b.shutdown()
			return
		case <-ticker.C:
			b.tick()
		case in := <-b.queue:
			b.handle(in)
		case s := <-b.reload:
			b.apply(s)
		case <-watchdogC:
			_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}
	}
}

// post delivers an inbound message to the queue without blocking the serve
// worker. A full queue drops the message; liveness and resync recover.
func (b *Bridge) post(in engine.Inbound) {
	select {
	case b.queue <- in:
	default:
		metrics.MessageDropped()
	}
}

// tick is one scheduler step: bring the link up or advance its liveness,
// then run the blink animation. Animation runs regardless of link state; the
// registry is replaced on the next resync anyway.
func (b *Bridge) tick() {
	if !b.link.Up() {
		b.link.TryConnect()
	} else {
		b.link.Tick()
	}

	b.registry.Tick(func(index int, on bool) {
		if err := b.writer.SetLED(index, on); err != nil {
			b.logger.Warn("Failed to write blink flip", "slot", index, "error", err)
		}
	})

	metrics.SetQueueDepth(len(b.queue))
	b.publishSnapshot()
}

// handle processes one queue item. The liveness countdown resets for every
// recognized address before the payload is even parsed: a malformed message
// still proves the engine is alive.
func (b *Bridge) handle(in engine.Inbound) {
	if in.Kind == engine.KindServeClosed {
		b.link.HandleServeClosed(in)
		b.publishSnapshot()
		return
	}

	var err error
	switch in.Kind {
	case engine.KindPingAck:
		b.markAlive(in)
		err = b.tracker.HandlePingAck(in.Msg)
	case engine.KindHeartbeat:
		b.markAlive(in)
		err = b.tracker.HandleHeartbeat(in.Msg)
	case engine.KindLED:
		b.markAlive(in)
		err = b.tracker.HandleLED(in.Msg)
	case engine.KindDisplay:
		b.markAlive(in)
		err = b.tracker.HandleDisplay(in.Msg)
	default:
		metrics.MessageUnrecognized()
		b.logger.Warn("Unrecognized message", "address", in.Msg.Address)
		return
	}

	if err != nil {
		metrics.MessageMalformed()
		b.logger.Warn("Dropped malformed message", "address", in.Msg.Address, "error", err)
	}
	b.publishSnapshot()
}

func (b *Bridge) markAlive(in engine.Inbound) {
	metrics.MessageReceived(in.Kind.String())
	b.link.ResetCountdown()
}

// apply puts new settings into effect: log levels immediately, OSC endpoints
// via teardown-and-reconnect, and the MIDI device by reopening, which is the
// only retry path for a failed device open.
func (b *Bridge) apply(s config.Settings) {
	logging.UpdateLevels(s.Logging)

	b.link.Configure(s.OSC.Host, s.OSC.SendPort, s.OSC.ReceivePort)

	if s.MIDI.Device != b.settings.MIDI.Device {
		b.logger.Info("MIDI device reconfigured",
			"old", b.settings.MIDI.Device, "new", s.MIDI.Device)
		if err := b.writer.Close(); err != nil {
			b.logger.Warn("Failed to close MIDI device", "error", err)
		}
		b.writer = b.openWriter(s.MIDI.Device)
		b.tracker.SetWriter(b.writer)
	}

	b.settings = s
	b.publishSnapshot()
}

// openWriter opens the named MIDI device, or the noop writer when no name is
// configured or the open fails.
func (b *Bridge) openWriter(device string) surface.Writer {
	if device == "" {
		b.logger.Info("No MIDI device configured, frames will be dropped")
		return surface.NewNoop()
	}
	w, err := surface.OpenMIDI(device)
	if err != nil {
		b.logger.Error("Failed to open MIDI device", "device", device, "error", err)
		return surface.NewNoop()
	}
	return w
}

// shutdown is best-effort: tell the engine to stop pushing updates, then
// close the link and the device.
func (b *Bridge) shutdown() {
	b.logger.Info("Bridge stopping")
	if b.link.Up() {
		b.link.SendUnregisterAutoUpdate()
	}
	b.link.Teardown("shutdown")
	if err := b.writer.Close(); err != nil {
		b.logger.Warn("Failed to close MIDI device", "error", err)
	}
}

func (b *Bridge) publish(ev events.Event) {
	if b.bus != nil {
		b.bus.Publish(ev)
	}
}

func (b *Bridge) publishLinkState(up bool, reason string) {
	send, receive := b.link.Ports()
	b.publish(events.LinkStateChangedEvent{
		Connected:   up,
		SendPort:    send,
		ReceivePort: receive,
		Reason:      reason,
		Timestamp:   time.Now().Format(time.RFC3339),
	})
}
