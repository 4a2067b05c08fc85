package bridge

import (
	"net"
	"testing"

	"github.com/scgolang/osc"

	"github.com/smazurov/loopbridge/internal/config"
	"github.com/smazurov/loopbridge/internal/engine"
	"github.com/smazurov/loopbridge/internal/led"
)

func freePort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to grab free port: %v", err)
	}
	port := conn.LocalAddr().(*net.UDPAddr).Port
	conn.Close()
	return port
}

type ledWrite struct {
	slot int
	on   bool
}

type recordingWriter struct {
	leds       []ledWrite
	heartbeats []bool
	displays   []int
}

func (w *recordingWriter) SetLED(slot int, on bool) error {
	w.leds = append(w.leds, ledWrite{slot, on})
	return nil
}
func (w *recordingWriter) Heartbeat(on bool) error {
	w.heartbeats = append(w.heartbeats, on)
	return nil
}
func (w *recordingWriter) Display(value int) error {
	w.displays = append(w.displays, value)
	return nil
}
func (w *recordingWriter) Close() error { return nil }

// newTestBridge builds a bridge on kernel-assigned ports with a recording
// writer in place of real hardware.
func newTestBridge(t *testing.T) (*Bridge, *recordingWriter) {
	t.Helper()
	settings := config.DefaultSettings()
	settings.OSC.SendPort = freePort(t)
	settings.OSC.ReceivePort = freePort(t)

	b := New(Options{Settings: settings})
	writer := &recordingWriter{}
	b.writer = writer
	b.tracker.SetWriter(writer)
	t.Cleanup(b.shutdown)
	return b, writer
}

func sessionMsg(address string, ledCount, engineID int32) osc.Message {
	return osc.Message{
		Address: address,
		Arguments: osc.Arguments{
			osc.String("127.0.0.1"), osc.String("0.3.1"),
			osc.Int(ledCount), osc.Int(engineID),
		},
	}
}

func TestTickConnectsThenCountsDown(t *testing.T) {
	b, _ := newTestBridge(t)

	b.tick() // first tick brings the link up
	if !b.link.Up() {
		t.Fatal("Expected link up after first tick")
	}
	if b.link.Countdown() != 5 {
		t.Fatalf("Expected countdown 5, got %d", b.link.Countdown())
	}

	for i := 1; i <= 3; i++ {
		b.tick()
	}
	if b.link.Countdown() != 2 {
		t.Errorf("Expected countdown 2 after 3 quiet ticks, got %d", b.link.Countdown())
	}
}

func TestLEDUpdateThenBlinkFlip(t *testing.T) {
	b, writer := newTestBridge(t)
	b.registry.Rebuild(8)

	b.handle(engine.Inbound{Kind: engine.KindLED, Msg: osc.Message{
		Address: engine.AddrLED,
		Arguments: osc.Arguments{
			osc.Int(3), osc.Int(1), osc.Int(0), osc.Int(int32(led.Blink)),
		},
	}})

	if len(writer.leds) != 1 || writer.leds[0] != (ledWrite{3, true}) {
		t.Fatalf("Expected one on-write for slot 3, got %v", writer.leds)
	}

	// Timer 0 expires on the next tick: one toggle write, off.
	b.tick()
	if len(writer.leds) != 2 || writer.leds[1] != (ledWrite{3, false}) {
		t.Fatalf("Expected toggle write off, got %v", writer.leds)
	}

	slot, _ := b.registry.Get(3)
	if slot.BlinkTimer != led.TimerBlink {
		t.Errorf("Expected timer reseeded to %d, got %d", led.TimerBlink, slot.BlinkTimer)
	}
}

func TestRecognizedMessageResetsCountdownBeforeParse(t *testing.T) {
	b, _ := newTestBridge(t)

	b.tick()
	for i := 0; i < 3; i++ {
		b.tick()
	}
	if b.link.Countdown() == 5 {
		t.Fatal("Countdown should have decremented")
	}

	// Malformed payload on a recognized address still proves liveness.
	b.handle(engine.Inbound{Kind: engine.KindLED, Msg: osc.Message{Address: engine.AddrLED}})
	if b.link.Countdown() != 5 {
		t.Errorf("Expected countdown reset to 5, got %d", b.link.Countdown())
	}
}

func TestUnrecognizedKindIsIgnored(t *testing.T) {
	b, writer := newTestBridge(t)

	b.handle(engine.Inbound{Kind: engine.Kind(99), Msg: osc.Message{Address: "/loop4r/unknown"}})

	if len(writer.leds) != 0 || len(writer.displays) != 0 {
		t.Error("Unrecognized message must not write hardware")
	}
}

func TestSnapshotTracksSession(t *testing.T) {
	b, _ := newTestBridge(t)

	b.handle(engine.Inbound{Kind: engine.KindPingAck, Msg: sessionMsg(engine.AddrPingAck, 4, 1337)})

	snap := b.Snapshot()
	if snap == nil {
		t.Fatal("Snapshot should never be nil")
	}
	if !snap.Engine.Established || snap.Engine.ID != 1337 {
		t.Errorf("Unexpected engine in snapshot: %+v", snap.Engine)
	}
	if len(snap.LEDs) != 4 {
		t.Errorf("Expected 4 LEDs in snapshot, got %d", len(snap.LEDs))
	}

	// Snapshots are copies; mutating one must not leak into the next.
	snap.LEDs[0].On = true
	slot, _ := b.registry.Get(0)
	if slot.On {
		t.Error("Snapshot mutation leaked into the registry")
	}
}

func TestPostDropsWhenQueueFull(t *testing.T) {
	b, _ := newTestBridge(t)

	for i := 0; i < queueSize; i++ {
		b.post(engine.Inbound{Kind: engine.KindDisplay})
	}
	// Must not block.
	b.post(engine.Inbound{Kind: engine.KindDisplay})

	if len(b.queue) != queueSize {
		t.Errorf("Expected full queue of %d, got %d", queueSize, len(b.queue))
	}
}

func TestReconfigureReplacesPending(t *testing.T) {
	b, _ := newTestBridge(t)

	first := config.DefaultSettings()
	first.OSC.SendPort = 1111
	second := config.DefaultSettings()
	second.OSC.SendPort = 2222

	b.Reconfigure(first)
	b.Reconfigure(second)

	got := <-b.reload
	if got.OSC.SendPort != 2222 {
		t.Errorf("Expected latest settings to win, got port %d", got.OSC.SendPort)
	}
}

func TestApplyReconfiguresLinkAndDevice(t *testing.T) {
	b, _ := newTestBridge(t)

	b.tick()
	if !b.link.Up() {
		t.Fatal("Expected link up")
	}

	next := b.settings
	next.OSC.ReceivePort = freePort(t)
	b.apply(next)

	if b.link.Up() {
		t.Error("Port change should tear the link down for reconnect")
	}
	if b.settings.OSC.ReceivePort != next.OSC.ReceivePort {
		t.Error("Settings not updated")
	}
	if b.Snapshot().Connected {
		t.Error("Snapshot should reflect the torn-down link")
	}
}
