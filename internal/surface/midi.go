package surface

import (
	"fmt"
	"log/slog"
	"strings"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/smazurov/loopbridge/internal/logging"
	"github.com/smazurov/loopbridge/internal/metrics"
)

// MIDIWriter sends control-change frames to a MIDI output port via rtmidi.
type MIDIWriter struct {
	drv    *rtmididrv.Driver
	out    drivers.Out
	name   string
	logger *slog.Logger
}

// OpenMIDI opens the first MIDI output port whose name contains name,
// irrespective of case. The exact name does not have to match; this is the
// pedalboard's documented lookup behavior. On success the ten numbered pedal
// LEDs are initialized to off.
func OpenMIDI(name string) (*MIDIWriter, error) {
	logger := logging.GetLogger("surface")

	drv, err := rtmididrv.New()
	if err != nil {
		return nil, newError(ErrCodeOpenFailed, "failed to initialize MIDI driver", err)
	}

	outs, err := drv.Outs()
	if err != nil {
		drv.Close()
		return nil, newError(ErrCodeOpenFailed, "failed to list MIDI output ports", err)
	}

	var found drivers.Out
	for _, out := range outs {
		if containsCI(out.String(), name) {
			found = out
			break
		}
	}
	if found == nil {
		drv.Close()
		return nil, newError(ErrCodeOpenFailed, fmt.Sprintf("no MIDI output port matches %q", name), nil)
	}

	if err := found.Open(); err != nil {
		drv.Close()
		return nil, newError(ErrCodeOpenFailed, fmt.Sprintf("failed to open MIDI output port %q", found.String()), err)
	}

	w := &MIDIWriter{
		drv:    drv,
		out:    found,
		name:   found.String(),
		logger: logger,
	}
	logger.Info("Opened MIDI output port", "port", w.name)

	// Pedal LEDs keep their last state across our restarts; start dark.
	for slot := 0; slot < 10; slot++ {
		if err := w.SetLED(slot, false); err != nil {
			logger.Warn("Failed to initialize pedal LED", "slot", slot, "error", err)
		}
	}

	return w, nil
}

// PortName returns the resolved name of the open output port.
func (w *MIDIWriter) PortName() string {
	return w.name
}

// SetLED writes the on/off frame for a registry slot.
func (w *MIDIWriter) SetLED(slot int, on bool) error {
	return w.write("led", ledFrame(slot, on))
}

// Heartbeat writes the engine-alive indicator frame.
func (w *MIDIWriter) Heartbeat(on bool) error {
	return w.write("heartbeat", heartbeatFrame(on))
}

// Display writes the tens and ones digit frames.
func (w *MIDIWriter) Display(value int) error {
	for _, frame := range displayFrames(value) {
		if err := w.write("display", frame); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the output port and the rtmidi driver.
func (w *MIDIWriter) Close() error {
	var err error
	if w.out != nil {
		err = w.out.Close()
		w.out = nil
	}
	if w.drv != nil {
		w.drv.Close()
		w.drv = nil
	}
	return err
}

// write sends one frame. A failed write is reported but state is never
// rolled back and the port is never reopened.
func (w *MIDIWriter) write(kind string, frame []byte) error {
	if err := w.out.Send(frame); err != nil {
		metrics.HardwareWriteError()
		return newError(ErrCodeWriteFailed,
			fmt.Sprintf("could not write CC %d %d", frame[1], frame[2]), err)
	}
	metrics.HardwareWrite(kind)
	return nil
}

// ListPorts returns the names of all available MIDI output ports.
func ListPorts() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, newError(ErrCodeOpenFailed, "failed to initialize MIDI driver", err)
	}
	defer drv.Close()

	outs, err := drv.Outs()
	if err != nil {
		return nil, newError(ErrCodeOpenFailed, "failed to list MIDI output ports", err)
	}

	names := make([]string, 0, len(outs))
	for _, out := range outs {
		names = append(names, out.String())
	}
	return names, nil
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
