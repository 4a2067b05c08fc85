package surface

import (
	"log/slog"

	"github.com/smazurov/loopbridge/internal/logging"
)

// NoopWriter stands in until a MIDI device is configured. Frames are logged
// at debug level and dropped.
type NoopWriter struct {
	logger *slog.Logger
}

// NewNoop returns a writer that discards all frames.
func NewNoop() *NoopWriter {
	return &NoopWriter{logger: logging.GetLogger("surface")}
}

// SetLED logs and drops the frame.
func (w *NoopWriter) SetLED(slot int, on bool) error {
	w.logger.Debug("No MIDI device, dropping LED frame", "slot", slot, "on", on)
	return nil
}

// Heartbeat logs and drops the frame.
func (w *NoopWriter) Heartbeat(on bool) error {
	w.logger.Debug("No MIDI device, dropping heartbeat frame", "on", on)
	return nil
}

// Display logs and drops the frames.
func (w *NoopWriter) Display(value int) error {
	w.logger.Debug("No MIDI device, dropping display frames", "value", value)
	return nil
}

// Close is a no-op.
func (w *NoopWriter) Close() error {
	return nil
}
