// Package surface drives the FCB1010/EurekaProm control surface: LED on/off,
// the two-digit loop display, and the heartbeat indicator, all as raw 3-byte
// MIDI control-change frames.
package surface

// Control-change frame layout: {statusControlChange, ccNumber, ccValue}.
// EurekaProm I/O mode assignments.
const (
	statusControlChange byte = 0xB0

	ccLEDOn       byte = 106
	ccLEDOff      byte = 107
	ccDisplayTens byte = 113
	ccDisplayOnes byte = 114

	heartbeatValue byte = 23
)

// Auxiliary pedal slots above the ten numbered pedals.
const (
	SlotUp   = 10
	SlotDown = 11
)

// Writer is the hardware seam. Implementations are not safe for concurrent
// use; the bridge goroutine owns them.
type Writer interface {
	// SetLED illuminates or darkens the LED for a registry slot.
	SetLED(slot int, on bool) error
	// Heartbeat drives the dedicated engine-alive indicator.
	Heartbeat(on bool) error
	// Display shows a loop number on the two-digit display. Values below
	// zero clamp to 0; only the last two decimal digits fit.
	Display(value int) error
	// Close releases the device.
	Close() error
}

// HardwareNumber maps a registry slot to the ccValue the pedalboard expects.
// The numbered pedals are wired 1-9 then 0, so slot 0 lights pedal "1" and
// slot 9 lights pedal "0". The UP/DOWN slots pass through unchanged.
func HardwareNumber(slot int) byte {
	switch {
	case slot >= 0 && slot <= 8:
		return byte(slot + 1)
	case slot == 9:
		return 0
	default:
		return byte(slot)
	}
}

// SlotForPedal is the inverse of HardwareNumber: the registry slot for a
// pedal controller value.
func SlotForPedal(value int) int {
	switch {
	case value >= 1 && value <= 9:
		return value - 1
	case value == 0:
		return 9
	default:
		return value
	}
}

// ledFrame builds the on/off frame for a slot.
func ledFrame(slot int, on bool) []byte {
	cc := ccLEDOff
	if on {
		cc = ccLEDOn
	}
	return []byte{statusControlChange, cc, HardwareNumber(slot)}
}

// heartbeatFrame builds the engine-alive indicator frame.
func heartbeatFrame(on bool) []byte {
	cc := ccLEDOff
	if on {
		cc = ccLEDOn
	}
	return []byte{statusControlChange, cc, heartbeatValue}
}

// displayFrames builds the tens and ones digit frames. The tens digit is
// written even when zero so a previous two-digit value is cleared.
func displayFrames(value int) [][]byte {
	if value < 0 {
		value = 0
	}
	return [][]byte{
		{statusControlChange, ccDisplayTens, byte(value / 10 % 10)},
		{statusControlChange, ccDisplayOnes, byte(value % 10)},
	}
}
