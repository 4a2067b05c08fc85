// Package led tracks the engine's announced LED slots and runs their blink
// animation. It holds pure state; hardware writes happen in the surface
// package.
package led

// State is the animation state of a slot, using the engine's wire values.
type State int32

// Wire values sent by the engine in /led updates.
const (
	Dark      State = 0
	Light     State = 1
	Blink     State = 2
	FastBlink State = 3
)

// Blink timer seeds in ticks. A flip reseeds the timer, so Blink toggles
// every 4 ticks and FastBlink every 2.
const (
	TimerOff       int32 = 0
	TimerFastBlink int32 = 1
	TimerBlink     int32 = 3
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Dark:
		return "dark"
	case Light:
		return "light"
	case Blink:
		return "blink"
	case FastBlink:
		return "fastblink"
	default:
		return "unknown"
	}
}

// LED is one tracked slot.
type LED struct {
	On         bool  `json:"on"`
	BlinkTimer int32 `json:"blink_timer"`
	State      State `json:"state"`
}
