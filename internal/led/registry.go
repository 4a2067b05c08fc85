package led

// Registry holds the slots announced by the engine. It is not safe for
// concurrent use; the bridge goroutine owns it.
type Registry struct {
	slots []LED
}

// NewRegistry returns an empty registry. Slots appear only once the engine
// announces a count.
func NewRegistry() *Registry {
	return &Registry{}
}

// Len returns the number of tracked slots.
func (r *Registry) Len() int {
	return len(r.slots)
}

// Rebuild discards all slots and tracks count fresh dark ones.
func (r *Registry) Rebuild(count int) {
	r.slots = make([]LED, count)
}

// Append adds count fresh dark slots, keeping existing ones untouched.
func (r *Registry) Append(count int) {
	for i := 0; i < count; i++ {
		r.slots = append(r.slots, LED{})
	}
}

// Get returns the slot at index, or false when out of range.
func (r *Registry) Get(index int) (LED, bool) {
	if index < 0 || index >= len(r.slots) {
		return LED{}, false
	}
	return r.slots[index], true
}

// Set overwrites the slot at index. Returns false when out of range.
func (r *Registry) Set(index int, on bool, blinkTimer int32, state State) bool {
	if index < 0 || index >= len(r.slots) {
		return false
	}
	r.slots[index] = LED{On: on, BlinkTimer: blinkTimer, State: state}
	return true
}

// Snapshot returns a copy of all slots.
func (r *Registry) Snapshot() []LED {
	out := make([]LED, len(r.slots))
	copy(out, r.slots)
	return out
}

// Tick advances blink timers by one 200ms tick. Slots in Blink or FastBlink
// whose timer ran out flip their illumination and reseed; flip is called once
// per toggled slot so the caller can mirror it to hardware.
func (r *Registry) Tick(flip func(index int, on bool)) {
	for i := range r.slots {
		slot := &r.slots[i]
		if slot.State != Blink && slot.State != FastBlink {
			continue
		}

		if slot.BlinkTimer > 0 {
			slot.BlinkTimer--
			continue
		}

		slot.On = !slot.On
		if slot.State == FastBlink {
			slot.BlinkTimer = TimerFastBlink
		} else {
			slot.BlinkTimer = TimerBlink
		}
		if flip != nil {
			flip(i, slot.On)
		}
	}
}
