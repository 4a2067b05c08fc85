package led

import "testing"

type flipCall struct {
	index int
	on    bool
}

func collectFlips(calls *[]flipCall) func(int, bool) {
	return func(index int, on bool) {
		*calls = append(*calls, flipCall{index, on})
	}
}

func TestRegistryStartsEmpty(t *testing.T) {
	r := NewRegistry()
	if r.Len() != 0 {
		t.Errorf("Expected empty registry, got %d slots", r.Len())
	}
	if _, ok := r.Get(0); ok {
		t.Error("Expected Get(0) to fail on empty registry")
	}
}

func TestRebuildResetsSlots(t *testing.T) {
	r := NewRegistry()
	r.Rebuild(4)
	if !r.Set(2, true, TimerBlink, Blink) {
		t.Fatal("Set(2) failed on 4-slot registry")
	}

	r.Rebuild(6)

	if r.Len() != 6 {
		t.Fatalf("Expected 6 slots after rebuild, got %d", r.Len())
	}
	for i := 0; i < 6; i++ {
		slot, ok := r.Get(i)
		if !ok {
			t.Fatalf("Get(%d) failed", i)
		}
		if slot.On || slot.State != Dark || slot.BlinkTimer != TimerOff {
			t.Errorf("slot %d not fresh after rebuild: %+v", i, slot)
		}
	}
}

func TestAppendKeepsExisting(t *testing.T) {
	r := NewRegistry()
	r.Rebuild(2)
	r.Set(1, true, TimerFastBlink, FastBlink)

	r.Append(3)

	if r.Len() != 5 {
		t.Fatalf("Expected 5 slots after append, got %d", r.Len())
	}
	slot, _ := r.Get(1)
	if !slot.On || slot.State != FastBlink {
		t.Errorf("Existing slot changed by append: %+v", slot)
	}
	for i := 2; i < 5; i++ {
		slot, _ := r.Get(i)
		if slot.On || slot.State != Dark {
			t.Errorf("Appended slot %d not fresh: %+v", i, slot)
		}
	}
}

func TestSetOutOfRange(t *testing.T) {
	r := NewRegistry()
	r.Rebuild(3)

	if r.Set(-1, true, 0, Light) {
		t.Error("Set(-1) should fail")
	}
	if r.Set(3, true, 0, Light) {
		t.Error("Set(3) should fail on 3-slot registry")
	}
	if !r.Set(2, true, 0, Light) {
		t.Error("Set(2) should succeed on 3-slot registry")
	}
}

func TestTickIgnoresSteadyStates(t *testing.T) {
	r := NewRegistry()
	r.Rebuild(2)
	r.Set(0, false, TimerOff, Dark)
	r.Set(1, true, TimerOff, Light)

	var flips []flipCall
	for i := 0; i < 10; i++ {
		r.Tick(collectFlips(&flips))
	}

	if len(flips) != 0 {
		t.Errorf("Expected no flips for dark/light slots, got %v", flips)
	}
	slot, _ := r.Get(1)
	if !slot.On {
		t.Error("Light slot should stay on")
	}
}

func TestTickBlinkPeriod(t *testing.T) {
	r := NewRegistry()
	r.Rebuild(1)
	// Engine seeds a blinking LED with the full timer
	r.Set(0, true, TimerBlink, Blink)

	var flips []flipCall
	for i := 0; i < 8; i++ {
		r.Tick(collectFlips(&flips))
	}

	// Timer 3 counts down over ticks 1-3, flip on tick 4, again on tick 8
	if len(flips) != 2 {
		t.Fatalf("Expected 2 flips over 8 ticks, got %d: %v", len(flips), flips)
	}
	if flips[0].on != false {
		t.Errorf("First flip should turn the LED off, got on=%v", flips[0].on)
	}
	if flips[1].on != true {
		t.Errorf("Second flip should turn the LED back on, got on=%v", flips[1].on)
	}
}

func TestTickFastBlinkPeriod(t *testing.T) {
	r := NewRegistry()
	r.Rebuild(1)
	r.Set(0, true, TimerFastBlink, FastBlink)

	var flips []flipCall
	for i := 0; i < 8; i++ {
		r.Tick(collectFlips(&flips))
	}

	// Timer 1 counts down on tick 1, flip on tick 2, then every 2 ticks
	if len(flips) != 4 {
		t.Fatalf("Expected 4 flips over 8 ticks, got %d: %v", len(flips), flips)
	}
	for i, f := range flips {
		wantOn := i%2 == 1 // off, on, off, on
		if f.on != wantOn {
			t.Errorf("flip %d: got on=%v, want %v", i, f.on, wantOn)
		}
	}
}

func TestTickFreshBlinkSlotFlipsImmediately(t *testing.T) {
	r := NewRegistry()
	r.Rebuild(1)
	// Zero timer expires on the first tick
	r.Set(0, false, TimerOff, Blink)

	var flips []flipCall
	r.Tick(collectFlips(&flips))

	if len(flips) != 1 {
		t.Fatalf("Expected flip on first tick, got %d flips", len(flips))
	}
	if !flips[0].on {
		t.Error("Fresh blink slot should flip to on")
	}
	slot, _ := r.Get(0)
	if slot.BlinkTimer != TimerBlink {
		t.Errorf("Expected timer reseeded to %d, got %d", TimerBlink, slot.BlinkTimer)
	}
}

func TestTickOnlyTouchesBlinkingSlots(t *testing.T) {
	r := NewRegistry()
	r.Rebuild(3)
	r.Set(0, true, TimerOff, Light)
	r.Set(1, false, TimerOff, Blink)
	r.Set(2, false, TimerOff, FastBlink)

	var flips []flipCall
	r.Tick(collectFlips(&flips))

	if len(flips) != 2 {
		t.Fatalf("Expected 2 flips, got %d: %v", len(flips), flips)
	}
	if flips[0].index != 1 || flips[1].index != 2 {
		t.Errorf("Expected flips on slots 1 and 2, got %v", flips)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	r := NewRegistry()
	r.Rebuild(2)
	r.Set(0, true, TimerBlink, Blink)

	snap := r.Snapshot()
	snap[0].On = false

	slot, _ := r.Get(0)
	if !slot.On {
		t.Error("Mutating the snapshot should not affect the registry")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Dark, "dark"},
		{Light, "light"},
		{Blink, "blink"},
		{FastBlink, "fastblink"},
		{State(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
