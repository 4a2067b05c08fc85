package surface

import "testing"

func TestHardwareNumber(t *testing.T) {
	cases := []struct {
		slot int
		want byte
	}{
		{0, 1},
		{1, 2},
		{8, 9},
		{9, 0},
		{SlotUp, 10},
		{SlotDown, 11},
	}
	for _, c := range cases {
		if got := HardwareNumber(c.slot); got != c.want {
			t.Errorf("HardwareNumber(%d) = %d, want %d", c.slot, got, c.want)
		}
	}
}

func TestSlotForPedal(t *testing.T) {
	cases := []struct {
		value int
		want  int
	}{
		{1, 0},
		{9, 8},
		{0, 9},
		{10, SlotUp},
		{11, SlotDown},
	}
	for _, c := range cases {
		if got := SlotForPedal(c.value); got != c.want {
			t.Errorf("SlotForPedal(%d) = %d, want %d", c.value, got, c.want)
		}
	}
}

func TestPermutationRoundTrip(t *testing.T) {
	for slot := 0; slot < 12; slot++ {
		if got := SlotForPedal(int(HardwareNumber(slot))); got != slot {
			t.Errorf("Round trip for slot %d gave %d", slot, got)
		}
	}
}

func TestLEDFrame(t *testing.T) {
	on := ledFrame(3, true)
	if on[0] != 0xB0 || on[1] != 106 || on[2] != 4 {
		t.Errorf("Unexpected on frame: %v", on)
	}
	off := ledFrame(9, false)
	if off[0] != 0xB0 || off[1] != 107 || off[2] != 0 {
		t.Errorf("Unexpected off frame: %v", off)
	}
}

func TestHeartbeatFrame(t *testing.T) {
	frame := heartbeatFrame(true)
	if frame[1] != 106 || frame[2] != 23 {
		t.Errorf("Unexpected heartbeat frame: %v", frame)
	}
	frame = heartbeatFrame(false)
	if frame[1] != 107 || frame[2] != 23 {
		t.Errorf("Unexpected heartbeat off frame: %v", frame)
	}
}

func TestDisplayFrames(t *testing.T) {
	cases := []struct {
		value      int
		tens, ones byte
	}{
		{12, 1, 2},
		{5, 0, 5},   // tens written as 0 below 10
		{-3, 0, 0},  // negative clamps
		{107, 0, 7}, // only the last two digits fit
	}
	for _, c := range cases {
		frames := displayFrames(c.value)
		if len(frames) != 2 {
			t.Fatalf("Expected 2 frames for %d, got %d", c.value, len(frames))
		}
		if frames[0][1] != 113 || frames[0][2] != c.tens {
			t.Errorf("Display(%d) tens frame = %v, want value %d", c.value, frames[0], c.tens)
		}
		if frames[1][1] != 114 || frames[1][2] != c.ones {
			t.Errorf("Display(%d) ones frame = %v, want value %d", c.value, frames[1], c.ones)
		}
	}
}
