package engine

import (
	"fmt"

	"github.com/scgolang/osc"

	"github.com/smazurov/loopbridge/internal/led"
)

// OSC addresses of the loop4r protocol. Inbound addresses are dispatched on
// an exact match; outbound ones are sent fire-and-forget to the engine.
const (
	AddrPingAck   = "/pingack"
	AddrHeartbeat = "/heartbeat"
	AddrLED       = "/led"
	AddrDisplay   = "/display"

	addrPing       = "/loop4r/ping"
	addrRegister   = "/loop4r/register_auto_update"
	addrUnregister = "/loop4r/unregister_auto_update"
	addrLEDState   = "/loop4r/leds"
	addrDisplay    = "/loop4r/display"
)

// Kind identifies an inbound message for queue dispatch.
type Kind int

// Inbound message kinds. KindServeClosed is internal: it tells the bridge
// that the receive socket's serve loop ended.
const (
	KindPingAck Kind = iota
	KindHeartbeat
	KindLED
	KindDisplay
	KindServeClosed
)

// String returns the kind name used in logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindPingAck:
		return "pingack"
	case KindHeartbeat:
		return "heartbeat"
	case KindLED:
		return "led"
	case KindDisplay:
		return "display"
	case KindServeClosed:
		return "serve_closed"
	default:
		return "unknown"
	}
}

// Inbound is one item on the bridge queue: a dispatched OSC message, or a
// serve-loop termination notice.
type Inbound struct {
	Kind Kind
	Msg  osc.Message

	// Serve-loop termination only.
	Gen int
	Err error
}

// SessionInfo is the parsed payload shared by /pingack and /heartbeat.
type SessionInfo struct {
	Host     string
	Version  string
	LEDCount int32
	EngineID int32
}

// parseSessionInfo parses the (host, version, ledCount, engineID) payload.
func parseSessionInfo(m osc.Message) (SessionInfo, error) {
	var info SessionInfo
	if got := len(m.Arguments); got != 4 {
		return info, newError(ErrCodeMalformed,
			fmt.Sprintf("%s expects 4 arguments, got %d", m.Address, got), nil)
	}

	var err error
	if info.Host, err = m.Arguments[0].ReadString(); err != nil {
		return info, newError(ErrCodeMalformed, m.Address+" host is not a string", err)
	}
	if info.Version, err = m.Arguments[1].ReadString(); err != nil {
		return info, newError(ErrCodeMalformed, m.Address+" version is not a string", err)
	}
	if info.LEDCount, err = m.Arguments[2].ReadInt32(); err != nil {
		return info, newError(ErrCodeMalformed, m.Address+" led count is not an int32", err)
	}
	if info.EngineID, err = m.Arguments[3].ReadInt32(); err != nil {
		return info, newError(ErrCodeMalformed, m.Address+" engine id is not an int32", err)
	}
	return info, nil
}

// LEDUpdate is the parsed payload of a /led message.
type LEDUpdate struct {
	Index int32
	On    bool
	Timer int32
	State led.State
}

// parseLEDUpdate parses the (index, on, timerSeed, state) payload. The whole
// payload is parsed before any state mutates, so a truncated message never
// leaves a slot half written.
func parseLEDUpdate(m osc.Message) (LEDUpdate, error) {
	var u LEDUpdate
	if got := len(m.Arguments); got != 4 {
		return u, newError(ErrCodeMalformed,
			fmt.Sprintf("/led expects 4 arguments, got %d", got), nil)
	}

	values := make([]int32, 4)
	for i := range values {
		v, err := m.Arguments[i].ReadInt32()
		if err != nil {
			return u, newError(ErrCodeMalformed,
				fmt.Sprintf("/led argument %d is not an int32", i), err)
		}
		values[i] = v
	}

	u.Index = values[0]
	u.On = values[1] != 0
	u.Timer = values[2]
	u.State = led.State(values[3])
	return u, nil
}

// parseDisplay parses the single loop index of a /display message.
func parseDisplay(m osc.Message) (int32, error) {
	if got := len(m.Arguments); got != 1 {
		return 0, newError(ErrCodeMalformed,
			fmt.Sprintf("/display expects 1 argument, got %d", got), nil)
	}
	v, err := m.Arguments[0].ReadInt32()
	if err != nil {
		return 0, newError(ErrCodeMalformed, "/display loop index is not an int32", err)
	}
	return v, nil
}
