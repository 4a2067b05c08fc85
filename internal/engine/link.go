package engine

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/scgolang/osc"

	"github.com/smazurov/loopbridge/internal/logging"
	"github.com/smazurov/loopbridge/internal/metrics"
)

// Liveness countdown bounds. The countdown starts at countdownStart on
// connect and on every inbound message, a probe goes out when it hits zero,
// and the link is declared dead when it drops below countdownDead. The gap
// between the two gives a few ticks of grace for transient packet loss.
const (
	countdownStart = 5
	countdownDead  = -5
)

const replyHost = "127.0.0.1"

// Link owns the OSC endpoint pair to the engine: the dialed send socket and
// the bound receive socket with its serve loop. At most one link is active.
// All methods run on the bridge goroutine; only the serve loop runs
// elsewhere, and it communicates solely through the post function.
type Link struct {
	host        string
	sendPort    int
	receivePort int

	// Bound endpoint state, -1 = unbound.
	currentSend    int
	currentReceive int

	countdown int
	pinged    bool

	sendConn *osc.UDPConn
	recvConn *osc.UDPConn

	// gen invalidates serve-loop notices from torn-down sockets.
	gen int

	post          func(Inbound)
	onStateChange func(up bool, reason string)
	logger        *slog.Logger
}

// NewLink returns an unconnected link. post delivers inbound messages to the
// bridge queue and must not block.
func NewLink(host string, sendPort, receivePort int, post func(Inbound)) *Link {
	return &Link{
		host:           host,
		sendPort:       sendPort,
		receivePort:    receivePort,
		currentSend:    -1,
		currentReceive: -1,
		post:           post,
		logger:         logging.GetLogger("engine"),
	}
}

// OnStateChange registers a callback invoked when the link transitions
// between up and down.
func (l *Link) OnStateChange(fn func(up bool, reason string)) {
	l.onStateChange = fn
}

// Up reports whether both endpoints are bound.
func (l *Link) Up() bool {
	return l.currentSend > 0 && l.currentReceive > 0
}

// Countdown returns the current liveness countdown value.
func (l *Link) Countdown() int {
	return l.countdown
}

// Pinged reports whether the identity probe went out this session.
func (l *Link) Pinged() bool {
	return l.pinged
}

// Ports returns the bound send and receive ports, -1 when unbound.
func (l *Link) Ports() (send, receive int) {
	return l.currentSend, l.currentReceive
}

// Configure replaces the endpoint configuration. A live link is torn down so
// the next tick reconnects with the new settings.
func (l *Link) Configure(host string, sendPort, receivePort int) {
	if host == l.host && sendPort == l.sendPort && receivePort == l.receivePort {
		return
	}
	l.logger.Info("OSC endpoints reconfigured",
		"host", host, "send_port", sendPort, "receive_port", receivePort)
	l.Teardown("reconfigured")
	l.host = host
	l.sendPort = sendPort
	l.receivePort = receivePort
}

// TryConnect idempotently brings up whichever endpoint is down. When both
// become bound it sends the identity probe, once per session, and resets the
// liveness countdown. Returns whether the link is fully up. Failures are
// logged and retried on the next tick.
func (l *Link) TryConnect() bool {
	if l.currentSend < 0 {
		if err := l.connectSend(); err != nil {
			l.logger.Warn("Failed to connect OSC send endpoint", "port", l.sendPort, "error", err)
		}
	}

	if l.currentReceive < 0 {
		if err := l.connectReceive(); err != nil {
			l.logger.Warn("Failed to bind OSC receive endpoint", "port", l.receivePort, "error", err)
		}
	}

	if !l.Up() {
		return false
	}

	if !l.pinged {
		l.sendPing(AddrPingAck)
		l.pinged = true
	}
	l.countdown = countdownStart
	metrics.SetLinkUp(true)
	metrics.SetCountdown(l.countdown)
	l.logger.Info("Connected to OSC ports",
		"receive_port", l.currentReceive, "send_port", l.currentSend)
	if l.onStateChange != nil {
		l.onStateChange(true, "connected")
	}
	return true
}

// Tick advances the liveness state machine by one scheduler tick. Call only
// while the link is up. A probe goes out when the countdown hits zero; only
// an inbound message resets it. When it falls below the dead threshold the
// link is torn down and the next tick starts a fresh connect.
func (l *Link) Tick() {
	if l.countdown == 0 {
		l.sendPing(AddrHeartbeat)
	}
	l.countdown--
	metrics.SetCountdown(l.countdown)

	if l.countdown < countdownDead {
		l.logger.Warn("Lost engine heartbeat, tearing down link",
			"countdown", l.countdown)
		metrics.Reconnect()
		l.Teardown("timeout")
	}
}

// ResetCountdown restarts the liveness window. Called for every recognized
// inbound message.
func (l *Link) ResetCountdown() {
	l.countdown = countdownStart
	metrics.SetCountdown(l.countdown)
}

// Teardown closes both endpoints and clears session-scoped link state. A
// no-op when already down.
func (l *Link) Teardown(reason string) {
	if l.currentSend < 0 && l.currentReceive < 0 {
		return
	}

	l.gen++
	if l.recvConn != nil {
		l.recvConn.Close()
		l.recvConn = nil
	}
	if l.sendConn != nil {
		l.sendConn.Close()
		l.sendConn = nil
	}
	l.currentSend = -1
	l.currentReceive = -1
	l.pinged = false
	metrics.SetLinkUp(false)
	l.logger.Info("OSC link down", "reason", reason)
	if l.onStateChange != nil {
		l.onStateChange(false, reason)
	}
}

// HandleServeClosed processes a serve-loop termination notice. Notices from
// a generation that was already torn down are stale and ignored; a live one
// means the receive socket died underneath us, so the whole link restarts.
func (l *Link) HandleServeClosed(in Inbound) {
	if in.Gen != l.gen {
		return
	}
	if in.Err != nil {
		l.logger.Warn("OSC serve loop ended", "error", in.Err)
	}
	l.Teardown("serve_error")
}

func (l *Link) connectSend() error {
	raddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", l.host, l.sendPort))
	if err != nil {
		return newError(ErrCodeResolveFailed,
			fmt.Sprintf("failed to resolve %s:%d", l.host, l.sendPort), err)
	}
	conn, err := osc.DialUDP("udp", nil, raddr)
	if err != nil {
		return newError(ErrCodeBindFailed,
			fmt.Sprintf("failed to dial %s:%d", l.host, l.sendPort), err)
	}
	l.sendConn = conn
	l.currentSend = l.sendPort
	return nil
}

func (l *Link) connectReceive() error {
	if l.receivePort < 1 || l.receivePort > 65535 {
		return newError(ErrCodeInvalidPort,
			fmt.Sprintf("receive port %d outside 1-65535", l.receivePort), nil)
	}

	laddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf(":%d", l.receivePort))
	if err != nil {
		return newError(ErrCodeResolveFailed,
			fmt.Sprintf("failed to resolve listen port %d", l.receivePort), err)
	}
	conn, err := osc.ListenUDP("udp", laddr)
	if err != nil {
		return newError(ErrCodeBindFailed,
			fmt.Sprintf("failed to bind port %d", l.receivePort), err)
	}

	l.recvConn = conn
	l.currentReceive = l.receivePort

	gen := l.gen
	dispatcher := l.dispatcher()
	go func() {
		err := conn.Serve(1, dispatcher)
		l.post(Inbound{Kind: KindServeClosed, Gen: gen, Err: err})
	}()
	return nil
}

// dispatcher routes the four recognized addresses onto the bridge queue.
// Handlers return nil: parse errors are the bridge's business, and a handler
// error would kill the serve loop.
func (l *Link) dispatcher() osc.Dispatcher {
	enqueue := func(kind Kind) osc.Method {
		return osc.Method(func(m osc.Message) error {
			l.post(Inbound{Kind: kind, Msg: m})
			return nil
		})
	}
	return osc.Dispatcher{
		AddrPingAck:   enqueue(KindPingAck),
		AddrHeartbeat: enqueue(KindHeartbeat),
		AddrLED:       enqueue(KindLED),
		AddrDisplay:   enqueue(KindDisplay),
	}
}

// sendPing asks the engine to report its identity to replyAddr on our
// receive port.
func (l *Link) sendPing(replyAddr string) {
	l.send(osc.Message{
		Address: addrPing,
		Arguments: osc.Arguments{
			osc.String(replyHost),
			osc.Int(int32(l.currentReceive)),
			osc.String(replyAddr),
		},
	})
	metrics.ProbeSent()
}

// SendRegisterAutoUpdate subscribes this bridge to unsolicited state pushes.
func (l *Link) SendRegisterAutoUpdate() {
	l.send(osc.Message{
		Address: addrRegister,
		Arguments: osc.Arguments{
			osc.String(replyHost),
			osc.Int(int32(l.currentReceive)),
		},
	})
}

// SendUnregisterAutoUpdate is the best-effort shutdown counterpart.
func (l *Link) SendUnregisterAutoUpdate() {
	l.send(osc.Message{
		Address: addrUnregister,
		Arguments: osc.Arguments{
			osc.String(replyHost),
			osc.Int(int32(l.currentReceive)),
		},
	})
}

// RequestState asks the engine to resend the LED and display state.
func (l *Link) RequestState() {
	l.send(osc.Message{
		Address: addrLEDState,
		Arguments: osc.Arguments{
			osc.String(replyHost),
			osc.Int(int32(l.currentReceive)),
			osc.String(AddrLED),
		},
	})
	l.send(osc.Message{
		Address: addrDisplay,
		Arguments: osc.Arguments{
			osc.String(replyHost),
			osc.Int(int32(l.currentReceive)),
			osc.String(AddrDisplay),
		},
	})
}

// send fires one outbound message. Send failures are logged and dropped;
// liveness handles a dead peer.
func (l *Link) send(m osc.Message) {
	if l.sendConn == nil {
		l.logger.Debug("Dropping outbound message, send endpoint down", "address", m.Address)
		return
	}
	if err := l.sendConn.Send(m); err != nil {
		l.logger.Warn("Failed to send OSC message", "address", m.Address, "error", err)
	}
}
