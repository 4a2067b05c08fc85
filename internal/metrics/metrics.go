// Package metrics provides Prometheus metrics for the OSC link, the session
// tracker, and control-surface writes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	linkUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "loopbridge",
		Subsystem: "link",
		Name:      "up",
		Help:      "Whether both OSC endpoints are bound (1) or the link is down (0)",
	})

	linkCountdown = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "loopbridge",
		Subsystem: "link",
		Name:      "liveness_countdown",
		Help:      "Current liveness countdown value",
	})

	probesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "loopbridge",
		Subsystem: "link",
		Name:      "probes_sent_total",
		Help:      "Keepalive and identity probes sent to the engine",
	})

	reconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "loopbridge",
		Subsystem: "link",
		Name:      "reconnects_total",
		Help:      "Times the link was torn down after losing liveness",
	})

	messagesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loopbridge",
		Subsystem: "session",
		Name:      "messages_received_total",
		Help:      "Inbound OSC messages by kind",
	}, []string{"kind"})

	messagesMalformed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "loopbridge",
		Subsystem: "session",
		Name:      "messages_malformed_total",
		Help:      "Inbound OSC messages dropped for bad arity or argument types",
	})

	messagesUnrecognized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "loopbridge",
		Subsystem: "session",
		Name:      "messages_unrecognized_total",
		Help:      "Inbound OSC messages with an unknown address pattern",
	})

	messagesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "loopbridge",
		Subsystem: "session",
		Name:      "messages_dropped_total",
		Help:      "Inbound OSC messages dropped because the bridge queue was full",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "loopbridge",
		Subsystem: "session",
		Name:      "queue_depth",
		Help:      "Inbound messages waiting on the bridge queue",
	})

	ledCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "loopbridge",
		Subsystem: "session",
		Name:      "led_count",
		Help:      "Number of LED slots announced by the engine",
	})

	hardwareWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loopbridge",
		Subsystem: "surface",
		Name:      "writes_total",
		Help:      "Control-change frames written to the pedalboard by kind",
	}, []string{"kind"})

	hardwareWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "loopbridge",
		Subsystem: "surface",
		Name:      "write_errors_total",
		Help:      "Control-change frames that failed to write",
	})
)

// SetLinkUp records whether the OSC link is fully up.
func SetLinkUp(up bool) {
	if up {
		linkUp.Set(1)
	} else {
		linkUp.Set(0)
	}
}

// SetCountdown records the current liveness countdown value.
func SetCountdown(value int) {
	linkCountdown.Set(float64(value))
}

// ProbeSent counts an outbound liveness or identity probe.
func ProbeSent() {
	probesSent.Inc()
}

// Reconnect counts a link teardown caused by lost liveness.
func Reconnect() {
	reconnects.Inc()
}

// MessageReceived counts an inbound message of the given kind.
func MessageReceived(kind string) {
	messagesReceived.WithLabelValues(kind).Inc()
}

// MessageMalformed counts a dropped malformed payload.
func MessageMalformed() {
	messagesMalformed.Inc()
}

// MessageUnrecognized counts a message with an unknown address.
func MessageUnrecognized() {
	messagesUnrecognized.Inc()
}

// MessageDropped counts a message dropped on a full queue.
func MessageDropped() {
	messagesDropped.Inc()
}

// SetQueueDepth records the inbound queue backlog.
func SetQueueDepth(depth int) {
	queueDepth.Set(float64(depth))
}

// SetLEDCount records the size of the LED registry.
func SetLEDCount(count int) {
	ledCount.Set(float64(count))
}

// HardwareWrite counts a successful control-change write.
func HardwareWrite(kind string) {
	hardwareWrites.WithLabelValues(kind).Inc()
}

// HardwareWriteError counts a failed control-change write.
func HardwareWriteError() {
	hardwareWriteErrors.Inc()
}

// Handler returns the Prometheus metrics HTTP handler. This collects all
// promauto-registered metrics automatically.
func Handler() http.Handler {
	return promhttp.Handler()
}
