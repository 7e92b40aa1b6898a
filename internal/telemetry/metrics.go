package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// FramesReceived counts inbound MAC frames by type (mgmt, data, ctrl)
	FramesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mlme",
			Name:      "frames_received_total",
			Help:      "Total number of MAC frames received from the driver",
		},
		[]string{"type"},
	)

	// FramesSent counts outbound frames by subtype (auth, assoc_req, deauth, data, keep_alive, ps_poll)
	FramesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mlme",
			Name:      "frames_sent_total",
			Help:      "Total number of frames handed to the driver for transmission",
		},
		[]string{"subtype"},
	)

	// FramesDropped counts frames discarded before processing completed
	FramesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mlme",
			Name:      "frames_dropped_total",
			Help:      "Total number of frames dropped",
		},
		[]string{"reason"},
	)

	// MsdusDelivered counts MSDUs re-encapsulated and handed to the network stack
	MsdusDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mlme",
			Name:      "msdus_delivered_total",
			Help:      "Total number of MSDUs delivered to the network stack as Ethernet II frames",
		},
	)

	// EapolIndications counts EAPOL PDUs forwarded to the SME
	EapolIndications = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mlme",
			Name:      "eapol_indications_total",
			Help:      "Total number of EAPOL indications forwarded to the SME",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// This function is idempotent and can be called multiple times safely.
func InitMetrics() {
	once.Do(func() {
		// Register metrics, ignoring errors if already registered
		// This prevents panics when metrics are already in the registry
		prometheus.DefaultRegisterer.Register(FramesReceived)
		prometheus.DefaultRegisterer.Register(FramesSent)
		prometheus.DefaultRegisterer.Register(FramesDropped)
		prometheus.DefaultRegisterer.Register(MsdusDelivered)
		prometheus.DefaultRegisterer.Register(EapolIndications)
	})
}
