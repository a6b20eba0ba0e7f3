// Package metrics exposes Prometheus instrumentation for the decode path.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesDecoded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "framewire",
			Subsystem: "decoder",
			Name:      "frames_total",
			Help:      "Frames decoded into valid messages.",
		},
	)
	decodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "framewire",
			Subsystem: "decoder",
			Name:      "errors_total",
			Help:      "Error outcomes delivered, by kind.",
		},
		[]string{"kind"},
	)
	connections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "framewire",
			Subsystem: "node",
			Name:      "connections",
			Help:      "Streams currently registered with the decoder.",
		},
	)
)

// Register installs the collectors in the default registry. Safe to call
// from multiple paths; only the first call registers.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesDecoded, decodeErrors, connections)
	})
}

func RecordMessage() {
	Register()
	framesDecoded.Inc()
}

func RecordError(kind string) {
	Register()
	decodeErrors.WithLabelValues(kind).Inc()
}

func ConnOpened() {
	Register()
	connections.Inc()
}

func ConnClosed() {
	Register()
	connections.Dec()
}
