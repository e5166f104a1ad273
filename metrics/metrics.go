// Package metrics defines prometheus metric types for the client core and
// its driver. Mirrors m-lab/tcp-info's metrics package one-for-one
// (promauto-registered package vars, a histogram per latency-bearing
// operation, a counter-vec per error kind) with the counters renamed to
// this domain: decode errors by kind, activation trigger outcomes, and
// frame byte sizes in place of tcp-info's netlink syscall/connection
// counters.
package metrics

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecodeErrorCount counts pod decode failures by error kind.
	//
	// Example usage:
	//   metrics.DecodeErrorCount.With(prometheus.Labels{"kind": "buffer_underflow"}).Inc()
	DecodeErrorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pwclient_decode_error_total",
			Help: "The total number of pod decode errors, by kind.",
		}, []string{"kind"})

	// TriggerCount counts activation trigger outcomes.
	//
	// Example usage:
	//   metrics.TriggerCount.With(prometheus.Labels{"outcome": "ok"}).Inc()
	TriggerCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pwclient_trigger_total",
			Help: "The total number of activation trigger calls, by outcome.",
		}, []string{"outcome"})

	// FrameSizeHistogram tracks the on-wire byte size of wire frames,
	// header included.
	FrameSizeHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "pwclient_frame_size_bytes_histogram",
			Help: "Distribution of wire frame sizes in bytes, header included.",
			Buckets: []float64{
				16, 32, 64, 128, 256, 512, 1024, 2048, 4096, 8192, 16384, 32768, 65536,
			},
		},
	)

	// PollingHistogram tracks the interval between reactor poll cycles,
	// the direct analog of tcp-info's own polling-interval histogram.
	PollingHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pwclient_polling_interval_histogram",
			Help:    "Reactor poll cycle interval distribution (seconds).",
			Buckets: prometheus.LinearBuckets(0, .001, 20),
		},
	)

	// ActivePortsGauge reports the number of ports currently held across
	// all tracked client nodes, split by direction.
	ActivePortsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pwclient_active_ports",
			Help: "Number of ports currently registered, by direction.",
		}, []string{"direction"})
)

// init logs once at package load, matching tcp-info's own
// registration-visibility log line in metrics.go.
func init() {
	log.Println("Prometheus metrics in pwclient.metrics are registered.")
}
