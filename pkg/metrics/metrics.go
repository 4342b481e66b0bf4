// Package metrics exposes Prometheus metrics for driver traffic and
// discovery. newtmn is a short-lived CLI, so metrics are written to a
// node-exporter textfile instead of being scraped.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Command status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Registry holds all newtmn metrics.
type Registry struct {
	DriverCommandsTotal   *prometheus.CounterVec
	DriverCommandDuration *prometheus.HistogramVec
	SwitchesDiscovered    prometheus.Gauge
	ControllersConnected  *prometheus.GaugeVec
	LastRunTimestamp      prometheus.Gauge

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with every metric initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	f := promauto.With(r.registry)

	r.DriverCommandsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newtmn_driver_commands_total",
			Help: "Total number of Mininet driver commands issued",
		},
		[]string{"command", "status"},
	)
	r.DriverCommandDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "newtmn_driver_command_duration_seconds",
			Help:    "Mininet driver command round-trip time in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"command"},
	)
	r.SwitchesDiscovered = f.NewGauge(prometheus.GaugeOpts{
		Name: "newtmn_switches_discovered",
		Help: "Number of switches found by the last discovery pass",
	})
	r.ControllersConnected = f.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "newtmn_controllers_connected",
			Help: "Number of active controller connections per switch at last query",
		},
		[]string{"switch"},
	)
	r.LastRunTimestamp = f.NewGauge(prometheus.GaugeOpts{
		Name: "newtmn_last_run_timestamp_seconds",
		Help: "Unix time at which newtmn last wrote these metrics",
	})
	return r
}

// RecordDriverCommand counts one driver command and observes its duration.
func (r *Registry) RecordDriverCommand(command string, err error, d time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	r.DriverCommandsTotal.WithLabelValues(command, status).Inc()
	r.DriverCommandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// SetSwitchesDiscovered records the size of the last discovery.
func (r *Registry) SetSwitchesDiscovered(n int) {
	r.SwitchesDiscovered.Set(float64(n))
}

// SetControllersConnected records the connection count seen for a switch.
func (r *Registry) SetControllersConnected(sw string, n int) {
	r.ControllersConnected.WithLabelValues(sw).Set(float64(n))
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically so the textfile collector never reads a
// partial write.
func (r *Registry) WriteTextfile(path string) error {
	r.LastRunTimestamp.SetToCurrentTime()
	return prometheus.WriteToTextfile(path, r.registry)
}
