package telemetry

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CommandsTotal counts external commands run through the executor
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wnet",
			Name:      "commands_total",
			Help:      "Total number of external commands executed",
		},
		[]string{"command", "result"},
	)

	// CommandDuration tracks how long external commands take to exit
	CommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wnet",
			Name:      "command_duration_seconds",
			Help:      "Wall clock time spent waiting for external commands",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"command"},
	)

	// NetworksFound records the number of cells returned by the last scan of an interface
	NetworksFound = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wnet",
			Name:      "networks_found",
			Help:      "Number of wireless networks seen by the most recent scan",
		},
		[]string{"interface", "backend"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// Command results used as the "result" label of CommandsTotal
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultTimeout = "timeout"
)

// InitMetrics registers all metrics with the global Prometheus registry.
// It is idempotent and can be called multiple times safely.
func InitMetrics() {
	once.Do(func() {
		Register(prometheus.DefaultRegisterer)
	})
}

// Register adds all collectors to reg, ignoring collectors that are already registered
func Register(reg prometheus.Registerer) {
	_ = reg.Register(CommandsTotal)
	_ = reg.Register(CommandDuration)
	_ = reg.Register(NetworksFound)
}

// WriteTextfile writes the current values of all collectors to path in the
// node_exporter textfile format
func WriteTextfile(path string) error {
	reg := prometheus.NewRegistry()
	Register(reg)
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
