package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	Register(reg)
	// A second registration must not panic
	Register(reg)

	CommandsTotal.WithLabelValues("iw", ResultOK).Inc()
	CommandDuration.WithLabelValues("iw").Observe(0.2)
	NetworksFound.WithLabelValues("wlan0", "external").Set(3)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "wnet_commands_total")
	assert.Contains(t, names, "wnet_command_duration_seconds")
	assert.Contains(t, names, "wnet_networks_found")
}

func TestInitMetricsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		InitMetrics()
		InitMetrics()
	})
	NetworksFound.WithLabelValues("wlan1", "netlink").Set(7)
	assert.Equal(t, float64(7), testutil.ToFloat64(NetworksFound.WithLabelValues("wlan1", "netlink")))
}

func TestWriteTextfile(t *testing.T) {
	NetworksFound.WithLabelValues("wlan2", "external").Set(4)

	path := filepath.Join(t.TempDir(), "wnet.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `wnet_networks_found{backend="external",interface="wlan2"} 4`)

	assert.Error(t, WriteTextfile(filepath.Join(t.TempDir(), "missing", "wnet.prom")))
}
