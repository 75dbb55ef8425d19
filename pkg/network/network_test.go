package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock executor with strict mode - fails on unexpected commands
type mockSystemExecutor struct {
	commands     map[string]string
	errors       map[string]error
	strict       bool
	executedCmds []string
	hasCommands  map[string]bool
}

func newStrictMockExecutor() *mockSystemExecutor {
	return &mockSystemExecutor{
		commands:    make(map[string]string),
		errors:      make(map[string]error),
		strict:      true,
		hasCommands: make(map[string]bool),
	}
}

func (m *mockSystemExecutor) Execute(cmd string, args ...string) (string, error) {
	fullCmd := strings.Join(append([]string{cmd}, args...), " ")
	m.executedCmds = append(m.executedCmds, fullCmd)

	if err, hasErr := m.errors[fullCmd]; hasErr {
		return m.commands[fullCmd], err
	}
	if output, ok := m.commands[fullCmd]; ok {
		return output, nil
	}
	if m.strict {
		return "", fmt.Errorf("unexpected command: %s", fullCmd)
	}
	return "mock output", nil
}

func (m *mockSystemExecutor) ExecuteContext(ctx context.Context, cmd string, args ...string) (string, error) {
	return m.Execute(cmd, args...)
}

func (m *mockSystemExecutor) ExecuteWithTimeout(timeout time.Duration, cmd string, args ...string) (string, error) {
	return m.Execute(cmd, args...)
}

func (m *mockSystemExecutor) ExecuteWithInput(cmd string, input string, args ...string) (string, error) {
	return m.Execute(cmd, args...)
}

func (m *mockSystemExecutor) ExecuteWithInputContext(ctx context.Context, cmd string, input string, args ...string) (string, error) {
	return m.Execute(cmd, args...)
}

func (m *mockSystemExecutor) ExecuteQuiet(cmd string, args ...string) string {
	output, _ := m.Execute(cmd, args...)
	return output
}

func (m *mockSystemExecutor) HasCommand(cmd string) bool {
	return m.hasCommands[cmd]
}

func (m *mockSystemExecutor) assertNotExecuted(t *testing.T) {
	t.Helper()
	assert.Empty(t, m.executedCmds, "no external command should run")
}

type logEntry struct {
	level string
	msg   string
}

type mockLogger struct {
	entries []logEntry
}

func (m *mockLogger) Debug(msg string, fields ...interface{}) {
	m.entries = append(m.entries, logEntry{"debug", msg})
}
func (m *mockLogger) Info(msg string, fields ...interface{}) {
	m.entries = append(m.entries, logEntry{"info", msg})
}
func (m *mockLogger) Warn(msg string, fields ...interface{}) {
	m.entries = append(m.entries, logEntry{"warn", msg})
}
func (m *mockLogger) Error(msg string, fields ...interface{}) {
	m.entries = append(m.entries, logEntry{"error", msg})
}

// writeAttr creates /sys/class/net/<iface>/<attr> in fs
func writeAttr(t *testing.T, fs billy.Filesystem, iface, attr, value string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, "/sys/class/net/"+iface+"/"+attr, []byte(value+"\n"), 0644))
}

func noLinks() (psnet.InterfaceStatList, error) {
	return nil, nil
}

func newTestInterface(t *testing.T, name string) (*Interface, *mockSystemExecutor, billy.Filesystem) {
	t.Helper()
	executor := newStrictMockExecutor()
	fs := memfs.New()
	iface := NewInterface(executor, &mockLogger{}, fs, name)
	iface.links = noLinks
	return iface, executor, fs
}

func TestNewInterface(t *testing.T) {
	t.Run("keeps a clean name", func(t *testing.T) {
		logger := &mockLogger{}
		iface := NewInterface(newStrictMockExecutor(), logger, memfs.New(), "wlp3s0")
		assert.Equal(t, "wlp3s0", iface.Name())
		assert.False(t, iface.Verbose())
		assert.Empty(t, logger.entries)
	})

	t.Run("drops unsafe characters", func(t *testing.T) {
		logger := &mockLogger{}
		iface := NewInterface(newStrictMockExecutor(), logger, memfs.New(), "blahblah; uptime > /tmp/blah | cat")
		assert.Equal(t, "blahblahuptimetmpblahcat", iface.Name())
		require.Len(t, logger.entries, 1)
		assert.Equal(t, "warn", logger.entries[0].level)
	})
}

func TestSetDebugMode(t *testing.T) {
	logger := &mockLogger{}
	a := NewInterface(newStrictMockExecutor(), logger, memfs.New(), "eth0")
	b := NewInterface(newStrictMockExecutor(), logger, memfs.New(), "eth1")

	a.SetDebugMode(true)
	assert.True(t, a.Verbose())
	assert.False(t, b.Verbose(), "debug mode is per interface")

	a.Trace("visible")
	b.Trace("hidden")
	require.Len(t, logger.entries, 2)
	assert.Equal(t, logEntry{"info", "visible"}, logger.entries[0])
	assert.Equal(t, logEntry{"debug", "hidden"}, logger.entries[1])

	a.SetDebugMode(false)
	assert.False(t, a.Verbose())
}

func TestIsUp(t *testing.T) {
	tests := []struct {
		name  string
		flags string
		want  bool
	}{
		{"up and running", "0x1003", true},
		{"up without carrier", "0x1", true},
		{"down", "0x1002", false},
		{"zero", "0x0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iface, executor, fs := newTestInterface(t, "eth0")
			writeAttr(t, fs, "eth0", "flags", tt.flags)
			assert.Equal(t, tt.want, iface.IsUp())
			executor.assertNotExecuted(t)
		})
	}

	t.Run("missing interface is down", func(t *testing.T) {
		iface, _, _ := newTestInterface(t, "nosuch0")
		assert.False(t, iface.IsUp())
	})

	t.Run("empty name is down", func(t *testing.T) {
		iface, _, _ := newTestInterface(t, ";;")
		assert.Equal(t, "", iface.Name())
		assert.False(t, iface.IsUp())
	})

	t.Run("falls back to link list", func(t *testing.T) {
		iface, _, _ := newTestInterface(t, "wlan0")
		iface.links = func() (psnet.InterfaceStatList, error) {
			return psnet.InterfaceStatList{
				{Name: "lo", Flags: []string{"up", "loopback"}},
				{Name: "wlan0", Flags: []string{"up", "broadcast", "multicast"}},
			}, nil
		}
		assert.True(t, iface.IsUp())
	})

	t.Run("fallback reports down interface", func(t *testing.T) {
		iface, _, _ := newTestInterface(t, "eth1")
		iface.links = func() (psnet.InterfaceStatList, error) {
			return psnet.InterfaceStatList{{Name: "eth1", Flags: []string{"broadcast"}}}, nil
		}
		assert.False(t, iface.IsUp())
	})

	t.Run("unparseable flags fall back", func(t *testing.T) {
		iface, _, fs := newTestInterface(t, "eth0")
		writeAttr(t, fs, "eth0", "flags", "garbage")
		iface.links = func() (psnet.InterfaceStatList, error) {
			return psnet.InterfaceStatList{{Name: "eth0", Flags: []string{"up"}}}, nil
		}
		assert.True(t, iface.IsUp())
	})

	t.Run("fallback error is down", func(t *testing.T) {
		iface, _, _ := newTestInterface(t, "eth0")
		iface.links = func() (psnet.InterfaceStatList, error) {
			return nil, errors.New("netlink: permission denied")
		}
		assert.False(t, iface.IsUp())
	})

	t.Run("custom sysfs path", func(t *testing.T) {
		iface, _, fs := newTestInterface(t, "eth0")
		require.NoError(t, util.WriteFile(fs, "/tmp/sys/eth0/flags", []byte("0x1003\n"), 0644))
		iface.SetSysfsPath("/tmp/sys")
		assert.True(t, iface.IsUp())
		iface.SetSysfsPath("")
		assert.True(t, iface.IsUp(), "empty path keeps the previous directory")
	})
}

func TestIsPluggedIn(t *testing.T) {
	t.Run("carrier present", func(t *testing.T) {
		iface, executor, fs := newTestInterface(t, "eth0")
		writeAttr(t, fs, "eth0", "carrier", "1")
		assert.True(t, iface.IsPluggedIn())
		executor.assertNotExecuted(t)
	})

	t.Run("no carrier", func(t *testing.T) {
		iface, executor, fs := newTestInterface(t, "eth0")
		writeAttr(t, fs, "eth0", "carrier", "0")
		assert.False(t, iface.IsPluggedIn())
		executor.assertNotExecuted(t)
	})

	t.Run("ethtool fallback", func(t *testing.T) {
		iface, executor, _ := newTestInterface(t, "eth0")
		executor.hasCommands["ethtool"] = true
		executor.commands["ethtool eth0"] = `Settings for eth0:
	Supported ports: [ TP ]
	Speed: 1000Mb/s
	Duplex: Full
	Link detected: yes
`
		assert.True(t, iface.IsPluggedIn())
	})

	t.Run("ethtool reports no link", func(t *testing.T) {
		iface, executor, _ := newTestInterface(t, "eth0")
		executor.hasCommands["ethtool"] = true
		executor.commands["ethtool eth0"] = "Settings for eth0:\n\tLink detected: no\n"
		assert.False(t, iface.IsPluggedIn())
	})

	t.Run("ethtool fails", func(t *testing.T) {
		iface, executor, _ := newTestInterface(t, "eth0")
		executor.hasCommands["ethtool"] = true
		executor.errors["ethtool eth0"] = errors.New("Cannot get device settings: No such device")
		assert.False(t, iface.IsPluggedIn())
	})

	t.Run("mii-tool fallback", func(t *testing.T) {
		iface, executor, _ := newTestInterface(t, "eth0")
		executor.hasCommands["mii-tool"] = true
		executor.commands["mii-tool -v eth0"] = "eth0: negotiated 1000baseT-FD flow-control, link ok\n"
		assert.True(t, iface.IsPluggedIn())
	})

	t.Run("no tools", func(t *testing.T) {
		iface, executor, _ := newTestInterface(t, "eth0")
		assert.False(t, iface.IsPluggedIn())
		executor.assertNotExecuted(t)
	})
}

func TestGetOperState(t *testing.T) {
	iface, _, fs := newTestInterface(t, "wlan0")
	assert.Equal(t, OperStateUnknown, iface.GetOperState())

	writeAttr(t, fs, "wlan0", "operstate", "dormant")
	assert.Equal(t, "dormant", iface.GetOperState())

	writeAttr(t, fs, "wlan0", "operstate", OperStateUp)
	assert.Equal(t, OperStateUp, iface.GetOperState())
}

func TestGetIP(t *testing.T) {
	t.Run("parses first inet address", func(t *testing.T) {
		iface, executor, _ := newTestInterface(t, "wlan0")
		executor.commands["ip addr show wlan0"] = `3: wlan0: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500 qdisc noqueue state UP group default qlen 1000
    link/ether 00:11:22:33:44:55 brd ff:ff:ff:ff:ff:ff
    inet6 fe80::211:22ff:fe33:4455/64 scope link
       valid_lft forever preferred_lft forever
    inet 192.168.1.23/24 brd 192.168.1.255 scope global dynamic wlan0
       valid_lft 86180sec preferred_lft 86180sec
`
		ip, err := iface.GetIP()
		require.NoError(t, err)
		assert.True(t, ip.Equal(net.ParseIP("192.168.1.23")))
	})

	t.Run("no address", func(t *testing.T) {
		iface, executor, _ := newTestInterface(t, "eth0")
		executor.commands["ip addr show eth0"] = "2: eth0: <NO-CARRIER,BROADCAST,MULTICAST,UP> mtu 1500\n"
		ip, err := iface.GetIP()
		require.NoError(t, err)
		assert.Nil(t, ip)
	})

	t.Run("command fails", func(t *testing.T) {
		iface, executor, _ := newTestInterface(t, "eth0")
		executor.errors["ip addr show eth0"] = errors.New(`Device "eth0" does not exist.`)
		_, err := iface.GetIP()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get IP addresses")
	})

	t.Run("empty name", func(t *testing.T) {
		iface, executor, _ := newTestInterface(t, "$()")
		_, err := iface.GetIP()
		assert.Error(t, err)
		executor.assertNotExecuted(t)
	})
}
