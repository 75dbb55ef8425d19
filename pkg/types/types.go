package types

import (
	"context"
	"time"
)

// SysClassNet is the kernel directory that exposes one entry per network device
const SysClassNet = "/sys/class/net"

// Config represents the main configuration structure
type Config struct {
	Common   CommonConfig   `yaml:"common" mapstructure:"common"`
	Wireless WirelessConfig `yaml:"wireless" mapstructure:"wireless"`
	Ignored  IgnoredConfig  `yaml:"ignored" mapstructure:"ignored"`
	Sysfs    string         `yaml:"sysfs" mapstructure:"sysfs"`
}

// CommonConfig holds default settings applied to all interfaces
type CommonConfig struct {
	Debug    bool          `yaml:"debug" mapstructure:"debug"`
	Timeouts TimeoutConfig `yaml:"timeouts" mapstructure:"timeouts"`
}

// TimeoutConfig holds configurable timeout values (in seconds)
// All values default to sensible values if not specified
type TimeoutConfig struct {
	Command int `yaml:"command" mapstructure:"command"` // General command timeout (default: 30s)
	Scan    int `yaml:"scan" mapstructure:"scan"`       // Wireless scan timeout (default: 15s)
}

// GetCommandTimeout returns command timeout with default fallback
func (t *TimeoutConfig) GetCommandTimeout() time.Duration {
	if t.Command > 0 {
		return time.Duration(t.Command) * time.Second
	}
	return 30 * time.Second
}

// GetScanTimeout returns scan timeout with default fallback
func (t *TimeoutConfig) GetScanTimeout() time.Duration {
	if t.Scan > 0 {
		return time.Duration(t.Scan) * time.Second
	}
	return 15 * time.Second
}

// WirelessConfig selects the wireless interface, wpa_supplicant driver and scan backend
type WirelessConfig struct {
	Interface string `yaml:"interface" mapstructure:"interface"`
	Driver    string `yaml:"driver" mapstructure:"driver"`   // "nl80211", "wext" or empty for auto
	Backend   string `yaml:"backend" mapstructure:"backend"` // "auto", "external" or "netlink"
}

// IgnoredConfig contains interfaces to ignore
type IgnoredConfig struct {
	Interfaces []string `yaml:"interfaces" mapstructure:"interfaces"`
}

// Security values reported for a NetworkCell
const (
	SecurityOpen = "Open"
	SecurityWEP  = "WEP"
	SecurityWPA  = "WPA"
	SecurityWPA2 = "WPA2"
	SecurityWPA3 = "WPA3"
)

// HiddenESSID is the ESSID given to cells that do not broadcast one
const HiddenESSID = "<hidden>"

// NetworkCell represents one wireless network found by a single scan.
// Cells are produced by the scan parsers and backends and are not modified afterwards.
type NetworkCell struct {
	ESSID        string
	Hidden       bool
	BSSID        string
	Quality      int // 0-100, -1 when the tool did not report it
	Signal       int // dBm, 0 when the tool did not report it
	Encryption   bool
	Security     string
	Frequency    string // raw text as reported by the tool
	FrequencyMHz int
	Channel      int // 0 when the frequency could not be mapped
	Mode         string
	BitRates     []string
}

// NetworkKey holds the values needed to derive a WPA pre-shared key
type NetworkKey struct {
	ESSID string
	Key   string
}

// Interfaces for dependency injection and testing

// SystemExecutor handles system command execution
type SystemExecutor interface {
	Execute(cmd string, args ...string) (string, error)
	ExecuteContext(ctx context.Context, cmd string, args ...string) (string, error)
	ExecuteWithTimeout(timeout time.Duration, cmd string, args ...string) (string, error)
	ExecuteWithInput(cmd string, input string, args ...string) (string, error)
	ExecuteWithInputContext(ctx context.Context, cmd string, input string, args ...string) (string, error)
	// ExecuteQuiet runs a probe command whose exit status is irrelevant and
	// returns its combined stdout and stderr. Failures are never surfaced.
	ExecuteQuiet(cmd string, args ...string) string
	HasCommand(cmd string) bool
}

// Logger interface for structured logging
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// ConfigManager handles configuration loading and management
type ConfigManager interface {
	LoadConfig(path string) (*Config, error)
	GetConfig() *Config
	IsIgnored(iface string) bool
}
