package network

import (
	"fmt"
	"net"
	"path"
	"strings"
	"time"

	"github.com/angelfreak/wnet/pkg/system"
	"github.com/angelfreak/wnet/pkg/types"
	"github.com/go-git/go-billy/v5"
	psnet "github.com/shirou/gopsutil/v4/net"
)

// iffUp is IFF_UP from <linux/if.h>
const iffUp = 0x1

// OperState values reported by /sys/class/net/<iface>/operstate
const (
	OperStateUp      = "up"
	OperStateDown    = "down"
	OperStateUnknown = "unknown"
)

// LinkLister returns the host's interfaces with their flags. It backs IsUp
// when sysfs cannot be read.
type LinkLister func() (psnet.InterfaceStatList, error)

// Interface is a handle on one network device. The name is sanitized once at
// construction and never changes; everything else is per instance.
type Interface struct {
	name     string
	verbose  bool
	executor types.SystemExecutor
	logger   types.Logger
	fs       billy.Filesystem
	sysfs    string
	links    LinkLister
}

// NewInterface creates a handle for the device called name. Characters outside
// [A-Za-z0-9_-] are dropped before the name is stored.
func NewInterface(executor types.SystemExecutor, logger types.Logger, fs billy.Filesystem, name string) *Interface {
	clean := types.SanitizeInterfaceName(name)
	if clean != name {
		logger.Warn("Dropped unsafe characters from interface name", "raw", name, "interface", clean)
	}
	return &Interface{
		name:     clean,
		executor: executor,
		logger:   logger,
		fs:       fs,
		sysfs:    types.SysClassNet,
		links:    psnet.Interfaces,
	}
}

// Name returns the sanitized interface name
func (i *Interface) Name() string {
	return i.name
}

// SetDebugMode toggles verbose logging for this interface only
func (i *Interface) SetDebugMode(verbose bool) {
	i.verbose = verbose
}

// Verbose reports whether debug mode is enabled
func (i *Interface) Verbose() bool {
	return i.verbose
}

// SetSysfsPath changes the directory device attributes are read from
func (i *Interface) SetSysfsPath(dir string) {
	if dir != "" {
		i.sysfs = dir
	}
}

// Trace logs at Info when debug mode is on, Debug otherwise
func (i *Interface) Trace(msg string, fields ...interface{}) {
	fields = append([]interface{}{"interface", i.name}, fields...)
	if i.verbose {
		i.logger.Info(msg, fields...)
		return
	}
	i.logger.Debug(msg, fields...)
}

func (i *Interface) attr(name string) string {
	return path.Join(i.sysfs, i.name, name)
}

// IsUp reports whether the interface is administratively up. Missing
// interfaces are down.
func (i *Interface) IsUp() bool {
	if i.name == "" {
		return false
	}

	raw, err := system.ReadFirstLine(i.fs, i.attr("flags"))
	if err == nil {
		if flags, ok := system.ParseHexFlags(raw); ok {
			return flags&iffUp != 0
		}
		i.Trace("Unparseable interface flags", "flags", raw)
	}

	return i.isUpFromLinkList()
}

func (i *Interface) isUpFromLinkList() bool {
	if i.links == nil {
		return false
	}
	stats, err := i.links()
	if err != nil {
		i.Trace("Failed to list interfaces", "error", err)
		return false
	}
	for _, st := range stats {
		if st.Name != i.name {
			continue
		}
		for _, flag := range st.Flags {
			if flag == "up" {
				return true
			}
		}
		return false
	}
	return false
}

// IsPluggedIn reports whether a cable is connected. The carrier attribute is
// tried first; it cannot be read while the interface is down, so ethtool and
// then mii-tool are asked instead.
func (i *Interface) IsPluggedIn() bool {
	if i.name == "" {
		return false
	}

	carrier, err := system.ReadFirstLine(i.fs, i.attr("carrier"))
	if err == nil && (carrier == "0" || carrier == "1") {
		return carrier == "1"
	}

	switch {
	case i.executor.HasCommand("ethtool"):
		output, err := i.executor.ExecuteWithTimeout(2*time.Second, "ethtool", i.name)
		if err != nil {
			i.Trace("ethtool failed", "error", err)
			return false
		}
		return system.ParseLinkDetected(output)
	case i.executor.HasCommand("mii-tool"):
		output := i.executor.ExecuteQuiet("mii-tool", "-v", i.name)
		return strings.Contains(output, "link ok")
	}

	i.logger.Warn("Cannot determine link state: no carrier attribute, ethtool or mii-tool", "interface", i.name)
	return false
}

// GetOperState returns the RFC 2863 operational state, or "unknown" when it
// cannot be read
func (i *Interface) GetOperState() string {
	state, err := system.ReadFirstLine(i.fs, i.attr("operstate"))
	if err != nil || state == "" {
		return OperStateUnknown
	}
	return state
}

// GetIP returns the first IPv4 address assigned to the interface, or nil
func (i *Interface) GetIP() (net.IP, error) {
	if i.name == "" {
		return nil, &types.ValidationError{Field: "interface name", Reason: "empty after sanitizing"}
	}
	output, err := i.executor.Execute("ip", "addr", "show", i.name)
	if err != nil {
		return nil, fmt.Errorf("failed to get IP addresses: %w", err)
	}
	ip := system.ParseIPFromOutput(output)
	i.Trace("Read interface address", "ip", ip)
	return ip, nil
}
