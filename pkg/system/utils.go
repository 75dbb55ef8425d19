package system

import (
	"net"
	"strconv"
	"strings"
)

// ParseIPFromOutput extracts the first inet IP address from `ip addr show` output.
// Returns nil if no valid IP address is found.
func ParseIPFromOutput(output string) net.IP {
	lines := strings.Split(output, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "inet ") {
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				ip, _, err := net.ParseCIDR(parts[1])
				if err == nil {
					return ip
				}
			}
		}
	}
	return nil
}

// ParseLinkDetected reports whether `ethtool <iface>` output says a cable is plugged in
func ParseLinkDetected(output string) bool {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(line, "Link detected:"); ok {
			return strings.TrimSpace(value) == "yes"
		}
	}
	return false
}

// ParseHexFlags parses the contents of /sys/class/net/<iface>/flags ("0x1003")
func ParseHexFlags(s string) (uint64, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
