package wifi

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// LinkStatus is the association state of a wireless interface
type LinkStatus struct {
	Connected bool
	ESSID     string
	BSSID     string
	Channel   int // 0 when unknown
}

var (
	iwLinkBSSIDRegex   = regexp.MustCompile(`^Connected to ([0-9a-fA-F:]{17})`)
	iwconfigESSIDRegex = regexp.MustCompile(`ESSID:"(.*)"`)
	iwconfigAPRegex    = regexp.MustCompile(`Access Point: ([0-9a-fA-F:]{17})`)
	iwconfigFreqRegex  = regexp.MustCompile(`Frequency:\s*([0-9.]+ ?[GM]Hz)`)
)

// CurrentNetwork reports which network the interface is associated with.
// A disconnected interface is not an error.
func (w *WirelessInterface) CurrentNetwork(ctx context.Context) (LinkStatus, error) {
	c, err := w.Capability(ctx)
	if err != nil {
		return LinkStatus{}, fmt.Errorf("failed to detect wireless capability: %w", err)
	}

	var status LinkStatus
	switch c {
	case CapabilityCfg80211:
		output, err := w.executor.ExecuteContext(ctx, "iw", "dev", w.Name(), "link")
		if err != nil {
			return LinkStatus{}, fmt.Errorf("failed to get link status: %w", err)
		}
		status = parseIWLink(output)
	case CapabilityWext:
		output, err := w.executor.ExecuteContext(ctx, "iwconfig", w.Name())
		if err != nil {
			return LinkStatus{}, fmt.Errorf("failed to get link status: %w", err)
		}
		status = parseIWConfigLink(output)
	default:
		return LinkStatus{}, fmt.Errorf("%w: %s", ErrUnsupportedInterface, w.Name())
	}

	w.Trace("Link status", "connected", status.Connected, "essid", status.ESSID, "bssid", status.BSSID)
	return status, nil
}

// parseIWLink parses `iw dev <iface> link`
func parseIWLink(output string) LinkStatus {
	var status LinkStatus
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if m := iwLinkBSSIDRegex.FindStringSubmatch(line); m != nil {
			status.Connected = true
			status.BSSID = strings.ToLower(m[1])
			continue
		}
		if !status.Connected {
			continue
		}
		switch {
		case strings.HasPrefix(line, "SSID: "):
			status.ESSID = decodeSSID(strings.TrimPrefix(line, "SSID: "))
		case strings.HasPrefix(line, "freq: "):
			if mhz, err := ParseFrequencyMHz(strings.TrimPrefix(line, "freq: ")); err == nil {
				status.Channel, _ = ChannelFromMHz(mhz)
			}
		}
	}
	return status
}

// parseIWConfigLink parses `iwconfig <iface>`. Unassociated interfaces show
// ESSID:off/any and Access Point: Not-Associated.
func parseIWConfigLink(output string) LinkStatus {
	var status LinkStatus
	if m := iwconfigAPRegex.FindStringSubmatch(output); m != nil {
		status.Connected = true
		status.BSSID = strings.ToLower(m[1])
	}
	if !status.Connected {
		return status
	}
	if m := iwconfigESSIDRegex.FindStringSubmatch(output); m != nil {
		status.ESSID = m[1]
	}
	if m := iwconfigFreqRegex.FindStringSubmatch(output); m != nil {
		status.Channel, _ = FrequencyToChannel(m[1])
	}
	return status
}
