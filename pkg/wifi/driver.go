package wifi

import (
	"context"
	"slices"
	"strings"

	"github.com/angelfreak/wnet/pkg/types"
	nlwifi "github.com/mdlayher/wifi"
)

// Capability is the wireless API a device can be driven through
type Capability int

const (
	CapabilityUnsupported Capability = iota
	CapabilityWext
	CapabilityCfg80211
)

func (c Capability) String() string {
	switch c {
	case CapabilityWext:
		return "wext"
	case CapabilityCfg80211:
		return "cfg80211"
	}
	return "unsupported"
}

// wpa_supplicant driver hints
const (
	DriverNL80211 = "nl80211"
	DriverWext    = "wext"
)

// Arguments that make wpa_supplicant exit right after checking the driver
const (
	probeInterface = "-iwnetprobe0"
	probeConfig    = "-c/nonexistent/wnet-probe.conf"
)

// Detector probes which wireless API an interface supports and which
// wpa_supplicant drivers are usable on this host
type Detector struct {
	executor    types.SystemExecutor
	logger      types.Logger
	listNL80211 func() ([]string, error)
}

// NewDetector creates a new capability detector
func NewDetector(executor types.SystemExecutor, logger types.Logger) *Detector {
	return &Detector{
		executor:    executor,
		logger:      logger,
		listNL80211: listNL80211Interfaces,
	}
}

// RequiresExternalCalls is the capability-agnostic form of
// Backend.RequiresExternalCalls. Only a concrete backend knows whether it
// shells out, so this always fails with types.ErrNotImplemented.
func RequiresExternalCalls() (bool, error) {
	return false, types.ErrNotImplemented
}

// IsValidDriver reports whether wpa_supplicant on this host accepts driver.
// It runs wpa_supplicant exactly once with a bogus interface and config file;
// the driver is only rejected when wpa_supplicant says "Unsupported driver".
func (d *Detector) IsValidDriver(driver string) bool {
	name := types.SanitizeInterfaceName(driver)
	if name == "" {
		d.logger.Debug("Empty driver name", "driver", driver)
		return false
	}

	output := d.executor.ExecuteQuiet("wpa_supplicant", "-D"+name, probeInterface, probeConfig)
	valid := !strings.Contains(output, "Unsupported driver")
	d.logger.Debug("Validated wpa_supplicant driver", "driver", name, "valid", valid)
	return valid
}

// DetectCapability probes iface for cfg80211 and wireless extensions support.
// driver restricts the probe: "nl80211" only checks cfg80211, "wext" only
// checks wireless extensions and "" tries cfg80211 first. A device supporting
// neither is CapabilityUnsupported with a nil error.
func (d *Detector) DetectCapability(ctx context.Context, iface, driver string) (Capability, error) {
	name := types.SanitizeInterfaceName(iface)
	if name == "" {
		return CapabilityUnsupported, &types.ValidationError{Field: "interface name", Value: iface, Reason: "empty after sanitizing"}
	}

	var probes []Capability
	switch driver {
	case DriverNL80211:
		probes = []Capability{CapabilityCfg80211}
	case DriverWext:
		probes = []Capability{CapabilityWext}
	case "":
		probes = []Capability{CapabilityCfg80211, CapabilityWext}
	default:
		return CapabilityUnsupported, &types.ValidationError{Field: "driver", Value: driver, Reason: "must be nl80211, wext or empty"}
	}

	for _, c := range probes {
		if err := ctx.Err(); err != nil {
			return CapabilityUnsupported, err
		}
		var ok bool
		switch c {
		case CapabilityCfg80211:
			ok = d.probeCfg80211(ctx, name)
		case CapabilityWext:
			ok = d.probeWext(ctx, name)
		}
		if ok {
			d.logger.Debug("Detected wireless capability", "interface", name, "capability", c.String())
			return c, nil
		}
	}

	d.logger.Debug("No wireless capability detected", "interface", name, "driver", driver)
	return CapabilityUnsupported, nil
}

func (d *Detector) probeCfg80211(ctx context.Context, iface string) bool {
	if d.listNL80211 != nil {
		names, err := d.listNL80211()
		if err == nil && slices.Contains(names, iface) {
			return true
		}
		if err != nil {
			d.logger.Debug("nl80211 unavailable, asking iw", "error", err)
		}
	}
	_, err := d.executor.ExecuteContext(ctx, "iw", "dev", iface, "info")
	return err == nil
}

func (d *Detector) probeWext(ctx context.Context, iface string) bool {
	output, err := d.executor.ExecuteContext(ctx, "iwconfig", iface)
	if err != nil {
		return false
	}
	return strings.TrimSpace(output) != "" && !strings.Contains(output, "no wireless extensions")
}

// listNL80211Interfaces returns the names of the interfaces nl80211 manages
func listNL80211Interfaces() ([]string, error) {
	c, err := nlwifi.New()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	ifis, err := c.Interfaces()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ifis))
	for _, ifi := range ifis {
		if ifi.Name != "" {
			names = append(names, ifi.Name)
		}
	}
	return names, nil
}
