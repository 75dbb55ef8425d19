package wifi

import (
	"context"
	"fmt"
	"time"

	"github.com/angelfreak/wnet/pkg/network"
	"github.com/angelfreak/wnet/pkg/telemetry"
	"github.com/angelfreak/wnet/pkg/types"
	"github.com/go-git/go-billy/v5"
)

// Options selects how a WirelessInterface scans
type Options struct {
	Driver      string        // wpa_supplicant driver hint: "nl80211", "wext" or ""
	Backend     string        // "auto", "external" or "netlink"
	ScanTimeout time.Duration // zero means no deadline beyond the caller's context
}

// OptionsFromConfig maps the wireless section of the config file
func OptionsFromConfig(cfg *types.Config) Options {
	return Options{
		Driver:      cfg.Wireless.Driver,
		Backend:     cfg.Wireless.Backend,
		ScanTimeout: cfg.Common.Timeouts.GetScanTimeout(),
	}
}

// WirelessInterface is a network interface that can scan for networks
type WirelessInterface struct {
	*network.Interface
	executor types.SystemExecutor
	logger   types.Logger
	detector *Detector
	opts     Options
	netlink  *NetlinkBackend
}

// NewWirelessInterface creates a handle for the wireless device called name.
// The name is sanitized like network.NewInterface does.
func NewWirelessInterface(executor types.SystemExecutor, logger types.Logger, fs billy.Filesystem, name string, opts Options) *WirelessInterface {
	return &WirelessInterface{
		Interface: network.NewInterface(executor, logger, fs, name),
		executor:  executor,
		logger:    logger,
		detector:  NewDetector(executor, logger),
		opts:      opts,
		netlink:   NewNetlinkBackend(logger, opts.ScanTimeout),
	}
}

// Capability probes which wireless API the device supports
func (w *WirelessInterface) Capability(ctx context.Context) (Capability, error) {
	return w.detector.DetectCapability(ctx, w.Name(), w.opts.Driver)
}

// IsValidDriver reports whether wpa_supplicant accepts driver
func (w *WirelessInterface) IsValidDriver(driver string) bool {
	return w.detector.IsValidDriver(driver)
}

// GeneratePSK derives the WPA pre-shared key for key.ESSID from key.Key
func (w *WirelessInterface) GeneratePSK(key types.NetworkKey) (string, error) {
	psk, err := GeneratePSK(key.ESSID, key.Key)
	if err != nil {
		return "", err
	}
	w.Trace("Generated PSK", "essid", key.ESSID)
	return psk, nil
}

// Backend returns the scan backend selected by the options
func (w *WirelessInterface) Backend(ctx context.Context) (Backend, error) {
	switch w.opts.Backend {
	case BackendNetlink:
		return w.netlink, nil
	case BackendExternal, BackendAuto, "":
		c, err := w.Capability(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to detect wireless capability: %w", err)
		}
		if c == CapabilityUnsupported {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedInterface, w.Name())
		}
		external, err := NewExternalBackend(w.executor, w.logger, c, w.opts.ScanTimeout)
		if err != nil {
			return nil, err
		}
		return external, nil
	}
	return nil, &types.ValidationError{Field: "backend", Value: w.opts.Backend, Reason: "must be auto, external or netlink"}
}

// GetNetworks scans for wireless networks, bringing the interface up first
// when it is down. Cells are returned in the order the backend reported them.
func (w *WirelessInterface) GetNetworks(ctx context.Context) ([]types.NetworkCell, error) {
	backend, err := w.Backend(ctx)
	if err != nil {
		return nil, err
	}

	if !w.IsUp() {
		if _, err := w.executor.ExecuteContext(ctx, "ip", "link", "set", w.Name(), "up"); err != nil {
			w.logger.Warn("Failed to bring interface up", "interface", w.Name(), "error", err)
		}
	}

	w.Trace("Scanning for wireless networks", "backend", backend.Name())
	cells, err := backend.Scan(ctx, w.Name())
	if err != nil {
		return nil, err
	}

	telemetry.NetworksFound.WithLabelValues(w.Name(), backend.Name()).Set(float64(len(cells)))
	w.Trace("Scan finished", "backend", backend.Name(), "networks", len(cells))
	for _, c := range cells {
		w.Trace("Found network", "essid", c.ESSID, "bssid", c.BSSID, "channel", c.Channel, "quality", c.Quality, "security", c.Security)
	}
	return cells, nil
}
