package wifi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/angelfreak/wnet/pkg/types"
	nlwifi "github.com/mdlayher/wifi"
)

// Backend names, as used by the wireless.backend config key
const (
	BackendAuto     = "auto"
	BackendExternal = "external"
	BackendNetlink  = "netlink"
)

// ErrUnsupportedInterface is returned when a device supports neither
// cfg80211 nor wireless extensions
var ErrUnsupportedInterface = errors.New("interface supports neither cfg80211 nor wireless extensions")

// Backend scans for networks on one interface
type Backend interface {
	Name() string
	// RequiresExternalCalls reports whether the backend runs helper binaries
	RequiresExternalCalls() bool
	Scan(ctx context.Context, iface string) ([]types.NetworkCell, error)
}

// ExternalBackend scans by running iw (cfg80211) or iwlist (wireless
// extensions) through the executor
type ExternalBackend struct {
	executor   types.SystemExecutor
	logger     types.Logger
	capability Capability
	parser     Parser
	timeout    time.Duration
}

// NewExternalBackend creates a backend for an interface with capability c
func NewExternalBackend(executor types.SystemExecutor, logger types.Logger, c Capability, timeout time.Duration) (*ExternalBackend, error) {
	parser, err := ParserFor(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedInterface, err)
	}
	return &ExternalBackend{
		executor:   executor,
		logger:     logger,
		capability: c,
		parser:     parser,
		timeout:    timeout,
	}, nil
}

func (b *ExternalBackend) Name() string { return BackendExternal }

func (b *ExternalBackend) RequiresExternalCalls() bool { return true }

// Scan triggers a scan and parses its output. When iw reports the device
// busy, for example because wpa_supplicant is already scanning, the cached
// results are used instead. Other failures are returned as they are.
func (b *ExternalBackend) Scan(ctx context.Context, iface string) ([]types.NetworkCell, error) {
	name := types.SanitizeInterfaceName(iface)
	if name == "" {
		return nil, &types.ValidationError{Field: "interface name", Value: iface, Reason: "empty after sanitizing"}
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	var output string
	var err error
	switch b.capability {
	case CapabilityCfg80211:
		output, err = b.executor.ExecuteContext(ctx, "iw", "dev", name, "scan")
		if err != nil && ctx.Err() == nil && isDeviceBusy(err) {
			b.logger.Debug("Device busy, reading cached results", "interface", name, "error", err)
			output, err = b.executor.ExecuteContext(ctx, "iw", "dev", name, "scan", "dump")
		}
	case CapabilityWext:
		output, err = b.executor.ExecuteContext(ctx, "iwlist", name, "scan")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}

	b.logger.Debug("Parsing scan results", "interface", name, "capability", b.capability.String())
	return b.parser.ParseScan(output), nil
}

// isDeviceBusy reports whether a failed command hit EBUSY, which iw prints
// as "Device or resource busy (-16)"
func isDeviceBusy(err error) bool {
	if errors.Is(err, syscall.EBUSY) {
		return true
	}
	var execErr *types.ExecutionError
	if errors.As(err, &execErr) {
		return strings.Contains(strings.ToLower(execErr.Stderr), "resource busy")
	}
	return false
}

// nl80211Client is the part of *nlwifi.Client used for scanning
type nl80211Client interface {
	Interfaces() ([]*nlwifi.Interface, error)
	Scan(ctx context.Context, ifi *nlwifi.Interface) error
	AccessPoints(ifi *nlwifi.Interface) ([]*nlwifi.BSS, error)
	Close() error
}

// NetlinkBackend scans through nl80211 directly, without helper binaries
type NetlinkBackend struct {
	logger  types.Logger
	timeout time.Duration
	dial    func() (nl80211Client, error)
}

// NewNetlinkBackend creates a backend talking to nl80211 over generic netlink
func NewNetlinkBackend(logger types.Logger, timeout time.Duration) *NetlinkBackend {
	return &NetlinkBackend{
		logger:  logger,
		timeout: timeout,
		dial: func() (nl80211Client, error) {
			return nlwifi.New()
		},
	}
}

func (b *NetlinkBackend) Name() string { return BackendNetlink }

func (b *NetlinkBackend) RequiresExternalCalls() bool { return false }

// Scan triggers an nl80211 scan and returns the kernel's BSS list. A scan
// the kernel refuses or aborts still returns the cached BSS list.
func (b *NetlinkBackend) Scan(ctx context.Context, iface string) ([]types.NetworkCell, error) {
	name := types.SanitizeInterfaceName(iface)

	c, err := b.dial()
	if err != nil {
		return nil, fmt.Errorf("failed to open nl80211: %w", err)
	}
	defer c.Close()

	ifis, err := c.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list nl80211 interfaces: %w", err)
	}
	var ifi *nlwifi.Interface
	for _, candidate := range ifis {
		if candidate.Name == name {
			ifi = candidate
			break
		}
	}
	if ifi == nil {
		return nil, fmt.Errorf("%w: %s is not managed by nl80211", ErrUnsupportedInterface, name)
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}
	if err := c.Scan(ctx, ifi); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, ctxErr
		}
		if !errors.Is(err, nlwifi.ErrScanAborted) {
			b.logger.Debug("nl80211 scan failed, using cached results", "interface", name, "error", err)
		}
	}

	bssList, err := c.AccessPoints(ifi)
	if err != nil {
		return nil, fmt.Errorf("failed to get access points: %w", err)
	}

	list := newCellList()
	for _, bss := range bssList {
		if bss == nil || bss.BSSID == nil {
			continue
		}
		list.add(cellFromBSS(bss))
	}
	return list.cells, nil
}

// cellFromBSS converts an nl80211 BSS entry. The BSS record carries neither
// the privacy capability bit nor a signal level, so networks without an RSN
// element are reported as open and signal and quality stay unknown.
func cellFromBSS(bss *nlwifi.BSS) types.NetworkCell {
	cell := newCell()
	cell.BSSID = bss.BSSID.String()
	setESSID(&cell, bss.SSID)
	cell.FrequencyMHz = bss.Frequency
	cell.Frequency = strconv.Itoa(bss.Frequency)
	cell.Channel, _ = ChannelFromMHz(bss.Frequency)
	cell.Mode = "Master"

	cell.Security = securityFromRSN(bss.RSN)
	cell.Encryption = cell.Security != types.SecurityOpen
	return cell
}

func securityFromRSN(rsn nlwifi.RSNInfo) string {
	if !rsn.IsInitialized() {
		return types.SecurityOpen
	}
	for _, akm := range rsn.AKMs {
		switch akm {
		case nlwifi.RSNAkmSAE, nlwifi.RSNAkmFTSAE:
			return types.SecurityWPA3
		}
	}
	return types.SecurityWPA2
}
