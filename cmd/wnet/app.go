package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/angelfreak/wnet/pkg/network"
	"github.com/angelfreak/wnet/pkg/types"
	"github.com/angelfreak/wnet/pkg/wifi"
	"github.com/go-git/go-billy/v5"
)

var (
	errNoWirelessInterface = errors.New("no wireless interface found")
	errNoInterface         = errors.New("no interface given (use --iface or an argument)")
	errUnsupportedDriver   = errors.New("driver not supported by wpa_supplicant")
)

// App encapsulates all dependencies for testable CLI operations.
// Each command has a Run method writing to Stdout and Stderr.
type App struct {
	Logger    types.Logger         // Structured logging
	Executor  types.SystemExecutor // External command execution
	ConfigMgr types.ConfigManager  // YAML configuration
	FS        billy.Filesystem     // Filesystem holding the sysfs tree

	// Runtime configuration
	Interface string // Interface selected with --iface
	Debug     bool   // Enable debug output

	// Output streams for testability
	Stdout io.Writer
	Stderr io.Writer
}

// printf writes formatted output to stdout
func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.Stdout, format, args...)
}

// progress prints a progress message to stdout only when not in debug mode
func (a *App) progress(format string, args ...interface{}) {
	if !a.Debug {
		fmt.Fprintf(a.Stdout, format, args...)
	}
}

// errorf writes formatted output to stderr
func (a *App) errorf(format string, args ...interface{}) {
	fmt.Fprintf(a.Stderr, format, args...)
}

// fail logs err, reports it on stderr and returns it
func (a *App) fail(msg string, err error) error {
	a.Logger.Error(msg, "error", err)
	a.errorf("Error: %v\n", err)
	return err
}

func (a *App) config() *types.Config {
	if a.ConfigMgr != nil {
		if cfg := a.ConfigMgr.GetConfig(); cfg != nil {
			return cfg
		}
	}
	return &types.Config{}
}

func (a *App) sysfs() string {
	if dir := a.config().Sysfs; dir != "" {
		return dir
	}
	return types.SysClassNet
}

func (a *App) ignored(name string) bool {
	return a.ConfigMgr != nil && a.ConfigMgr.IsIgnored(name)
}

func (a *App) newInterface(name string) *network.Interface {
	iface := network.NewInterface(a.Executor, a.Logger, a.FS, name)
	iface.SetSysfsPath(a.sysfs())
	iface.SetDebugMode(a.Debug)
	return iface
}

func (a *App) newWireless(name string) *wifi.WirelessInterface {
	w := wifi.NewWirelessInterface(a.Executor, a.Logger, a.FS, name, wifi.OptionsFromConfig(a.config()))
	w.SetSysfsPath(a.sysfs())
	w.SetDebugMode(a.Debug)
	return w
}

// wirelessInterface picks --iface, then wireless.interface from the config,
// then the first wireless device that is not ignored
func (a *App) wirelessInterface() (*wifi.WirelessInterface, error) {
	if a.Interface != "" {
		return a.newWireless(a.Interface), nil
	}
	if name := a.config().Wireless.Interface; name != "" {
		return a.newWireless(name), nil
	}

	names, err := network.ListWirelessInterfaces(a.FS, a.sysfs())
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if !a.ignored(name) {
			a.Logger.Debug("Using first wireless interface", "interface", name)
			return a.newWireless(name), nil
		}
	}
	return nil, errNoWirelessInterface
}

// RunList prints every wired and wireless interface with its state
func (a *App) RunList() error {
	wired, err := network.ListWiredInterfaces(a.FS, a.sysfs())
	if err != nil {
		return a.fail("Failed to list wired interfaces", err)
	}
	wireless, err := network.ListWirelessInterfaces(a.FS, a.sysfs())
	if err != nil {
		return a.fail("Failed to list wireless interfaces", err)
	}

	shown := 0
	for _, group := range []struct {
		kind  string
		names []string
	}{{"wired", wired}, {"wireless", wireless}} {
		for _, name := range group.names {
			if a.ignored(name) {
				continue
			}
			a.printf("%-16s %-9s %s\n", name, group.kind, upDown(a.newInterface(name).IsUp()))
			shown++
		}
	}
	if shown == 0 {
		a.printf("No interfaces found\n")
	}
	return nil
}

// RunScan scans on the selected wireless interface. With showOpen only
// unencrypted networks are printed.
func (a *App) RunScan(ctx context.Context, showOpen bool) error {
	w, err := a.wirelessInterface()
	if err != nil {
		return a.fail("Failed to select wireless interface", err)
	}

	a.progress("Scanning on %s...\n", w.Name())
	cells, err := w.GetNetworks(ctx)
	if err != nil {
		return a.fail("Failed to scan networks", err)
	}

	shown := make([]types.NetworkCell, 0, len(cells))
	for _, c := range cells {
		if showOpen && c.Encryption {
			continue
		}
		shown = append(shown, c)
	}
	a.progress("Found %d networks\n", len(shown))

	for _, c := range shown {
		quality := "?"
		if c.Quality >= 0 {
			quality = fmt.Sprintf("%d%%", c.Quality)
		}
		a.printf("%-32s %s  ch %3d  %4s  %s\n", c.ESSID, c.BSSID, c.Channel, quality, c.Security)
	}
	return nil
}

// RunPSK prints the WPA pre-shared key for essid and passphrase
func (a *App) RunPSK(essid, passphrase string) error {
	psk, err := wifi.GeneratePSK(essid, passphrase)
	if err != nil {
		return a.fail("Failed to generate PSK", err)
	}
	a.printf("%s\n", psk)
	return nil
}

// RunStatus prints the state of one interface. Wireless interfaces also
// report the network they are associated with.
func (a *App) RunStatus(ctx context.Context, name string) error {
	if name == "" {
		name = a.Interface
	}
	if name == "" {
		return a.fail("No interface selected", errNoInterface)
	}

	iface := a.newInterface(name)
	a.printf("Interface: %s\n", iface.Name())
	a.printf("State:     %s\n", upDown(iface.IsUp()))
	a.printf("Operstate: %s\n", iface.GetOperState())
	a.printf("Carrier:   %s\n", yesNo(iface.IsPluggedIn()))

	if ip, err := iface.GetIP(); err == nil && ip != nil {
		a.printf("IP:        %s\n", ip)
	} else if err != nil {
		a.Logger.Debug("No IP address", "interface", iface.Name(), "error", err)
	}

	if !network.IsWireless(a.FS, a.sysfs(), iface.Name()) {
		return nil
	}
	link, err := a.newWireless(iface.Name()).CurrentNetwork(ctx)
	if err != nil {
		a.Logger.Warn("Failed to get link status", "interface", iface.Name(), "error", err)
		return nil
	}
	if !link.Connected {
		a.printf("Network:   not associated\n")
		return nil
	}
	a.printf("Network:   %s (%s) channel %d\n", link.ESSID, link.BSSID, link.Channel)
	return nil
}

// RunDriver checks a wpa_supplicant driver name
func (a *App) RunDriver(name string) error {
	if !wifi.NewDetector(a.Executor, a.Logger).IsValidDriver(name) {
		a.errorf("%s: %v\n", name, errUnsupportedDriver)
		return errUnsupportedDriver
	}
	a.printf("%s: supported\n", name)
	return nil
}

// RunCapability prints which wireless API the selected interface supports
func (a *App) RunCapability(ctx context.Context) error {
	w, err := a.wirelessInterface()
	if err != nil {
		return a.fail("Failed to select wireless interface", err)
	}
	c, err := w.Capability(ctx)
	if err != nil {
		return a.fail("Failed to detect capability", err)
	}
	a.printf("%s: %s\n", w.Name(), c)
	return nil
}

// RunChannel prints the channel for a frequency such as "2.437 GHz"
func (a *App) RunChannel(frequency string) error {
	ch, err := wifi.FrequencyToChannel(frequency)
	if err != nil {
		return a.fail("Failed to map frequency", err)
	}
	a.printf("%d\n", ch)
	return nil
}

func upDown(up bool) string {
	if up {
		return "up"
	}
	return "down"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
