//go:build integration

package testutil

import (
	"fmt"
	"os"
	"os/exec"
	"path"
	"testing"
	"time"

	"github.com/angelfreak/wnet/pkg/network"
	"github.com/angelfreak/wnet/pkg/system"
	"github.com/angelfreak/wnet/pkg/types"
)

// Radio is a virtual wireless device created by mac80211_hwsim
type Radio struct {
	PHY       string // e.g. "phy3"
	Interface string // e.g. "wlan1"
}

func hwsimLoaded() bool {
	_, err := os.Stat("/sys/module/mac80211_hwsim")
	return err == nil
}

// LoadHWSim (re)loads mac80211_hwsim with n radios and returns them in
// interface name order. The module is unloaded when the test finishes.
func LoadHWSim(t *testing.T, n int) []*Radio {
	t.Helper()
	SkipIfNotRoot(t)
	SkipIfNoHWSim(t)

	if hwsimLoaded() {
		if err := exec.Command("modprobe", "-r", "mac80211_hwsim").Run(); err != nil {
			t.Logf("failed to unload mac80211_hwsim: %v", err)
		}
		time.Sleep(100 * time.Millisecond)
	}
	if out, err := exec.Command("modprobe", "mac80211_hwsim", fmt.Sprintf("radios=%d", n)).CombinedOutput(); err != nil {
		t.Fatalf("failed to load mac80211_hwsim: %v: %s", err, out)
	}
	t.Cleanup(func() {
		_ = exec.Command("modprobe", "-r", "mac80211_hwsim").Run()
	})

	var radios []*Radio
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		var err error
		radios, err = findHWSimRadios()
		if err == nil && len(radios) >= n {
			return radios[:n]
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("expected %d hwsim radios, found %d", n, len(radios))
	return nil
}

// findHWSimRadios lists wireless interfaces whose device is bound to the
// hwsim driver
func findHWSimRadios() ([]*Radio, error) {
	fs := system.NewHostFS()
	names, err := network.ListWirelessInterfaces(fs, types.SysClassNet)
	if err != nil {
		return nil, err
	}

	var radios []*Radio
	for _, name := range names {
		dir := path.Join(types.SysClassNet, name)
		driver, err := os.Readlink(path.Join(dir, "device", "driver"))
		if err != nil || path.Base(driver) != "mac80211_hwsim" {
			continue
		}
		phy, err := system.ReadFirstLine(fs, path.Join(dir, "phy80211", "name"))
		if err != nil {
			continue
		}
		radios = append(radios, &Radio{PHY: phy, Interface: name})
	}
	return radios, nil
}

// SetMode switches the radio to an iw interface type such as "managed" or
// "__ap", leaving it up
func (r *Radio) SetMode(mode string) error {
	steps := [][]string{
		{"ip", "link", "set", r.Interface, "down"},
		{"iw", "dev", r.Interface, "set", "type", mode},
		{"ip", "link", "set", r.Interface, "up"},
	}
	for _, argv := range steps {
		if out, err := exec.Command(argv[0], argv[1:]...).CombinedOutput(); err != nil {
			return fmt.Errorf("%v: %w: %s", argv, err, out)
		}
	}
	return nil
}

// SetDown takes the radio administratively down
func (r *Radio) SetDown() error {
	return exec.Command("ip", "link", "set", r.Interface, "down").Run()
}
