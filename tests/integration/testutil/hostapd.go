//go:build integration

package testutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// APConfig describes a hostapd access point
type APConfig struct {
	SSID       string
	Passphrase string // empty for an open network
	Channel    int    // 2.4 GHz channel, default 1
	Hidden     bool
	SAE        bool // WPA3-Personal instead of WPA2-PSK
}

// AP is a running hostapd instance
type AP struct {
	Config APConfig
	Radio  *Radio
	cmd    *exec.Cmd
	done   chan struct{}
}

// StartAP runs hostapd on radio until the test finishes
func StartAP(t *testing.T, radio *Radio, cfg APConfig) *AP {
	t.Helper()
	SkipIfNotRoot(t)
	SkipIfMissingCmd(t, "hostapd")

	if cfg.Channel == 0 {
		cfg.Channel = 1
	}
	if err := radio.SetMode("__ap"); err != nil {
		t.Fatalf("failed to switch %s to AP mode: %v", radio.Interface, err)
	}

	conf := filepath.Join(t.TempDir(), "hostapd.conf")
	if err := os.WriteFile(conf, []byte(hostapdConfig(radio.Interface, cfg)), 0600); err != nil {
		t.Fatalf("failed to write hostapd config: %v", err)
	}

	ap := &AP{Config: cfg, Radio: radio, done: make(chan struct{})}
	ap.cmd = exec.Command("hostapd", conf)
	if err := ap.cmd.Start(); err != nil {
		t.Fatalf("failed to start hostapd: %v", err)
	}
	go func() {
		_ = ap.cmd.Wait()
		close(ap.done)
	}()
	t.Cleanup(ap.Stop)

	// beacons start after hostapd finishes setting up the BSS
	time.Sleep(2 * time.Second)
	if !ap.IsRunning() {
		t.Fatalf("hostapd exited on %s", radio.Interface)
	}
	t.Logf("Started AP %q on %s channel %d", cfg.SSID, radio.Interface, cfg.Channel)
	return ap
}

func hostapdConfig(iface string, cfg APConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "interface=%s\ndriver=nl80211\nssid=%s\nhw_mode=g\nchannel=%d\n", iface, cfg.SSID, cfg.Channel)
	if cfg.Hidden {
		b.WriteString("ignore_broadcast_ssid=1\n")
	}
	switch {
	case cfg.Passphrase == "":
	case cfg.SAE:
		fmt.Fprintf(&b, "wpa=2\nwpa_key_mgmt=SAE\nrsn_pairwise=CCMP\nieee80211w=2\nsae_password=%s\n", cfg.Passphrase)
	default:
		fmt.Fprintf(&b, "wpa=2\nwpa_key_mgmt=WPA-PSK\nrsn_pairwise=CCMP\nwpa_passphrase=%s\n", cfg.Passphrase)
	}
	return b.String()
}

// IsRunning reports whether hostapd has not exited
func (ap *AP) IsRunning() bool {
	select {
	case <-ap.done:
		return false
	default:
		return true
	}
}

// BSSID returns the AP's hardware address as reported by iw
func (ap *AP) BSSID() (string, error) {
	out, err := exec.Command("iw", "dev", ap.Radio.Interface, "info").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to get AP info: %w", err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == "addr" {
			return fields[1], nil
		}
	}
	return "", fmt.Errorf("no addr in iw output for %s", ap.Radio.Interface)
}

// Stop kills hostapd and returns the radio to managed mode
func (ap *AP) Stop() {
	if ap.IsRunning() {
		_ = ap.cmd.Process.Kill()
		<-ap.done
	}
	_ = ap.Radio.SetMode("managed")
}
