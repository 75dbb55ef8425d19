//go:build integration

// Package testutil provides helpers for integration tests that need real
// or simulated wireless hardware.
package testutil

import (
	"os"
	"os/exec"
	"testing"

	"golang.org/x/sys/unix"
)

// SkipIfNotRoot skips the test unless it runs with euid 0.
// Scanning and changing interface modes need CAP_NET_ADMIN.
func SkipIfNotRoot(t *testing.T) {
	t.Helper()
	if unix.Geteuid() != 0 {
		t.Skip("skipping: test requires root privileges")
	}
}

// SkipIfNoHWSim skips the test if the mac80211_hwsim module cannot be loaded.
func SkipIfNoHWSim(t *testing.T) {
	t.Helper()
	if hwsimLoaded() {
		return
	}
	if err := exec.Command("modprobe", "mac80211_hwsim", "radios=0").Run(); err != nil {
		t.Skip("skipping: mac80211_hwsim kernel module not available")
	}
}

// SkipIfMissingCmd skips the test if any of cmds is not in PATH.
func SkipIfMissingCmd(t *testing.T, cmds ...string) {
	t.Helper()
	for _, cmd := range cmds {
		if _, err := exec.LookPath(cmd); err != nil {
			t.Skipf("skipping: required command %q not found in PATH", cmd)
		}
	}
}

// SkipIfNoSysfs skips the test when /sys/class/net is not mounted,
// as in some minimal containers.
func SkipIfNoSysfs(t *testing.T) {
	t.Helper()
	if _, err := os.Stat("/sys/class/net"); err != nil {
		t.Skip("skipping: /sys/class/net not available")
	}
}
