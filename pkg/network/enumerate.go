package network

import (
	"fmt"
	"path"
	"slices"

	"github.com/angelfreak/wnet/pkg/system"
	"github.com/go-git/go-billy/v5"
)

// arphrdEther is the ARPHRD_ETHER value of /sys/class/net/<iface>/type
const arphrdEther = "1"

// ListWirelessInterfaces returns the devices under dir that expose wireless
// extensions or a cfg80211 phy
func ListWirelessInterfaces(fs billy.Filesystem, dir string) ([]string, error) {
	return listInterfaces(fs, dir, isWireless)
}

// ListWiredInterfaces returns the Ethernet devices under dir that are not
// wireless
func ListWiredInterfaces(fs billy.Filesystem, dir string) ([]string, error) {
	return listInterfaces(fs, dir, isWired)
}

// IsWireless reports whether the device name under dir is wireless
func IsWireless(fs billy.Filesystem, dir, name string) bool {
	return isWireless(fs, path.Join(dir, name))
}

func isWireless(fs billy.Filesystem, dev string) bool {
	return system.Exists(fs, dev, "wireless") || system.Exists(fs, dev, "phy80211")
}

func isWired(fs billy.Filesystem, dev string) bool {
	if isWireless(fs, dev) {
		return false
	}
	devType, err := system.ReadFirstLine(fs, path.Join(dev, "type"))
	return err == nil && devType == arphrdEther
}

// listInterfaces returns the sorted names of the entries in dir accepted by
// match. Entries that are not directories are skipped. The result is never
// nil when err is nil.
func listInterfaces(fs billy.Filesystem, dir string, match func(billy.Filesystem, string) bool) ([]string, error) {
	entries, err := system.ListDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read device directory %s: %w", dir, err)
	}

	found := make([]string, 0, len(entries))
	for _, name := range entries {
		dev := path.Join(dir, name)
		if !system.IsDir(fs, dev) {
			continue
		}
		if match(fs, dev) {
			found = append(found, name)
		}
	}
	slices.Sort(found)
	return found, nil
}
