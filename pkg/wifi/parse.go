package wifi

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/angelfreak/wnet/pkg/types"
)

// SSID hex escape decoding
var hexEscapeRegex = regexp.MustCompile(`\\x([0-9a-fA-F]{2})`)

// Parser turns the raw output of one scan into network cells, in the order
// the tool printed them. Text without any recognizable cell yields an empty
// slice.
type Parser interface {
	ParseScan(output string) []types.NetworkCell
}

// ParserFor returns the parser for the scan tool used with capability c
func ParserFor(c Capability) (Parser, error) {
	switch c {
	case CapabilityCfg80211:
		return IWParser{}, nil
	case CapabilityWext:
		return IWListParser{}, nil
	}
	return nil, fmt.Errorf("no scan parser for %s interfaces", c)
}

// cellList collects cells in emission order, keeping one cell per BSSID
type cellList struct {
	cells []types.NetworkCell
	index map[string]int
}

func newCellList() *cellList {
	return &cellList{
		cells: []types.NetworkCell{},
		index: make(map[string]int),
	}
}

// add appends c unless its BSSID was already seen. A repeated BSSID only
// replaces the earlier cell when it reveals an ESSID the earlier one hid.
func (l *cellList) add(c types.NetworkCell) {
	if c.BSSID == "" {
		return
	}
	key := strings.ToLower(c.BSSID)
	if i, ok := l.index[key]; ok {
		if l.cells[i].Hidden && !c.Hidden {
			l.cells[i] = c
		}
		return
	}
	l.index[key] = len(l.cells)
	l.cells = append(l.cells, c)
}

// decodeSSID expands the \xNN escapes both iw and iwlist print for
// non-printable bytes
func decodeSSID(ssid string) string {
	return hexEscapeRegex.ReplaceAllStringFunc(ssid, func(match string) string {
		b, err := strconv.ParseUint(match[2:], 16, 8)
		if err != nil {
			return match
		}
		return string([]byte{byte(b)})
	})
}

// setESSID stores the decoded ESSID, marking cells that broadcast an empty
// or zeroed name as hidden
func setESSID(c *types.NetworkCell, raw string) {
	essid := decodeSSID(raw)
	if strings.Trim(essid, "\x00") == "" || essid == types.HiddenESSID {
		c.ESSID = types.HiddenESSID
		c.Hidden = true
		return
	}
	c.ESSID = essid
	c.Hidden = false
}

// qualityFromDBm maps -100 dBm..-50 dBm onto 0..100
func qualityFromDBm(dbm int) int {
	return min(max(2*(dbm+100), 0), 100)
}

// scaleQuality converts value/maximum to a 0..100 percentage
func scaleQuality(value, maximum int) int {
	if maximum <= 0 || maximum == 100 {
		return min(max(value, 0), 100)
	}
	return min(max(value*100/maximum, 0), 100)
}

// newCell returns a cell with the "not reported" defaults
func newCell() types.NetworkCell {
	return types.NetworkCell{
		Quality:  -1,
		Security: types.SecurityOpen,
	}
}
