package wifi

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/angelfreak/wnet/pkg/types"
)

// iw (cfg80211) scan output parsing
var (
	// Block header; only matches at column 0 so "\tBSS Load:" is not a new cell
	iwBSSRegex       = regexp.MustCompile(`^BSS ([0-9a-fA-F]{2}(?::[0-9a-fA-F]{2}){5})`)
	iwSignalRegex    = regexp.MustCompile(`^signal: ([-0-9.]+)`)
	iwFreqRegex      = regexp.MustCompile(`^freq: ([0-9.]+)`)
	iwDSChannelRegex = regexp.MustCompile(`^DS Parameter set: channel ([0-9]+)`)
	iwPrimaryRegex   = regexp.MustCompile(`^\* primary channel: ([0-9]+)`)
)

// IWParser parses `iw dev <iface> scan` and `iw dev <iface> scan dump`
// output, where every network starts with a "BSS xx:xx:xx:xx:xx:xx" line
type IWParser struct{}

func (IWParser) ParseScan(output string) []types.NetworkCell {
	list := newCellList()

	var current *iwCell
	flush := func() {
		if current != nil {
			list.add(current.finish())
		}
		current = nil
	}

	for _, raw := range strings.Split(output, "\n") {
		if m := iwBSSRegex.FindStringSubmatch(raw); m != nil {
			flush()
			current = newIWCell(m[1])
			continue
		}
		if current == nil {
			continue
		}
		current.parseLine(strings.TrimSpace(raw))
	}
	flush()

	return list.cells
}

// iwCell accumulates the lines of one BSS block
type iwCell struct {
	cell     types.NetworkCell
	privacy  bool
	rsn      bool
	wpa      bool
	sae      bool
	section  string
	seenSSID bool
}

func newIWCell(bssid string) *iwCell {
	c := &iwCell{cell: newCell()}
	c.cell.BSSID = strings.ToLower(bssid)
	return c
}

func (c *iwCell) parseLine(line string) {
	// "RSN:\t * Version: 1" opens a section whose items are "* ..." lines
	switch {
	case strings.HasPrefix(line, "RSN:"):
		c.rsn = true
		c.section = "rsn"
		return
	case strings.HasPrefix(line, "WPA:"):
		c.wpa = true
		c.section = "wpa"
		return
	case strings.HasPrefix(line, "*"):
		if c.section == "rsn" && strings.HasPrefix(line, "* Authentication suites:") && strings.Contains(line, "SAE") {
			c.sae = true
		}
		if m := iwPrimaryRegex.FindStringSubmatch(line); m != nil && c.cell.Channel == 0 {
			c.cell.Channel, _ = strconv.Atoi(m[1])
		}
		return
	}
	c.section = ""

	switch {
	case strings.HasPrefix(line, "SSID:"):
		// only the first SSID line belongs to the BSS itself
		if !c.seenSSID {
			c.seenSSID = true
			setESSID(&c.cell, strings.TrimSpace(strings.TrimPrefix(line, "SSID:")))
		}
	case strings.HasPrefix(line, "freq:"):
		if m := iwFreqRegex.FindStringSubmatch(line); m != nil {
			c.cell.Frequency = m[1]
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				c.cell.FrequencyMHz = int(math.Round(f))
			}
		}
	case strings.HasPrefix(line, "signal:"):
		if m := iwSignalRegex.FindStringSubmatch(line); m != nil {
			if f, err := strconv.ParseFloat(m[1], 64); err == nil {
				c.cell.Signal = int(math.Round(f))
				c.cell.Quality = qualityFromDBm(c.cell.Signal)
			}
		}
	case strings.HasPrefix(line, "capability:"):
		fields := strings.Fields(line)
		for _, f := range fields {
			switch f {
			case "Privacy":
				c.privacy = true
			case "ESS":
				c.cell.Mode = "Master"
			case "IBSS":
				c.cell.Mode = "Ad-Hoc"
			}
		}
	case strings.HasPrefix(line, "DS Parameter set:"):
		if m := iwDSChannelRegex.FindStringSubmatch(line); m != nil {
			c.cell.Channel, _ = strconv.Atoi(m[1])
		}
	case strings.HasPrefix(line, "Supported rates:"), strings.HasPrefix(line, "Extended supported rates:"):
		_, rates, _ := strings.Cut(line, ":")
		for _, r := range strings.Fields(rates) {
			c.cell.BitRates = append(c.cell.BitRates, strings.TrimSuffix(r, "*")+" Mb/s")
		}
	}
}

func (c *iwCell) finish() types.NetworkCell {
	cell := c.cell
	if !c.seenSSID {
		setESSID(&cell, "")
	}
	if cell.Channel == 0 && cell.FrequencyMHz != 0 {
		cell.Channel, _ = ChannelFromMHz(cell.FrequencyMHz)
	}

	switch {
	case c.rsn && c.sae:
		cell.Security = types.SecurityWPA3
	case c.rsn:
		cell.Security = types.SecurityWPA2
	case c.wpa:
		cell.Security = types.SecurityWPA
	case c.privacy:
		cell.Security = types.SecurityWEP
	default:
		cell.Security = types.SecurityOpen
	}
	cell.Encryption = c.privacy || cell.Security != types.SecurityOpen
	return cell
}
