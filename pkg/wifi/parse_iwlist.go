package wifi

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/angelfreak/wnet/pkg/types"
)

// iwlist (wireless extensions) scan output parsing
var (
	iwlistCellRegex        = regexp.MustCompile(`(?m)^\s*Cell [0-9]+ - `)
	iwlistAddressRegex     = regexp.MustCompile(`Address: ?([0-9A-Fa-f]{2}(?::[0-9A-Fa-f]{2}){5})`)
	iwlistESSIDRegex       = regexp.MustCompile(`ESSID:"(.*)"`)
	iwlistChannelRegex     = regexp.MustCompile(`(?m)^\s*Channel:? ?([0-9]+)`)
	iwlistFrequencyRegex   = regexp.MustCompile(`Frequency[:=] ?([0-9.]+ ?[GM]Hz)`)
	iwlistModeRegex        = regexp.MustCompile(`Mode:(\S+)`)
	iwlistQualityRegex     = regexp.MustCompile(`Quality[:=] ?([0-9]+)\s*/?\s*([0-9]*)`)
	iwlistSignalDBmRegex   = regexp.MustCompile(`Signal level[:=] ?(-?[0-9]+) ?dBm`)
	iwlistSignalRatioRegex = regexp.MustCompile(`Signal level[:=] ?([0-9]+)/([0-9]+)`)
	iwlistEncryptionRegex  = regexp.MustCompile(`Encryption key:(on|off)`)
	iwlistRateRegex        = regexp.MustCompile(`[0-9.]+ [GM]b/s`)
	iwlistRateLineRegex    = regexp.MustCompile(`^[0-9.]+ [GM]b/s`)
)

// IWListParser parses `iwlist <iface> scan` output, where every network is a
// "Cell NN - Address: ..." block
type IWListParser struct{}

func (IWListParser) ParseScan(output string) []types.NetworkCell {
	list := newCellList()

	starts := iwlistCellRegex.FindAllStringIndex(output, -1)
	for n, loc := range starts {
		end := len(output)
		if n+1 < len(starts) {
			end = starts[n+1][0]
		}
		if cell, ok := parseIWListCell(output[loc[1]:end]); ok {
			list.add(cell)
		}
	}
	return list.cells
}

func parseIWListCell(block string) (types.NetworkCell, bool) {
	cell := newCell()

	m := iwlistAddressRegex.FindStringSubmatch(block)
	if m == nil {
		return cell, false
	}
	cell.BSSID = strings.ToLower(m[1])

	if m := iwlistESSIDRegex.FindStringSubmatch(block); m != nil {
		setESSID(&cell, m[1])
	} else {
		setESSID(&cell, "")
	}

	if m := iwlistFrequencyRegex.FindStringSubmatch(block); m != nil {
		cell.Frequency = m[1]
		if mhz, err := ParseFrequencyMHz(m[1]); err == nil {
			cell.FrequencyMHz = mhz
		}
	}
	if m := iwlistChannelRegex.FindStringSubmatch(block); m != nil {
		cell.Channel, _ = strconv.Atoi(m[1])
	} else if cell.Frequency != "" {
		// out-of-band frequencies leave the channel unknown
		cell.Channel, _ = FrequencyToChannel(cell.Frequency)
	}

	if m := iwlistModeRegex.FindStringSubmatch(block); m != nil {
		cell.Mode = m[1]
	}

	if m := iwlistSignalDBmRegex.FindStringSubmatch(block); m != nil {
		cell.Signal, _ = strconv.Atoi(m[1])
	}
	if m := iwlistQualityRegex.FindStringSubmatch(block); m != nil {
		value, _ := strconv.Atoi(m[1])
		maximum, _ := strconv.Atoi(m[2])
		cell.Quality = scaleQuality(value, maximum)
	} else if m := iwlistSignalRatioRegex.FindStringSubmatch(block); m != nil {
		value, _ := strconv.Atoi(m[1])
		maximum, _ := strconv.Atoi(m[2])
		cell.Quality = scaleQuality(value, maximum)
	} else if cell.Signal != 0 {
		cell.Quality = qualityFromDBm(cell.Signal)
	}

	if m := iwlistEncryptionRegex.FindStringSubmatch(block); m != nil && m[1] == "on" {
		cell.Encryption = true
		cell.Security = iwlistSecurity(block)
	}

	cell.BitRates = parseIWListRates(block)
	return cell, true
}

// iwlistSecurity classifies an encrypted cell from its "IE:" and "Extra:"
// lines only, so an ESSID such as "WPA2-Upgrade" cannot change the result
func iwlistSecurity(block string) string {
	security := types.SecurityWEP
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "IE:"):
			if strings.Contains(line, "WPA2") {
				return types.SecurityWPA2
			}
			if strings.Contains(line, "WPA Version 1") {
				security = types.SecurityWPA
			}
		case strings.HasPrefix(line, "Extra:"):
			if strings.Contains(line, "rsn_ie") {
				return types.SecurityWPA2
			}
			if strings.Contains(line, "wpa_ie") {
				security = types.SecurityWPA
			}
		}
	}
	return security
}

// parseIWListRates collects "Bit Rates:" values, which iwlist wraps onto
// continuation lines and may repeat
func parseIWListRates(block string) []string {
	var rates []string
	inRates := false
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "Bit Rates:"); ok {
			inRates = true
			line = rest
		} else if !inRates || !iwlistRateLineRegex.MatchString(line) {
			inRates = false
			continue
		}
		rates = append(rates, iwlistRateRegex.FindAllString(line, -1)...)
	}
	return rates
}
