package wifi

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/angelfreak/wnet/pkg/types"
)

// "2.412 GHz", "2.412GHz", "2412 MHz", "2412"
var frequencyRegex = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)\s*([GgMm][Hh][Zz])?$`)

// Band limits in MHz
const (
	band24Low  = 2400
	band24High = 2495
	band5Low   = 5150
	band5High  = 5895

	// Channel 14 sits 12 MHz above channel 13 instead of 5
	channel14Threshold = 2478
)

// ParseFrequencyMHz converts a frequency as printed by the wireless tools to
// MHz. Values without a unit are MHz when >= 1000, GHz otherwise.
func ParseFrequencyMHz(text string) (int, error) {
	s := strings.TrimSpace(text)
	// iwlist appends the channel: "2.437 GHz (Channel 6)"
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}

	m := frequencyRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, &types.ParseError{Input: text, Reason: "not a frequency", Err: types.ErrUnknownChannel}
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, &types.ParseError{Input: text, Reason: "not a frequency", Err: err}
	}

	switch strings.ToLower(m[2]) {
	case "ghz":
		value *= 1000
	case "mhz":
	default:
		if value < 1000 {
			value *= 1000
		}
	}
	return int(math.Round(value)), nil
}

// FrequencyToChannel maps a frequency such as "2.412 GHz" to its channel
// number. Frequencies outside the 2.4 GHz and 5 GHz bands fail with a
// *types.ParseError wrapping types.ErrUnknownChannel.
func FrequencyToChannel(text string) (int, error) {
	mhz, err := ParseFrequencyMHz(text)
	if err != nil {
		return 0, err
	}
	ch, err := ChannelFromMHz(mhz)
	if err != nil {
		return 0, &types.ParseError{Input: text, Reason: "outside supported bands", Err: types.ErrUnknownChannel}
	}
	return ch, nil
}

// ChannelFromMHz maps a center frequency in MHz to a channel number
func ChannelFromMHz(mhz int) (int, error) {
	switch {
	case mhz >= band24Low && mhz <= band24High:
		if mhz >= channel14Threshold {
			return 14, nil
		}
		ch := int(math.Round(float64(mhz-2407) / 5))
		return min(max(ch, 1), 13), nil
	case mhz >= band5Low && mhz <= band5High:
		return int(math.Round(float64(mhz-5000) / 5)), nil
	}
	return 0, &types.ParseError{Input: fmt.Sprintf("%d MHz", mhz), Reason: "outside supported bands", Err: types.ErrUnknownChannel}
}
