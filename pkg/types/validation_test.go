package types

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInterfaceName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "wlan0", "wlan0"},
		{"dash and underscore kept", "wlp3s0-mon_1", "wlp3s0-mon_1"},
		{"shell injection", "blahblah; uptime > /tmp/blah | cat", "blahblahuptimetmpblahcat"},
		{"command substitution", "eth0$(reboot)", "eth0reboot"},
		{"backticks and quotes", "`id`'\"eth1", "ideth1"},
		{"newline", "eth0\nrm", "eth0rm"},
		{"dots and colons", "eth0.100:1", "eth01001"},
		{"only unsafe", ";|&><", ""},
		{"empty", "", ""},
		{"non-ascii", "wlän0", "wln0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeInterfaceName(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, SanitizeInterfaceName(got), "sanitizing twice must be a no-op")
		})
	}
}

func TestSanitizeInterfaceNameAllowList(t *testing.T) {
	var all strings.Builder
	for c := 0; c < 256; c++ {
		all.WriteByte(byte(c))
	}
	out := SanitizeInterfaceName(all.String())
	for _, r := range out {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
		assert.Truef(t, ok, "unexpected character %q survived sanitizing", r)
	}
	assert.Len(t, out, 26+26+10+2)
}

func TestValidateInterfaceName(t *testing.T) {
	tests := []struct {
		name    string
		iface   string
		wantErr bool
	}{
		{"valid eth0", "eth0", false},
		{"valid wlan0", "wlan0", false},
		{"valid enp0s3", "enp0s3", false},
		{"valid with underscore", "eth_0", false},
		{"valid with dash", "eth-0", false},
		{"valid max length", "abcdefghijklmno", false},
		{"empty", "", true},
		{"too long", "abcdefghijklmnop", true},
		{"starts with number", "0eth", true},
		{"contains space", "eth 0", true},
		{"contains slash", "eth/0", true},
		{"contains semicolon", "eth;rm -rf", true},
		{"path traversal attempt", "../../../etc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterfaceName(tt.iface)
			if tt.wantErr {
				var vErr *ValidationError
				assert.True(t, errors.As(err, &vErr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateBSSID(t *testing.T) {
	tests := []struct {
		name    string
		bssid   string
		wantErr bool
	}{
		{"valid lowercase", "aa:bb:cc:dd:ee:ff", false},
		{"valid uppercase", "AA:BB:CC:DD:EE:FF", false},
		{"too short", "aa:bb:cc:dd:ee", true},
		{"wrong separator", "aa-bb-cc-dd-ee-ff", true},
		{"invalid hex", "gg:bb:cc:dd:ee:ff", true},
		{"injection attempt", "aa:bb:cc:dd:ee:ff;rm", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBSSID(tt.bssid)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSSID(t *testing.T) {
	tests := []struct {
		name    string
		ssid    string
		wantErr bool
	}{
		{"valid simple", "MyNetwork", false},
		{"valid with spaces", "Network 1", false},
		{"valid with special chars", "My-Network_123!", false},
		{"valid max length", "12345678901234567890123456789012", false},
		{"empty", "", true},
		{"too long", "123456789012345678901234567890123", true},
		{"contains null", "My\x00Network", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSSID(tt.ssid)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassphrase(t *testing.T) {
	tests := []struct {
		name       string
		passphrase string
		wantErr    bool
	}{
		{"valid 8 chars", "password", false},
		{"valid 63 chars", strings.Repeat("a", 63), false},
		{"valid with spaces", "a random passphrase", false},
		{"empty", "", true},
		{"too short", "pass", true},
		{"too long 64 chars", strings.Repeat("a", 64), true},
		{"control character", "password\t1", true},
		{"non-ascii", "pässwörd123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassphrase(tt.passphrase)
			if tt.wantErr {
				var vErr *ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, "passphrase", vErr.Field)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTimeoutDefaults(t *testing.T) {
	var tc TimeoutConfig
	assert.Equal(t, "30s", tc.GetCommandTimeout().String())
	assert.Equal(t, "15s", tc.GetScanTimeout().String())

	tc = TimeoutConfig{Command: 5, Scan: 3}
	assert.Equal(t, "5s", tc.GetCommandTimeout().String())
	assert.Equal(t, "3s", tc.GetScanTimeout().String())
}
