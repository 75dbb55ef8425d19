package types

import (
	"regexp"
	"strings"
)

// Validation regexes - compiled once at package init
var (
	// Interface names: start with letter, alphanumeric + underscore/dash, max 15 chars
	interfaceRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]{0,14}$`)

	// BSSID: 6 hex pairs separated by colons
	bssidRegex = regexp.MustCompile(`^([0-9A-Fa-f]{2}:){5}[0-9A-Fa-f]{2}$`)

	// Everything outside the interface name allow-list
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// SanitizeInterfaceName drops every character that is not a letter, digit,
// underscore or dash. The result is safe to pass as a command argument.
func SanitizeInterfaceName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "")
}

// ValidateInterfaceName validates a network interface name
func ValidateInterfaceName(name string) error {
	if name == "" {
		return &ValidationError{Field: "interface name", Reason: "cannot be empty"}
	}
	if len(name) > 15 {
		return &ValidationError{Field: "interface name", Value: name, Reason: "too long (max 15 characters)"}
	}
	if !interfaceRegex.MatchString(name) {
		return &ValidationError{Field: "interface name", Value: name, Reason: "must start with letter, contain only alphanumeric, underscore, or dash"}
	}
	return nil
}

// ValidateBSSID validates an access point hardware address
func ValidateBSSID(bssid string) error {
	if !bssidRegex.MatchString(bssid) {
		return &ValidationError{Field: "BSSID", Value: bssid, Reason: "expected XX:XX:XX:XX:XX:XX"}
	}
	return nil
}

// ValidateSSID validates a WiFi SSID
func ValidateSSID(ssid string) error {
	if ssid == "" {
		return &ValidationError{Field: "ESSID", Reason: "cannot be empty"}
	}
	if len(ssid) > 32 {
		return &ValidationError{Field: "ESSID", Value: ssid, Reason: "too long (max 32 bytes)"}
	}
	if strings.ContainsAny(ssid, "\x00") {
		return &ValidationError{Field: "ESSID", Reason: "cannot contain null bytes"}
	}
	return nil
}

// ValidatePassphrase validates a WPA passphrase: 8 to 63 printable ASCII characters
func ValidatePassphrase(passphrase string) error {
	if len(passphrase) < 8 {
		return &ValidationError{Field: "passphrase", Reason: "too short (minimum 8 characters)"}
	}
	if len(passphrase) > 63 {
		return &ValidationError{Field: "passphrase", Reason: "too long (maximum 63 characters)"}
	}
	for i := 0; i < len(passphrase); i++ {
		if passphrase[i] < 0x20 || passphrase[i] > 0x7e {
			return &ValidationError{Field: "passphrase", Reason: "must contain only printable ASCII characters"}
		}
	}
	return nil
}
