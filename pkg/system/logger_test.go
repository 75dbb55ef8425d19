package system

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	t.Run("debug disabled", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithOutput(&buf, false)

		logger.Debug("Parsing scan results", "interface", "wlan0")
		logger.Info("Scanning for WiFi networks", "interface", "wlan0")

		out := buf.String()
		assert.NotContains(t, out, "Parsing scan results")
		assert.Contains(t, out, "Scanning for WiFi networks")
		assert.Contains(t, out, "interface=wlan0")
	})

	t.Run("debug enabled", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithOutput(&buf, true)

		logger.Debug("Parsing scan results", "cells", 3)
		assert.Contains(t, buf.String(), "cells=3")
	})

	t.Run("levels", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithOutput(&buf, false)

		logger.Warn("Failed to bring interface up", "error", "busy")
		logger.Error("Scan failed")

		out := buf.String()
		assert.Contains(t, out, "level=warning")
		assert.Contains(t, out, "level=error")
	})
}

func TestToFields(t *testing.T) {
	fields := toFields([]interface{}{"interface", "wlan0", 7, "seven", "dangling"})
	assert.Equal(t, "wlan0", fields["interface"])
	assert.Equal(t, "seven", fields["7"])
	assert.Equal(t, "dangling", fields["!BADKEY"])
}
