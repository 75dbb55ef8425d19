package main

import (
	"github.com/spf13/cobra"
)

// Run errors are already reported on stderr by App, so commands only
// return them to set the exit status.

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List wired and wireless interfaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return silent(app.RunList())
	},
}

var scanCmd = &cobra.Command{
	Use:       "scan [open]",
	Short:     "Scan for wireless networks (use 'scan open' to show only unprotected)",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"open"},
	RunE: func(cmd *cobra.Command, args []string) error {
		showOpen := len(args) > 0 && args[0] == "open"
		return silent(app.RunScan(cmd.Context(), showOpen))
	},
}

var pskCmd = &cobra.Command{
	Use:   "psk <essid> <passphrase>",
	Short: "Derive the WPA pre-shared key for a network",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return silent(app.RunPSK(args[0], args[1]))
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [interface]",
	Short: "Show link state, address and associated network of an interface",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		return silent(app.RunStatus(cmd.Context(), name))
	},
}

var driverCmd = &cobra.Command{
	Use:   "driver <name>",
	Short: "Check whether wpa_supplicant supports a driver",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return silent(app.RunDriver(args[0]))
	},
}

var capabilityCmd = &cobra.Command{
	Use:   "capability",
	Short: "Show whether the wireless interface uses cfg80211 or wireless extensions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return silent(app.RunCapability(cmd.Context()))
	},
}

var channelCmd = &cobra.Command{
	Use:   "channel <frequency>",
	Short: "Map a frequency such as '2.437 GHz' or '5180' to its channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return silent(app.RunChannel(args[0]))
	},
}

// exitError carries a failure that has already been printed
type exitError struct{ err error }

func (e exitError) Error() string { return "" }

func (e exitError) Unwrap() error { return e.err }

func silent(err error) error {
	if err == nil {
		return nil
	}
	return exitError{err: err}
}
