package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/angelfreak/wnet/pkg/config"
	"github.com/angelfreak/wnet/pkg/system"
	"github.com/angelfreak/wnet/pkg/telemetry"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	iface       string
	debug       bool
	metricsFile string

	app *App
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wnet",
		Short: "Query wired and wireless network interfaces",
		Long: `wnet lists network interfaces, scans for wireless networks and derives
WPA keys without touching the running network configuration.

Examples:
  wnet list                         List wired and wireless interfaces
  wnet scan                         Scan on the first wireless interface
  wnet --iface wlp2s0 scan open     Show only open networks seen by wlp2s0
  wnet psk "Network 1" passphrase   Print the WPA pre-shared key
  wnet status eth0                  Show link state and address of eth0
  wnet channel "2.437 GHz"          Map a frequency to its channel`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeApp(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Select configuration file ('-' for none)")
	rootCmd.PersistentFlags().StringVar(&iface, "iface", "", "Select networking interface")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-textfile", "", "Write command and scan metrics to this file")

	rootCmd.AddCommand(
		listCmd,
		scanCmd,
		pskCmd,
		statusCmd,
		driverCmd,
		capabilityCmd,
		channelCmd,
		completionCmd,
	)
	return rootCmd
}

func initializeApp(cmd *cobra.Command) error {
	logger := system.NewLogger(debug)
	cfgManager := config.NewManager(logger)

	cfg, err := cfgManager.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Common.Debug && !debug {
		debug = true
		logger = system.NewLogger(true)
	}
	logger.Debug("Config loaded", "path", cfgManager.ConfigPath(), "backend", cfg.Wireless.Backend)

	app = &App{
		Logger:    logger,
		Executor:  system.NewExecutor(logger, debug),
		ConfigMgr: cfgManager,
		FS:        system.NewHostFS(),
		Interface: iface,
		Debug:     debug,
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
	}
	return nil
}

// execute runs rootCmd and then writes --metrics-textfile, also when the
// command failed
func execute(ctx context.Context, rootCmd *cobra.Command) error {
	err := rootCmd.ExecuteContext(ctx)
	if metricsFile == "" {
		return err
	}
	if werr := telemetry.WriteTextfile(metricsFile); werr != nil {
		if err == nil {
			return werr
		}
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", werr)
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, newRootCmd()); err != nil {
		var reported exitError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
