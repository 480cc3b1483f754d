package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/sprint-start/internal/config"
	"github.com/oshokin/sprint-start/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides server_addr from the configuration file.
	serverAddress string

	// rootCmd is the base command; the work is done by its subcommands.
	rootCmd = &cobra.Command{
		Use:   "sprint-start",
		Short: "Race-start trainer: run the starter locally or control a starter-server.",
		Long: `Plays the race-start sequence "On your marks", "Set" and the start signal,
with a randomized delay before the signal, for reaction training.

Use "console" to run the starter on this machine from an interactive prompt,
or start/reset/status to control a running starter-server.
The starter configuration (mark delay, set delay, variability) and the voice,
starter sound and theme settings are managed with "config" and "settings".`,
		SilenceUsage: true,
	}
)

// Execute runs the sprint-start CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "", "starter-server address (default from config)")

	rootCmd.AddCommand(consoleCmd, startCmd, resetCmd, statusCmd, configCmd, settingsCmd, historyCmd)
}
