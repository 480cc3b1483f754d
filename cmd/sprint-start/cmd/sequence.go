package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/sprint-start/internal/service/client"
	"github.com/oshokin/sprint-start/internal/service/console"
)

var (
	// follow keeps printing status updates.
	follow bool

	consoleCmd = &cobra.Command{
		Use:   "console",
		Short: "Run the starter locally from an interactive prompt.",
		Long: `Runs the start sequence on this machine. Press Enter to start, type "reset"
to abort, "help" for all commands. The countdown and cues are printed as they
happen and played with the configured OS commands.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return console.Run(ctx, &console.Options{ConfigPath: cfgPath})
		},
	}

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start a sequence on the starter-server.",
		Long:  "Starts a sequence on the starter-server. A start while a sequence is running is ignored.",
		Args:  cobra.NoArgs,
		RunE:  runAction(client.ActionStart),
	}

	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Abort the sequence on the starter-server.",
		Args:  cobra.NoArgs,
		RunE:  runAction(client.ActionReset),
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the sequence state of the starter-server.",
		Args:  cobra.NoArgs,
		RunE:  runAction(client.ActionStatus),
	}
)

func runAction(action client.Action) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		return client.Run(ctx, &client.Options{
			ConfigPath:    cfgPath,
			ServerAddress: serverAddress,
			Action:        action,
			Follow:        follow,
			Out:           cmd.OutOrStdout(),
		})
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	startCmd.Flags().BoolVarP(&follow, "follow", "f", false, "print the countdown until the sequence ends")
	statusCmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing status updates")
}
