package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/sprint-start/internal/service/client"
)

var (
	// remote sends configuration commands to the starter-server.
	remote bool
	// historyLimit is the number of runs printed by history.
	historyLimit int

	// Flag values of config set and settings set.
	markDelay   int
	setDelay    float64
	variability string
	voice       string
	starterName string
	theme       string

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Show or change the starter configuration.",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the starter configuration and settings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.ShowConfig(ctx, configOptions(cmd))
		},
	}

	configSetCmd = &cobra.Command{
		Use:   "set",
		Short: "Change the mark delay, set delay or variability.",
		Long: `Changes the starter configuration. Only the given flags are changed.
  --mark         5..30 seconds from "On your marks" to "Set"
  --set          1.25..3.00 seconds (step 0.25) from "Set" to the start signal
  --variability  None, Low, Med or High jitter of the set delay`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			update := new(client.ConfigUpdate)

			if cmd.Flags().Changed("mark") {
				update.MarkDelaySeconds = &markDelay
			}

			if cmd.Flags().Changed("set") {
				update.SetDelaySeconds = &setDelay
			}

			if cmd.Flags().Changed("variability") {
				update.Variability = &variability
			}

			return client.UpdateConfig(ctx, configOptions(cmd), update)
		},
	}

	configDefaultsCmd = &cobra.Command{
		Use:   "defaults",
		Short: "Restore the default starter configuration.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.UpdateConfig(ctx, configOptions(cmd), &client.ConfigUpdate{Defaults: true})
		},
	}

	settingsCmd = &cobra.Command{
		Use:   "settings",
		Short: "Show or change the voice, starter sound and theme.",
	}

	settingsShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the starter configuration and settings.",
		Args:  cobra.NoArgs,
		RunE:  configShowCmd.RunE,
	}

	settingsSetCmd = &cobra.Command{
		Use:   "set",
		Short: "Change the voice, starter sound or theme.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			update := new(client.ConfigUpdate)

			if cmd.Flags().Changed("voice") {
				update.Voice = &voice
			}

			if cmd.Flags().Changed("starter") {
				update.Starter = &starterName
			}

			if cmd.Flags().Changed("theme") {
				update.Theme = &theme
			}

			return client.UpdateConfig(ctx, configOptions(cmd), update)
		},
	}

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Print recorded runs from the local history log.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.ShowHistory(ctx, cfgPath, historyLimit, cmd.OutOrStdout())
		},
	}
)

func configOptions(cmd *cobra.Command) *client.ConfigOptions {
	return &client.ConfigOptions{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
		Remote:        remote,
		Out:           cmd.OutOrStdout(),
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	configCmd.PersistentFlags().BoolVarP(&remote, "remote", "r", false, "use the starter-server instead of the local store")
	settingsCmd.PersistentFlags().BoolVarP(&remote, "remote", "r", false, "use the starter-server instead of the local store")

	configSetCmd.Flags().IntVar(&markDelay, "mark", 0, "seconds from \"On your marks\" to \"Set\" (5..30)")
	configSetCmd.Flags().Float64Var(&setDelay, "set", 0, "seconds from \"Set\" to the start signal (1.25..3.00, step 0.25)")
	configSetCmd.Flags().StringVar(&variability, "variability", "", "jitter of the set delay: None, Low, Med, High")

	settingsSetCmd.Flags().StringVar(&voice, "voice", "", "voice: US Female, GB Male, AU Female")
	settingsSetCmd.Flags().StringVar(&starterName, "starter", "", "start signal: Starter gun, Electronic starter, Whistle, Clap")
	settingsSetCmd.Flags().StringVar(&theme, "theme", "", "color theme")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to print, 0 for all")

	configCmd.AddCommand(configShowCmd, configSetCmd, configDefaultsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
}
