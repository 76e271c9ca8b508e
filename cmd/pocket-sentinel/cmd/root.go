package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/pocket-sentinel/internal/config"
	"github.com/oshokin/pocket-sentinel/internal/service/sentinel"
	"github.com/oshokin/pocket-sentinel/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where guard state is persisted.
	stateFile string
	// simulate forces scriptable in-memory hardware monitors.
	simulate bool

	// rootCmd represents the base command for running the sentinel daemon.
	rootCmd = &cobra.Command{
		Use:   "pocket-sentinel",
		Short: "Run the anti-theft sentinel daemon.",
		Long: `Starts the sentinel daemon that guards a portable device against theft.

The daemon watches configured hardware signals (external power, wireless peers,
wired audio routes, proximity) and raises a full-volume alarm when a watched
signal is lost and stays lost through its debounce window. Protection state is
persisted so an unplanned restart re-arms automatically.

Control commands (arm, disarm, dismiss, status) reach the daemon over the MQTT
broker configured in the settings file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return sentinel.Run(ctx, &sentinel.Options{
				ConfigPath: configPath,
				StateFile:  stateFile,
				Simulate:   simulate,
			})
		},
	}
)

// Execute runs the pocket-sentinel CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(armCmd, disarmCmd, dismissCmd, statusCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		StringVarP(&stateFile, "state-file", "s", "", "path to persist guard state (defaults to config value)")
	rootCmd.Flags().BoolVar(&simulate, "simulate", false, "use simulated hardware monitors")
}
