package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cofrn/cofrn-monitor/internal/config"
	"github.com/cofrn/cofrn-monitor/internal/service/alarms"
	"github.com/cofrn/cofrn-monitor/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// eventFile holds a CloudWatch event to process.
	eventFile string
	// lambdaMode serves events as an AWS Lambda handler.
	lambdaMode bool

	// rootCmd represents the base command for alarm de-duplication.
	rootCmd = &cobra.Command{
		Use:   "alarm-notifier",
		Short: "De-duplicate CloudWatch alarm notifications.",
		Long: `Sends one notification when an alarm fires and one recovery notice once it
has stayed OK for the configured minimum time. Alarm state is kept in the
configured cache store between invocations.

Without --event or --lambda the command only sweeps for due recoveries.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &alarms.Options{
				ConfigPath: configPath,
				Lambda:     lambdaMode,
				EventFile:  eventFile,
			}

			return alarms.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-notifier CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "",
		"path to configuration file (default "+config.DefaultConfigFilename+" when present)")
	rootCmd.Flags().StringVarP(&eventFile, "event", "e", "", "path to a CloudWatch event JSON file")
	rootCmd.Flags().BoolVar(&lambdaMode, "lambda", false, "run as an AWS Lambda handler")
}
