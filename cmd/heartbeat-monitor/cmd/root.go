package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cofrn/cofrn-monitor/internal/config"
	"github.com/cofrn/cofrn-monitor/internal/service/monitor"
	"github.com/cofrn/cofrn-monitor/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// interval between checks, zero runs once.
	interval time.Duration
	// lambdaMode serves the check as an AWS Lambda handler.
	lambdaMode bool

	// rootCmd represents the base command for the heartbeat check.
	rootCmd = &cobra.Command{
		Use:   "heartbeat-monitor",
		Short: "Detect failed and recovered recorders from their heartbeats.",
		Long: `Reads the heartbeat table, flips recorders whose heartbeat is older than
the threshold to failed, and back when they report again. Every change is
persisted and reported in a single alert.

By default the check runs once. Use --interval to repeat it or --lambda to
serve scheduled CloudWatch events.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &monitor.Options{
				ConfigPath: configPath,
				Interval:   interval,
				Lambda:     lambdaMode,
			}

			return monitor.Run(ctx, options)
		},
	}
)

// Execute runs the heartbeat-monitor CLI and exits with non-zero status on error.
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
	rootCmd.Flags().DurationVarP(&interval, "interval", "i", 0, "repeat the check on this interval")
	rootCmd.Flags().BoolVar(&lambdaMode, "lambda", false, "run as an AWS Lambda handler")
}
