package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cofrn/cofrn-monitor/internal/config"
	"github.com/cofrn/cofrn-monitor/internal/service/api"
	"github.com/cofrn/cofrn-monitor/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// httpListen overrides the HTTP listen address.
	httpListen string
	// grpcListen overrides the gRPC health listen address.
	grpcListen string

	// rootCmd represents the base command for running the API server.
	rootCmd = &cobra.Command{
		Use:   "cofrn-api",
		Short: "Serve heartbeats, alarm events and recorder health.",
		Long: `Starts the HTTP API and the gRPC health service.

Recorders report heartbeats over HTTP, alarm state changes can be posted
for de-duplication, and the heartbeat check and the recovery sweep run on
their configured intervals. Listen flags override the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &api.Options{
				ConfigPath: configPath,
				HTTPListen: httpListen,
				GRPCListen: grpcListen,
			}

			return api.Run(ctx, options)
		},
	}
)

// Execute runs the cofrn-api CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(statusCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "",
		"path to configuration file (default "+config.DefaultConfigFilename+" when present)")
	rootCmd.Flags().StringVar(&httpListen, "http-listen", "", "HTTP listen address, e.g. :8080")
	rootCmd.Flags().StringVar(&grpcListen, "grpc-listen", "", "gRPC health listen address, e.g. :9090")
}
