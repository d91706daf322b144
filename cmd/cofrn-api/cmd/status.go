package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/cofrn/cofrn-monitor/internal/config"
	"github.com/cofrn/cofrn-monitor/internal/service/api"
)

var (
	// statusAddress of the gRPC health service.
	statusAddress string
	// statusTimeout bounds each health call.
	statusTimeout time.Duration

	// statusCmd probes a running cofrn-api over gRPC health.
	statusCmd = &cobra.Command{
		Use:   "status [recorder...]",
		Short: "Print recorder health reported by a running cofrn-api.",
		Long: `Queries the gRPC health service of cofrn-api.

The overall status is SERVING while at least one recorder is up. Recorder
names given as arguments are reported individually. The command exits with
a non-zero status when the overall status is not SERVING.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return api.Status(cmd.Context(), &api.StatusOptions{
				Address:   statusAddress,
				Timeout:   statusTimeout,
				Recorders: args,
				Out:       cmd.OutOrStdout(),
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	statusCmd.Flags().StringVarP(&statusAddress, "address", "a", "localhost:9090", "gRPC health address")
	statusCmd.Flags().DurationVarP(&statusTimeout, "timeout", "t", config.DefaultTimeout, "timeout for each health call")
}
