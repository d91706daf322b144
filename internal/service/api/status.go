package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cofrn/cofrn-monitor/internal/service/common"
)

// StatusOptions controls the status probe.
type StatusOptions struct {
	// Address is the gRPC health address of cofrn-api.
	Address string
	// Timeout bounds each health call.
	Timeout time.Duration
	// Recorders lists recorders to report in addition to the overall status.
	Recorders []string
	// Out receives one line per checked service.
	Out io.Writer
	// DialOptions are passed to the client, e.g. a custom dialer in tests.
	DialOptions []common.Option
}

// ErrNotServing is returned when the overall status is not SERVING.
var ErrNotServing = errors.New("recorders are not serving")

// Status prints the overall and per-recorder health of a running cofrn-api.
func Status(ctx context.Context, opts *StatusOptions) error {
	clientOpts := append([]common.Option{common.WithCallTimeout(opts.Timeout)}, opts.DialOptions...)

	client, err := common.Dial(ctx, opts.Address, clientOpts...)
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	overall, err := client.Check(ctx, "")
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(opts.Out, "overall: %s\n", overall)

	for _, recorder := range opts.Recorders {
		status, err := client.Check(ctx, recorder)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(opts.Out, "%s: %s\n", recorder, status)
	}

	if overall != healthpb.HealthCheckResponse_SERVING {
		return ErrNotServing
	}

	return nil
}
