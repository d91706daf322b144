package health

import (
	"sync"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cofrn/cofrn-monitor/internal/domain/heartbeat"
)

// Overall is the service name reporting the aggregate status.
const Overall = ""

// Reporter maps heartbeat rows onto a gRPC health server.
type Reporter struct {
	// server is the standard health service implementation.
	server *grpchealth.Server
	// mu guards known.
	mu sync.Mutex
	// known holds recorders reported so far, so removed rows can be marked unknown.
	known map[string]struct{}
}

// NewReporter creates a reporter. The overall status starts as SERVING until
// the first heartbeat evaluation.
func NewReporter() *Reporter {
	return &Reporter{
		server: grpchealth.NewServer(),
		known:  make(map[string]struct{}),
	}
}

// Register installs the health service on s.
func (r *Reporter) Register(s grpc.ServiceRegistrar) {
	healthpb.RegisterHealthServer(s, r.server)
}

// Server returns the underlying health server.
func (r *Reporter) Server() healthpb.HealthServer {
	return r.server
}

// Update publishes the status of every record.
func (r *Reporter) Update(records []*heartbeat.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(records))
	anyUp := false

	for _, rec := range records {
		seen[rec.Server] = struct{}{}

		status := healthpb.HealthCheckResponse_SERVING
		if rec.IsFailed {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		} else {
			anyUp = true
		}

		r.server.SetServingStatus(rec.Server, status)
	}

	for server := range r.known {
		if _, ok := seen[server]; !ok {
			r.server.SetServingStatus(server, healthpb.HealthCheckResponse_SERVICE_UNKNOWN)
		}
	}

	r.known = seen

	overall := healthpb.HealthCheckResponse_NOT_SERVING
	if anyUp {
		overall = healthpb.HealthCheckResponse_SERVING
	}

	r.server.SetServingStatus(Overall, overall)
}

// Shutdown marks every service NOT_SERVING and ignores later updates.
func (r *Reporter) Shutdown() {
	r.server.Shutdown()
}
