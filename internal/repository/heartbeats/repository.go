package heartbeats

import (
	"context"
	"errors"
	"time"

	"github.com/cofrn/cofrn-monitor/internal/domain/heartbeat"
)

// Repository defines persistence operations for heartbeat rows.
type Repository interface {
	// List returns every heartbeat row.
	List(ctx context.Context) ([]*heartbeat.Record, error)
	// UpdateState writes IsFailed and IsActive of record, provided the stored
	// IsFailed still equals wasFailed.
	UpdateState(ctx context.Context, record *heartbeat.Record, wasFailed bool) error
	// Touch stamps LastHeartbeat for server, creating the row when it is new.
	// A nil isPrimary keeps the stored flag.
	Touch(ctx context.Context, server string, isPrimary *bool, at time.Time) (*heartbeat.Record, error)
}

var (
	// ErrConflict is returned when a row changed between read and conditional write.
	ErrConflict = errors.New("heartbeat row changed concurrently")
	// errEmptyServer is returned when a row has no server key.
	errEmptyServer = errors.New("server name is empty")
)
