package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	domain "github.com/cofrn/cofrn-monitor/internal/domain/alarm"
	"github.com/cofrn/cofrn-monitor/internal/domain/heartbeat"
	"github.com/cofrn/cofrn-monitor/internal/service/alarms"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// HeartbeatStore is the heartbeat storage used by the API.
type HeartbeatStore interface {
	List(ctx context.Context) ([]*heartbeat.Record, error)
	Touch(ctx context.Context, server string, isPrimary *bool, at time.Time) (*heartbeat.Record, error)
}

// AlarmService is the alarm de-duplicator used by the API.
type AlarmService interface {
	Handle(ctx context.Context, event *alarms.Event) (*alarms.Result, error)
	Sweep(ctx context.Context) (*alarms.Result, error)
	Snapshot(ctx context.Context) (domain.Cache, error)
}

// Handler serves the API endpoints.
type Handler struct {
	heartbeats HeartbeatStore
	alarms     AlarmService
	now        func() time.Time
}

// NewHandler creates a handler over the given store and service.
func NewHandler(heartbeats HeartbeatStore, alarms AlarmService) *Handler {
	return &Handler{
		heartbeats: heartbeats,
		alarms:     alarms,
		now:        time.Now,
	}
}

var errEmptyBody = errors.New("empty body")

// decodeBody reads a JSON body into an untyped value for validation.
// An empty body decodes as an empty object.
func decodeBody(r *http.Request) (any, error) {
	var raw any

	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&raw)

	switch {
	case errors.Is(err, io.EOF):
		return map[string]any{}, errEmptyBody
	case err != nil:
		return nil, err
	}

	return raw, nil
}
