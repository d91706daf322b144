package rest

import (
	"net/http"

	"github.com/cofrn/cofrn-monitor/internal/logger"
	"github.com/cofrn/cofrn-monitor/internal/service/alarms"
	"github.com/cofrn/cofrn-monitor/internal/validate"
)

// PostAlarmEvent handles POST /api/v1/alarms/events.
func (h *Handler) PostAlarmEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, err := decodeBody(r)
	if err != nil {
		writeInvalid(w, alarms.EventSchema().Names())
		return
	}

	event, bad := validate.Decode[alarms.Event](ctx, raw, alarms.EventSchema())
	if len(bad) > 0 {
		writeInvalid(w, bad)
		return
	}

	result, err := h.alarms.Handle(ctx, event)
	if err != nil {
		logger.ErrorKV(ctx, "Alarm event handling failed", "alarm", event.AlarmName, "error", err)

		if result == nil {
			writeError(w, http.StatusInternalServerError, "failed to handle alarm event")
			return
		}

		writeJSON(w, http.StatusBadGateway, result)

		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SweepAlarms handles POST /api/v1/alarms/sweep.
func (h *Handler) SweepAlarms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.alarms.Sweep(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Alarm sweep failed", "error", err)

		if result == nil {
			writeError(w, http.StatusInternalServerError, "failed to sweep alarms")
			return
		}

		writeJSON(w, http.StatusBadGateway, result)

		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListAlarms handles GET /api/v1/alarms.
func (h *Handler) ListAlarms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cache, err := h.alarms.Snapshot(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to read alarm cache", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read alarm cache")

		return
	}

	writeJSON(w, http.StatusOK, cache)
}
