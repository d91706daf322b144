package rest

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/cofrn/cofrn-monitor/internal/domain/heartbeat"
	"github.com/cofrn/cofrn-monitor/internal/logger"
	"github.com/cofrn/cofrn-monitor/internal/validate"
)

var serverNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

var (
	serverPathSchema = validate.Schema{
		{Name: "server", Required: true, Types: []validate.Constraint{validate.String{Regex: serverNameRe}}},
	}

	touchBodySchema = validate.Schema{
		{Name: "isPrimary", Types: []validate.Constraint{validate.Bool{}, validate.Null{}}},
	}

	listQuerySchema = validate.Schema{
		{Name: "primary", Parse: validate.ParseBool, Types: []validate.Constraint{validate.Bool{}}},
	}
)

type touchBody struct {
	IsPrimary *bool `json:"isPrimary"`
}

type listQuery struct {
	Primary *bool `json:"primary"`
}

// TouchHeartbeat handles PUT /api/v1/heartbeats/{server}.
func (h *Handler) TouchHeartbeat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	path, bad := validate.Check(ctx, map[string]string{"server": chi.URLParam(r, "server")}, serverPathSchema)
	if len(bad) > 0 {
		writeInvalid(w, bad)
		return
	}

	raw, err := decodeBody(r)
	if err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	body, bad := validate.Decode[touchBody](ctx, raw, touchBodySchema)
	if len(bad) > 0 {
		writeInvalid(w, bad)
		return
	}

	server, _ := path["server"].(string)

	record, err := h.heartbeats.Touch(ctx, server, body.IsPrimary, h.now())
	if err != nil {
		logger.ErrorKV(ctx, "Failed to store heartbeat", "server", server, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store heartbeat")

		return
	}

	writeJSON(w, http.StatusOK, record)
}

// ListHeartbeats handles GET /api/v1/heartbeats?primary=true|false.
func (h *Handler) ListHeartbeats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query, bad := validate.Decode[listQuery](ctx, r.URL.Query(), listQuerySchema)
	if len(bad) > 0 {
		writeInvalid(w, bad)
		return
	}

	records, err := h.heartbeats.List(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to list heartbeats", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list heartbeats")

		return
	}

	result := make([]*heartbeat.Record, 0, len(records))
	for _, rec := range records {
		if query.Primary == nil || rec.IsPrimary == *query.Primary {
			result = append(result, rec)
		}
	}

	writeJSON(w, http.StatusOK, result)
}
