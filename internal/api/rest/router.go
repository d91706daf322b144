package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cofrn/cofrn-monitor/internal/logger"
	"github.com/cofrn/cofrn-monitor/internal/version"
)

// NewRouter wires the API and debug endpoints. host describes the running
// process on /debug/about and may be nil.
func NewRouter(h *Handler, host any) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/heartbeats", func(r chi.Router) {
			r.Get("/", h.ListHeartbeats)
			r.Put("/{server}", h.TouchHeartbeat)
		})

		r.Route("/alarms", func(r chi.Router) {
			r.Get("/", h.ListAlarms)
			r.Post("/events", h.PostAlarmEvent)
			r.Post("/sweep", h.SweepAlarms)
		})
	})

	r.Route("/debug", func(r chi.Router) {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
		r.Get("/health", healthHandler)
		r.Get("/about", aboutHandler(host))
	})

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func aboutHandler(host any) http.HandlerFunc {
	type about struct {
		version.About

		Host any `json:"host,omitempty"`
	}

	body := about{About: version.Info(), Host: host}

	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}
}

// requestLogger logs every request through the global logger with its request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		ctx := logger.WithKV(r.Context(), "request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.DebugKV(ctx, "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String())
	})
}
