// Package httpapi exposes the chat router over HTTP: the browser UI, the
// JSON API and operational endpoints.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"routerd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Chat(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error)
	Stats() types.MetricsResponse
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON and HTML responses
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}

	r.Get("/", handleIndex(svc))
	r.Get("/metrics", handleStats(svc))
	r.Post("/chat", handleChat(svc))
	r.Get("/status", handleStatus(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	// Prometheus exposition; /metrics is the JSON latency summary.
	r.Get("/metrics/prometheus", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// handleStats godoc
// @Summary      Latency statistics
// @Description  Running mean latency and completed call counts per backend.
// @Tags         chat
// @Produce      json
// @Success      200  {object}  types.MetricsResponse
// @Router       /metrics [get]
func handleStats(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Stats())
	}
}

// handleStatus godoc
// @Summary      Backend status
// @Description  Engine state, admission and statistics for both backends.
// @Tags         ops
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func handleStatus(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	}
}
