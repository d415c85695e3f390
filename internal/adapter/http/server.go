package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/climate-surrogate/internal/surrogate"
)

// ModelLister reports the surrogate serving each configured domain.
type ModelLister interface {
	Models(ctx context.Context) []surrogate.ModelInfo
}

// Server exposes liveness, readiness, model inventory and Prometheus metrics
// for the surrogate service.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer serves /healthz, /readyz, /metrics and, when models is non-nil,
// /models. The registry usually fills both ready and models.
func NewServer(addr string, ready sharedobs.ReadinessChecker, models ModelLister, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      routes(ready, models),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

func routes(ready sharedobs.ReadinessChecker, models ModelLister) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if models != nil {
		mux.HandleFunc("GET /models", modelsHandler(models))
	}
	return mux
}

// modelsHandler answers 503 while any configured domain lacks a model, so
// the listing doubles as a per-domain readiness report.
func modelsHandler(lister ModelLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infos := lister.Models(r.Context())
		status := http.StatusOK
		for _, m := range infos {
			if !m.Loaded {
				status = http.StatusServiceUnavailable
				break
			}
		}
		sharedobs.WriteJSON(w, status, map[string]any{"models": infos})
	}
}

// Start listens until Shutdown, then returns http.ErrServerClosed.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
