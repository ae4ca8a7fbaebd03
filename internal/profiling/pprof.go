package profiling

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewDebugRouter mounts the pprof handlers under /debug and a liveness probe
func NewDebugRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Mount("/debug", middleware.Profiler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// DebugServer serves pprof on its own port, away from the operator UI
type DebugServer struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewDebugServer creates a pprof server listening on addr
func NewDebugServer(addr string, logger *zap.Logger) *DebugServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DebugServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewDebugRouter(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.Named("pprof"),
	}
}

// Start serves in the background until Shutdown
func (d *DebugServer) Start() {
	go func() {
		d.logger.Info("pprof server listening", zap.String("addr", d.srv.Addr))
		if err := d.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("pprof server failed", zap.Error(err))
		}
	}()
}

// Shutdown stops the server
func (d *DebugServer) Shutdown(ctx context.Context) error {
	return d.srv.Shutdown(ctx)
}
