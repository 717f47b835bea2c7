// Package ops serves the auxiliary HTTP endpoints: liveness, a small status
// snapshot and Prometheus metrics.
package ops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/acropolistg/Manager-Bot/internal/config"
	"github.com/acropolistg/Manager-Bot/internal/logger"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusSource reports workflow counters for the /status endpoint.
type StatusSource interface {
	SubscriberCount() int
	PendingCount() int
}

// Status is the JSON schema of the /status endpoint.
type Status struct {
	Status      string `json:"status"`
	Subscribers int    `json:"subscribers"`
	Pending     int    `json:"pending_payments"`
}

// Server is the auxiliary HTTP listener.
type Server struct {
	addr   string
	source StatusSource
}

// NewServer builds the listener from ops config.
func NewServer(cfg config.OpsConfig, source StatusSource) *Server {
	return &Server{
		addr:   fmt.Sprintf("%s:%d", cfg.Listen, cfg.Port),
		source: source,
	}
}

// Router assembles the HTTP route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.URLFormat)

	r.Get("/healthz", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "ops", "listen",
			slog.String("listen", s.addr),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := Status{Status: "ok"}
	if s.source != nil {
		st.Subscribers = s.source.SubscriberCount()
		st.Pending = s.source.PendingCount()
	}
	render.JSON(w, r, st)
}
