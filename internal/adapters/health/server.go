// Package health serves the liveness endpoint and Prometheus metrics.
package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cryptoSignalBot/internal/ports"
)

// Message is the body returned by the liveness endpoints.
const Message = "Bot is running"

// Server runs an HTTP server exposing /, /healthz and /metrics.
type Server struct {
	addr   string
	srv    *http.Server
	logger ports.Logger
}

// Config holds configuration for the health server.
type Config struct {
	Port     int
	Gatherer prometheus.Gatherer // nil uses the default registry
	Logger   ports.Logger
}

// NewServer creates the liveness and metrics server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for health server")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d: %w", cfg.Port, ports.ErrConfigurationError)
	}
	addr := fmt.Sprintf(":%d", cfg.Port)
	return &Server{
		addr:   addr,
		logger: cfg.Logger,
		srv: &http.Server{
			Addr:              addr,
			Handler:           Handler(cfg.Gatherer),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Handler builds the route table. It is exported so tests can drive it with httptest.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", alive)
	mux.HandleFunc("/healthz", alive)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

func alive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(Message))
}

// Start binds the listener and serves in a goroutine. A bind failure is returned
// to the caller; later serve errors are only logged.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("health server listen on %s: %w: %w", s.addr, ports.ErrConnectionFailed, err)
	}
	s.logger.Info(context.Background(), "Health server listening", map[string]interface{}{"addr": s.addr})
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(context.Background(), err, "Health server stopped unexpectedly")
		}
	}()
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
