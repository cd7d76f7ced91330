// ============================================================================
// pnc - Polish Notation Calculator
// ============================================================================
//
// Package:     server
// Description: HTTP and WebSocket evaluation server
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"

	mdwconfig "github.com/msto63/pnc/foundation/core/config"
	mdwlog "github.com/msto63/pnc/foundation/core/log"
	"github.com/msto63/pnc/foundation/pn"
	"github.com/msto63/pnc/internal/history"
	"github.com/msto63/pnc/pkg/core/cache"
	"github.com/msto63/pnc/pkg/core/health"
	"github.com/msto63/pnc/pkg/core/version"
)

// Server serves expression evaluation over WebSocket, plain HTTP and gRPC
type Server struct {
	httpServer *http.Server
	grpcServer *grpc.Server       // nil when gRPC is disabled
	grpcHealth *grpchealth.Server // standard grpc.health.v1 service
	evaluator  *evaluator
	health     *health.Registry
	logger     *mdwlog.Logger
	config     Config

	done      chan struct{}
	stopOnce  sync.Once
	watchOnce sync.Once
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// GRPCPort is the port of the gRPC listener; zero or negative disables it
	GRPCPort int

	// CacheSize bounds the result cache; zero or negative disables it
	CacheSize int
	CacheTTL  time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:         "127.0.0.1",
		Port:         8765,
		GRPCPort:     8766,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
		CacheSize:    1024,
		CacheTTL:     10 * time.Minute,
	}
}

// ConfigFrom converts the [server] configuration section
func ConfigFrom(cfg mdwconfig.ServerConfig) Config {
	c := DefaultConfig()
	c.Host = cfg.Host
	c.Port = cfg.Port
	c.GRPCPort = cfg.GRPCPort
	if cfg.ReadTimeout.Duration > 0 {
		c.ReadTimeout = cfg.ReadTimeout.Duration
	}
	c.CacheSize = cfg.CacheSize
	c.CacheTTL = cfg.CacheTTL.Duration
	return c
}

// Options holds the collaborators of a server
type Options struct {
	Engine *pn.Engine
	Store  history.Store
	Logger *mdwlog.Logger
}

// New creates a new server. A nil Store disables history recording.
func New(cfg Config, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	logger = logger.WithField("component", "pnc-server")

	engine := opts.Engine
	if engine == nil {
		engine = pn.New(pn.Options{Logger: logger})
	}

	ev := &evaluator{
		engine: engine,
		store:  opts.Store,
		logger: logger,
	}
	if cfg.CacheSize > 0 {
		ev.results = cache.New[*pn.Result](cache.Config{
			MaxItems: cfg.CacheSize,
			TTL:      cfg.CacheTTL,
		})
	}

	s := &Server{
		evaluator: ev,
		health:    health.NewRegistry("pnc", version.Version),
		logger:    logger,
		config:    cfg,
		done:      make(chan struct{}),
	}

	s.registerHealthChecks()

	if cfg.GRPCPort > 0 {
		s.grpcHealth = grpchealth.NewServer()
		s.grpcServer = newGRPCServer(ev, s.grpcHealth, logger)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		s.refreshGRPCHealth(ctx)
		cancel()
	}

	s.httpServer = &http.Server{
		Addr:              s.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}

	return s
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", newWebSocketHandler(s.evaluator, s.logger, s.config.ReadTimeout))
	mux.Handle("/api/v1/eval", &evalHandler{evaluator: s.evaluator})
	mux.Handle("/healthz", s.health.Handler(5*time.Second))
	return loggingMiddleware(s.logger, mux)
}

func (s *Server) registerHealthChecks() {
	s.health.RegisterFunc("engine", func(ctx context.Context) health.CheckResult {
		res := s.evaluator.engine.Evaluate(ctx, "+ 1 1")
		if !res.OK || res.Value != 2 {
			return health.CheckResult{
				Status:  health.StatusUnhealthy,
				Message: fmt.Sprintf("self check returned %s", res.ValueText()),
			}
		}
		return health.CheckResult{Status: health.StatusHealthy, Message: "self check passed"}
	})

	if s.evaluator.results != nil {
		s.health.RegisterFunc("cache", func(ctx context.Context) health.CheckResult {
			hits, misses, rate := s.evaluator.results.Stats()
			return health.CheckResult{
				Status: health.StatusHealthy,
				Details: map[string]interface{}{
					"size":     s.evaluator.results.Size(),
					"hits":     hits,
					"misses":   misses,
					"hit_rate": rate,
				},
			}
		})
	}

	store := s.evaluator.store
	if store == nil {
		return
	}
	s.health.RegisterFunc("history", func(ctx context.Context) health.CheckResult {
		stats, err := store.Stats(ctx)
		if err != nil {
			// Evaluation still works without history
			return health.CheckResult{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.CheckResult{
			Status:  health.StatusHealthy,
			Details: map[string]interface{}{"entries": stats.Total},
		}
	})
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *mdwlog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		logger.Debug("HTTP request", mdwlog.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapper.statusCode,
			"duration": time.Since(start).String(),
		})
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack is required for the WebSocket upgrade behind the middleware
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// Start listens on the configured addresses and blocks until the HTTP server
// stops. The gRPC listener, if enabled, runs in the background.
func (s *Server) Start() error {
	if s.grpcServer != nil {
		listener, err := net.Listen("tcp", s.GRPCAddress())
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", s.GRPCAddress(), err)
		}
		go func() {
			if err := s.ServeGRPC(listener); err != nil {
				s.logger.ErrorWithErr("gRPC server error", err)
			}
		}()
	}

	s.logger.Info("Starting evaluation server", mdwlog.Fields{"address": s.Address()})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Serve accepts connections on an existing listener
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("Starting evaluation server", mdwlog.Fields{"address": listener.Addr().String()})
	if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// ServeGRPC accepts gRPC connections on an existing listener and keeps the
// gRPC health status in sync with the health registry
func (s *Server) ServeGRPC(listener net.Listener) error {
	if s.grpcServer == nil {
		return fmt.Errorf("gRPC is disabled")
	}
	s.watchOnce.Do(func() { go s.watchHealth() })

	s.logger.Info("Starting gRPC server", mdwlog.Fields{"address": listener.Addr().String()})
	if err := s.grpcServer.Serve(listener); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// Stop gracefully stops the server. gRPC calls still running when ctx ends
// are cut off.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping evaluation server")
	s.stopOnce.Do(func() { close(s.done) })

	if s.grpcServer != nil {
		s.grpcHealth.Shutdown()

		stopped := make(chan struct{})
		go func() {
			s.grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.grpcServer.Stop()
		}
	}

	if s.evaluator.results != nil {
		s.evaluator.results.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

// Address returns the configured listen address
func (s *Server) Address() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// GRPCAddress returns the configured gRPC listen address
func (s *Server) GRPCAddress() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.GRPCPort))
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
