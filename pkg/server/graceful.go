// Package server wraps net/http with signal-driven graceful shutdown
// so in-flight canvas mutations and open event streams drain cleanly.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prismdocs/atlas/pkg/logging"
)

// ShutdownFunc runs after the HTTP listener stops accepting, before
// Start returns. Session teardown hangs off it.
type ShutdownFunc func()

// GracefulServer wraps an HTTP server with graceful shutdown
type GracefulServer struct {
	server       *http.Server
	logger       logging.Logger
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	onShutdown   []ShutdownFunc
	mu           sync.Mutex
}

// NewGracefulServer creates a graceful HTTP server on addr
func NewGracefulServer(addr string, handler http.Handler, logger logging.Logger) *GracefulServer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GracefulServer{
		server: &http.Server{
			Addr:           addr,
			Handler:        handler,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   0, // SSE connections stay open indefinitely
			IdleTimeout:    120 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		logger:     logger.With(logging.Component("server")),
		shutdownCh: make(chan struct{}),
	}
}

// OnShutdown registers a hook that runs during graceful shutdown,
// after the listener closes. Hooks run in registration order.
func (gs *GracefulServer) OnShutdown(fn ShutdownFunc) {
	gs.mu.Lock()
	gs.onShutdown = append(gs.onShutdown, fn)
	gs.mu.Unlock()
}

// Start serves until the listener fails or a shutdown signal arrives
func (gs *GracefulServer) Start() error {
	go gs.handleSignals()

	gs.logger.Info("http server starting", logging.String("addr", gs.server.Addr))
	if err := gs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains connections, runs the registered hooks, and returns
// the first shutdown error. Safe to call more than once.
func (gs *GracefulServer) Shutdown(timeout time.Duration) error {
	var err error
	gs.shutdownOnce.Do(func() {
		close(gs.shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		gs.logger.Info("graceful shutdown started", logging.Duration("timeout", timeout))
		if shutdownErr := gs.server.Shutdown(ctx); shutdownErr != nil {
			err = shutdownErr
			gs.logger.Error("shutdown error", logging.Error(shutdownErr))
		}

		gs.mu.Lock()
		hooks := append([]ShutdownFunc(nil), gs.onShutdown...)
		gs.mu.Unlock()
		for _, fn := range hooks {
			fn()
		}
		gs.logger.Info("shutdown complete")
	})
	return err
}

// handleSignals maps SIGINT and SIGTERM to a graceful shutdown
func (gs *GracefulServer) handleSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	gs.logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	if err := gs.Shutdown(30 * time.Second); err != nil {
		gs.logger.Error("shutdown failed", logging.Error(err))
		os.Exit(1)
	}
	os.Exit(0)
}

// IsShuttingDown reports whether shutdown has been initiated
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}
