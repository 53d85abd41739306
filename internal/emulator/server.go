package emulator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/logging"
)

// Config holds the emulator server configuration
type Config struct {
	Host     string
	Port     int
	Latency  time.Duration // Added to every response
	LogLevel string
}

// Server runs an Emulator on a TCP port until interrupted.
type Server struct {
	config     *Config
	emu        *Emulator
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a server around a fresh emulator.
func NewServer(config *Config, opts ...Option) (*Server, error) {
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	if config.Latency > 0 {
		opts = append(opts, WithLatency(config.Latency))
	}
	emu := New(opts...)

	return &Server{
		config: config,
		emu:    emu,
		httpServer: &http.Server{
			Handler:           emu.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Emulator returns the emulator being served.
func (s *Server) Emulator() *Emulator {
	return s.emu
}

// Addr returns the listening address once Start has bound it.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start binds the port and serves until SIGINT/SIGTERM or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	logging.Info("NE101 emulator listening",
		zap.String("addr", listener.Addr().String()),
		zap.Duration("latency", s.config.Latency),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping emulator...")
	case <-ctx.Done():
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down emulator...",
		zap.Int("requests_served", s.emu.TotalRequests()),
		zap.Int64("concurrency_violations", s.emu.Violations()),
	)
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown timeout: %w", err)
	}
	return nil
}
