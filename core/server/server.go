package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/relay/core/logger"
)

// State is the lifecycle state of a Server.
type State uint8

const (
	// StateNotStarted is the state before Listen.
	StateNotStarted State = iota
	// StateListening accepts connections.
	StateListening
	// StateStopped is terminal.
	StateStopped
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateStopped:
		return "stopped"
	default:
		return "not_started"
	}
}

// freezer is implemented by handlers whose registration must end before serving.
type freezer interface {
	Freeze()
}

// Server binds a TCP port and feeds every accepted HTTP/1.x request to its handler.
// Each connection is served on its own goroutine. Safe for concurrent use.
type Server struct {
	mu             sync.RWMutex
	handler        http.Handler
	server         *http.Server
	listener       net.Listener
	logger         *slog.Logger
	shutdown       time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration
	maxHeaderBytes int
	state          State
	done           chan struct{}
	err            error
}

// New creates a Server for handler.
// Defaults to 30-second graceful shutdown timeout and a no-op logger.
func New(handler http.Handler, opts ...Option) *Server {
	s := &Server{
		handler:        handler,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		shutdown:       DefaultShutdownTimeout,
		readTimeout:    DefaultReadTimeout,
		writeTimeout:   DefaultWriteTimeout,
		idleTimeout:    DefaultIdleTimeout,
		maxHeaderBytes: DefaultMaxHeaderBytes,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Listen binds port on all interfaces and starts accepting connections in the
// background. Port 0 picks a free port; Addr reports the one chosen.
// A handler implementing Freeze is frozen before the first connection is accepted.
func (s *Server) Listen(port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateListening:
		return ErrServerAlreadyRunning
	case StateStopped:
		return ErrServerStopped
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	if s.handler == nil {
		return ErrNoHandler
	}

	if f, ok := s.handler.(freezer); ok {
		f.Freeze()
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrListen, err)
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:        s.handler,
		ReadTimeout:    s.readTimeout,
		WriteTimeout:   s.writeTimeout,
		IdleTimeout:    s.idleTimeout,
		MaxHeaderBytes: s.maxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.done = make(chan struct{})
	s.state = StateListening

	s.logger.Info("server listening", logger.Component("server"), logger.Addr(ln.Addr().String()))
	go s.serve(s.server, ln, s.done)

	return nil
}

func (s *Server) serve(srv *http.Server, ln net.Listener, done chan struct{}) {
	defer close(done)

	err := srv.Serve(ln)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateStopped
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.err = err
		s.logger.Error("accept loop failed", logger.Component("server"), logger.Error(err))
	}
}

// Wait blocks until the accept loop ends and returns its failure, if any.
// A server stopped with Stop returns nil.
func (s *Server) Wait() error {
	s.mu.RLock()
	done := s.done
	s.mu.RUnlock()

	if done == nil {
		return ErrServerNotStarted
	}
	<-done

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Stop gracefully shuts down the server using the configured timeout.
// Returns immediately if the server is not listening.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.state != StateListening || s.server == nil {
		s.mu.Unlock()
		return nil
	}
	srv := s.server
	s.state = StateStopped
	s.mu.Unlock()

	s.logger.Info("shutting down server gracefully", logger.Component("server"), logger.Timeout(s.shutdown))

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.logger.Error("server shutdown error", logger.Component("server"), logger.Error(err))
		return fmt.Errorf("%w: %w", ErrShutdown, err)
	}

	s.logger.Info("server shutdown complete", logger.Component("server"))
	return nil
}

// Run provides errgroup compatibility for coordinated lifecycle management.
// The returned function listens on port, blocks until ctx is canceled or the
// accept loop fails, and shuts down gracefully on cancellation.
func (s *Server) Run(ctx context.Context, port int) func() error {
	return func() error {
		if err := s.Listen(port); err != nil {
			return err
		}

		s.mu.RLock()
		done := s.done
		s.mu.RUnlock()

		select {
		case <-ctx.Done():
			if err := s.Stop(); err != nil {
				return err
			}
			<-done
			return nil
		case <-done:
			return s.Wait()
		}
	}
}

// State returns the lifecycle state.
func (s *Server) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Addr returns the bound address, or an empty string before Listen.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Port returns the bound port, or 0 before Listen.
func (s *Server) Port() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return 0
	}
	if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}
