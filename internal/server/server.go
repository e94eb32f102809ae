// Package server accepts TCP connections and hands each one to a protocol
// handler running on a fixed-size worker pool.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultAddr is used when New is given an empty address.
const DefaultAddr = "0.0.0.0:5001"

// Handler serves a single connection until the peer goes away. log is scoped
// to the connection. The connection is closed by the caller after Handler
// returns.
type Handler func(conn net.Conn, log *slog.Logger)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger the server and its sessions log to.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// Server binds a listener and dispatches accepted connections to a Pool.
type Server struct {
	addr    string
	workers int
	handler Handler
	log     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	pool     *Pool

	sessionSeq atomic.Int64
	closed     atomic.Bool
}

// New returns an unstarted server. Call Listen and Serve, or ListenAndServe.
func New(addr string, workers int, h Handler, opts ...Option) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	s := &Server{
		addr:    addr,
		workers: workers,
		handler: h,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve binds addr and serves connections with workers concurrent handlers.
// It only returns on a bind or accept failure.
func Serve(addr string, workers int, h Handler) error {
	return New(addr, workers, h).ListenAndServe()
}

// Listen binds the listening socket and starts the worker pool.
func (s *Server) Listen() error {
	lc := net.ListenConfig{Control: control}
	l, err := lc.Listen(context.Background(), "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = l
	s.pool = NewPool(s.workers, s.handler, s.log)
	s.mu.Unlock()
	return nil
}

// ListenAndServe is Listen followed by Serve.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stats reports the worker pool counters.
func (s *Server) Stats() PoolStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool == nil {
		return PoolStats{Workers: s.workers}
	}
	return s.pool.Stats()
}

// Serve accepts connections until Close is called. Accept errors other than
// the listener being closed are logged and retried with backoff.
func (s *Server) Serve() error {
	s.mu.Lock()
	l, pool := s.listener, s.pool
	s.mu.Unlock()
	if l == nil {
		return errors.New("server: Serve called before Listen")
	}

	s.log.Info("listening", "addr", l.Addr().String(), "workers", pool.Stats().Workers)

	var delay time.Duration
	for {
		conn, err := l.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("failed to accept connection: %w", err)
			}
			delay = backoff(delay)
			s.log.Warn("accept error", "error", err, "retry", delay)
			time.Sleep(delay)
			continue
		}
		delay = 0

		id := s.sessionSeq.Add(1)
		log := s.log.With("session", fmt.Sprintf("tcp-%d", id), "remote", conn.RemoteAddr().String())
		log.Debug("accepted connection")

		if err := pool.Submit(conn, log); err != nil {
			conn.Close()
			if s.closed.Load() {
				return nil
			}
			return fmt.Errorf("failed to dispatch connection: %w", err)
		}
	}
}

// Close stops accepting, drops queued connections and waits for running
// handlers after closing their connections.
func (s *Server) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.mu.Lock()
	l, pool := s.listener, s.pool
	s.mu.Unlock()

	var err error
	if l != nil {
		err = l.Close()
	}
	if pool != nil {
		pool.Close()
	}
	s.log.Info("server stopped")
	return err
}

func backoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > time.Second {
		d = time.Second
	}
	return d
}
