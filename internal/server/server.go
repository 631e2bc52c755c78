package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"

	"github.com/spotcell-game/server/internal/protocol"
	"github.com/spotcell-game/server/internal/services/lobby"
	"github.com/spotcell-game/server/internal/session"
)

// Server owns the TCP listener and the per-connection read loops
type Server struct {
	addr       string
	dispatcher *Dispatcher
	lobby      *lobby.Controller
	sessions   *session.Registry
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[string]*conn
	closed   bool

	wg sync.WaitGroup
}

func New(
	addr string,
	dispatcher *Dispatcher,
	lobbyController *lobby.Controller,
	sessions *session.Registry,
	logger *slog.Logger,
) *Server {
	return &Server{
		addr:       addr,
		dispatcher: dispatcher,
		lobby:      lobbyController,
		sessions:   sessions,
		logger:     logger,
		conns:      make(map[string]*conn),
	}
}

// Listen binds the TCP listener. Split from Serve so callers can learn the
// bound address before serving (tests bind port 0).
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound listen address
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Serve accepts connections until Shutdown closes the listener
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
		s.mu.Lock()
		ln = s.listener
		s.mu.Unlock()
	}

	s.logger.Info("server listening", slog.String("addr", ln.Addr().String()))

	for {
		netConn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}

		c := newConn(uuid.NewString(), netConn)
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = c.Close()
			return nil
		}
		s.conns[c.id] = c
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serveConn(ctx, c)
	}
}

// Shutdown closes the listener and every open connection, then waits for the
// read loops to drain
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	ln := s.listener
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	for _, c := range conns {
		_ = c.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// serveConn runs one connection's read loop until the stream errors, the
// client announces a disconnect, or a handler panics
func (s *Server) serveConn(ctx context.Context, c *conn) {
	defer s.wg.Done()

	logger := s.logger.With(
		slog.String("conn_id", c.id),
		slog.String("remote", c.RemoteAddr()),
	)
	logger.Info("connection opened")

	var sess *session.Session
	dec := protocol.NewDecoder(c.netConn)

	for {
		msg, err := dec.Decode()
		if err != nil {
			logger.Info("connection closed", slog.String("reason", err.Error()))
			break
		}

		sess, err = s.handle(ctx, c, sess, msg)
		if errors.Is(err, errClientLeaving) {
			logger.Info("client disconnecting")
			break
		}
		if err != nil {
			logger.Error("handler failed, dropping connection",
				slog.Int("tag", int(msg.WireTag())),
				slog.String("error", err.Error()),
			)
			break
		}
	}

	s.teardown(ctx, c, sess)
}

// handle dispatches one message, converting a handler panic into a
// connection-fatal error
func (s *Server) handle(ctx context.Context, c *conn, sess *session.Session, msg protocol.Message) (out *session.Session, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("conn_id", c.id),
				slog.Int("tag", int(msg.WireTag())),
			)
			out = sess
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return s.dispatcher.Handle(ctx, c, sess, msg)
}

// teardown releases everything a connection holds: its registry slot, its
// game membership, and the socket
func (s *Server) teardown(ctx context.Context, c *conn, sess *session.Session) {
	s.mu.Lock()
	delete(s.conns, c.id)
	s.mu.Unlock()

	if sess != nil {
		s.sessions.Remove(c.id)
		s.lobby.HandleDisconnect(ctx, sess)
	}
	_ = c.Close()
}
