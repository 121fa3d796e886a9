package tcp

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Chrezm/TsuserverDR/internal/core"
	"github.com/Chrezm/TsuserverDR/internal/session"
)

const readBufferSize = 4096

// Server accepts raw TCP clients and runs a session per connection.
type Server struct {
	addr        string
	hub         *core.Hub
	opts        session.Options
	idleTimeout time.Duration
	log         *zerolog.Logger

	mu           sync.Mutex
	listener     net.Listener
	shuttingDown bool
	conns        map[net.Conn]struct{}
	wg           sync.WaitGroup
}

// NewServer creates a TCP server. The session options are copied for every
// connection with the transport label set to "tcp".
func NewServer(addr string, hub *core.Hub, opts session.Options, idleTimeout time.Duration, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	opts.Transport = "tcp"
	return &Server{
		addr:        addr,
		hub:         hub,
		opts:        opts,
		idleTimeout: idleTimeout,
		log:         logger,
		conns:       make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on the configured address and serves until Shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until it is closed. After Shutdown it
// closes ln and returns immediately.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.shuttingDown {
		s.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	s.listener = ln
	s.mu.Unlock()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("tcp listener started")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn().Err(err).Msg("accept error")
			continue
		}
		if !s.track(conn, true) {
			_ = conn.Close()
			continue
		}
		go func() {
			defer s.wg.Done()
			defer s.track(conn, false)
			s.handleConnection(conn)
		}()
	}
}

// Addr returns the listening address once Serve has started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting, closes every connection and waits for their
// goroutines to finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.shuttingDown = true
	if s.listener != nil {
		_ = s.listener.Close()
	}
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

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

// track adds or removes a live connection. Adding fails once Shutdown has
// started.
func (s *Server) track(conn net.Conn, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !add {
		delete(s.conns, conn)
		return true
	}
	if s.shuttingDown {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

// handleConnection runs one client from greeting to teardown.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()

	sess, err := session.New(s.hub, s.opts)
	if err != nil {
		s.log.Warn().Err(err).Str("remote", remote).Msg("rejecting connection")
		return
	}
	defer sess.Close()
	s.log.Info().Str("remote", remote).Int("client_id", sess.Slot()).Str("session_id", sess.ID()).Msg("connection opened")

	done := make(chan struct{})
	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		s.writeLoop(conn, sess, done)
	}()

	err = s.readLoop(conn, sess)
	close(done)
	sess.Close()
	<-writeDone

	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
		s.log.Debug().Err(err).Int("client_id", sess.Slot()).Msg("read error")
	}
	s.log.Info().Str("remote", remote).Int("client_id", sess.Slot()).Msg("connection closed")
}

func (s *Server) readLoop(conn net.Conn, sess *session.Session) error {
	buf := make([]byte, readBufferSize)
	for {
		if s.idleTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(s.idleTimeout)); err != nil {
				return err
			}
		}
		n, err := conn.Read(buf)
		if n > 0 {
			sess.Feed(buf[:n])
		}
		if err != nil {
			return err
		}
		if sess.State() == session.StateClosed {
			return nil
		}
	}
}

// writeLoop flushes the outbox whenever it signals. A closed outbox (overflow
// or teardown) hangs up the connection so the read loop returns.
func (s *Server) writeLoop(conn net.Conn, sess *session.Session, done <-chan struct{}) {
	write := func(p []byte) error {
		_, err := conn.Write(p)
		return err
	}
	for {
		select {
		case <-sess.Outbox().Ready():
			closed, err := sess.Flush(write)
			if err != nil || closed {
				_ = conn.Close()
				return
			}
		case <-done:
			// Best effort for whatever was queued before teardown.
			_, _ = sess.Flush(write)
			return
		}
	}
}
