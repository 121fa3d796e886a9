package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/Chrezm/TsuserverDR/internal/core"
	"github.com/Chrezm/TsuserverDR/internal/session"
)

// errOutboxClosed ends the write loop once the hub tore the client down.
var errOutboxClosed = errors.New("outbox closed")

// WSHandler upgrades HTTP connections and runs a session over text frames.
// Each frame carries whole records.
type WSHandler struct {
	hub         *core.Hub
	opts        session.Options
	idleTimeout time.Duration
	log         *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, opts session.Options, idleTimeout time.Duration, logger *zerolog.Logger) stdhttp.Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	opts.Transport = "ws"
	return &WSHandler{hub: hub, opts: opts, idleTimeout: idleTimeout, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	sess, err := session.New(h.hub, h.opts)
	if err != nil {
		h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("rejecting ws connection")
		conn.Close(websocket.StatusTryAgainLater, err.Error())
		return
	}
	defer sess.Close()
	h.log.Info().Str("remote", r.RemoteAddr).Int("client_id", sess.Slot()).Str("session_id", sess.ID()).Msg("ws connection opened")

	read := func(ctx context.Context) ([]byte, error) {
		for {
			typ, data, err := conn.Read(ctx)
			if err != nil {
				return nil, err
			}
			if typ == websocket.MessageText {
				return data, nil
			}
			h.log.Debug().Int("client_id", sess.Slot()).Msg("ignoring binary frame")
		}
	}
	write := func(ctx context.Context, p []byte) error {
		return conn.Write(ctx, websocket.MessageText, p)
	}

	err = h.pump(r.Context(), sess, read, write)

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, errOutboxClosed) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Int("client_id", sess.Slot()).Msg("ws connection closed with error")
		}
	}

	h.log.Info().Int("client_id", sess.Slot()).Msg("ws connection closed")
	conn.Close(status, reason)
}

// pump runs the read and write loops of one session and returns the error
// of whichever stopped first. The session is closed only after both loops
// have returned, so no record is handled once its slot is released.
func (h *WSHandler) pump(ctx context.Context, sess *session.Session, read func(context.Context) ([]byte, error), write func(context.Context, []byte) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, sess, read)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, sess, write)
	}()

	err := <-errCh
	cancel() // stop the other goroutine
	<-errCh
	sess.Close()
	return err
}

func (h *WSHandler) readLoop(ctx context.Context, sess *session.Session, read func(context.Context) ([]byte, error)) error {
	for {
		readCtx, cancel := ctx, context.CancelFunc(func() {})
		if h.idleTimeout > 0 {
			readCtx, cancel = context.WithTimeout(ctx, h.idleTimeout)
		}
		data, err := read(readCtx)
		cancel()
		if err != nil {
			return err
		}
		sess.Feed(data)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, sess *session.Session, write func(context.Context, []byte) error) error {
	flush := func(p []byte) error {
		return write(ctx, p)
	}
	for {
		select {
		case <-sess.Outbox().Ready():
			closed, err := sess.Flush(flush)
			if err != nil {
				h.log.Error().Err(err).Int("client_id", sess.Slot()).Msg("write ws record")
				return err
			}
			if closed {
				return errOutboxClosed
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
