package audit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Chrezm/TsuserverDR/internal/store"
)

// Kind names what an audit event records.
type Kind string

const (
	KindConnect     Kind = "connect"
	KindJoin        Kind = "join"
	KindDisconnect  Kind = "disconnect"
	KindIC          Kind = "ic"
	KindOOC         Kind = "ooc"
	KindMove        Kind = "move"
	KindMusic       Kind = "music"
	KindLights      Kind = "lights"
	KindLogin       Kind = "login"
	KindLoginFailed Kind = "login_failed"
	KindLogout      Kind = "logout"
	KindSensory     Kind = "sensory"
	KindAnnounce    Kind = "announce"
	KindDropped     Kind = "dropped"
)

// Event is a structured audit record. Area is -1 when not applicable.
type Event struct {
	Kind      Kind
	ClientID  int
	SessionID string
	Area      int
	Actor     string
	Detail    string
	At        time.Time
}

// Sink accepts audit events without blocking the caller.
type Sink interface {
	Record(ev Event)
}

// Nop discards every event.
type Nop struct{}

// Record implements Sink.
func (Nop) Record(Event) {}

// Writer persists events to an AuditStore from a background goroutine.
// Events are dropped when the buffer is full.
type Writer struct {
	store  store.AuditStore
	events chan Event
	log    *zerolog.Logger

	mu      sync.Mutex
	closed  bool
	dropped int
	done    chan struct{}
}

// NewWriter creates a writer with the given buffer size.
func NewWriter(st store.AuditStore, buffer int, logger *zerolog.Logger) *Writer {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Writer{
		store:  st,
		events: make(chan Event, buffer),
		log:    logger,
		done:   make(chan struct{}),
	}
}

// Record queues an event. It never blocks.
func (w *Writer) Record(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.events <- ev:
	default:
		w.dropped++
	}
}

// Dropped returns how many events were discarded because the buffer was full.
func (w *Writer) Dropped() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

// Run drains queued events into the store until Close is called or ctx ends.
func (w *Writer) Run(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.events:
			if !ok {
				return
			}
			w.save(ctx, ev)
		case <-ctx.Done():
			w.Close()
			// Flush what is already queued with a fresh context.
			for ev := range w.events {
				w.save(context.Background(), ev)
			}
			return
		}
	}
}

// Close stops accepting events. Run returns once the queue is drained.
func (w *Writer) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	close(w.events)
}

// Wait blocks until Run has returned.
func (w *Writer) Wait() {
	<-w.done
}

func (w *Writer) save(ctx context.Context, ev Event) {
	rec := &store.AuditEvent{
		Kind:      string(ev.Kind),
		ClientID:  ev.ClientID,
		SessionID: ev.SessionID,
		AreaID:    ev.Area,
		Actor:     ev.Actor,
		Detail:    ev.Detail,
		CreatedAt: ev.At,
	}
	if err := w.store.SaveEvent(ctx, rec); err != nil {
		w.log.Warn().Err(err).Str("kind", rec.Kind).Int("client_id", rec.ClientID).Msg("failed to save audit event")
	}
}
