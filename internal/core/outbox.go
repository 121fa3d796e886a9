package core

import (
	"sync"

	"github.com/Chrezm/TsuserverDR/internal/proto"
)

// maxOutboxLen caps queued packets per connection. A consumer that falls this
// far behind has its outbox closed, which the transport treats as a disconnect.
const maxOutboxLen = 2048

// Outbox is the ordered packet queue of one connection. The hub pushes while
// holding its lock; the transport drains and writes without it.
type Outbox struct {
	mu       sync.Mutex
	queue    []proto.Record
	ready    chan struct{}
	closed   bool
	overflow bool
}

// NewOutbox creates an empty, open outbox.
func NewOutbox() *Outbox {
	return &Outbox{ready: make(chan struct{}, 1)}
}

// Push appends records in order. It returns false once the outbox is closed.
func (o *Outbox) Push(recs ...proto.Record) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	if len(o.queue)+len(recs) > maxOutboxLen {
		o.overflow = true
		o.closed = true
		o.signal()
		return false
	}
	o.queue = append(o.queue, recs...)
	o.signal()
	return true
}

// Drain removes and returns every queued record.
func (o *Outbox) Drain() []proto.Record {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.queue
	o.queue = nil
	return out
}

// Ready fires after a push or close. Readers should Drain and then check Closed.
func (o *Outbox) Ready() <-chan struct{} {
	return o.ready
}

// Close stops accepting records. Already queued records can still be drained.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	o.signal()
}

// Closed reports whether the outbox no longer accepts records.
func (o *Outbox) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

// Overflowed reports whether the outbox was closed for falling behind.
func (o *Outbox) Overflowed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.overflow
}

// Len returns the number of queued records.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

func (o *Outbox) signal() {
	select {
	case o.ready <- struct{}{}:
	default:
	}
}
