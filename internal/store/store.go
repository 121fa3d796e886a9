package store

import (
	"context"
	"time"
)

// AuditEvent is one persisted entry of the audit log.
type AuditEvent struct {
	ID        int64
	Kind      string
	ClientID  int
	SessionID string
	AreaID    int
	Actor     string
	Detail    string
	CreatedAt time.Time
}

// AuditFilter narrows ListEvents results. Zero values match everything.
type AuditFilter struct {
	Kind     string
	ClientID *int
	BeforeID *int64
	Limit    int
}

// AuditStore handles audit log persistence.
type AuditStore interface {
	// SaveEvent appends an event and fills in its ID.
	SaveEvent(ctx context.Context, ev *AuditEvent) error

	// ListEvents returns events newest first.
	ListEvents(ctx context.Context, filter AuditFilter) ([]*AuditEvent, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	AuditStore

	// Close closes the underlying database connection.
	Close() error
}
