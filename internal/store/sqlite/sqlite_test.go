package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Chrezm/TsuserverDR/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(Schema)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndListEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seed := []store.AuditEvent{
		{Kind: "join", ClientID: 0, AreaID: 0, Actor: "Kaede Akamatsu_HD"},
		{Kind: "ic", ClientID: 0, AreaID: 0, Detail: "Hello?"},
		{Kind: "join", ClientID: 1, AreaID: 0, Actor: "Shuichi Saihara_HD"},
		{Kind: "lights", ClientID: 1, AreaID: 0, Detail: "off"},
	}
	for i := range seed {
		ev := seed[i]
		ev.CreatedAt = time.Now()
		if err := s.SaveEvent(ctx, &ev); err != nil {
			t.Fatalf("save event %d: %v", i, err)
		}
		if ev.ID == 0 {
			t.Fatalf("expected id to be assigned for event %d", i)
		}
	}

	tests := []struct {
		name     string
		filter   store.AuditFilter
		expected []string
	}{
		{
			name:     "all newest first",
			filter:   store.AuditFilter{},
			expected: []string{"lights", "join", "ic", "join"},
		},
		{
			name:     "by kind",
			filter:   store.AuditFilter{Kind: "join"},
			expected: []string{"join", "join"},
		},
		{
			name:     "by client",
			filter:   store.AuditFilter{ClientID: intPtr(0)},
			expected: []string{"ic", "join"},
		},
		{
			name:     "limit",
			filter:   store.AuditFilter{Limit: 1},
			expected: []string{"lights"},
		},
		{
			name:     "before id",
			filter:   store.AuditFilter{BeforeID: int64Ptr(3)},
			expected: []string{"ic", "join"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := s.ListEvents(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListEvents failed: %v", err)
			}
			if len(events) != len(tt.expected) {
				t.Fatalf("expected %d events, got %d", len(tt.expected), len(events))
			}
			for i, ev := range events {
				if ev.Kind != tt.expected[i] {
					t.Errorf("expected kind %s at index %d, got %s", tt.expected[i], i, ev.Kind)
				}
			}
		})
	}
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
