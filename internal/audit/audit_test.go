package audit

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Chrezm/TsuserverDR/internal/store"
	"github.com/Chrezm/TsuserverDR/internal/store/sqlite"
)

func newTestWriter(t *testing.T, buffer int) (*Writer, *sqlite.SQLiteStore) {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(sqlite.Schema)
		return err
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return NewWriter(st, buffer, nil), st
}

func TestWriterPersistsEvents(t *testing.T) {
	w, st := newTestWriter(t, 8)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	go w.Run(ctx)

	w.Record(Event{Kind: KindJoin, ClientID: 2, Area: 0, Actor: "Maki Harukawa_HD"})
	w.Record(Event{Kind: KindLights, ClientID: 2, Area: 0, Detail: "off"})
	w.Close()
	w.Wait()

	events, err := st.ListEvents(context.Background(), store.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "lights", events[0].Kind)
	require.Equal(t, "Maki Harukawa_HD", events[1].Actor)

	// Recording after Close is a no-op.
	w.Record(Event{Kind: KindOOC})
	require.Zero(t, w.Dropped())
}

func TestWriterDropsWhenFull(t *testing.T) {
	w, _ := newTestWriter(t, 1)

	w.Record(Event{Kind: KindIC})
	w.Record(Event{Kind: KindIC})
	w.Record(Event{Kind: KindIC})

	require.Equal(t, 2, w.Dropped())
}
