package app

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chrezm/TsuserverDR/internal/audit"
	"github.com/Chrezm/TsuserverDR/internal/config"
	"github.com/Chrezm/TsuserverDR/internal/store"
	"github.com/Chrezm/TsuserverDR/internal/store/sqlite"
)

func TestAppServesAndAudits(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "app.db")

	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.DatabasePath = dbPath
	cfg.ModPassword = "modpass"
	cfg.ShutdownTimeout = 2 * time.Second

	a, err := New(&cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return a.tcp.Addr() != nil }, 2*time.Second, 5*time.Millisecond)

	conn, err := net.Dial("tcp", a.tcp.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	r := bufio.NewReader(conn)

	expect := func(prefix string) string {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		for {
			rec, err := r.ReadString('%')
			require.NoError(t, err, "waiting for %q", prefix)
			if strings.HasPrefix(rec, prefix) {
				return rec
			}
		}
	}

	expect("decryptor#")
	_, err = conn.Write([]byte("HI#hdid#%CC#0#0#hdid#%"))
	require.NoError(t, err)
	expect("PV#0#CID#0#%")

	_, err = conn.Write([]byte("CT#Alice#/login modpass#%"))
	require.NoError(t, err)
	assert.Equal(t, "CT#<dollar>H#Logged in as a moderator.#%", expect("CT#<dollar>H#Logged in"))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}

	st, err := sqlite.New(dbPath)
	require.NoError(t, err)
	defer st.Close()

	events, err := st.ListEvents(context.Background(), store.AuditFilter{Kind: string(audit.KindLogin)})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 0, events[0].ClientID)
	assert.Equal(t, "moderator", events[0].Detail)
}

func TestNewRejectsMissingCatalog(t *testing.T) {
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "app.db")
	cfg.AreasPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(&cfg, nil)
	require.Error(t, err)
}
