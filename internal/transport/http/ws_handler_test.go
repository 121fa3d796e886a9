package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/Chrezm/TsuserverDR/internal/catalog"
	"github.com/Chrezm/TsuserverDR/internal/config"
	"github.com/Chrezm/TsuserverDR/internal/core"
	"github.com/Chrezm/TsuserverDR/internal/metrics"
	"github.com/Chrezm/TsuserverDR/internal/session"
)

func startTestServer(t *testing.T) (*httptest.Server, *core.Hub) {
	t.Helper()

	rec := metrics.New()
	hub, err := core.NewHub(catalog.Default(), core.Options{Metrics: rec})
	if err != nil {
		t.Fatalf("new hub: %v", err)
	}

	server := NewServer(hub, session.Options{Version: "test", Metrics: rec}, rec, config.Config{
		HTTPAddr:          ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		IdleTimeout:       5 * time.Second,
	}, nil)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, hub
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func readRecord(ctx context.Context, t *testing.T, conn *websocket.Conn, prefix string) string {
	t.Helper()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("waiting for %q: %v", prefix, err)
		}
		if rec := string(data); strings.HasPrefix(rec, prefix) {
			return rec
		}
	}
}

func TestWebSocketHandshakeAndIC(t *testing.T) {
	ts, hub := startTestServer(t)

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	ctx, closeCtx := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCtx()

	connA, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial A: %v", err)
	}
	defer connA.Close(websocket.StatusNormalClosure, "done")

	connB, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial B: %v", err)
	}
	defer connB.Close(websocket.StatusNormalClosure, "done")

	send := func(conn *websocket.Conn, raw string) {
		if err := conn.Write(ctx, websocket.MessageText, []byte(raw)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	readRecord(ctx, t, connA, "decryptor#34")
	readRecord(ctx, t, connB, "decryptor#34")

	send(connA, "HI#hdid-a#%")
	idA := readRecord(ctx, t, connA, "ID#")
	send(connB, "HI#hdid-b#%")
	idB := readRecord(ctx, t, connB, "ID#")

	slotA := strings.Split(idA, "#")[1]
	slotB := strings.Split(idB, "#")[1]
	send(connA, "CC#"+slotA+"#0#hdid-a#%")
	readRecord(ctx, t, connA, "PV#")
	send(connB, "CC#"+slotB+"#1#hdid-b#%")
	readRecord(ctx, t, connB, "PV#")

	send(connA, "MS#chat#-#Kaede Akamatsu_HD#normal#hi there#wit#1#0#0#0#0#0#0#0#0#%")
	got := readRecord(ctx, t, connB, "MS#")
	fields := strings.Split(got, "#")
	if fields[5] != "hi there" || fields[3] != "Kaede Akamatsu_HD" {
		t.Fatalf("unexpected IC record: %q", got)
	}

	if n, _ := hub.PlayerCount(); n != 2 {
		t.Fatalf("expected 2 players, got %d", n)
	}
}

func TestAreasAPI(t *testing.T) {
	ts, hub := startTestServer(t)

	slot, _, err := hub.Reserve("s")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := hub.Join(core.JoinRequest{Slot: slot, CharID: 2}); err != nil {
		t.Fatalf("join: %v", err)
	}

	resp, err := ts.Client().Get(ts.URL + "/api/areas")
	if err != nil {
		t.Fatalf("areas request failed: %v", err)
	}
	defer resp.Body.Close()

	var body ListAreasResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Areas) != len(catalog.Default().Areas) || body.Players != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if len(body.Areas[0].Members) != 1 || body.Areas[0].Members[0].Character != "Maki Harukawa_HD" {
		t.Fatalf("unexpected members: %+v", body.Areas[0].Members)
	}
	if body.Areas[7].HasLights {
		t.Fatalf("expected the courtyard to have no lights")
	}

	notFound, err := ts.Client().Get(ts.URL + "/api/areas/99")
	if err != nil {
		t.Fatalf("area request failed: %v", err)
	}
	defer notFound.Body.Close()
	if notFound.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", notFound.StatusCode)
	}
}
