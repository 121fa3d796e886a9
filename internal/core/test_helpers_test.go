package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Chrezm/TsuserverDR/internal/catalog"
	"github.com/Chrezm/TsuserverDR/internal/proto"
)

type passwords map[Role]string

func (p passwords) Verify(role Role, password string) bool {
	want, ok := p[role]
	return ok && want != "" && want == password
}

func newTestHub(t *testing.T, mutate ...func(*Options)) *Hub {
	t.Helper()

	opts := Options{
		Verifier: passwords{
			RoleModerator:        "modpass",
			RoleCommunityManager: "cmpass",
			RoleGameMaster:       "gmpass",
		},
	}
	for _, m := range mutate {
		m(&opts)
	}
	hub, err := NewHub(catalog.Default(), opts)
	require.NoError(t, err)
	return hub
}

// join reserves a slot, picks charID and discards the join packets.
func join(t *testing.T, hub *Hub, charID int) (int, *Outbox) {
	t.Helper()

	slot, out, err := hub.Reserve("session")
	require.NoError(t, err)
	_, err = hub.Join(JoinRequest{Slot: slot, SessionID: "session", CharID: charID, HDID: "hdid"})
	require.NoError(t, err)
	out.Drain()
	return slot, out
}

// joinIn joins and moves the client to areaID, discarding every packet sent
// to anyone in the process.
func joinIn(t *testing.T, hub *Hub, charID, areaID int, others ...*Outbox) (int, *Outbox) {
	t.Helper()

	slot, out := join(t, hub, charID)
	if areaID != 0 {
		require.NoError(t, hub.MoveClient(slot, areaID))
	}
	out.Drain()
	for _, o := range others {
		o.Drain()
	}
	return slot, out
}

func login(t *testing.T, hub *Hub, slot int, out *Outbox) {
	t.Helper()
	require.NoError(t, hub.Login(slot, RoleModerator, "modpass"))
	out.Drain()
}

func types(recs []proto.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Type)
	}
	return out
}

// oocTexts returns the text of every server OOC record.
func oocTexts(recs []proto.Record) []string {
	var out []string
	for _, r := range recs {
		if r.Type == proto.TypeOOCMessage {
			out = append(out, r.Field(1))
		}
	}
	return out
}

func ofType(recs []proto.Record, typ string) []proto.Record {
	var out []proto.Record
	for _, r := range recs {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}

func sampleIC(charID int, text string) ICMessage {
	return ICMessage{
		MsgType:    "chat",
		Prefix:     "-",
		Folder:     catalog.Default().Characters[charID],
		Anim:       "normal",
		Text:       text,
		Pos:        "wit",
		Sound:      "1",
		AnimType:   "0",
		CharID:     charID,
		SoundDelay: "0",
		Button:     "0",
		Evidence:   0,
		Flip:       "0",
		Ding:       "0",
		Color:      "3",
	}
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
