package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chrezm/TsuserverDR/internal/auth"
	"github.com/Chrezm/TsuserverDR/internal/catalog"
	"github.com/Chrezm/TsuserverDR/internal/core"
	"github.com/Chrezm/TsuserverDR/internal/proto"
)

type fixture struct {
	hub *core.Hub
	d   *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hub, err := core.NewHub(catalog.Default(), core.Options{
		Verifier: auth.NewVerifier(auth.Secrets{Moderator: "modpass", CommunityManager: "cmpass", GameMaster: "gmpass"}),
	})
	require.NoError(t, err)
	return &fixture{hub: hub, d: New(hub, nil)}
}

func (f *fixture) join(t *testing.T, charID int) (int, *core.Outbox) {
	t.Helper()
	slot, out, err := f.hub.Reserve("s")
	require.NoError(t, err)
	_, err = f.hub.Join(core.JoinRequest{Slot: slot, CharID: charID})
	require.NoError(t, err)
	out.Drain()
	return slot, out
}

func ooc(out *core.Outbox) []string {
	var texts []string
	for _, r := range out.Drain() {
		if r.Type == proto.TypeOOCMessage {
			texts = append(texts, r.Field(1))
		}
	}
	return texts
}

func TestIsCommand(t *testing.T) {
	assert.True(t, IsCommand("/area"))
	assert.False(t, IsCommand("/"))
	assert.False(t, IsCommand("hello /area"))
}

func TestUnknownCommand(t *testing.T) {
	f := newFixture(t)
	a, out := f.join(t, 0)

	err := f.d.Dispatch(a, "/doesnotexist")
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Equal(t, []string{"Invalid command."}, ooc(out))
}

func TestAreaListAndMove(t *testing.T) {
	f := newFixture(t)
	a, out := f.join(t, 0)

	require.NoError(t, f.d.Dispatch(a, "/area"))
	list := ooc(out)
	require.Len(t, list, 1)
	assert.Contains(t, list[0], "Area 0: Basement (users: 1)")
	assert.Contains(t, list[0], "Area 7: Courtyard (users: 0)")

	require.NoError(t, f.d.Dispatch(a, "/area 3"))
	assert.Equal(t, []string{"Changed area to Hallway."}, ooc(out))

	assert.Error(t, f.d.Dispatch(a, "/area hallway"))
	assert.Equal(t, []string{"Area ID must be a number."}, ooc(out))

	assert.ErrorIs(t, f.d.Dispatch(a, "/area 99"), core.ErrUnknownArea)
	assert.Equal(t, []string{core.ErrUnknownArea.Error()}, ooc(out))
}

func TestLoginLogoutCommands(t *testing.T) {
	f := newFixture(t)
	a, out := f.join(t, 0)

	assert.ErrorIs(t, f.d.Dispatch(a, "/login nope"), core.ErrAuthRejected)
	assert.Equal(t, []string{"Invalid password."}, ooc(out))

	require.NoError(t, f.d.Dispatch(a, "/login modpass"))
	assert.Equal(t, []string{"Logged in as a moderator."}, ooc(out))

	require.NoError(t, f.d.Dispatch(a, "/logincm cmpass"))
	require.NoError(t, f.d.Dispatch(a, "/loginrp gmpass"))
	c, _ := f.hub.Client(a)
	assert.True(t, c.IsModerator() && c.IsCommunityManager() && c.IsGameMaster())
	out.Drain()

	require.NoError(t, f.d.Dispatch(a, "/logout"))
	assert.Equal(t, []string{"You are no longer logged in."}, ooc(out))
	c, _ = f.hub.Client(a)
	assert.False(t, c.IsPrivileged())
}

func TestSenseCommands(t *testing.T) {
	f := newFixture(t)
	a, outA := f.join(t, 0)
	b, outB := f.join(t, 1)

	assert.ErrorIs(t, f.d.Dispatch(a, "/deafen 1"), core.ErrNotAuthorized)
	assert.Equal(t, []string{"You must be authorized to do that."}, ooc(outA))

	require.NoError(t, f.d.Dispatch(a, "/login modpass"))
	outA.Drain()
	outB.Drain()

	require.NoError(t, f.d.Dispatch(a, "/deafen 1"))
	assert.Equal(t, []string{"You have deafened Shuichi Saihara_HD."}, ooc(outA))
	assert.Equal(t, []string{"You have been deafened."}, ooc(outB))
	c, _ := f.hub.Client(b)
	assert.True(t, c.IsDeaf())

	require.NoError(t, f.d.Dispatch(a, "/undeafen 1"))
	require.NoError(t, f.d.Dispatch(a, "/blind 1"))
	require.NoError(t, f.d.Dispatch(a, "/unblind 1"))
	c, _ = f.hub.Client(b)
	assert.False(t, c.IsDeaf())
	assert.False(t, c.IsBlind())
	outA.Drain()

	assert.Error(t, f.d.Dispatch(a, "/deafen"))
	assert.Equal(t, []string{"You must specify a target."}, ooc(outA))
	assert.ErrorIs(t, f.d.Dispatch(a, "/deafen 42"), core.ErrUnknownClient)
}

func TestLightsAndAutopassCommands(t *testing.T) {
	f := newFixture(t)
	a, out := f.join(t, 0)

	require.NoError(t, f.d.Dispatch(a, "/lights off"))
	assert.Equal(t, []string{"The lights were turned off."}, ooc(out))
	status, _ := f.hub.Area(0)
	assert.False(t, status.LightsOn)

	assert.Error(t, f.d.Dispatch(a, "/lights dim"))
	assert.Equal(t, []string{"Expected /lights [on|off]"}, ooc(out))

	require.NoError(t, f.d.Dispatch(a, "/autopass"))
	assert.Equal(t, []string{"Autopass turned on."}, ooc(out))

	require.NoError(t, f.hub.MoveClient(a, 7))
	out.Drain()
	assert.ErrorIs(t, f.d.Dispatch(a, "/lights off"), core.ErrNoLights)
}

func TestSwitchCommand(t *testing.T) {
	f := newFixture(t)
	a, out := f.join(t, 0)
	f.join(t, 1)

	assert.ErrorIs(t, f.d.Dispatch(a, "/switch Shuichi Saihara_HD"), core.ErrCharacterTaken)
	out.Drain()

	require.NoError(t, f.d.Dispatch(a, "/switch Monokuma_HD"))
	c, _ := f.hub.Client(a)
	assert.Equal(t, 3, c.CharID)
	assert.Equal(t, "Monokuma_HD", c.CharName)

	assert.ErrorIs(t, f.d.Dispatch(a, "/switch Nobody"), core.ErrInvalidCharacter)
}

func TestAnnounceRequiresModerator(t *testing.T) {
	f := newFixture(t)
	a, outA := f.join(t, 0)
	b, outB := f.join(t, 1)
	require.NoError(t, f.hub.MoveClient(b, 4))
	outB.Drain()

	assert.ErrorIs(t, f.d.Dispatch(a, "/announce hello"), core.ErrNotAuthorized)
	assert.Empty(t, ooc(outB))
	outA.Drain()

	require.NoError(t, f.d.Dispatch(a, "/login modpass"))
	outA.Drain()
	require.NoError(t, f.d.Dispatch(a, "/announce trial starts"))
	got := ooc(outB)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "trial starts")
}
