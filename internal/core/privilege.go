package core

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/Chrezm/TsuserverDR/internal/audit"
	"github.com/Chrezm/TsuserverDR/internal/proto"
)

// Login grants role to the client when password matches. On success the
// client gets a music list refresh and a confirmation, and the rest of its
// area is told. A mismatch changes nothing and returns ErrAuthRejected.
func (h *Hub) Login(slot int, role Role, password string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients.Get(slot)
	if !ok {
		return ErrUnknownClient
	}
	if h.verifier == nil || !h.verifier.Verify(role, password) {
		h.audit.Record(audit.Event{Kind: audit.KindLoginFailed, ClientID: c.ID, SessionID: c.SessionID, Area: c.AreaID, Actor: c.CharName, Detail: role.String()})
		h.log.Warn().Int("client_id", c.ID).Str("role", role.String()).Msg("rejected login")
		return ErrAuthRejected
	}

	c.Flags |= role.Flag()

	h.send(c, proto.New(proto.TypeAreaList, h.areaAndMusicList()...))
	h.sendOOC(c, "Logged in as a "+role.String()+".")

	notice := fmt.Sprintf("%s (%d) logged in as a %s.", c.CharName, c.ID, role)
	for _, member := range h.mustArea(c).Members() {
		if member.ID != c.ID {
			h.sendOOC(member, notice)
		}
	}

	h.audit.Record(audit.Event{Kind: audit.KindLogin, ClientID: c.ID, SessionID: c.SessionID, Area: c.AreaID, Actor: c.CharName, Detail: role.String()})
	h.log.Info().Int("client_id", c.ID).Str("role", role.String()).Msg("client logged in")
	return nil
}

// Logout clears every privilege flag, whichever were held.
func (h *Hub) Logout(slot int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients.Get(slot)
	if !ok {
		return ErrUnknownClient
	}
	c.Flags &^= privilegeFlags

	h.sendOOC(c, "You are no longer logged in.")
	h.send(c, proto.New(proto.TypeAreaList, h.areaAndMusicList()...))

	h.audit.Record(audit.Event{Kind: audit.KindLogout, ClientID: c.ID, SessionID: c.SessionID, Area: c.AreaID, Actor: c.CharName})
	return nil
}

// SetSense blocks or restores a sense on target. The actor needs any
// privilege. The confirmation sequence is sent even if nothing changed.
func (h *Hub) SetSense(actorSlot, targetSlot int, sense Sense, on bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	actor, ok := h.clients.Get(actorSlot)
	if !ok {
		return ErrUnknownClient
	}
	if !actor.IsPrivileged() {
		return ErrNotAuthorized
	}
	target, ok := h.clients.Get(targetSlot)
	if !ok {
		return ErrUnknownClient
	}

	if on {
		target.Flags |= sense.Flag()
	} else {
		target.Flags &^= sense.Flag()
	}

	verb := sense.verb(on)
	var peerNotice string
	if actor == target {
		if sense == SenseBlind {
			h.sendBackground(actor)
		}
		h.sendOOC(actor, "You have "+verb+" yourself.")
		peerNotice = fmt.Sprintf("%s has %s themselves (%d).", actor.DisplayName(), verb, actor.ID)
	} else {
		h.sendOOC(actor, "You have "+verb+" "+target.CharName+".")
		if sense == SenseBlind {
			h.sendBackground(target)
		}
		h.sendOOC(target, "You have been "+verb+".")
		peerNotice = fmt.Sprintf("%s has %s %s (%d).", actor.DisplayName(), verb, target.CharName, target.ID)
	}

	for _, peer := range h.peersOf(actor, target) {
		h.sendOOC(peer, peerNotice)
	}

	h.audit.Record(audit.Event{
		Kind:      audit.KindSensory,
		ClientID:  actor.ID,
		SessionID: actor.SessionID,
		Area:      actor.AreaID,
		Actor:     actor.DisplayName(),
		Detail:    verb + " " + strconv.Itoa(target.ID),
	})
	return nil
}

// ToggleAutopass flips the client's autopass flag and returns the new value.
func (h *Hub) ToggleAutopass(slot int) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients.Get(slot)
	if !ok {
		return false, ErrUnknownClient
	}
	c.Flags ^= FlagAutopass

	state := "off"
	if c.Autopass() {
		state = "on"
	}
	h.sendOOC(c, "Autopass turned "+state+".")
	return c.Autopass(), nil
}

func (h *Hub) sendBackground(c *Client) {
	h.send(c, proto.New(proto.TypeBackground, h.mustArea(c).EffectiveBackground(c.IsBlind())))
}

// peersOf returns the members of the areas of the given clients, excluding
// those clients, ordered by slot id.
func (h *Hub) peersOf(involved ...*Client) []*Client {
	skip := make(map[int]struct{}, len(involved))
	areas := make(map[int]*Area, len(involved))
	for _, c := range involved {
		skip[c.ID] = struct{}{}
		areas[c.AreaID] = h.mustArea(c)
	}

	var out []*Client
	for _, a := range areas {
		for _, m := range a.Members() {
			if _, ok := skip[m.ID]; !ok {
				out = append(out, m)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
