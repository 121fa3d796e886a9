package core

import (
	"github.com/Chrezm/TsuserverDR/internal/audit"
	"github.com/Chrezm/TsuserverDR/internal/proto"
)

// DarkRoomNotice is sent to a client arriving in an area with lights off.
const DarkRoomNotice = "You enter a pitch dark room."

// MoveClient moves a client to another area. Moving to the current area is a
// re-join. Autopass announcements are suppressed in dark areas for everyone.
func (h *Hub) MoveClient(slot, targetID int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients.Get(slot)
	if !ok {
		return ErrUnknownClient
	}
	target, ok := h.areas.Get(targetID)
	if !ok {
		return ErrUnknownArea
	}
	origin := h.mustArea(c)

	if target != origin && !target.IsCharacterAvailable(c.CharID) {
		return ErrCharacterTaken
	}

	origin.RemoveClient(c)
	if c.Autopass() && origin.LightsOn {
		notice := c.CharName + " has left to the " + target.Name
		for _, member := range origin.Members() {
			h.sendOOC(member, notice)
		}
	}

	target.AddClient(c)
	c.AreaID = target.ID
	if c.Autopass() && target.LightsOn {
		notice := c.CharName + " has entered from the " + origin.Name
		for _, member := range target.Members() {
			if member.ID == c.ID {
				continue
			}
			h.sendOOC(member, notice)
		}
	}

	h.send(c, h.areaContext(target, c)...)
	h.send(c, proto.New(proto.TypeAreaList, h.areaAndMusicList()...))
	h.sendOOC(c, "Changed area to "+target.Name+".")
	if !target.LightsOn {
		h.sendOOC(c, DarkRoomNotice)
	}

	h.audit.Record(audit.Event{Kind: audit.KindMove, ClientID: c.ID, SessionID: c.SessionID, Area: target.ID, Actor: c.CharName, Detail: origin.Name})
	h.log.Debug().Int("client_id", c.ID).Str("from", origin.Name).Str("to", target.Name).Msg("client moved")
	return nil
}

// AreaIDByName resolves an area name to its id.
func (h *Hub) AreaIDByName(name string) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	a, ok := h.areas.ByName(name)
	if !ok {
		return 0, false
	}
	return a.ID, true
}

// IsCharacterAvailable reports whether charID is free in an area.
func (h *Hub) IsCharacterAvailable(areaID, charID int) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	a, ok := h.areas.Get(areaID)
	if !ok {
		return false, ErrUnknownArea
	}
	return a.IsCharacterAvailable(charID), nil
}
