package core

import (
	"strconv"
	"strings"

	"github.com/Chrezm/TsuserverDR/internal/audit"
	"github.com/Chrezm/TsuserverDR/internal/proto"
)

// RouteIC delivers an IC message to every member of the sender's area.
//
// Spectators and messages whose character id does not match the sender are
// rejected with ErrInvalidCharacter; a closed flood gate returns
// ErrRateLimited. In both cases nothing is sent.
func (h *Hub) RouteIC(slot int, msg ICMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	sender, ok := h.clients.Get(slot)
	if !ok {
		return ErrUnknownClient
	}
	if sender.IsSpectator() || msg.CharID != sender.CharID {
		return ErrInvalidCharacter
	}

	area := h.mustArea(sender)
	if !area.CanSendMessage() {
		h.metrics.ICRateLimited()
		return ErrRateLimited
	}
	area.noteMessage()

	if !area.HasEvidence(msg.Evidence) {
		msg.Evidence = 0
	}
	sender.Pos = msg.Pos
	sender.LastICAt = h.now()

	for _, member := range area.Members() {
		perceived := msg
		perceived.Text = msg.heardBy(member, sender.ID)
		h.send(member, perceived.Record())
	}

	h.audit.Record(audit.Event{Kind: audit.KindIC, ClientID: sender.ID, SessionID: sender.SessionID, Area: area.ID, Actor: sender.CharName, Detail: msg.Text})
	return nil
}

// RouteOOC sets the sender's OOC name and delivers text to its area. OOC text
// is never filtered.
func (h *Hub) RouteOOC(slot int, name, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	sender, ok := h.clients.Get(slot)
	if !ok {
		return ErrUnknownClient
	}
	name = strings.TrimSpace(name)
	if name == "" || name == h.hostname {
		return ErrInvalidName
	}
	sender.Name = name

	area := h.mustArea(sender)
	rec := proto.New(proto.TypeOOCMessage, name, text)
	for _, member := range area.Members() {
		h.send(member, rec)
	}

	h.audit.Record(audit.Event{Kind: audit.KindOOC, ClientID: sender.ID, SessionID: sender.SessionID, Area: area.ID, Actor: name, Detail: text})
	return nil
}

// SetName records the sender's OOC name without broadcasting anything.
func (h *Hub) SetName(slot int, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients.Get(slot)
	if !ok {
		return ErrUnknownClient
	}
	name = strings.TrimSpace(name)
	if name == "" || name == h.hostname {
		return ErrInvalidName
	}
	c.Name = name
	return nil
}

// SendOOC sends a server OOC message to one client.
func (h *Hub) SendOOC(slot int, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients.Get(slot)
	if !ok {
		return ErrUnknownClient
	}
	h.sendOOC(c, text)
	return nil
}

// Announce sends a server OOC message to every joined client.
func (h *Hub) Announce(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients.All() {
		h.sendOOC(c, text)
	}
	h.audit.Record(audit.Event{Kind: audit.KindAnnounce, ClientID: -1, Area: -1, Detail: text})
}

// PlayMusic plays a catalog track for the sender's area.
func (h *Hub) PlayMusic(slot int, track string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients.Get(slot)
	if !ok {
		return ErrUnknownClient
	}
	if !h.catalog.HasMusic(track) {
		return ErrUnknownMusic
	}

	area := h.mustArea(c)
	rec := proto.New(proto.TypeMusicOrArea, track, strconv.Itoa(c.CharID))
	for _, member := range area.Members() {
		h.send(member, rec)
	}

	h.audit.Record(audit.Event{Kind: audit.KindMusic, ClientID: c.ID, SessionID: c.SessionID, Area: area.ID, Actor: c.CharName, Detail: track})
	return nil
}

// SetLights switches an area's lights. Every member receives the lighting
// background, blackout when off and the normal one when on, and then the
// confirmation, even if the state did not change.
func (h *Hub) SetLights(areaID int, on bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	area, ok := h.areas.Get(areaID)
	if !ok {
		return ErrUnknownArea
	}
	return h.setLights(area, on, -1)
}

// SetLightsFor switches the lights of the area the client is in.
func (h *Hub) SetLightsFor(slot int, on bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients.Get(slot)
	if !ok {
		return ErrUnknownClient
	}
	return h.setLights(h.mustArea(c), on, c.ID)
}

func (h *Hub) setLights(area *Area, on bool, actor int) error {
	if !area.HasLights {
		return ErrNoLights
	}
	area.LightsOn = on

	state := "off"
	if on {
		state = "on"
	}
	// The lighting broadcast is the same for everyone; blindness applies
	// to area context and sense changes.
	bg := proto.New(proto.TypeBackground, area.EffectiveBackground(false))
	notice := "The lights were turned " + state + "."
	for _, member := range area.Members() {
		h.send(member, bg)
		h.sendOOC(member, notice)
	}

	h.audit.Record(audit.Event{Kind: audit.KindLights, ClientID: actor, Area: area.ID, Detail: state})
	return nil
}
