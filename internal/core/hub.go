package core

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Chrezm/TsuserverDR/internal/audit"
	"github.com/Chrezm/TsuserverDR/internal/catalog"
	"github.com/Chrezm/TsuserverDR/internal/metrics"
	"github.com/Chrezm/TsuserverDR/internal/proto"
)

// Options configures a Hub.
type Options struct {
	// Hostname is the OOC username of server messages.
	Hostname           string
	SpectatorName      string
	BlackoutBackground string
	PlayerLimit        int
	ICFloodInterval    time.Duration

	Verifier Verifier
	Audit    audit.Sink
	Metrics  *metrics.Recorder
	Logger   *zerolog.Logger
	Now      func() time.Time
}

// Hub owns the directories and routes every event between clients.
//
// A single mutex serializes all reads and writes of client and area state.
// Operations only queue packets into outboxes while holding it; network
// writes happen in the transport goroutines.
type Hub struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	areas   *AreaDirectory
	clients *ClientDirectory

	hostname      string
	spectatorName string
	verifier      Verifier
	audit         audit.Sink
	metrics       *metrics.Recorder
	log           *zerolog.Logger
	now           func() time.Time
}

// NewHub builds the areas from the catalog and returns a hub with no clients.
func NewHub(cat *catalog.Catalog, opts Options) (*Hub, error) {
	if opts.Hostname == "" {
		opts.Hostname = "$H"
	}
	if opts.SpectatorName == "" {
		opts.SpectatorName = "SPECTATOR"
	}
	if opts.BlackoutBackground == "" {
		opts.BlackoutBackground = "Blackout_HD"
	}
	if opts.PlayerLimit <= 0 {
		opts.PlayerLimit = 100
	}
	if opts.Audit == nil {
		opts.Audit = audit.Nop{}
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	areas := make([]*Area, 0, len(cat.Areas))
	for i, cfg := range cat.Areas {
		a := NewArea(i, cfg, opts.BlackoutBackground, opts.ICFloodInterval)
		a.now = opts.Now
		areas = append(areas, a)
	}
	dir, err := NewAreaDirectory(areas)
	if err != nil {
		return nil, fmt.Errorf("build areas: %w", err)
	}

	return &Hub{
		catalog:       cat,
		areas:         dir,
		clients:       NewClientDirectory(opts.PlayerLimit),
		hostname:      opts.Hostname,
		spectatorName: opts.SpectatorName,
		verifier:      opts.Verifier,
		audit:         opts.Audit,
		metrics:       opts.Metrics,
		log:           opts.Logger,
		now:           opts.Now,
	}, nil
}

// Catalog returns the static content the hub was built from.
func (h *Hub) Catalog() *catalog.Catalog {
	return h.catalog
}

// Hostname is the OOC username used for server messages.
func (h *Hub) Hostname() string {
	return h.hostname
}

// Reserve allocates a connection slot and its outbox for a new session.
func (h *Hub) Reserve(sessionID string) (int, *Outbox, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := NewOutbox()
	id, err := h.clients.Reserve(out)
	if err != nil {
		return 0, nil, err
	}
	h.audit.Record(audit.Event{Kind: audit.KindConnect, ClientID: id, SessionID: sessionID, Area: -1})
	return id, out, nil
}

// JoinRequest is a character selection from a session that has no client yet.
type JoinRequest struct {
	Slot      int
	SessionID string
	CharID    int
	HDID      string
}

// Join creates a client on a reserved slot and places it in the default area.
// The client receives its character confirmation and the area context.
func (h *Hub) Join(req JoinRequest) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	out, ok := h.clients.Reserved(req.Slot)
	if !ok {
		return nil, ErrUnknownClient
	}
	if _, joined := h.clients.Get(req.Slot); joined {
		return nil, fmt.Errorf("slot %d already joined: %w", req.Slot, ErrUnknownClient)
	}

	name, err := h.characterName(req.CharID)
	if err != nil {
		return nil, err
	}
	area := h.areas.Default()
	if !area.IsCharacterAvailable(req.CharID) {
		return nil, ErrCharacterTaken
	}

	c := NewClient(req.Slot, req.SessionID, out)
	c.CharID = req.CharID
	c.CharName = name
	c.HDID = req.HDID
	c.AreaID = area.ID
	if err := h.clients.Insert(c); err != nil {
		return nil, err
	}
	area.AddClient(c)

	h.send(c, charPicked(c))
	h.send(c, h.areaContext(area, c)...)

	h.metrics.ClientJoined()
	h.audit.Record(audit.Event{Kind: audit.KindJoin, ClientID: c.ID, SessionID: c.SessionID, Area: area.ID, Actor: c.CharName})
	h.log.Info().Int("client_id", c.ID).Str("char", c.CharName).Str("area", area.Name).Msg("client joined")

	cp := *c
	return &cp, nil
}

// ChangeCharacter switches a joined client to another character in its area.
func (h *Hub) ChangeCharacter(slot, charID int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients.Get(slot)
	if !ok {
		return ErrUnknownClient
	}
	name, err := h.characterName(charID)
	if err != nil {
		return err
	}
	area := h.mustArea(c)
	if charID != c.CharID && !area.IsCharacterAvailable(charID) {
		return ErrCharacterTaken
	}

	c.CharID = charID
	c.CharName = name
	h.send(c, charPicked(c))
	return nil
}

// Disconnect tears a slot down: the client leaves its area, the outbox is
// closed and the slot becomes free. Calling it again is a no-op.
func (h *Hub) Disconnect(slot int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	out, reserved := h.clients.Reserved(slot)
	if !reserved {
		return
	}
	c, joined := h.clients.Release(slot)
	out.Close()
	if !joined {
		return
	}

	if area, ok := h.areas.Get(c.AreaID); ok {
		area.RemoveClient(c)
	}
	h.metrics.ClientLeft()
	h.audit.Record(audit.Event{Kind: audit.KindDisconnect, ClientID: c.ID, SessionID: c.SessionID, Area: c.AreaID, Actor: c.CharName})
	h.log.Info().Int("client_id", c.ID).Str("char", c.CharName).Msg("client left")
}

// Client returns a copy of a joined client.
func (h *Hub) Client(slot int) (Client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients.Get(slot)
	if !ok {
		return Client{}, false
	}
	return *c, true
}

// Clients returns copies of every joined client ordered by slot.
func (h *Hub) Clients() []Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	all := h.clients.All()
	out := make([]Client, 0, len(all))
	for _, c := range all {
		out = append(out, *c)
	}
	return out
}

// AreaStatus is a read-only view of an area.
type AreaStatus struct {
	ID         int
	Name       string
	Background string
	LightsOn   bool
	HasLights  bool
	Members    []int
}

// Areas returns the status of every area in id order.
func (h *Hub) Areas() []AreaStatus {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]AreaStatus, 0, h.areas.Len())
	for _, a := range h.areas.All() {
		out = append(out, areaStatus(a))
	}
	return out
}

// Area returns the status of one area.
func (h *Hub) Area(id int) (AreaStatus, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	a, ok := h.areas.Get(id)
	if !ok {
		return AreaStatus{}, false
	}
	return areaStatus(a), true
}

func areaStatus(a *Area) AreaStatus {
	members := a.Members()
	ids := make([]int, 0, len(members))
	for _, c := range members {
		ids = append(ids, c.ID)
	}
	return AreaStatus{
		ID:         a.ID,
		Name:       a.Name,
		Background: a.Background,
		LightsOn:   a.LightsOn,
		HasLights:  a.HasLights,
		Members:    ids,
	}
}

// SetFloodGate replaces the IC flood gate of an area. A nil gate restores the
// interval-based default.
func (h *Hub) SetFloodGate(areaID int, gate func() bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	a, ok := h.areas.Get(areaID)
	if !ok {
		return ErrUnknownArea
	}
	a.floodGate = gate
	return nil
}

// PlayerCount returns the number of joined clients and the slot limit.
func (h *Hub) PlayerCount() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clients.Len(), h.clients.Limit()
}

// CharsCheck lists, per character, "0" if free in the default area or "-1".
func (h *Hub) CharsCheck() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	area := h.areas.Default()
	out := make([]string, len(h.catalog.Characters))
	for i := range h.catalog.Characters {
		if area.IsCharacterAvailable(i) {
			out[i] = "0"
		} else {
			out[i] = "-1"
		}
	}
	return out
}

// AreaContext is the area context a slot currently sees: its own area once
// joined, the default area before.
func (h *Hub) AreaContext(slot int) []proto.Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients.Get(slot); ok {
		return h.areaContext(h.mustArea(c), c)
	}
	return h.areaContext(h.areas.Default(), nil)
}

// AreaAndMusicList is the area names followed by the jukebox list.
func (h *Hub) AreaAndMusicList() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.areaAndMusicList()
}

func (h *Hub) areaAndMusicList() []string {
	out := make([]string, 0, h.areas.Len())
	for _, a := range h.areas.All() {
		out = append(out, a.Name)
	}
	return append(out, h.catalog.MusicList()...)
}

// areaContext builds the packets that render an area for viewer. A nil viewer
// gets the lighting-only view.
func (h *Hub) areaContext(a *Area, viewer *Client) []proto.Record {
	blind := viewer != nil && viewer.IsBlind()

	evidence := make([]string, 0, len(a.Evidence))
	for _, ev := range a.Evidence {
		evidence = append(evidence, proto.JoinSub(ev.Name, ev.Description, ev.Image))
	}

	return []proto.Record{
		proto.New(proto.TypeHealth, "1", strconv.Itoa(a.DefenseHP)),
		proto.New(proto.TypeHealth, "2", strconv.Itoa(a.ProsecutionHP)),
		proto.New(proto.TypeBackground, a.EffectiveBackground(blind)),
		proto.New(proto.TypeEvidence, evidence...),
	}
}

func (h *Hub) characterName(charID int) (string, error) {
	if charID == SpectatorID {
		return h.spectatorName, nil
	}
	name, ok := h.catalog.CharacterName(charID)
	if !ok {
		return "", ErrInvalidCharacter
	}
	return name, nil
}

// mustArea resolves the area of a joined client. Membership symmetry makes a
// miss a programming error.
func (h *Hub) mustArea(c *Client) *Area {
	a, ok := h.areas.Get(c.AreaID)
	if !ok {
		panic(fmt.Sprintf("client %d references unknown area %d", c.ID, c.AreaID))
	}
	return a
}

func (h *Hub) send(c *Client, recs ...proto.Record) {
	if !c.outbox.Push(recs...) {
		return
	}
	for _, r := range recs {
		h.metrics.PacketSent(r.Type)
	}
}

func (h *Hub) sendOOC(c *Client, text string) {
	h.send(c, proto.New(proto.TypeOOCMessage, h.hostname, text))
}

func charPicked(c *Client) proto.Record {
	return proto.New(proto.TypeCharPicked, strconv.Itoa(c.ID), "CID", strconv.Itoa(c.CharID))
}
