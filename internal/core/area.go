package core

import (
	"sort"
	"time"

	"github.com/Chrezm/TsuserverDR/internal/catalog"
)

// Default HP bar values when the area file leaves them out.
const defaultHP = 10

// Area is a room: a member set plus environment state. It never owns its
// members; the ClientDirectory does.
type Area struct {
	ID                 int
	Name               string
	Background         string
	BlackoutBackground string
	LightsOn           bool
	HasLights          bool
	DefenseHP          int
	ProsecutionHP      int
	Evidence           []catalog.Evidence

	members map[int]*Client

	floodInterval time.Duration
	nextMessageAt time.Time
	floodGate     func() bool
	now           func() time.Time
}

// NewArea builds an area from its catalog entry. blackout is used when the
// entry does not name its own blackout background.
func NewArea(id int, cfg catalog.Area, blackout string, floodInterval time.Duration) *Area {
	a := &Area{
		ID:                 id,
		Name:               cfg.Name,
		Background:         cfg.Background,
		BlackoutBackground: cfg.BlackoutBackground,
		LightsOn:           true,
		HasLights:          cfg.Lights(),
		DefenseHP:          cfg.DefenseHP,
		ProsecutionHP:      cfg.ProsecutionHP,
		Evidence:           cfg.Evidence,
		members:            make(map[int]*Client),
		floodInterval:      floodInterval,
		now:                time.Now,
	}
	if a.BlackoutBackground == "" {
		a.BlackoutBackground = blackout
	}
	if a.DefenseHP == 0 {
		a.DefenseHP = defaultHP
	}
	if a.ProsecutionHP == 0 {
		a.ProsecutionHP = defaultHP
	}
	return a
}

// AddClient inserts a client into the area. Returns true if newly added.
func (a *Area) AddClient(c *Client) bool {
	if _, exists := a.members[c.ID]; exists {
		return false
	}
	a.members[c.ID] = c
	return true
}

// RemoveClient deletes a client from the area. Returns true if removed.
func (a *Area) RemoveClient(c *Client) bool {
	if cur, exists := a.members[c.ID]; !exists || cur != c {
		return false
	}
	delete(a.members, c.ID)
	return true
}

// Members returns the current members ordered by ascending slot id.
func (a *Area) Members() []*Client {
	out := make([]*Client, 0, len(a.members))
	for _, c := range a.members {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of members.
func (a *Area) Len() int {
	return len(a.members)
}

// Empty returns true if no clients are in the area.
func (a *Area) Empty() bool {
	return len(a.members) == 0
}

// IsCharacterAvailable reports whether no member holds charID. The spectator
// id is always available.
func (a *Area) IsCharacterAvailable(charID int) bool {
	if charID == SpectatorID {
		return true
	}
	for _, c := range a.members {
		if c.CharID == charID {
			return false
		}
	}
	return true
}

// EffectiveBackground is the background a member perceives.
func (a *Area) EffectiveBackground(blind bool) string {
	if !a.LightsOn || blind {
		return a.BlackoutBackground
	}
	return a.Background
}

// CanSendMessage reports whether the IC flood gate lets a new message through.
func (a *Area) CanSendMessage() bool {
	if a.floodGate != nil {
		return a.floodGate()
	}
	return !a.now().Before(a.nextMessageAt)
}

func (a *Area) noteMessage() {
	a.nextMessageAt = a.now().Add(a.floodInterval)
}

// HasEvidence reports whether idx names an evidence item (1-based, 0 is none).
func (a *Area) HasEvidence(idx int) bool {
	return idx >= 1 && idx <= len(a.Evidence)
}
