package core

import (
	"fmt"
	"sort"
)

// AreaDirectory owns every area, indexed by id. Area 0 is the default area.
type AreaDirectory struct {
	areas []*Area
}

// NewAreaDirectory validates that ids are dense, ordered and non-empty.
func NewAreaDirectory(areas []*Area) (*AreaDirectory, error) {
	if len(areas) == 0 {
		return nil, fmt.Errorf("area directory: no areas")
	}
	for i, a := range areas {
		if a.ID != i {
			return nil, fmt.Errorf("area directory: area %q has id %d at position %d", a.Name, a.ID, i)
		}
	}
	return &AreaDirectory{areas: areas}, nil
}

// Get resolves an area id.
func (d *AreaDirectory) Get(id int) (*Area, bool) {
	if id < 0 || id >= len(d.areas) {
		return nil, false
	}
	return d.areas[id], true
}

// ByName resolves an area by its display name.
func (d *AreaDirectory) ByName(name string) (*Area, bool) {
	for _, a := range d.areas {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// Default returns the area new clients join.
func (d *AreaDirectory) Default() *Area {
	return d.areas[0]
}

// All returns the areas in id order.
func (d *AreaDirectory) All() []*Area {
	return d.areas
}

// Len returns the number of areas.
func (d *AreaDirectory) Len() int {
	return len(d.areas)
}

// ClientDirectory owns connection slots and joined clients. A slot is
// reserved when a connection opens and becomes a Client on character pick.
type ClientDirectory struct {
	limit    int
	reserved map[int]*Outbox
	clients  map[int]*Client
}

// NewClientDirectory creates a directory with room for limit connections.
func NewClientDirectory(limit int) *ClientDirectory {
	return &ClientDirectory{
		limit:    limit,
		reserved: make(map[int]*Outbox),
		clients:  make(map[int]*Client),
	}
}

// Reserve takes the lowest free slot id.
func (d *ClientDirectory) Reserve(out *Outbox) (int, error) {
	for id := 0; id < d.limit; id++ {
		if _, taken := d.reserved[id]; !taken {
			d.reserved[id] = out
			return id, nil
		}
	}
	return 0, ErrServerFull
}

// Reserved returns the outbox of a reserved slot.
func (d *ClientDirectory) Reserved(id int) (*Outbox, bool) {
	out, ok := d.reserved[id]
	return out, ok
}

// Insert registers a joined client on its reserved slot.
func (d *ClientDirectory) Insert(c *Client) error {
	if _, ok := d.reserved[c.ID]; !ok {
		return ErrUnknownClient
	}
	d.clients[c.ID] = c
	return nil
}

// Get resolves a joined client.
func (d *ClientDirectory) Get(id int) (*Client, bool) {
	c, ok := d.clients[id]
	return c, ok
}

// Release frees a slot and returns its client if it had joined.
func (d *ClientDirectory) Release(id int) (*Client, bool) {
	c, joined := d.clients[id]
	delete(d.clients, id)
	delete(d.reserved, id)
	return c, joined
}

// All returns joined clients ordered by slot id.
func (d *ClientDirectory) All() []*Client {
	out := make([]*Client, 0, len(d.clients))
	for _, c := range d.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of joined clients.
func (d *ClientDirectory) Len() int {
	return len(d.clients)
}

// Limit returns the maximum number of connections.
func (d *ClientDirectory) Limit() int {
	return d.limit
}
