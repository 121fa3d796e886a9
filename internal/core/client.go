package core

import "time"

// SpectatorID is the character id shared by every spectating client.
const SpectatorID = -1

// Client is a joined participant as seen by the core layer. Fields are owned
// by the Hub and only change under its lock; Hub.Client hands out copies.
type Client struct {
	ID        int
	SessionID string
	Name      string
	CharID    int
	CharName  string
	HDID      string
	Flags     Flags
	Pos       string
	LastICAt  time.Time
	AreaID    int

	outbox *Outbox
}

// NewClient constructs a client bound to an outbox.
func NewClient(id int, sessionID string, outbox *Outbox) *Client {
	return &Client{
		ID:        id,
		SessionID: sessionID,
		CharID:    SpectatorID,
		outbox:    outbox,
	}
}

func (c *Client) IsModerator() bool        { return c.Flags.Has(FlagModerator) }
func (c *Client) IsCommunityManager() bool { return c.Flags.Has(FlagCommunityManager) }
func (c *Client) IsGameMaster() bool       { return c.Flags.Has(FlagGameMaster) }
func (c *Client) IsDeaf() bool             { return c.Flags.Has(FlagDeaf) }
func (c *Client) IsBlind() bool            { return c.Flags.Has(FlagBlind) }
func (c *Client) Autopass() bool           { return c.Flags.Has(FlagAutopass) }

// IsPrivileged reports whether any login role is held.
func (c *Client) IsPrivileged() bool {
	return c.Flags&privilegeFlags != 0
}

// IsSpectator reports whether the client holds the spectator character.
func (c *Client) IsSpectator() bool {
	return c.CharID == SpectatorID
}

// DisplayName is the OOC name, or the character name before one is chosen.
func (c *Client) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.CharName
}

// Outbox returns the packet queue of the client's connection.
func (c *Client) Outbox() *Outbox {
	return c.outbox
}
