package core

// Flags is the set of independent privilege and status bits of a client.
// Any combination is valid; there is no rank between them.
type Flags uint8

const (
	FlagModerator Flags = 1 << iota
	FlagCommunityManager
	FlagGameMaster
	FlagDeaf
	FlagBlind
	FlagAutopass
)

const privilegeFlags = FlagModerator | FlagCommunityManager | FlagGameMaster

// Has reports whether every bit of x is set.
func (f Flags) Has(x Flags) bool {
	return f&x == x
}

// Role is a password-gated privilege.
type Role int

const (
	RoleModerator Role = iota
	RoleCommunityManager
	RoleGameMaster
)

// Flag returns the bit a role sets on login.
func (r Role) Flag() Flags {
	switch r {
	case RoleModerator:
		return FlagModerator
	case RoleCommunityManager:
		return FlagCommunityManager
	case RoleGameMaster:
		return FlagGameMaster
	default:
		return 0
	}
}

func (r Role) String() string {
	switch r {
	case RoleModerator:
		return "moderator"
	case RoleCommunityManager:
		return "community manager"
	case RoleGameMaster:
		return "game master"
	default:
		return "unknown"
	}
}

// Sense is a sensory channel that can be blocked on a client.
type Sense int

const (
	SenseDeaf Sense = iota
	SenseBlind
)

// Flag returns the status bit for the sense.
func (s Sense) Flag() Flags {
	if s == SenseBlind {
		return FlagBlind
	}
	return FlagDeaf
}

func (s Sense) verb(on bool) string {
	switch {
	case s == SenseDeaf && on:
		return "deafened"
	case s == SenseDeaf:
		return "undeafened"
	case on:
		return "blinded"
	default:
		return "unblinded"
	}
}

// Verifier checks a submitted password for a role.
type Verifier interface {
	Verify(role Role, password string) bool
}
