package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Chrezm/TsuserverDR/internal/core"
)

// Prefix marks OOC text that is a command rather than chat.
const Prefix = "/"

// ErrUnknownCommand is replied when no command has the given name.
var ErrUnknownCommand = &core.CoreError{Code: core.ErrCodeUnknownCommand, Message: "Invalid command."}

// Handler runs a command for the client on slot.
type Handler func(d *Dispatcher, slot int, args string) error

// Command is a registered OOC command.
type Command struct {
	Name      string
	Handler   Handler
	Moderator bool
}

// Dispatcher resolves slash commands and runs them against the hub.
type Dispatcher struct {
	hub  *core.Hub
	cmds map[string]*Command
	log  *zerolog.Logger
}

// New creates a dispatcher with every built-in command registered.
func New(hub *core.Hub, logger *zerolog.Logger) *Dispatcher {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	d := &Dispatcher{hub: hub, cmds: make(map[string]*Command), log: logger}

	register := func(name string, h Handler) {
		d.cmds[name] = &Command{Name: name, Handler: h}
	}
	registerMod := func(name string, h Handler) {
		d.cmds[name] = &Command{Name: name, Handler: h, Moderator: true}
	}

	// Movement
	register("area", cmdArea)
	register("autopass", cmdAutopass)

	// Environment
	register("lights", cmdLights)

	// Privilege
	register("login", loginAs(core.RoleModerator))
	register("logincm", loginAs(core.RoleCommunityManager))
	register("loginrp", loginAs(core.RoleGameMaster))
	register("logout", cmdLogout)

	// Senses
	register("deafen", setSense(core.SenseDeaf, true))
	register("undeafen", setSense(core.SenseDeaf, false))
	register("blind", setSense(core.SenseBlind, true))
	register("unblind", setSense(core.SenseBlind, false))

	// Character
	register("switch", cmdSwitch)

	registerMod("announce", cmdAnnounce)

	return d
}

// IsCommand reports whether OOC text should be dispatched.
func IsCommand(text string) bool {
	return strings.HasPrefix(text, Prefix) && len(text) > len(Prefix)
}

// Dispatch runs the command in input. Failures are replied to the caller as
// server OOC messages and also returned.
func (d *Dispatcher) Dispatch(slot int, input string) error {
	name, args, _ := strings.Cut(strings.TrimPrefix(input, Prefix), " ")
	name = strings.ToLower(name)
	args = strings.TrimSpace(args)

	err := d.run(slot, name, args)
	if err == nil {
		return nil
	}
	if !errors.Is(err, core.ErrRateLimited) {
		_ = d.hub.SendOOC(slot, err.Error())
	}
	d.log.Debug().Int("client_id", slot).Str("command", name).Str("code", core.CodeOf(err)).Err(err).Msg("command rejected")
	return err
}

func (d *Dispatcher) run(slot int, name, args string) error {
	cmd, ok := d.cmds[name]
	if !ok {
		return ErrUnknownCommand
	}
	if cmd.Moderator {
		c, ok := d.hub.Client(slot)
		if !ok {
			return core.ErrUnknownClient
		}
		if !c.IsModerator() {
			return core.ErrNotAuthorized
		}
	}
	return cmd.Handler(d, slot, args)
}

func usage(msg string) error {
	return &core.CoreError{Code: core.ErrCodeBadRequest, Message: msg}
}

func cmdArea(d *Dispatcher, slot int, args string) error {
	if args == "" {
		return d.hub.SendOOC(slot, d.areaList())
	}
	id, err := strconv.Atoi(args)
	if err != nil {
		return usage("Area ID must be a number.")
	}
	return d.hub.MoveClient(slot, id)
}

func (d *Dispatcher) areaList() string {
	var b strings.Builder
	b.WriteString("== Area List ==")
	for _, a := range d.hub.Areas() {
		fmt.Fprintf(&b, "\nArea %d: %s (users: %d)", a.ID, a.Name, len(a.Members))
		if !a.LightsOn {
			b.WriteString(" [dark]")
		}
	}
	return b.String()
}

func cmdAutopass(d *Dispatcher, slot int, args string) error {
	if args != "" {
		return usage("This command has no arguments.")
	}
	_, err := d.hub.ToggleAutopass(slot)
	return err
}

func cmdLights(d *Dispatcher, slot int, args string) error {
	switch strings.ToLower(args) {
	case "on":
		return d.hub.SetLightsFor(slot, true)
	case "off":
		return d.hub.SetLightsFor(slot, false)
	default:
		return usage("Expected /lights [on|off]")
	}
}

func loginAs(role core.Role) Handler {
	return func(d *Dispatcher, slot int, args string) error {
		return d.hub.Login(slot, role, args)
	}
}

func cmdLogout(d *Dispatcher, slot int, args string) error {
	return d.hub.Logout(slot)
}

func setSense(sense core.Sense, on bool) Handler {
	return func(d *Dispatcher, slot int, args string) error {
		if args == "" {
			return usage("You must specify a target.")
		}
		target, err := strconv.Atoi(args)
		if err != nil {
			return usage("Target ID must be a number.")
		}
		return d.hub.SetSense(slot, target, sense, on)
	}
}

func cmdSwitch(d *Dispatcher, slot int, args string) error {
	if args == "" {
		return usage("You must specify a character name.")
	}
	charID, ok := d.hub.Catalog().CharacterID(args)
	if !ok {
		return core.ErrInvalidCharacter
	}
	if err := d.hub.ChangeCharacter(slot, charID); err != nil {
		return err
	}
	return d.hub.SendOOC(slot, "Character changed.")
}

func cmdAnnounce(d *Dispatcher, slot int, args string) error {
	if args == "" {
		return usage("Cannot make empty announcements.")
	}
	d.hub.Announce("=== Announcement ===\n" + args + "\n==================")
	return nil
}
