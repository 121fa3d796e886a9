package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Chrezm/TsuserverDR/internal/commands"
	"github.com/Chrezm/TsuserverDR/internal/core"
	"github.com/Chrezm/TsuserverDR/internal/metrics"
	"github.com/Chrezm/TsuserverDR/internal/proto"
)

// State is a step of the connection handshake.
type State int

const (
	StateNew State = iota
	StateIdentified
	StateCharlistRequested
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateIdentified:
		return "identified"
	case StateCharlistRequested:
		return "charlist_requested"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// decryptorKey is the legacy handshake key clients expect first.
const decryptorKey = "34"

// Commands runs slash commands typed in OOC chat.
type Commands interface {
	Dispatch(slot int, input string) error
}

// Options configures a session.
type Options struct {
	Software       string
	Version        string
	Transport      string // labels the connection in metrics and logs
	MaxRecordBytes int
	Commands       Commands
	Metrics        *metrics.Recorder
	Logger         *zerolog.Logger
}

// Session drives one connection from handshake to teardown. Handle must be
// called from a single goroutine; Close may be called from any.
type Session struct {
	id   string
	hub  *core.Hub
	slot int
	out  *core.Outbox
	dec  *proto.Decoder
	opts Options
	log  zerolog.Logger

	mu    sync.Mutex
	state State
}

// New reserves a slot for a freshly opened connection and queues the
// decryptor greeting. It fails with core.ErrServerFull when no slot is free.
func New(hub *core.Hub, opts Options) (*Session, error) {
	if opts.Software == "" {
		opts.Software = "TsuserverDR"
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}

	id := uuid.NewString()
	slot, out, err := hub.Reserve(id)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:   id,
		hub:  hub,
		slot: slot,
		out:  out,
		dec:  proto.NewDecoder(opts.MaxRecordBytes),
		opts: opts,
		log:  opts.Logger.With().Str("session_id", id).Int("client_id", slot).Str("transport", opts.Transport).Logger(),
	}
	opts.Metrics.SessionOpened(opts.Transport)
	s.send(proto.New(proto.TypeDecryptor, decryptorKey))
	return s, nil
}

// ID is the session uuid.
func (s *Session) ID() string { return s.id }

// Slot is the connection slot reserved for the session.
func (s *Session) Slot() int { return s.slot }

// Outbox is the packet queue the transport drains.
func (s *Session) Outbox() *core.Outbox { return s.out }

// State returns the current handshake state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateClosed {
		s.state = st
	}
}

// Close tears the session down. Calling it again is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	s.mu.Unlock()

	s.hub.Disconnect(s.slot)
	s.opts.Metrics.SessionClosed()
	s.log.Debug().Msg("session closed")
}

// Feed decodes raw transport input and handles every complete record.
func (s *Session) Feed(data []byte) {
	recs, errs := s.dec.Decode(data)
	for _, err := range errs {
		s.HandleError(err)
	}
	for _, rec := range recs {
		s.Handle(rec)
	}
}

// Flush writes every queued record in order, one write per record. It
// reports whether the outbox was closed, after which the transport should
// hang up.
func (s *Session) Flush(write func([]byte) error) (bool, error) {
	closed := s.out.Closed()
	for _, rec := range s.out.Drain() {
		if err := write(proto.Encode(rec)); err != nil {
			return closed, err
		}
	}
	return closed, nil
}

// HandleError accounts for a record the decoder dropped.
func (s *Session) HandleError(err error) {
	reason := core.ErrCodeProtocolFraming
	if errors.Is(err, proto.ErrUnknownCommand) {
		reason = core.ErrCodeUnknownCommand
	}
	s.opts.Metrics.RecordDropped(reason)
	s.log.Debug().Err(err).Msg("dropped record")
}

// Handle processes one decoded record.
func (s *Session) Handle(rec proto.Record) {
	state := s.State()
	if state == StateClosed {
		return
	}
	s.opts.Metrics.RecordReceived(rec.Type)

	if state == StateNew {
		if rec.Type == proto.TypeHello {
			s.hello()
			s.setState(StateIdentified)
		}
		return
	}

	var err error
	switch rec.Type {
	case proto.TypeHello:
		s.hello()
	case proto.TypeIdentify:
		s.send(proto.New(proto.TypeFeatures, proto.Features...))
	case proto.TypeAskCounts:
		s.counts()
	case proto.TypeAskChars, proto.TypeRequestChars:
		s.send(proto.New(proto.TypeCharList, s.hub.Catalog().Characters...))
		if state == StateIdentified {
			s.setState(StateCharlistRequested)
		}
	case proto.TypeRequestMusic:
		s.send(proto.New(proto.TypeMusicList, s.hub.AreaAndMusicList()...))
	case proto.TypeRequestDone:
		s.done()
	case proto.TypeKeepAlive:
		s.send(proto.New(proto.TypeCheck))
	case proto.TypeChooseChar:
		err = s.chooseCharacter(rec, state)
	case proto.TypeICMessage, proto.TypeOOCMessage, proto.TypeMusicOrArea:
		if state != StateReady {
			s.log.Debug().Str("type", rec.Type).Msg("ignored record before character selection")
			return
		}
		err = s.handleReady(rec)
	}

	if err != nil {
		s.reject(rec.Type, err)
	}
}

// hello answers HI. A repeated HI is answered again without moving the
// state backwards.
func (s *Session) hello() {
	players, limit := s.hub.PlayerCount()
	s.send(
		proto.New(proto.TypeIdentify, strconv.Itoa(s.slot), s.opts.Software, s.opts.Version),
		proto.New(proto.TypePlayerCount, strconv.Itoa(players), strconv.Itoa(limit)),
	)
}

func (s *Session) counts() {
	cat := s.hub.Catalog()
	evidence := 0
	if len(cat.Areas) > 0 {
		evidence = len(cat.Areas[0].Evidence)
	}
	s.send(proto.New(proto.TypeCounts,
		strconv.Itoa(len(cat.Characters)),
		strconv.Itoa(evidence),
		strconv.Itoa(len(cat.MusicList())),
	))
}

func (s *Session) done() {
	recs := []proto.Record{proto.New(proto.TypeCharsCheck, s.hub.CharsCheck()...)}
	recs = append(recs, s.hub.AreaContext(s.slot)...)
	recs = append(recs,
		proto.New(proto.TypeMusicMode, "1"),
		proto.New(proto.TypeGuardPass),
		proto.New(proto.TypeDone),
	)
	s.send(recs...)
}

func (s *Session) chooseCharacter(rec proto.Record, state State) error {
	if len(rec.Fields) < 2 {
		return s.malformed(rec)
	}
	slot, err := strconv.Atoi(rec.Field(0))
	if err != nil || slot != s.slot {
		return core.ErrUnknownClient
	}
	charID, err := strconv.Atoi(rec.Field(1))
	if err != nil {
		return core.ErrInvalidCharacter
	}

	if state == StateReady {
		return s.hub.ChangeCharacter(s.slot, charID)
	}

	if _, err := s.hub.Join(core.JoinRequest{
		Slot:      s.slot,
		SessionID: s.id,
		CharID:    charID,
		HDID:      rec.Field(2),
	}); err != nil {
		return err
	}
	s.setState(StateReady)
	return nil
}

func (s *Session) handleReady(rec proto.Record) error {
	switch rec.Type {
	case proto.TypeICMessage:
		if len(rec.Fields) < proto.ICFieldCount {
			return s.malformed(rec)
		}
		msg, err := icMessage(rec)
		if err != nil {
			return s.malformed(rec)
		}
		// IC rejections are never replied to.
		if err := s.hub.RouteIC(s.slot, msg); err != nil {
			s.log.Debug().Err(err).Msg("ic message dropped")
		}
		return nil

	case proto.TypeOOCMessage:
		if len(rec.Fields) < 2 {
			return s.malformed(rec)
		}
		name, text := rec.Field(0), rec.Field(1)
		if s.opts.Commands != nil && commands.IsCommand(text) {
			if err := s.hub.SetName(s.slot, name); err != nil {
				return err
			}
			// The dispatcher replies on its own.
			_ = s.opts.Commands.Dispatch(s.slot, text)
			return nil
		}
		return s.hub.RouteOOC(s.slot, name, text)

	case proto.TypeMusicOrArea:
		if len(rec.Fields) < 1 {
			return s.malformed(rec)
		}
		return s.musicOrArea(rec.Field(0))
	}
	return nil
}

// musicOrArea resolves an MC target: "id-name", a bare area name, or a track.
func (s *Session) musicOrArea(target string) error {
	if head, _, ok := strings.Cut(target, "-"); ok {
		if id, err := strconv.Atoi(head); err == nil {
			if _, exists := s.hub.Area(id); exists {
				return s.hub.MoveClient(s.slot, id)
			}
		}
	}
	if id, ok := s.hub.AreaIDByName(target); ok {
		return s.hub.MoveClient(s.slot, id)
	}
	return s.hub.PlayMusic(s.slot, target)
}

func (s *Session) malformed(rec proto.Record) error {
	s.HandleError(fmt.Errorf("%w: %s with %d fields", proto.ErrFraming, rec.Type, len(rec.Fields)))
	return nil
}

// reject replies to this connection only. Rate limiting stays silent.
func (s *Session) reject(typ string, err error) {
	s.log.Debug().Str("type", typ).Str("code", core.CodeOf(err)).Err(err).Msg("rejected record")
	if errors.Is(err, core.ErrRateLimited) {
		return
	}
	s.send(proto.New(proto.TypeOOCMessage, s.hub.Hostname(), err.Error()))
}

func (s *Session) send(recs ...proto.Record) {
	if !s.out.Push(recs...) {
		return
	}
	for _, r := range recs {
		s.opts.Metrics.PacketSent(r.Type)
	}
}

func icMessage(rec proto.Record) (core.ICMessage, error) {
	charID, err := strconv.Atoi(rec.Field(proto.ICCharID))
	if err != nil {
		return core.ICMessage{}, err
	}
	evidence, err := strconv.Atoi(rec.Field(proto.ICEvidence))
	if err != nil {
		evidence = 0
	}
	return core.ICMessage{
		MsgType:    rec.Field(proto.ICMsgType),
		Prefix:     rec.Field(proto.ICPrefix),
		Folder:     rec.Field(proto.ICFolder),
		Anim:       rec.Field(proto.ICAnim),
		Text:       rec.Field(proto.ICText),
		Pos:        rec.Field(proto.ICPos),
		Sound:      rec.Field(proto.ICSound),
		AnimType:   rec.Field(proto.ICAnimType),
		CharID:     charID,
		SoundDelay: rec.Field(proto.ICSoundDelay),
		Button:     rec.Field(proto.ICButton),
		Evidence:   evidence,
		Flip:       rec.Field(proto.ICFlip),
		Ding:       rec.Field(proto.ICDing),
		Color:      rec.Field(proto.ICColor),
	}, nil
}
