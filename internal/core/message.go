package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/Chrezm/TsuserverDR/internal/proto"
)

// DeafPlaceholder replaces IC text for deaf recipients.
const DeafPlaceholder = "(Your ears are ringing)"

// deafExemptPrefixes mark meta annotations a deaf client still perceives.
var deafExemptPrefixes = []string{"*", "(", "["}

// ICMessage is an in-character message as routed between area members.
// Style fields are carried verbatim.
type ICMessage struct {
	MsgType    string
	Prefix     string
	Folder     string
	Anim       string
	Text       string
	Pos        string
	Sound      string
	AnimType   string
	CharID     int
	SoundDelay string
	Button     string
	Evidence   int
	Flip       string
	Ding       string
	Color      string
	SentAt     time.Time
}

// Record serializes the message as an MS record.
func (m ICMessage) Record() proto.Record {
	fields := make([]string, proto.ICFieldCount)
	fields[proto.ICMsgType] = m.MsgType
	fields[proto.ICPrefix] = m.Prefix
	fields[proto.ICFolder] = m.Folder
	fields[proto.ICAnim] = m.Anim
	fields[proto.ICText] = m.Text
	fields[proto.ICPos] = m.Pos
	fields[proto.ICSound] = m.Sound
	fields[proto.ICAnimType] = m.AnimType
	fields[proto.ICCharID] = strconv.Itoa(m.CharID)
	fields[proto.ICSoundDelay] = m.SoundDelay
	fields[proto.ICButton] = m.Button
	fields[proto.ICEvidence] = strconv.Itoa(m.Evidence)
	fields[proto.ICFlip] = m.Flip
	fields[proto.ICDing] = m.Ding
	fields[proto.ICColor] = m.Color
	return proto.Record{Type: proto.TypeICMessage, Fields: fields}
}

// heardBy returns the text a recipient perceives.
func (m ICMessage) heardBy(recipient *Client, senderID int) string {
	if recipient.ID == senderID || !recipient.IsDeaf() {
		return m.Text
	}
	for _, p := range deafExemptPrefixes {
		if strings.HasPrefix(m.Text, p) {
			return m.Text
		}
	}
	return DeafPlaceholder
}
