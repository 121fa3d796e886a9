package proto

// Client to server record types.
const (
	TypeHello        = "HI"
	TypeIdentify     = "ID"
	TypeAskCounts    = "askchaa"
	TypeAskChars     = "askchar2"
	TypeRequestChars = "RC"
	TypeRequestMusic = "RM"
	TypeRequestDone  = "RD"
	TypeChooseChar   = "CC"
	TypeICMessage    = "MS"
	TypeOOCMessage   = "CT"
	TypeMusicOrArea  = "MC"
	TypeKeepAlive    = "CH"
)

// Server to client record types.
const (
	TypeDecryptor   = "decryptor"
	TypePlayerCount = "PN"
	TypeFeatures    = "FL"
	TypeCounts      = "SI"
	TypeCharList    = "SC"
	TypeMusicList   = "SM"
	TypeCharsCheck  = "CharsCheck"
	TypeHealth      = "HP"
	TypeBackground  = "BN"
	TypeEvidence    = "LE"
	TypeMusicMode   = "MM"
	TypeGuardPass   = "OPPASS"
	TypeDone        = "DONE"
	TypeCharPicked  = "PV"
	TypeAreaList    = "FM"
	TypeCheck       = "CHECK"
)

var clientCommands = map[string]struct{}{
	TypeHello:        {},
	TypeIdentify:     {},
	TypeAskCounts:    {},
	TypeAskChars:     {},
	TypeRequestChars: {},
	TypeRequestMusic: {},
	TypeRequestDone:  {},
	TypeChooseChar:   {},
	TypeICMessage:    {},
	TypeOOCMessage:   {},
	TypeMusicOrArea:  {},
	TypeKeepAlive:    {},
}

// IsClientCommand reports whether typ is a record a client may send.
func IsClientCommand(typ string) bool {
	_, ok := clientCommands[typ]
	return ok
}

// Positions of the IC message fields, shared by MS in both directions.
const (
	ICMsgType = iota
	ICPrefix
	ICFolder
	ICAnim
	ICText
	ICPos
	ICSound
	ICAnimType
	ICCharID
	ICSoundDelay
	ICButton
	ICEvidence
	ICFlip
	ICDing
	ICColor

	ICFieldCount
)

// Feature flags advertised in FL.
var Features = []string{
	"yellowtext", "customobjections", "flipping", "fastloading",
	"noencryption", "deskmod", "evidence",
}
