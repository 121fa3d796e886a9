package proto

import (
	"bytes"
	"strings"
)

const (
	// Separator splits the fields of a record.
	Separator = '#'
	// Terminator ends a record on the wire.
	Terminator = '%'
)

// Record is a single protocol command: a type followed by ordered fields.
type Record struct {
	Type   string
	Fields []string
}

// New builds a record from a type and its fields.
func New(typ string, fields ...string) Record {
	return Record{Type: typ, Fields: fields}
}

// Field returns the i-th field or "" when the record is shorter.
func (r Record) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

func (r Record) String() string {
	return string(Encode(r))
}

var (
	escaper = strings.NewReplacer(
		"#", "<num>",
		"$", "<dollar>",
		"%", "<percent>",
	)
	unescaper = strings.NewReplacer(
		"<num>", "#",
		"<dollar>", "$",
		"<percent>", "%",
	)
	subEscaper   = strings.NewReplacer("&", "<and>")
	subUnescaper = strings.NewReplacer("<and>", "&")
)

// Escape replaces reserved characters in a field value with literal tokens.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape.
func Unescape(s string) string {
	return unescaper.Replace(s)
}

// JoinSub joins list sub-fields with '&', escaping '&' inside each part.
func JoinSub(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = subEscaper.Replace(p)
	}
	return strings.Join(escaped, "&")
}

// SplitSub reverses JoinSub.
func SplitSub(s string) []string {
	parts := strings.Split(s, "&")
	for i, p := range parts {
		parts[i] = subUnescaper.Replace(p)
	}
	return parts
}

// Encode serializes a record as TYPE#f1#f2#...#%.
func Encode(r Record) []byte {
	var buf bytes.Buffer
	buf.WriteString(r.Type)
	buf.WriteByte(Separator)
	for _, f := range r.Fields {
		buf.WriteString(Escape(f))
		buf.WriteByte(Separator)
	}
	buf.WriteByte(Terminator)
	return buf.Bytes()
}
