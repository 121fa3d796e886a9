package proto

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxRecordBytes bounds how much unterminated input a Decoder keeps.
const DefaultMaxRecordBytes = 16 * 1024

var (
	// ErrFraming reports input that cannot be turned into a record.
	ErrFraming = errors.New("malformed record")
	// ErrUnknownCommand reports a record whose type is not recognised.
	ErrUnknownCommand = errors.New("unknown command")
)

// Split cuts every complete record out of buf and returns the unterminated
// remainder. Records with an unknown type are dropped and reported in errs.
func Split(buf []byte) (records []Record, rest []byte, errs []error) {
	for {
		idx := bytes.IndexByte(buf, Terminator)
		if idx < 0 {
			return records, buf, errs
		}
		chunk := string(buf[:idx])
		buf = buf[idx+1:]

		rec, ok, err := parse(chunk)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			records = append(records, rec)
		}
	}
}

func parse(chunk string) (Record, bool, error) {
	chunk = strings.TrimLeft(chunk, " \t\r\n\x00")
	chunk = strings.TrimSuffix(chunk, string(Separator))
	if chunk == "" {
		return Record{}, false, nil
	}

	parts := strings.Split(chunk, string(Separator))
	typ := parts[0]
	if typ == "" {
		return Record{}, false, fmt.Errorf("%w: empty command type", ErrFraming)
	}
	if !IsClientCommand(typ) {
		return Record{}, false, fmt.Errorf("%w: %q", ErrUnknownCommand, typ)
	}

	// A bare type keeps nil fields, matching New(typ).
	var fields []string
	for _, p := range parts[1:] {
		fields = append(fields, Unescape(p))
	}
	return Record{Type: typ, Fields: fields}, true, nil
}

// Decoder accumulates stream input across reads and yields whole records.
type Decoder struct {
	buf []byte
	max int
}

// NewDecoder creates a decoder that drops unterminated input beyond max bytes.
func NewDecoder(max int) *Decoder {
	if max <= 0 {
		max = DefaultMaxRecordBytes
	}
	return &Decoder{max: max}
}

// Decode appends data to the pending buffer and returns every complete record.
func (d *Decoder) Decode(data []byte) ([]Record, []error) {
	d.buf = append(d.buf, data...)
	records, rest, errs := Split(d.buf)

	if len(rest) > d.max {
		errs = append(errs, fmt.Errorf("%w: %d bytes without terminator", ErrFraming, len(rest)))
		rest = nil
	}
	// Copy so the backing array of consumed input can be released.
	d.buf = append([]byte(nil), rest...)
	return records, errs
}

// Pending returns how many unterminated bytes are buffered.
func (d *Decoder) Pending() int {
	return len(d.buf)
}
