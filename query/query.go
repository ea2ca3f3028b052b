/*Package query implements the binary query/scan mini-language used to
assemble and parse every NetMD command payload.

A single template string drives both directions. Literal bytes are given
as whitespace-separated hex pairs; directives consume or produce values
positionally:

	%b %w %d %q   1/2/4/8-byte big-endian integers (%< / %> prefix overrides endianness)
	%x            length-prefixed (u16 BE) byte array
	%s            NUL-terminated, length-prefixed byte array
	%z            u8-length-prefixed byte array
	%*            remaining bytes (format: takes the rest of a []byte value; scan: rest of input)
	%B %W         BCD-encoded 1/2-byte integer
	%?            matches and discards one input byte (scan only)
	%#            rest as opaque bytes, scan stops consuming further literals

FormatQuery renders a template against positional values; ScanQuery parses
a reply against a template, matching every literal exactly and extracting
directive values in order.
*/
package query

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrorKind enumerates the ways a format/scan call can fail.
type ErrorKind int

const (
	// ErrBadLiteral means a hex literal in the template could not be parsed.
	ErrBadLiteral ErrorKind = iota
	// ErrMissingValue means a directive had no corresponding value.
	ErrMissingValue
	// ErrBadType means a value's Go type did not match its directive.
	ErrBadType
	// ErrMismatch means a literal in the template did not match the input during a scan.
	ErrMismatch
	// ErrShortInput means the input ended before the template was satisfied.
	ErrShortInput
	// ErrTrailingInput means bytes remained after the template was fully consumed.
	ErrTrailingInput
)

// Error is returned by FormatQuery and ScanQuery. It reports the byte
// offset at which the failure occurred and, for ErrMismatch, what was
// expected vs. observed.
type Error struct {
	Kind     ErrorKind
	Offset   int
	Template string
	Expected []byte
	Actual   []byte
	Message  string
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrMismatch:
		return fmt.Sprintf("query: mismatch at offset %d: expected % x, got % x", e.Offset, e.Expected, e.Actual)
	default:
		return fmt.Sprintf("query: %s at offset %d (template %q)", e.Message, e.Offset, e.Template)
	}
}

func newErr(kind ErrorKind, offset int, template, msg string) *Error {
	return &Error{Kind: kind, Offset: offset, Template: template, Message: msg}
}

// token is one parsed unit of a template.
type token struct {
	literal  []byte // non-nil for a literal-byte token
	directive byte  // 'b','w','d','q','x','s','z','*','B','W','?','#' for directive tokens
	bigEndian bool  // directive endianness, default true (big-endian)
}

// parseTemplate tokenizes a template string into literals and directives.
func parseTemplate(template string) ([]token, error) {
	var toks []token
	i := 0
	n := len(template)
	for i < n {
		c := template[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '%':
			if i+1 >= n {
				return nil, newErr(ErrBadLiteral, i, template, "dangling %")
			}
			i++
			bigEndian := true
			if template[i] == '<' {
				bigEndian = false
				i++
			} else if template[i] == '>' {
				bigEndian = true
				i++
			}
			if i >= n {
				return nil, newErr(ErrBadLiteral, i, template, "dangling endianness prefix")
			}
			d := template[i]
			switch d {
			case 'b', 'w', 'd', 'q', 'x', 's', 'z', '*', 'B', 'W', '?', '#':
				toks = append(toks, token{directive: d, bigEndian: bigEndian})
				i++
			default:
				return nil, newErr(ErrBadLiteral, i, template, fmt.Sprintf("unknown directive %%%c", d))
			}
		default:
			// two hex digits
			if i+1 >= n {
				return nil, newErr(ErrBadLiteral, i, template, "odd trailing hex nibble")
			}
			hx := template[i : i+2]
			b, err := strconv.ParseUint(hx, 16, 8)
			if err != nil {
				return nil, newErr(ErrBadLiteral, i, template, "invalid hex literal "+hx)
			}
			toks = append(toks, token{literal: []byte{byte(b)}})
			i += 2
		}
	}
	return toks, nil
}

func widthOf(d byte) int {
	switch d {
	case 'b', 'B':
		return 1
	case 'w', 'W':
		return 2
	case 'd':
		return 4
	case 'q':
		return 8
	}
	return 0
}

// FormatQuery renders template against values, consumed positionally in
// the order directives appear in the template.
func FormatQuery(template string, values ...interface{}) ([]byte, error) {
	toks, err := parseTemplate(template)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	vi := 0
	next := func() (interface{}, error) {
		if vi >= len(values) {
			return nil, newErr(ErrMissingValue, buf.Len(), template, "not enough values supplied")
		}
		v := values[vi]
		vi++
		return v, nil
	}
	for _, t := range toks {
		if t.literal != nil {
			buf.Write(t.literal)
			continue
		}
		switch t.directive {
		case 'b', 'w', 'd', 'q':
			v, err := next()
			if err != nil {
				return nil, err
			}
			u, ok := asUint(v)
			if !ok {
				return nil, newErr(ErrBadType, buf.Len(), template, fmt.Sprintf("value %v is not an integer for %%%c", v, t.directive))
			}
			width := widthOf(t.directive)
			writeInt(&buf, u, width, t.bigEndian)
		case 'B', 'W':
			v, err := next()
			if err != nil {
				return nil, err
			}
			u, ok := asUint(v)
			if !ok {
				return nil, newErr(ErrBadType, buf.Len(), template, fmt.Sprintf("value %v is not an integer for %%%c", v, t.directive))
			}
			width := widthOf(t.directive)
			bcd, err := intToBCD(u, width)
			if err != nil {
				return nil, newErr(ErrBadType, buf.Len(), template, err.Error())
			}
			buf.Write(bcd)
		case 'x':
			v, err := next()
			if err != nil {
				return nil, err
			}
			b, ok := v.([]byte)
			if !ok {
				return nil, newErr(ErrBadType, buf.Len(), template, "value is not []byte for %x")
			}
			if len(b) > 0xffff {
				return nil, newErr(ErrBadType, buf.Len(), template, "%x value too long")
			}
			var lenBuf [2]byte
			binary.BigEndian.PutUint16(lenBuf[:], uint16(len(b)))
			buf.Write(lenBuf[:])
			buf.Write(b)
		case 's':
			v, err := next()
			if err != nil {
				return nil, err
			}
			b, ok := v.([]byte)
			if !ok {
				return nil, newErr(ErrBadType, buf.Len(), template, "value is not []byte for %s")
			}
			full := append(append([]byte{}, b...), 0)
			if len(full) > 0xffff {
				return nil, newErr(ErrBadType, buf.Len(), template, "%s value too long")
			}
			var lenBuf [2]byte
			binary.BigEndian.PutUint16(lenBuf[:], uint16(len(full)))
			buf.Write(lenBuf[:])
			buf.Write(full)
		case 'z':
			v, err := next()
			if err != nil {
				return nil, err
			}
			b, ok := v.([]byte)
			if !ok {
				return nil, newErr(ErrBadType, buf.Len(), template, "value is not []byte for %z")
			}
			if len(b) > 0xff {
				return nil, newErr(ErrBadType, buf.Len(), template, "%z value too long")
			}
			buf.WriteByte(byte(len(b)))
			buf.Write(b)
		case '*', '#':
			v, err := next()
			if err != nil {
				return nil, err
			}
			b, ok := v.([]byte)
			if !ok {
				return nil, newErr(ErrBadType, buf.Len(), template, "value is not []byte for %*/%#")
			}
			buf.Write(b)
		case '?':
			// %? is scan-only; formatting it is a template error.
			return nil, newErr(ErrBadType, buf.Len(), template, "%? cannot be used in FormatQuery")
		}
	}
	return buf.Bytes(), nil
}

// ScanQuery parses reply against template, dropping the leading status
// byte Interface prepends to every reply, matching every literal exactly
// and returning extracted directive values in directive order. The input
// must be fully consumed unless the template ends in %* or %#.
func ScanQuery(reply []byte, template string) ([]interface{}, error) {
	toks, err := parseTemplate(template)
	if err != nil {
		return nil, err
	}
	if len(reply) < 1 {
		return nil, newErr(ErrShortInput, 0, template, "reply missing leading status byte")
	}
	in := reply[1:]
	pos := 0
	var out []interface{}
	for ti, t := range toks {
		if t.literal != nil {
			if pos >= len(in) {
				return nil, newErr(ErrShortInput, pos, template, "input ended before literal")
			}
			if in[pos] != t.literal[0] {
				return nil, &Error{Kind: ErrMismatch, Offset: pos, Template: template,
					Expected: t.literal, Actual: in[pos : pos+1]}
			}
			pos++
			continue
		}
		switch t.directive {
		case 'b', 'w', 'd', 'q':
			width := widthOf(t.directive)
			if pos+width > len(in) {
				return nil, newErr(ErrShortInput, pos, template, fmt.Sprintf("short input for %%%c", t.directive))
			}
			u := readInt(in[pos:pos+width], t.bigEndian)
			out = append(out, u)
			pos += width
		case 'B', 'W':
			width := widthOf(t.directive)
			if pos+width > len(in) {
				return nil, newErr(ErrShortInput, pos, template, fmt.Sprintf("short input for %%%c", t.directive))
			}
			u, err := bcdToInt(in[pos : pos+width])
			if err != nil {
				return nil, newErr(ErrBadType, pos, template, err.Error())
			}
			out = append(out, u)
			pos += width
		case 'x':
			if pos+2 > len(in) {
				return nil, newErr(ErrShortInput, pos, template, "short input for %x length")
			}
			l := int(binary.BigEndian.Uint16(in[pos : pos+2]))
			pos += 2
			if pos+l > len(in) {
				return nil, newErr(ErrShortInput, pos, template, "short input for %x body")
			}
			out = append(out, append([]byte{}, in[pos:pos+l]...))
			pos += l
		case 's':
			if pos+2 > len(in) {
				return nil, newErr(ErrShortInput, pos, template, "short input for %s length")
			}
			l := int(binary.BigEndian.Uint16(in[pos : pos+2]))
			pos += 2
			if pos+l > len(in) {
				return nil, newErr(ErrShortInput, pos, template, "short input for %s body")
			}
			body := in[pos : pos+l]
			pos += l
			if l > 0 && body[l-1] == 0 {
				body = body[:l-1]
			}
			out = append(out, append([]byte{}, body...))
		case 'z':
			if pos+1 > len(in) {
				return nil, newErr(ErrShortInput, pos, template, "short input for %z length")
			}
			l := int(in[pos])
			pos++
			if pos+l > len(in) {
				return nil, newErr(ErrShortInput, pos, template, "short input for %z body")
			}
			out = append(out, append([]byte{}, in[pos:pos+l]...))
			pos += l
		case '?':
			if pos+1 > len(in) {
				return nil, newErr(ErrShortInput, pos, template, "short input for %?")
			}
			pos++
		case '*':
			out = append(out, append([]byte{}, in[pos:]...))
			pos = len(in)
		case '#':
			out = append(out, append([]byte{}, in[pos:]...))
			pos = len(in)
		}
		_ = ti
	}
	if pos != len(in) {
		// trailing bytes are only OK if the template ended with %* or %#
		last := toks[len(toks)-1]
		if last.literal != nil || (last.directive != '*' && last.directive != '#') {
			return nil, newErr(ErrTrailingInput, pos, template, fmt.Sprintf("%d trailing bytes", len(in)-pos))
		}
	}
	return out, nil
}

func asUint(v interface{}) (uint64, bool) {
	switch x := v.(type) {
	case uint64:
		return x, true
	case uint32:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case int:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	case int64:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	}
	return 0, false
}

func writeInt(buf *bytes.Buffer, u uint64, width int, bigEndian bool) {
	b := make([]byte, width)
	for i := 0; i < width; i++ {
		shift := uint(i) * 8
		if bigEndian {
			b[width-1-i] = byte(u >> shift)
		} else {
			b[i] = byte(u >> shift)
		}
	}
	buf.Write(b)
}

func readInt(b []byte, bigEndian bool) uint64 {
	var u uint64
	if bigEndian {
		for _, c := range b {
			u = (u << 8) | uint64(c)
		}
	} else {
		for i := len(b) - 1; i >= 0; i-- {
			u = (u << 8) | uint64(b[i])
		}
	}
	return u
}

// intToBCD encodes x as width bytes of packed binary-coded decimal.
func intToBCD(x uint64, width int) ([]byte, error) {
	max := uint64(1)
	for i := 0; i < width*2; i++ {
		max *= 10
	}
	if x >= max {
		return nil, errors.Errorf("value %d too large for %d-byte BCD", x, width)
	}
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		lo := x % 10
		x /= 10
		hi := x % 10
		x /= 10
		out[i] = byte(hi<<4 | lo)
	}
	return out, nil
}

// bcdToInt decodes packed BCD bytes to an integer.
func bcdToInt(b []byte) (uint64, error) {
	var out uint64
	for _, c := range b {
		hi := c >> 4
		lo := c & 0x0f
		if hi > 9 || lo > 9 {
			return 0, errors.Errorf("byte 0x%02x is not valid BCD", c)
		}
		out = out*100 + uint64(hi)*10 + uint64(lo)
	}
	return out, nil
}

// IntToBCD is the exported form used outside template directives (e.g.
// RawTime field composition for go_to_time).
func IntToBCD(x uint64, width int) ([]byte, error) { return intToBCD(x, width) }

// BCDToInt is the exported inverse of IntToBCD.
func BCDToInt(b []byte) (uint64, error) { return bcdToInt(b) }

// HexLiteral is a small helper for building templates programmatically
// from a byte slice, rendering each byte as two uppercase-free hex digits
// separated by nothing, matching the template's own literal syntax.
func HexLiteral(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		fmt.Fprintf(&sb, "%02x", c)
	}
	return sb.String()
}
