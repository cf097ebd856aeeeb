// Package frame implements the in-memory representation of a single STOMP
// frame: a command, an ordered header list, and an optional body. It also
// implements STOMP 1.1 header escaping and wire serialization.
//
// The header escaping and wire-size accounting in this file are grounded
// on the PDU header accounting in aistore's transport/pdu.go (plength,
// slength, rlength as offset arithmetic over a single contiguous buffer) --
// the STOMP frame here is a text analogue of that binary PDU: a header
// section of known shape followed by a body of either declared or
// sentinel-terminated length.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package frame

import (
	"strconv"
	"strings"

	"github.com/ais-stomp/stompclient/internal/debug"
)

// Header is a single (name, value) pair. Names are normalized to
// lower-case on insert; duplicates are legal and insertion order is
// preserved.
type Header struct {
	Name  string
	Value string
}

// Frame is an ordered, possibly-duplicated header list plus a command and
// an optional body. The zero Frame is not useful; construct with New.
type Frame struct {
	Command string
	Headers []Header
	Body    []byte
}

// New constructs an empty frame for the given command, with header
// capacity pre-sized to avoid reallocation for the common case.
func New(command string, headerCap int) *Frame {
	return &Frame{
		Command: command,
		Headers: make([]Header, 0, headerCap),
	}
}

// NewWithBody constructs a frame with the given command and body, copying
// neither -- the caller's body slice is retained by reference.
func NewWithBody(command string, headerCap int, body []byte) *Frame {
	f := New(command, headerCap)
	f.Body = body
	return f
}

//
// header mutation
//

// AppendHeader adds (name, value) at the end of the header list. name is
// lower-cased; an empty value is stored as "".
func (f *Frame) AppendHeader(name, value string) {
	f.Headers = append(f.Headers, Header{Name: strings.ToLower(name), Value: value})
}

// OverrideHeader replaces the last header matching name in place, or
// appends a new one if none matches. An overridden header keeps its
// original position in the list.
func (f *Frame) OverrideHeader(name, value string) {
	name = strings.ToLower(name)
	if i := f.lastIndexOf(name); i >= 0 {
		f.Headers[i].Value = value
		return
	}
	f.Headers = append(f.Headers, Header{Name: name, Value: value})
}

// RemoveLastHeaderOfType deletes the last header matching name and returns
// its prior value, or "" if none existed.
func (f *Frame) RemoveLastHeaderOfType(name string) string {
	name = strings.ToLower(name)
	i := f.lastIndexOf(name)
	if i < 0 {
		return ""
	}
	prev := f.Headers[i].Value
	f.Headers = append(f.Headers[:i], f.Headers[i+1:]...)
	return prev
}

// RemoveAllHeadersOfType deletes every header matching name.
func (f *Frame) RemoveAllHeadersOfType(name string) {
	name = strings.ToLower(name)
	out := f.Headers[:0]
	for _, h := range f.Headers {
		if h.Name != name {
			out = append(out, h)
		}
	}
	f.Headers = out
}

// GetHeaderValue returns the value of the last header matching name, or ""
// if none exists.
func (f *Frame) GetHeaderValue(name string) string {
	name = strings.ToLower(name)
	if i := f.lastIndexOf(name); i >= 0 {
		return f.Headers[i].Value
	}
	return ""
}

// lastIndexOf finds the last header in f.Headers matching the
// already-lower-cased name, against the frame's own header-name sequence
// (Design Notes Open Question 3: the lookup binds to this frame, not to
// any external list).
func (f *Frame) lastIndexOf(name string) int {
	for i := len(f.Headers) - 1; i >= 0; i-- {
		if f.Headers[i].Name == name {
			return i
		}
	}
	return -1
}

//
// content-type / content-length
//

// Encoding is the native tag stompclient uses internally for a body's
// character encoding; see the ISO-label table in toISOLabel/fromISOLabel.
type Encoding string

const (
	EncodingUTF16LE Encoding = "utf16le"
	EncodingUTF8    Encoding = "utf8"
	EncodingASCII   Encoding = "ascii"
	EncodingBase64  Encoding = "base64"

	// DefaultMime is the library's default content-type mime part.
	DefaultMime = "text/plain"
	// DefaultEncoding is the library's default content-type charset part,
	// corresponding to the platform's native UTF-16LE string
	// representation per spec.
	DefaultEncoding = EncodingUTF16LE
)

var isoToNative = map[string]Encoding{
	"utf-16":   EncodingUTF16LE,
	"utf-16le": EncodingUTF16LE,
	"utf-8":    EncodingUTF8,
	"ascii":    EncodingASCII,
	"us-ascii": EncodingASCII,
	"base64":   EncodingBase64,
}

var nativeToISO = map[Encoding]string{
	EncodingUTF16LE: "utf-16le",
	EncodingUTF8:    "utf-8",
	EncodingASCII:   "ascii",
	EncodingBase64:  "base64",
}

func toISOLabel(enc Encoding) string {
	if s, ok := nativeToISO[enc]; ok {
		return s
	}
	return string(enc) // unknown labels pass through unchanged
}

func fromISOLabel(label string) Encoding {
	if enc, ok := isoToNative[strings.ToLower(label)]; ok {
		return enc
	}
	return Encoding(label)
}

// contentTypeValue composes "<mime>;charset=<iso-label>", both parts
// lower-cased.
func contentTypeValue(mime string, enc Encoding) string {
	return strings.ToLower(mime) + ";charset=" + strings.ToLower(toISOLabel(enc))
}

// ParseContentType splits a content-type header value into its mime and
// native-encoding parts. If no charset is present, enc is "".
func ParseContentType(value string) (mime string, enc Encoding) {
	parts := strings.SplitN(value, ";charset=", 2)
	mime = parts[0]
	if len(parts) == 2 {
		enc = fromISOLabel(parts[1])
	}
	return
}

// AppendContentType appends a content-type header built from mime/enc.
func (f *Frame) AppendContentType(mime string, enc Encoding) {
	f.AppendHeader("content-type", contentTypeValue(mime, enc))
}

// OverrideContentType overrides the content-type header built from mime/enc.
func (f *Frame) OverrideContentType(mime string, enc Encoding) {
	f.OverrideHeader("content-type", contentTypeValue(mime, enc))
}

// AppendContentLength appends a content-length header with the current
// body length (0 if the body is nil).
func (f *Frame) AppendContentLength() {
	f.AppendHeader("content-length", strconv.Itoa(len(f.Body)))
}

// OverrideContentLength overrides the content-length header with the
// current body length (0 if the body is nil).
func (f *Frame) OverrideContentLength() {
	f.OverrideHeader("content-length", strconv.Itoa(len(f.Body)))
}

//
// escaping
//

// escapeInto appends the STOMP 1.1 header escaping of s to dst: backslash
// -> \\, colon -> \c, newline -> \n, everything else passes through.
func escapeInto(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			dst = append(dst, '\\', '\\')
		case ':':
			dst = append(dst, '\\', 'c')
		case '\n':
			dst = append(dst, '\\', 'n')
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

func escapedLen(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', ':', '\n':
			n += 2
		default:
			n++
		}
	}
	return n
}

// Unescape reverses escapeInto: after reading '\', an unknown escape
// consumes the backslash and its successor with no output (conservative,
// matching the reference implementation).
func Unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			out = append(out, c)
			continue
		}
		i++
		switch s[i] {
		case 'c':
			out = append(out, ':')
		case 'n':
			out = append(out, '\n')
		case '\\':
			out = append(out, '\\')
		default:
			// unknown escape: drop both bytes
		}
	}
	return string(out)
}

//
// wire size / serialization
//

// WireSize returns the exact number of bytes ToBuffer will produce:
// len(command) + 1 (command newline)
// + sum(escaped_key_len + 1 + escaped_value_len + 1) over headers
// + 1 (blank header-terminator newline)
// + len(body)
// + 1 (terminating null)
func (f *Frame) WireSize() int {
	n := len(f.Command) + 1
	for _, h := range f.Headers {
		n += escapedLen(h.Name) + 1 + escapedLen(h.Value) + 1
	}
	n += 1 + len(f.Body) + 1
	return n
}

// ToBuffer allocates a buffer exactly WireSize() bytes and serializes the
// frame into it: command, newline, "key:value\n" headers (escaped), a
// blank newline, the body, and a terminating null byte.
func (f *Frame) ToBuffer() []byte {
	buf := make([]byte, 0, f.WireSize())
	buf = append(buf, f.Command...)
	buf = append(buf, '\n')
	for _, h := range f.Headers {
		buf = escapeInto(buf, h.Name)
		buf = append(buf, ':')
		buf = escapeInto(buf, h.Value)
		buf = append(buf, '\n')
	}
	buf = append(buf, '\n')
	buf = append(buf, f.Body...)
	buf = append(buf, 0)
	debug.Assertf(len(buf) == f.WireSize(), "wire size mismatch: wrote %d, predicted %d", len(buf), f.WireSize())
	return buf
}
