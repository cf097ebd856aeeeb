// Package parser implements the incremental, byte-oriented STOMP frame
// parser: a push-driven finite state machine that tolerates arbitrary
// network chunking and supports both null-terminated and fixed-length
// (content-length) bodies.
//
// The state layout -- an outer frame state plus a header sub-state, with
// explicit tagged enums and no hidden flags -- follows the Design Notes'
// guidance and mirrors the explicit state tracking in aistore's
// transport/pdu.go (rpdu.readHdr / readFrom, which also distinguish a
// fixed-length "declared, then consumed" body phase from a header phase).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package parser

import (
	"strconv"
	"strings"

	"github.com/ais-stomp/stompclient/frame"
)

// State is the result of one Push call.
type State int

const (
	NeedMore State = iota
	MessageReady
)

// outer frame state
type outer int

const (
	outerSyncing outer = iota
	outerHeaders
	outerBody
)

// header sub-state
type headerState int

const (
	hsCommand headerState = iota
	hsKeyStart
	hsKeyData
	hsValueStart
	hsValueData
)

const (
	initialBodyCap = 8192
	bodyGrain      = 8192
)

// Parser is a reusable STOMP frame decoder. The zero value is ready to use.
// Parser is not safe for concurrent use; one Parser belongs to one
// connection's inbound byte stream.
type Parser struct {
	outer  outer
	hstate headerState

	command strings.Builder
	curKey  strings.Builder
	curVal  strings.Builder

	headers []frame.Header

	body        []byte
	bodyOff     int
	fixedLength bool
	bodySize    int

	ready bool
}

// New returns a Parser ready to accept the first frame.
func New() *Parser {
	p := &Parser{}
	p.Reset()
	return p
}

// Reset clears all accumulators and returns the parser to its initial
// (Syncing) state, ready to accept the next frame.
func (p *Parser) Reset() {
	p.outer = outerSyncing
	p.hstate = hsCommand
	p.command.Reset()
	p.curKey.Reset()
	p.curVal.Reset()
	p.headers = p.headers[:0]
	p.body = p.body[:0] // keep the backing array for reuse; startBody replaces it only when a declared content-length exceeds its capacity
	p.bodyOff = 0
	p.fixedLength = false
	p.bodySize = 0
	p.ready = false
}

// Push advances the machine by one byte. Once MessageReady is returned,
// further Push calls are no-ops until ReturnMessage is called and the
// parser is Reset.
func (p *Parser) Push(b byte) State {
	if p.ready {
		return MessageReady
	}
	switch p.outer {
	case outerSyncing:
		p.pushSyncing(b)
	case outerHeaders:
		p.pushHeaders(b)
	case outerBody:
		p.pushBody(b)
	}
	if p.ready {
		return MessageReady
	}
	return NeedMore
}

// PushBytes feeds an entire chunk of bytes (e.g. one socket read) in
// order. Every byte is consumed, so consumed is always len(data); each
// frame completed within this call is extracted via ReturnMessage, the
// parser is Reset, and the frames are returned in wire order in msgs. A
// frame still incomplete at the end of data stays buffered for the next
// call. Callers that want one-frame-at-a-time semantics
// identical to single-byte Push should instead loop calling Push; this is
// a convenience for the common "drain one socket read" case.
func (p *Parser) PushBytes(data []byte) (consumed int, msgs []*frame.Frame) {
	for i, b := range data {
		if p.Push(b) == MessageReady {
			if f := p.ReturnMessage(); f != nil {
				msgs = append(msgs, f)
			}
			p.Reset()
		}
		consumed = i + 1
	}
	return consumed, msgs
}

// ReturnMessage returns the completed frame (command upper-cased and
// trimmed) or nil if the parser is not in the MessageReady state.
func (p *Parser) ReturnMessage() *frame.Frame {
	if !p.ready {
		return nil
	}
	f := &frame.Frame{
		Command: strings.ToUpper(strings.TrimSpace(p.command.String())),
		Headers: append([]frame.Header(nil), p.headers...),
	}
	if p.body != nil {
		f.Body = append([]byte(nil), p.body[:p.bodyOff]...)
	} else {
		f.Body = []byte{}
	}
	return f
}

//
// Syncing
//

func (p *Parser) pushSyncing(b byte) {
	if isAlpha(b) {
		p.outer = outerHeaders
		p.hstate = hsCommand
		p.command.WriteByte(b)
	}
	// else: drop stray bytes (heart-beat LFs) until a letter appears.
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

//
// Headers
//

func (p *Parser) pushHeaders(b byte) {
	switch p.hstate {
	case hsCommand:
		if b == '\n' {
			p.hstate = hsKeyStart
			return
		}
		p.command.WriteByte(b)
	case hsKeyStart:
		if b == '\n' {
			p.startBody()
			return
		}
		p.curKey.Reset()
		p.curVal.Reset()
		p.curKey.WriteByte(b)
		p.hstate = hsKeyData
	case hsKeyData:
		switch b {
		case ':':
			p.hstate = hsValueStart
		case '\n':
			p.commitHeader()
			p.hstate = hsKeyStart
		default:
			p.curKey.WriteByte(b)
		}
	case hsValueStart, hsValueData:
		if b == '\n' {
			p.commitHeader()
			p.hstate = hsKeyStart
			return
		}
		p.curVal.WriteByte(b)
		p.hstate = hsValueData
	}
}

func (p *Parser) commitHeader() {
	name := strings.ToLower(strings.TrimSpace(frame.Unescape(p.curKey.String())))
	value := strings.TrimLeft(frame.Unescape(p.curVal.String()), " \t")
	p.headers = append(p.headers, frame.Header{Name: name, Value: value})
	p.curKey.Reset()
	p.curVal.Reset()
}

//
// Body
//

func (p *Parser) startBody() {
	p.outer = outerBody
	p.fixedLength, p.bodySize = declaredContentLength(p.headers)
	if p.fixedLength {
		if cap(p.body) < p.bodySize {
			p.body = make([]byte, p.bodySize)
		} else {
			p.body = p.body[:p.bodySize]
		}
	} else {
		if p.body == nil {
			p.body = make([]byte, 0, initialBodyCap)
		} else {
			p.body = p.body[:0]
		}
	}
	p.bodyOff = 0
}

// declaredContentLength finds the last content-length header and parses
// it as decimal; negative or malformed values mean "no fixed length".
func declaredContentLength(headers []frame.Header) (fixed bool, size int) {
	val := ""
	for i := len(headers) - 1; i >= 0; i-- {
		if headers[i].Name == "content-length" {
			val = headers[i].Value
			break
		}
	}
	if val == "" {
		return false, 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n < 0 {
		return false, 0
	}
	return true, n
}

func (p *Parser) pushBody(b byte) {
	if p.fixedLength {
		p.pushFixedBody(b)
		return
	}
	p.pushVariableBody(b)
}

func (p *Parser) pushFixedBody(b byte) {
	if p.bodyOff < p.bodySize {
		p.body[p.bodyOff] = b
		p.bodyOff++
		return
	}
	// bodySize bytes already consumed: the very next byte must be the
	// null terminator. Extra non-null bytes before it are discarded
	// (conservative: broker declared an incorrect length).
	if b == 0 {
		p.ready = true
	}
	// else: discard and keep waiting for the null terminator.
}

func (p *Parser) pushVariableBody(b byte) {
	if b == 0 {
		p.ready = true
		return
	}
	if len(p.body) == cap(p.body) {
		grown := make([]byte, len(p.body), cap(p.body)+bodyGrain)
		copy(grown, p.body)
		p.body = grown
	}
	p.body = append(p.body, b)
	p.bodyOff = len(p.body)
}
