// Package stompconn adapts a byte-oriented duplex transport (a TCP socket)
// to a frame-oriented event stream: it owns one parser.Parser and the
// outbound write path, and emits connect/message/error/disconnect events.
//
// The read-loop / write-path split is grounded on the multi-goroutine
// stream lifecycle in aistore's transport package (separate send loop and
// completion loop coordinated through channels and a sync.WaitGroup, with
// a single place -- the stream collector -- deciding when the pair is
// truly done). Here an errgroup.Group runs the read loop (Wait returns its
// result), and a once-only teardown shared by the read loop and the write
// path is the single place that ends the connection.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package stompconn

import (
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ais-stomp/stompclient/frame"
	"github.com/ais-stomp/stompclient/internal/nlog"
	"github.com/ais-stomp/stompclient/internal/xerr"
	"github.com/ais-stomp/stompclient/internal/xstats"
	"github.com/ais-stomp/stompclient/parser"
)

// Events is the callback struct an application registers to receive
// frame-level notifications, per the Design Notes' "typed event sink"
// re-architecture of the source's runtime event emitter.
type Events struct {
	OnConnect    func()
	OnMessage    func(f *frame.Frame)
	OnError      func(err error)
	OnDisconnect func(hadError bool)
}

// Connection wraps a net.Conn, one reusable parser.Parser, and the
// outbound write path. The zero value is not usable; construct with New.
type Connection struct {
	conn   net.Conn
	ev     Events
	stats  *xstats.Tracker
	parser *parser.Parser

	canSend   atomic.Bool
	messageID atomic.Int64

	mu         sync.Mutex // guards reads of conn; writes happen outside it
	disconnect sync.Once  // makes teardown fire the disconnect event once
	eg         *errgroup.Group
}

// New constructs a disconnected Connection. stats may be nil.
func New(ev Events, stats *xstats.Tracker) *Connection {
	return &Connection{
		ev:     ev,
		stats:  stats,
		parser: parser.New(),
	}
}

// Connect dials addr (host:port) and starts the inbound read loop. On
// success it fires OnConnect, flips canSend true, and resets messageID to
// zero, all per spec.md §4.3.
func (c *Connection) Connect(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		wrapped := errors.Wrap(err, "stompconn: dial")
		c.stats.Error("dial")
		return xerr.NewTransportError(wrapped)
	}
	c.conn = conn
	c.messageID.Store(0)
	c.canSend.Store(true)

	eg := &errgroup.Group{}
	c.eg = eg
	eg.Go(c.readLoop)

	if c.ev.OnConnect != nil {
		c.ev.OnConnect()
	}
	return nil
}

// CanSend reports whether Send will currently attempt a write.
func (c *Connection) CanSend() bool { return c.canSend.Load() }

// NextMessageID returns the messageID the next successful Send would
// assign, without consuming it.
func (c *Connection) NextMessageID() int64 { return c.messageID.Load() }

// Send serializes f and writes it to the transport, returning the
// messageID assigned to it (then incrementing the counter). If canSend is
// false or f is nil, it returns -1 without writing, per spec.md §4.3.
func (c *Connection) Send(f *frame.Frame) int64 {
	if f == nil || !c.canSend.Load() {
		return -1
	}
	buf := f.ToBuffer()

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return -1
	}

	if _, err := conn.Write(buf); err != nil {
		c.stats.Error("write")
		c.fail(errors.Wrap(err, "stompconn: write"))
		return -1
	}
	c.stats.Sent(len(buf))
	return c.messageID.Add(1) - 1
}

// Disconnect half-closes the outbound side and stops accepting new sends;
// inbound data may still arrive until the transport fully closes.
func (c *Connection) Disconnect() {
	c.canSend.Store(false)
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.CloseWrite()
		return
	}
	if conn != nil {
		_ = conn.Close()
	}
}

// readLoop feeds inbound bytes to the parser one read-buffer at a time,
// emitting a message event for every completed frame and detaching it
// from the parser (resetting the parser) before emission, per spec.md
// §4.3.
func (c *Connection) readLoop() error {
	buf := make([]byte, 4096)
	pending := 0 // bytes read since the last completed frame
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			pending += n
			_, msgs := c.parser.PushBytes(buf[:n])
			for _, f := range msgs {
				c.stats.Received(pending)
				pending = 0
				if c.ev.OnMessage != nil {
					c.ev.OnMessage(f)
				}
			}
		}
		if err != nil {
			hadError := err != io.EOF
			if hadError {
				c.stats.Error("read")
				nlog.Warningln("stompconn: read loop:", err)
				err = errors.Wrap(err, "stompconn: read loop")
				// a read failing because this side already closed the
				// socket is not a new transport error
				if c.ev.OnError != nil && !errors.Is(err, net.ErrClosed) {
					c.ev.OnError(xerr.NewTransportError(err))
				}
			}
			c.teardown(hadError)
			if hadError {
				return err
			}
			return nil
		}
	}
}

// fail is invoked on a write-path transport error: it surfaces an error
// event and tears the connection down.
func (c *Connection) fail(err error) {
	wrapped := xerr.NewTransportError(err)
	if c.ev.OnError != nil {
		c.ev.OnError(wrapped)
	}
	c.teardown(true)
}

// teardown fires the terminal disconnect(hadError) event exactly once per
// session and drops canSend.
func (c *Connection) teardown(hadError bool) {
	c.canSend.Store(false)
	c.disconnect.Do(func() {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		if c.ev.OnDisconnect != nil {
			c.ev.OnDisconnect(hadError)
		}
	})
}

// Wait blocks until the read loop has returned, surfacing any error it
// returned (io.EOF is not an error here; a clean close returns nil).
func (c *Connection) Wait() error {
	if c.eg == nil {
		return nil
	}
	return c.eg.Wait()
}
