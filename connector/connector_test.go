package connector_test

import (
	"bufio"
	"net"
	"strings"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/ais-stomp/stompclient/connector"
	"github.com/ais-stomp/stompclient/frame"
)

// fakeBroker accepts exactly one connection and hands back the raw frame
// bytes received (up to each null terminator, which is stripped) on a channel,
// so specs can assert on what the connector actually wrote to the wire.
type fakeBroker struct {
	addr   string
	frames chan string
	conn   net.Conn
}

func startFakeBroker() *fakeBroker {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).NotTo(HaveOccurred())
	fb := &fakeBroker{addr: ln.Addr().String(), frames: make(chan string, 16)}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		fb.conn = conn
		r := bufio.NewReader(conn)
		for {
			chunk, err := r.ReadString(0)
			if len(chunk) > 0 {
				fb.frames <- strings.TrimRight(chunk, "\x00")
			}
			if err != nil {
				close(fb.frames)
				return
			}
		}
	}()
	return fb
}

func (fb *fakeBroker) next() string {
	select {
	case s, ok := <-fb.frames:
		if !ok {
			return ""
		}
		return s
	case <-time.After(2 * time.Second):
		return ""
	}
}

func (fb *fakeBroker) send(raw string) {
	Eventually(func() net.Conn { return fb.conn }, time.Second).ShouldNot(BeNil())
	_, err := fb.conn.Write([]byte(raw))
	Expect(err).NotTo(HaveOccurred())
}

var _ = Describe("Connector", func() {
	var broker *fakeBroker
	var c *connector.Connector

	BeforeEach(func() {
		broker = startFakeBroker()
	})

	splitHostPort := func(addr string) (string, int) {
		host, portStr, err := net.SplitHostPort(addr)
		Expect(err).NotTo(HaveOccurred())
		port := 0
		for _, d := range portStr {
			port = port*10 + int(d-'0')
		}
		return host, port
	}

	It("sends CONNECT on transport connect and reaches ready on CONNECTED", func() {
		ready := make(chan struct{}, 1)
		host, port := splitHostPort(broker.addr)
		c = connector.New(connector.Events{
			OnReady: func(c *connector.Connector) { ready <- struct{}{} },
		}, nil)
		c.Hostname, c.Port = host, port

		Expect(c.Connect()).To(Succeed())

		wire := broker.next()
		Expect(wire).To(HavePrefix("CONNECT\n"))
		Expect(wire).To(ContainSubstring("accept-version:1.0,1.1"))
		Expect(wire).To(ContainSubstring("host:localhost"))
		Expect(c.State()).To(Equal(connector.ConnectSent))

		broker.send("CONNECTED\nversion:1.1\nsession:sess-1\n\n\x00")

		Eventually(ready, 2*time.Second).Should(Receive())
		Expect(c.State()).To(Equal(connector.ConnectorReady))
		Expect(c.SessionID()).To(Equal("sess-1"))
		Expect(c.Version()).To(Equal("1.1"))
	})

	It("defaults the negotiated version to 1.0 when CONNECTED omits it", func() {
		ready := make(chan struct{}, 1)
		host, port := splitHostPort(broker.addr)
		c = connector.New(connector.Events{OnReady: func(c *connector.Connector) { ready <- struct{}{} }}, nil)
		c.Hostname, c.Port = host, port
		Expect(c.Connect()).To(Succeed())
		broker.next()
		broker.send("CONNECTED\nsession:sess-2\n\n\x00")
		Eventually(ready, 2*time.Second).Should(Receive())
		Expect(c.Version()).To(Equal("1.0"))
	})

	It("fires rejected and returns to SocketDisconnected on ERROR during handshake", func() {
		rejected := make(chan struct{}, 1)
		host, port := splitHostPort(broker.addr)
		c = connector.New(connector.Events{OnRejected: func(c *connector.Connector) { rejected <- struct{}{} }}, nil)
		c.Hostname, c.Port = host, port
		Expect(c.Connect()).To(Succeed())
		broker.next()
		broker.send("ERROR\nmessage:bad login\n\n\x00")
		Eventually(rejected, 2*time.Second).Should(Receive())
		Eventually(c.State, 2*time.Second).Should(Equal(connector.SocketDisconnected))
	})

	It("sends a DISCONNECT with a receipt on graceful Disconnect", func() {
		host, port := splitHostPort(broker.addr)
		c = connector.New(connector.Events{}, nil)
		c.Hostname, c.Port = host, port
		Expect(c.Connect()).To(Succeed())
		broker.next() // CONNECT

		c.Disconnect(true)
		wire := broker.next()
		Expect(wire).To(HavePrefix("DISCONNECT\n"))
		Expect(wire).To(ContainSubstring("receipt:"))
		Expect(c.State()).To(Equal(connector.DisconnectSent))
	})

	It("builds SUBSCRIBE with a default ack mode of auto", func() {
		c = connector.New(connector.Events{}, nil)
		f := c.Subscribe("0", "/topic/a", "")
		Expect(f.Command).To(Equal("SUBSCRIBE"))
		Expect(f.GetHeaderValue("id")).To(Equal("0"))
		Expect(f.GetHeaderValue("destination")).To(Equal("/topic/a"))
		Expect(f.GetHeaderValue("ack")).To(Equal("auto"))
	})

	It("derives ACK subscription from the inbound subscription header", func() {
		c = connector.New(connector.Events{}, nil)
		msg := frame.New("MESSAGE", 3)
		msg.AppendHeader("subscription", "0")
		msg.AppendHeader("message-id", "42")
		ack := c.Ack(msg)
		Expect(ack.Command).To(Equal("ACK"))
		Expect(ack.GetHeaderValue("subscription")).To(Equal("0"))
		Expect(ack.GetHeaderValue("message-id")).To(Equal("42"))
	})

	It("falls back to destination for ACK subscription when subscription header is absent", func() {
		c = connector.New(connector.Events{}, nil)
		msg := frame.New("MESSAGE", 2)
		msg.AppendHeader("destination", "/topic/a")
		msg.AppendHeader("message-id", "7")
		ack := c.Ack(msg)
		Expect(ack.GetHeaderValue("subscription")).To(Equal("/topic/a"))
	})

	It("flags a redelivered message-id as a duplicate on the second sighting", func() {
		dup := make(chan *frame.Frame, 4)
		host, port := splitHostPort(broker.addr)
		c = connector.New(connector.Events{OnMessage: func(c *connector.Connector, f *frame.Frame) { dup <- f }}, nil)
		c.Hostname, c.Port = host, port
		Expect(c.Connect()).To(Succeed())
		broker.next()

		broker.send("MESSAGE\nmessage-id:1\ndestination:/q\n\nhi\x00")
		first := <-dup
		Expect(connector.IsDuplicate(first)).To(BeFalse())

		broker.send("MESSAGE\nmessage-id:1\ndestination:/q\n\nhi again\x00")
		second := <-dup
		Expect(connector.IsDuplicate(second)).To(BeTrue())
	})
})
