/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package connector

import "github.com/ais-stomp/stompclient/frame"

// newConnectFrame builds the CONNECT frame sent once the transport is up,
// per spec.md §4.4: accept-version 1.0,1.1, host defaulting to localhost,
// and optional login/passcode.
func (c *Connector) newConnectFrame() *frame.Frame {
	f := frame.New("CONNECT", 4)
	f.AppendHeader("accept-version", "1.0,1.1")
	host := c.Broker
	if host == "" {
		host = "localhost"
	}
	f.AppendHeader("host", host)
	if c.Username != "" {
		f.AppendHeader("login", c.Username)
	}
	if c.Password != "" {
		f.AppendHeader("passcode", c.Password)
	}
	return f
}

// newDisconnectFrame builds a graceful DISCONNECT frame carrying a receipt
// header so the broker's acknowledgement can be correlated by message id.
func (c *Connector) newDisconnectFrame() *frame.Frame {
	f := frame.New("DISCONNECT", 1)
	c.RequestReceipt(f)
	return f
}

// Subscribe builds a SUBSCRIBE frame for destination, identified by id.
// ack defaults to "auto" when empty (per the Design Notes' Open Question
// 4: the library does not validate the ack mode string).
func (c *Connector) Subscribe(id, destination, ack string) *frame.Frame {
	if ack == "" {
		ack = "auto"
	}
	f := frame.New("SUBSCRIBE", 3)
	f.AppendHeader("id", id)
	f.AppendHeader("destination", destination)
	f.AppendHeader("ack", ack)
	return f
}

// Unsubscribe builds an UNSUBSCRIBE frame for a previously subscribed id.
func (c *Connector) Unsubscribe(id, destination string) *frame.Frame {
	f := frame.New("UNSUBSCRIBE", 2)
	f.AppendHeader("id", id)
	if destination != "" {
		f.AppendHeader("destination", destination)
	}
	return f
}

// Ack builds an ACK frame for a received MESSAGE frame, deriving
// subscription from the inbound subscription header (falling back to
// destination) and copying its message-id, per spec.md §4.4.
func (c *Connector) Ack(message *frame.Frame) *frame.Frame {
	return c.ackNack("ACK", message)
}

// Nack builds a NACK frame for a received MESSAGE frame. NACK is a STOMP
// 1.1 extension; sending one over a 1.0 session is the caller's choice.
func (c *Connector) Nack(message *frame.Frame) *frame.Frame {
	return c.ackNack("NACK", message)
}

func (c *Connector) ackNack(command string, message *frame.Frame) *frame.Frame {
	sub := message.GetHeaderValue("subscription")
	if sub == "" {
		sub = message.GetHeaderValue("destination")
	}
	f := frame.New(command, 2)
	f.AppendHeader("subscription", sub)
	f.AppendHeader("message-id", message.GetHeaderValue("message-id"))
	return f
}

// SendTo builds a SEND frame addressed to destination with the given body
// and content-type; body and contentType are typically produced by one of
// the frame.NewXxxBody helpers.
func (c *Connector) SendTo(destination string, body []byte, contentType string) *frame.Frame {
	f := frame.NewWithBody("SEND", 2, body)
	f.AppendHeader("destination", destination)
	if contentType != "" {
		f.AppendHeader("content-type", contentType)
	}
	f.OverrideContentLength()
	return f
}
