// Package xstats provides the Prometheus-backed counters threaded through
// Connection and Connector, playing the role aistore's cos.StatsUpdater
// interface plays for transport.Init: a small tracker object handed to a
// long-lived component so it can record what it did without importing a
// concrete metrics backend.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package xstats

import "github.com/prometheus/client_golang/prometheus"

// Tracker is nil-safe: a *Tracker obtained via the zero value's methods
// (called on a nil receiver) is a documented no-op, so callers that don't
// care about metrics can simply not construct one.
type Tracker struct {
	framesSent     prometheus.Counter
	bytesSent      prometheus.Counter
	framesReceived prometheus.Counter
	bytesReceived  prometheus.Counter
	errors         *prometheus.CounterVec
}

// New registers a fresh set of counters on reg (pass prometheus.NewRegistry()
// for an isolated registry, or prometheus.DefaultRegisterer to expose them
// process-wide). The sessionID label value is attached to every metric so
// multiple concurrent connections remain distinguishable.
func New(reg prometheus.Registerer, sessionID string) *Tracker {
	labels := prometheus.Labels{"session": sessionID}
	t := &Tracker{
		framesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "stomp_frames_sent_total",
			Help:        "STOMP frames written to the transport.",
			ConstLabels: labels,
		}),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "stomp_bytes_sent_total",
			Help:        "Bytes written to the transport.",
			ConstLabels: labels,
		}),
		framesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "stomp_frames_received_total",
			Help:        "STOMP frames parsed from the transport.",
			ConstLabels: labels,
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "stomp_bytes_received_total",
			Help:        "Bytes read from the transport.",
			ConstLabels: labels,
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "stomp_errors_total",
			Help:        "Errors observed on the connection, by kind.",
			ConstLabels: labels,
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(t.framesSent, t.bytesSent, t.framesReceived, t.bytesReceived, t.errors)
	}
	return t
}

func (t *Tracker) Sent(nbytes int) {
	if t == nil {
		return
	}
	t.framesSent.Inc()
	t.bytesSent.Add(float64(nbytes))
}

func (t *Tracker) Received(nbytes int) {
	if t == nil {
		return
	}
	t.framesReceived.Inc()
	t.bytesReceived.Add(float64(nbytes))
}

func (t *Tracker) Error(kind string) {
	if t == nil {
		return
	}
	t.errors.WithLabelValues(kind).Inc()
}
