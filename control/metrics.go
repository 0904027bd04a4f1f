// File: control/metrics.go
// Package control exposes run-loop counters for system-level monitoring.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package control

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts run-loop activity and implements prometheus.Collector so it
// can be registered alongside application metrics. Attaching it to a runner
// is optional; every increment method is safe on a nil receiver.
type Metrics struct {
	iterations        prometheus.Counter
	datagramsReceived prometheus.Counter
	bytesReceived     prometheus.Counter
	segmentsReceived  prometheus.Counter
	segmentsSkipped   prometheus.Counter
	packetsSent       prometheus.Counter
	bytesSent         prometheus.Counter
	sendErrors        prometheus.Counter
}

// NewMetrics creates an unregistered collector.
func NewMetrics() *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hioload",
			Subsystem: "quic_runner",
			Name:      name,
			Help:      help,
		})
	}
	return &Metrics{
		iterations:        counter("iterations_total", "Completed run-loop iterations."),
		datagramsReceived: counter("datagrams_received_total", "UDP datagrams read off sockets (coalesced trains count as one)."),
		bytesReceived:     counter("bytes_received_total", "Payload bytes read off sockets."),
		segmentsReceived:  counter("segments_received_total", "Segments accepted by the protocol engine."),
		segmentsSkipped:   counter("segments_skipped_total", "Segments discarded after a recoverable engine error."),
		packetsSent:       counter("packets_sent_total", "Outgoing packet batches handed to the kernel."),
		bytesSent:         counter("bytes_sent_total", "Payload bytes handed to the kernel."),
		sendErrors:        counter("send_errors_total", "Outgoing packets dropped after a send failure."),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(m, ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	ch <- m.iterations
	ch <- m.datagramsReceived
	ch <- m.bytesReceived
	ch <- m.segmentsReceived
	ch <- m.segmentsSkipped
	ch <- m.packetsSent
	ch <- m.bytesSent
	ch <- m.sendErrors
}

// AddIteration records one completed poll cycle.
func (m *Metrics) AddIteration() {
	if m == nil {
		return
	}
	m.iterations.Inc()
}

// AddDatagramReceived records one receive call returning n payload bytes.
func (m *Metrics) AddDatagramReceived(n int) {
	if m == nil {
		return
	}
	m.datagramsReceived.Inc()
	m.bytesReceived.Add(float64(n))
}

// AddSegmentReceived records one segment accepted by the engine.
func (m *Metrics) AddSegmentReceived() {
	if m == nil {
		return
	}
	m.segmentsReceived.Inc()
}

// AddSegmentSkipped records one segment discarded after a recoverable error.
func (m *Metrics) AddSegmentSkipped() {
	if m == nil {
		return
	}
	m.segmentsSkipped.Inc()
}

// AddPacketSent records one outgoing batch of n bytes handed to the kernel.
func (m *Metrics) AddPacketSent(n int) {
	if m == nil {
		return
	}
	m.packetsSent.Inc()
	m.bytesSent.Add(float64(n))
}

// AddSendError records one dropped outgoing packet.
func (m *Metrics) AddSendError() {
	if m == nil {
		return
	}
	m.sendErrors.Inc()
}
