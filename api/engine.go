// File: api/engine.go
// Package api defines the Engine collaborator contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import (
	"net/netip"
	"time"
)

// MaxUDPPayload is the largest UDP payload that can arrive or leave in a
// single call: 65535 minus the minimal IP and UDP headers. The runner's
// scratch buffer is sized to it.
const MaxUDPPayload = 65527

// RecvInfo describes one received segment: the local address it arrived on
// and the address it came from.
type RecvInfo struct {
	To   netip.AddrPort
	From netip.AddrPort
}

// SendInfo describes how an outgoing packet must be sent. From selects the
// sending socket, To is the destination. At is the pacing hint: the earliest
// transmission time requested by the engine; a zero At means "send now".
type SendInfo struct {
	From netip.AddrPort
	To   netip.AddrPort
	At   time.Time
}

// SendResult is one batch of outgoing packet bytes produced by the engine.
type SendResult struct {
	// Total is the number of bytes written into the caller's buffer.
	Total int
	// Info carries the source/destination metadata and the pacing hint.
	Info SendInfo
	// SegmentSize is the size of the individual UDP datagrams the buffer
	// splits into. Zero, or a value >= Total, means a single datagram.
	SegmentSize int
}

// Engine is the protocol collaborator driven by the run loop. It owns all
// QUIC semantics; the runner only moves bytes between it and the sockets.
//
// Every method is called from the single loop thread.
type Engine interface {
	// HasPendingSends reports whether outgoing packets are queued.
	HasPendingSends() bool

	// Timeout returns the next protocol-level timeout, if any.
	Timeout() (time.Duration, bool)

	// OnTimeout advances timeout-driven protocol state (idle timers,
	// loss detection) after a poll wait elapsed with no events.
	OnTimeout()

	// Recv hands one UDP payload segment to the engine. Errors are
	// classified by the runner per the taxonomy in errors.go.
	Recv(segment []byte, info RecvInfo) error

	// SendPacketsOut fills buf with the next outgoing packet batch and
	// returns its send metadata. ErrDone signals normal exhaustion.
	SendPacketsOut(buf []byte) (SendResult, error)

	// CollectGarbage reclaims resources of terminated connections.
	CollectGarbage()

	// IsServer reports whether the engine accepts inbound connections.
	IsServer() bool

	// NumConns returns the number of active connections.
	NumConns() int
}
