// File: fake/engine.go
// Package fake provides scriptable collaborators for tests and examples.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/eapache/queue"

	"github.com/momentics/hioload-quic/api"
)

// Packet is one scripted outgoing packet served through SendPacketsOut.
type Packet struct {
	Payload     []byte
	Info        api.SendInfo
	SegmentSize int
}

// Received is one segment the engine accepted through Recv. The payload is
// copied out of the runner's scratch buffer.
type Received struct {
	Segment []byte
	Info    api.RecvInfo
}

// Engine is a scriptable api.Engine for driving the run loop in tests.
// Outbound packets are queued with QueuePacket and served in FIFO order;
// accepted segments are recorded for inspection. All methods run on the loop
// thread, mirroring the real collaborator contract.
type Engine struct {
	clk    clock.Clock
	server bool
	conns  int

	outbox *queue.Queue // of Packet
	inbox  *queue.Queue // of Received

	// RecvHook, when set, runs before a segment is recorded; a non-nil
	// return is surfaced to the runner unrecorded.
	recvHook func(segment []byte, info api.RecvInfo) error

	idleTimeout  time.Duration
	idleDeadline time.Time

	timeoutsFired int
	gcRuns        int
}

// EngineOption customizes engine construction.
type EngineOption func(*Engine)

// WithClock substitutes the wall clock, typically a *clock.Mock.
func WithClock(c clock.Clock) EngineOption {
	return func(e *Engine) { e.clk = c }
}

// AsServer makes the engine report server mode: the run loop then never
// terminates on connection count.
func AsServer() EngineOption {
	return func(e *Engine) { e.server = true }
}

// WithConns sets the initial active connection count.
func WithConns(n int) EngineOption {
	return func(e *Engine) { e.conns = n }
}

// WithIdleTimeout arms a recurring protocol-level timeout.
func WithIdleTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.idleTimeout = d }
}

// WithRecvHook installs a hook consulted for every incoming segment.
func WithRecvHook(fn func(segment []byte, info api.RecvInfo) error) EngineOption {
	return func(e *Engine) { e.recvHook = fn }
}

// NewEngine constructs a client-mode engine with no connections.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		clk:    clock.New(),
		outbox: queue.New(),
		inbox:  queue.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.idleTimeout > 0 {
		e.idleDeadline = e.clk.Now().Add(e.idleTimeout)
	}
	return e
}

// QueuePacket schedules an outgoing packet for the next send drain.
func (e *Engine) QueuePacket(p Packet) {
	e.outbox.Add(p)
}

// HasPendingSends implements api.Engine.
func (e *Engine) HasPendingSends() bool {
	return e.outbox.Length() > 0
}

// Timeout implements api.Engine.
func (e *Engine) Timeout() (time.Duration, bool) {
	if e.idleTimeout <= 0 {
		return 0, false
	}
	d := e.idleDeadline.Sub(e.clk.Now())
	if d < 0 {
		d = 0
	}
	return d, true
}

// OnTimeout implements api.Engine.
func (e *Engine) OnTimeout() {
	e.timeoutsFired++
	if e.idleTimeout > 0 {
		e.idleDeadline = e.clk.Now().Add(e.idleTimeout)
	}
}

// Recv implements api.Engine.
func (e *Engine) Recv(segment []byte, info api.RecvInfo) error {
	if e.recvHook != nil {
		if err := e.recvHook(segment, info); err != nil {
			return err
		}
	}
	cp := make([]byte, len(segment))
	copy(cp, segment)
	e.inbox.Add(Received{Segment: cp, Info: info})
	if e.idleTimeout > 0 {
		e.idleDeadline = e.clk.Now().Add(e.idleTimeout)
	}
	return nil
}

// SendPacketsOut implements api.Engine.
func (e *Engine) SendPacketsOut(buf []byte) (api.SendResult, error) {
	if e.outbox.Length() == 0 {
		return api.SendResult{}, api.ErrDone
	}
	p := e.outbox.Remove().(Packet)
	n := copy(buf, p.Payload)
	return api.SendResult{Total: n, Info: p.Info, SegmentSize: p.SegmentSize}, nil
}

// CollectGarbage implements api.Engine.
func (e *Engine) CollectGarbage() {
	e.gcRuns++
}

// IsServer implements api.Engine.
func (e *Engine) IsServer() bool { return e.server }

// NumConns implements api.Engine.
func (e *Engine) NumConns() int { return e.conns }

// SetConns overrides the active connection count mid-script.
func (e *Engine) SetConns(n int) { e.conns = n }

// Received drains and returns every recorded segment.
func (e *Engine) Received() []Received {
	out := make([]Received, 0, e.inbox.Length())
	for e.inbox.Length() > 0 {
		out = append(out, e.inbox.Remove().(Received))
	}
	return out
}

// ReceivedCount returns the number of recorded segments without draining.
func (e *Engine) ReceivedCount() int { return e.inbox.Length() }

// TimeoutsFired returns how many times OnTimeout ran.
func (e *Engine) TimeoutsFired() int { return e.timeoutsFired }

// GarbageCollections returns how many times CollectGarbage ran.
func (e *Engine) GarbageCollections() int { return e.gcRuns }
